package production_test

import (
	"testing"
	"time"

	"batchplant/internal/core/application/production"
	"batchplant/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterruptPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    production.InterruptPolicy
		wantErr bool
	}{
		{in: "drain", want: production.PolicyDrain},
		{in: " Cancel ", want: production.PolicyCancel},
		{in: "REQUEUE", want: production.PolicyRequeue},
		{in: "", wantErr: true},
		{in: "abort", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := production.ParseInterruptPolicy(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrValueIsInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, production.DefaultConfig().Validate())

	cfg := production.DefaultConfig()
	assert.Equal(t, 15, cfg.CapacityUnits)
	assert.Equal(t, 5*time.Second, cfg.DischargeDuration)
	assert.Equal(t, production.PolicyDrain, cfg.InterruptPolicy)
	assert.True(t, cfg.AutoLogRuns)

	bad := production.Config{InterruptPolicy: "later"}
	err := bad.Validate()
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	for _, param := range []string{"capacityUnits", "dischargeDuration", "interruptPolicy", "defaultMaxRows"} {
		assert.Contains(t, err.Error(), param)
	}
}

func TestNewController_RequiresDependencies(t *testing.T) {
	_, err := production.NewController(production.DefaultConfig(), production.Dependencies{})

	require.ErrorIs(t, err, errs.ErrValueIsRequired)
	assert.Contains(t, err.Error(), "unitOfWork")
	assert.Contains(t, err.Error(), "meter")
}
