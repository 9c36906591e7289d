package production

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"batchplant/internal/core/domain/services"
	"batchplant/internal/pkg/errs"
)

// InterruptPolicy decides what pause and stop do with an outstanding discharge.
type InterruptPolicy string

const (
	// PolicyDrain lets the discharge finish; the row completes normally.
	PolicyDrain InterruptPolicy = "drain"
	// PolicyCancel stops the timer and leaves the row running until it is
	// marked done by the operator.
	PolicyCancel InterruptPolicy = "cancel"
	// PolicyRequeue stops the timer and returns the row to pending.
	PolicyRequeue InterruptPolicy = "requeue"
)

// ParseInterruptPolicy accepts drain, cancel and requeue in any case.
func ParseInterruptPolicy(s string) (InterruptPolicy, error) {
	p := InterruptPolicy(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PolicyDrain, PolicyCancel, PolicyRequeue:
		return p, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("interruptPolicy", fmt.Errorf("unknown policy %q", s))
	}
}

// Config holds the controller settings.
type Config struct {
	CapacityUnits     int
	DischargeDuration time.Duration
	InterruptPolicy   InterruptPolicy
	AutoLogRuns       bool
	DefaultMaxRows    int
}

// DefaultConfig matches the plant's standard operation: 15-row trucks, a
// five second discharge and runs logged as soon as a batch is done.
func DefaultConfig() Config {
	return Config{
		CapacityUnits:     services.DefaultCapacityUnits,
		DischargeDuration: 5 * time.Second,
		InterruptPolicy:   PolicyDrain,
		AutoLogRuns:       true,
		DefaultMaxRows:    1000,
	}
}

func (c Config) Validate() error {
	var errList []error
	if c.CapacityUnits <= 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("capacityUnits",
			fmt.Errorf("%d is not positive", c.CapacityUnits)))
	}
	if c.DischargeDuration <= 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("dischargeDuration",
			fmt.Errorf("%s is not positive", c.DischargeDuration)))
	}
	if _, err := ParseInterruptPolicy(string(c.InterruptPolicy)); err != nil {
		errList = append(errList, err)
	}
	if c.DefaultMaxRows <= 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("defaultMaxRows",
			fmt.Errorf("%d is not positive", c.DefaultMaxRows)))
	}
	return errors.Join(errList...)
}
