package client_test

import (
	"testing"

	"batchplant/internal/core/domain/model/client"
	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	c, err := client.NewClient(kernel.NewUUID(), "ABC Builders")
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, "ABC Builders", c.Name())

	_, err = client.NewClient(kernel.NewUUID(), " ")
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	var zero kernel.UUID
	_, err = client.NewClient(zero, "ABC Builders")
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)

	require.ErrorIs(t, (&client.Client{}).Validate(), client.ErrClientIsNotConstructed)
}
