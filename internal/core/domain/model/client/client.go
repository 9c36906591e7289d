// Package client models the customers that place production orders.
package client

import (
	"errors"
	"strings"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/pkg/errs"
	"batchplant/internal/pkg/guard"
)

var ErrClientIsNotConstructed = errors.New("Client must be created via NewClient constructor")

// Client is read-only master data.
type Client struct {
	id   kernel.UUID
	name string

	guard guard.ConstructorGuard
}

func NewClient(id kernel.UUID, name string) (*Client, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.NewValueIsRequiredError("name")
	}
	return &Client{id: id, name: name, guard: guard.NewConstructorGuard()}, nil
}

func (c *Client) Validate() error {
	if c == nil {
		return ErrClientIsNotConstructed
	}
	return c.guard.Validate(ErrClientIsNotConstructed)
}

func (c *Client) ID() kernel.UUID { return c.id }

func (c *Client) Name() string { return c.name }
