// Package mock provides test doubles for steward interfaces using function
// fields.
package mock

import (
	"context"

	"github.com/stewardhq/steward"
)

// Interface compliance check.
var _ steward.Provider = (*Provider)(nil)

// Provider is a test double for steward.Provider.
// Set the function fields for the methods you need; unset methods panic to
// catch missing setup.
type Provider struct {
	ChatFn   func(ctx context.Context, req steward.Request) (string, error)
	StreamFn func(ctx context.Context, req steward.Request) (steward.Stream, error)
}

// Chat delegates to ChatFn.
func (p *Provider) Chat(ctx context.Context, req steward.Request) (string, error) {
	return p.ChatFn(ctx, req)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req steward.Request) (steward.Stream, error) {
	return p.StreamFn(ctx, req)
}
