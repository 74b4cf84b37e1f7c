// Package steward holds the domain types and contracts for the Steward
// product-management assistant core: the multi-provider chat abstraction,
// the tool catalog types, and the proposal/approval pipeline records.
package steward

import "context"

// Provider is a strategy pattern interface for LLM backends. Implementations
// hide the per-provider request envelope, authentication scheme, response
// nesting, and streaming framing behind this one contract.
type Provider interface {
	// Chat sends a non-streaming request and returns the generated text.
	// A syntactically valid response containing no usable text returns an
	// error wrapping ErrEmptyResponse (a provider fault, not a parse fault).
	Chat(ctx context.Context, req Request) (string, error)

	// Stream sends a streaming request and returns a Stream of text chunks.
	Stream(ctx context.Context, req Request) (Stream, error)
}

// Stream is a pull-based, single-pass sequence of text chunks. It is not
// restartable. Next returns io.EOF when the stream completes normally.
// Cancellation flows through the context passed to Provider.Stream.
//
// Consumers must either drain the stream or call Close; otherwise the
// underlying HTTP connection leaks. Close is safe to call after a terminal
// Next and safe to call more than once.
type Stream interface {
	Next() (string, error)
	Close() error
}
