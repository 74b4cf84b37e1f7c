package mock

import (
	"io"

	"github.com/stewardhq/steward"
)

// Interface compliance check.
var _ steward.Stream = (*Stream)(nil)

// Stream is a test double for steward.Stream. Chunks are returned one per
// Next call, then io.EOF (or Err, when set). CloseFn is nil-safe because
// test code commonly calls defer stream.Close().
type Stream struct {
	Chunks  []string
	Err     error // returned after Chunks are exhausted instead of io.EOF
	CloseFn func() error

	pos    int
	closed bool
}

// Next returns the next configured chunk.
func (s *Stream) Next() (string, error) {
	if s.closed {
		return "", steward.ErrStreamClosed
	}
	if s.pos >= len(s.Chunks) {
		if s.Err != nil {
			return "", s.Err
		}
		return "", io.EOF
	}
	chunk := s.Chunks[s.pos]
	s.pos++
	return chunk, nil
}

// Close marks the stream closed and delegates to CloseFn when set.
func (s *Stream) Close() error {
	s.closed = true
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}
