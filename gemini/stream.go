package gemini

import (
	"fmt"
	"io"
	"iter"

	"google.golang.org/genai"

	"github.com/stewardhq/steward"
)

// stream implements [steward.Stream] by pulling from the genai SDK's
// streaming iterator. Close stops the iterator, which releases the
// underlying transport.
type stream struct {
	pull   func() (*genai.GenerateContentResponse, error, bool)
	stop   func()
	done   bool
	closed bool
	err    error // terminal error, if any
}

// Interface compliance check.
var _ steward.Stream = (*stream)(nil)

// NewStreamFromIter adapts a genai streaming iterator to a [steward.Stream].
func NewStreamFromIter(iterFn iter.Seq2[*genai.GenerateContentResponse, error]) steward.Stream {
	next, stop := iter.Pull2(iterFn)
	return &stream{pull: next, stop: stop}
}

// Next returns the next text chunk, or io.EOF when the iterator is exhausted.
func (s *stream) Next() (string, error) {
	if s.closed {
		return "", fmt.Errorf("gemini: %w", steward.ErrStreamClosed)
	}
	if s.done {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}

	for {
		resp, err, ok := s.pull()
		if !ok {
			s.done = true
			return "", io.EOF
		}
		if err != nil {
			s.done = true
			s.err = fmt.Errorf("gemini: %w", err)
			return "", s.err
		}
		if text := resp.Text(); text != "" {
			return text, nil
		}
		// Chunk without text (safety metadata, usage) - keep pulling.
	}
}

// Close stops the underlying iterator.
func (s *stream) Close() error {
	s.closed = true
	s.stop()
	return nil
}
