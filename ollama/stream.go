package ollama

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/stewardhq/steward"
)

// stream implements [steward.Stream] over newline-delimited JSON objects.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
	closed  bool
	err     error // terminal error, if any
}

// Interface compliance check.
var _ steward.Stream = (*stream)(nil)

func newStream(body io.ReadCloser) *stream {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &stream{body: body, scanner: sc}
}

// Next returns the next text chunk, or io.EOF once an object with done=true
// has been consumed.
func (s *stream) Next() (string, error) {
	if s.closed {
		return "", fmt.Errorf("%s: %w", providerName, steward.ErrStreamClosed)
	}
	if s.done {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}

		var obj apiResponse
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			s.done = true
			s.err = fmt.Errorf("%s: malformed stream object: %w", providerName, err)
			return "", s.err
		}
		if obj.Done {
			s.done = true
			// The final object may still carry a trailing chunk.
			if obj.Message.Content != "" {
				return obj.Message.Content, nil
			}
			return "", io.EOF
		}
		if obj.Message.Content != "" {
			return obj.Message.Content, nil
		}
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		s.err = fmt.Errorf("%s: %w", providerName, err)
		return "", s.err
	}
	// Stream ended without a done marker.
	s.err = fmt.Errorf("%s: unexpected end of stream", providerName)
	return "", s.err
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	s.closed = true
	return s.body.Close()
}
