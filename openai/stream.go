package openai

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/stewardhq/steward"
)

// stream implements [steward.Stream] over "data:" SSE frames.
type stream struct {
	name    string
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
	closed  bool
	err     error // terminal error, if any
}

// Interface compliance check.
var _ steward.Stream = (*stream)(nil)

func newStream(name string, body io.ReadCloser) *stream {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &stream{name: name, body: body, scanner: sc}
}

// Next returns the next text chunk, or io.EOF after the [DONE] sentinel.
func (s *stream) Next() (string, error) {
	if s.closed {
		return "", fmt.Errorf("%s: %w", s.name, steward.ErrStreamClosed)
	}
	if s.done {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			s.done = true
			return "", io.EOF
		}

		var chunk apiChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			s.done = true
			s.err = fmt.Errorf("%s: malformed stream frame: %w", s.name, err)
			return "", s.err
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
		// Empty delta (role frame, finish frame) - keep reading.
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		s.err = fmt.Errorf("%s: %w", s.name, err)
		return "", s.err
	}
	// Stream ended without the sentinel.
	s.err = fmt.Errorf("%s: unexpected end of stream", s.name)
	return "", s.err
}

// Close releases the underlying HTTP response body.
func (s *stream) Close() error {
	s.closed = true
	return s.body.Close()
}
