package anthropic

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/stewardhq/steward"
)

// stream implements [steward.Stream] by parsing SSE events from an HTTP
// response body. Only text deltas are surfaced; other event types advance
// the stream silently.
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

// Next returns the next text delta. Returns io.EOF after message_stop.
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

	for {
		eventType, data, err := s.readSSEEvent()
		if err != nil {
			s.done = true
			if err != io.EOF {
				s.err = err
				return "", s.err
			}
			// Raw EOF without message_stop: the stream ended unexpectedly.
			s.err = fmt.Errorf("%s: unexpected end of stream", providerName)
			return "", s.err
		}

		switch eventType {
		case "content_block_delta":
			var evt sseContentBlockDelta
			if err := json.Unmarshal([]byte(data), &evt); err != nil {
				s.done = true
				s.err = fmt.Errorf("%s: failed to parse content_block_delta: %w", providerName, err)
				return "", s.err
			}
			if evt.Delta.Type == "text_delta" && evt.Delta.Text != "" {
				return evt.Delta.Text, nil
			}
		case "message_stop":
			s.done = true
			return "", io.EOF
		case "error":
			var evt sseError
			if err := json.Unmarshal([]byte(data), &evt); err != nil {
				s.err = fmt.Errorf("%s: failed to parse error event: %w", providerName, err)
			} else {
				s.err = fmt.Errorf("%s: %s: %s", providerName, evt.Error.Type, evt.Error.Message)
			}
			s.done = true
			return "", s.err
		default:
			// ping, message_start, content_block_start/stop, message_delta,
			// and unknown event types carry no text - keep reading.
		}
	}
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	s.closed = true
	return s.body.Close()
}

// readSSEEvent reads lines until a complete SSE event is assembled.
// Returns the event type and the data payload.
func (s *stream) readSSEEvent() (string, string, error) {
	var eventType string
	var dataBuf strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			// Empty line signals end of event.
			if dataBuf.Len() > 0 {
				return eventType, dataBuf.String(), nil
			}
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			eventType = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimPrefix(line, "data: "))
		}
		// Ignore comments (lines starting with ':') and unknown fields.
	}

	if err := s.scanner.Err(); err != nil {
		return "", "", fmt.Errorf("%s: %w", providerName, err)
	}

	// Scanner exhausted without error = EOF.
	if dataBuf.Len() > 0 {
		return eventType, dataBuf.String(), nil
	}
	return "", "", io.EOF
}
