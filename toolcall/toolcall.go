// Package toolcall extracts structured call requests embedded in raw model
// output. The wire format is a fenced block:
//
//	```tool_call
//	{ "tool": "<name>", "args": { ... }, "reason": "<short text>" }
//	```
//
// Parse is pure and idempotent: parsing the cleaned text again yields zero
// further calls.
package toolcall

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/stewardhq/steward"
)

// Marker opens a tool-call block in model output.
const Marker = "```tool_call"

// Result holds the display text with all blocks stripped, and the calls
// extracted from well-formed blocks, in order of appearance.
type Result struct {
	Clean string
	Calls []steward.ToolCall
}

// Three or more blank lines (four or more newlines) collapse to one blank
// line; shorter runs pass through untouched.
var blankRuns = regexp.MustCompile(`\n{4,}`)

// Parse scans raw model output for tool-call blocks. Every block is stripped
// from the clean text; a block whose body is not a JSON object with a string
// "tool" field contributes no call but is stripped regardless, so malformed
// output never leaks block syntax to the user and never aborts the remaining
// blocks.
func Parse(raw string) Result {
	var calls []steward.ToolCall
	var sb strings.Builder

	rest := raw
	for {
		idx := strings.Index(rest, Marker)
		if idx < 0 {
			sb.WriteString(rest)
			break
		}
		sb.WriteString(rest[:idx])

		after := rest[idx+len(Marker):]
		nl := strings.IndexByte(after, '\n')
		if nl < 0 {
			// Marker at end of input with no body: strip it.
			break
		}

		body := after[nl+1:]
		end := strings.Index(body, "```")
		if end < 0 {
			// Unterminated block (model ran out of tokens mid-call):
			// strip to end of input, no call.
			break
		}

		if call, ok := parseBody(body[:end]); ok {
			calls = append(calls, call)
		}

		rest = body[end+3:]
		// Consume the newline that followed the closing fence so the
		// surrounding prose joins cleanly.
		rest = strings.TrimPrefix(rest, "\r\n")
		rest = strings.TrimPrefix(rest, "\n")
	}

	clean := blankRuns.ReplaceAllString(sb.String(), "\n\n")
	return Result{
		Clean: strings.TrimSpace(clean),
		Calls: calls,
	}
}

func parseBody(body string) (steward.ToolCall, bool) {
	var call steward.ToolCall
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &call); err != nil {
		return steward.ToolCall{}, false
	}
	if call.Tool == "" {
		return steward.ToolCall{}, false
	}
	return call, true
}
