// Package logparser converts a conversation's newline-delimited JSON event
// log into an ordered sequence of event.Event values, tolerating partial and
// malformed lines the way a concurrently-appended log requires.
package logparser

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nrobbins/attnwatch/internal/event"
)

// maxLineSize bounds a single JSONL line, mirroring the teacher's
// bufio.Scanner buffer sizing in claudecode/adapter.go.
const maxLineSize = 10 * 1024 * 1024

// Parse decodes a text blob into an ordered list of Events. Lines that fail
// to decode as a JSON object are skipped silently — per §4.2, a partial
// trailing line from a concurrently-writing process is normal and must never
// poison the stream.
func Parse(data []byte) []event.Event {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil
	}

	var events []event.Event
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ev, ok := decodeLine(line)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events
}

// ParseFile reads the entire file at path as UTF-8 and delegates to Parse.
// Only I/O failures propagate; per-line decode errors are swallowed by Parse.
func ParseFile(path string) ([]event.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event log: %w", err)
	}
	return Parse(data), nil
}

// LooksLikeLineDelimitedJSON reports whether at least one line of data parses
// as valid JSON (any JSON value, not only an object). Used by callers deciding how to treat an
// unfamiliar file before committing to a full parse.
func LooksLikeLineDelimitedJSON(data []byte) bool {
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var v json.RawMessage
		if err := json.Unmarshal([]byte(line), &v); err == nil {
			return true
		}
	}
	return false
}

// decodeLine decodes one JSONL line into an Event. ok is false if the line
// should be skipped (malformed JSON).
func decodeLine(line string) (event.Event, bool) {
	var raw rawEvent
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return event.Event{}, false
	}

	ev := event.Event{Kind: event.ParseKind(raw.Type)}
	if raw.Timestamp.valid {
		t := raw.Timestamp.t
		ev.Timestamp = &t
	}

	payload := buildPayload(raw.Data)
	if payload != nil {
		ev.Payload = payload
	}
	return ev, true
}

func buildPayload(data rawPayload) *event.Payload {
	if data.TurnID == "" && data.Content == "" && len(data.ToolRequests) == 0 &&
		data.ToolCallID == "" && data.ToolName == "" {
		return nil
	}

	p := &event.Payload{
		TurnID:     data.TurnID,
		Content:    data.Content,
		ToolCallID: data.ToolCallID,
		ToolName:   data.ToolName,
	}
	if len(data.ToolRequests) > 0 {
		p.ToolRequests = make([]event.ToolRequest, 0, len(data.ToolRequests))
		for _, tr := range data.ToolRequests {
			p.ToolRequests = append(p.ToolRequests, event.ToolRequest{
				ID:     tr.callID(),
				Name:   tr.toolName(),
				Status: tr.Status,
			})
		}
	}
	return p
}
