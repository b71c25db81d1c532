package logparser

import (
	"encoding/json"
	"time"
)

// rawEvent is the wire shape of one events.jsonl line, grounded on the
// teacher's RawMessage/MessageContent split (claudecode/types.go): a thin
// envelope plus a loosely-typed data blob.
type rawEvent struct {
	Type      string       `json:"type"`
	Timestamp rawTimestamp `json:"timestamp"`
	Data      rawPayload   `json:"data"`
}

// rawPayload mirrors §6's recognized data fields. ToolRequests accepts either
// id/name or toolCallId/toolName per entry (the wire format observed in the
// field is inconsistent about which alias a given event kind uses).
type rawPayload struct {
	TurnID       string           `json:"turnId"`
	Content      string           `json:"content"`
	ToolRequests []rawToolRequest `json:"toolRequests"`
	ToolCallID   string           `json:"toolCallId"`
	ToolName     string           `json:"toolName"`
}

type rawToolRequest struct {
	ToolCallID string `json:"toolCallId"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	ToolName   string `json:"toolName"`
	Status     string `json:"status"`
}

func (r rawToolRequest) callID() string {
	if r.ToolCallID != "" {
		return r.ToolCallID
	}
	return r.ID
}

func (r rawToolRequest) toolName() string {
	if r.ToolName != "" {
		return r.ToolName
	}
	return r.Name
}

// rawTimestamp decodes §4.2's three cases: ISO-8601 string, milliseconds
// numeric, or absent. Unparseable values become absent rather than an error —
// the LogParser never fails a whole line over a bad timestamp.
type rawTimestamp struct {
	t     time.Time
	valid bool
}

func (r *rawTimestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	// Attempt (a): ISO-8601 string first.
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			r.t, r.valid = t.UTC(), true
			return nil
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			r.t, r.valid = t.UTC(), true
			return nil
		}
		// Unparseable string: absent, not an error.
		return nil
	}

	// Attempt (b): milliseconds-since-epoch numeric.
	var ms float64
	if err := json.Unmarshal(b, &ms); err == nil {
		r.t = time.UnixMilli(int64(ms)).UTC()
		r.valid = true
		return nil
	}

	// Unrecognized shape: treat as absent, never an error.
	return nil
}
