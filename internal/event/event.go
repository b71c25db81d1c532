// Package event defines the immutable Event record that flows out of the
// LogParser and into the StatusAnalyzer.
package event

import "time"

// Kind identifies what an Event represents. Unrecognized values on the wire
// decode to KindUnknown rather than failing — the domain rules in
// statusanalyzer tolerate events they don't understand.
type Kind string

const (
	KindUserMessage        Kind = "user-message"
	KindAssistantTurnStart Kind = "assistant-turn-start"
	KindAssistantTurnEnd   Kind = "assistant-turn-end"
	KindAssistantMessage   Kind = "assistant-message"
	KindToolExecStart      Kind = "tool-execution-start"
	KindToolExecComplete   Kind = "tool-execution-complete"
	KindAbort              Kind = "abort"
	KindSessionStart       Kind = "session-start"
	KindUnknown            Kind = "unknown"
)

// knownKinds maps the wire vocabulary to Kind. Anything absent decodes to
// KindUnknown — see LogParser field decoding rules.
var knownKinds = map[string]Kind{
	"user-message":            KindUserMessage,
	"assistant-turn-start":    KindAssistantTurnStart,
	"assistant-turn-end":      KindAssistantTurnEnd,
	"assistant-message":       KindAssistantMessage,
	"tool-execution-start":    KindToolExecStart,
	"tool-execution-complete": KindToolExecComplete,
	"abort":                   KindAbort,
	"session-start":           KindSessionStart,
}

// ParseKind maps a wire string to a Kind, defaulting to KindUnknown for
// anything not in the recognized vocabulary.
func ParseKind(s string) Kind {
	if k, ok := knownKinds[s]; ok {
		return k
	}
	return KindUnknown
}

// ToolRequest is an assistant-issued tool call reference. Only presence and
// emptiness of its fields matter to the analyzer — it never inspects Status
// beyond that.
type ToolRequest struct {
	ID     string
	Name   string
	Status string
}

// Payload holds the recognized, all-optional substructure of an Event. Unknown
// JSON fields are ignored by the decoder that builds this.
type Payload struct {
	TurnID       string
	Content      string
	ToolRequests []ToolRequest
	ToolCallID   string
	ToolName     string
}

// Event is an immutable record decoded from one line of a conversation's
// event log. It is never mutated after construction.
type Event struct {
	Kind      Kind
	Timestamp *time.Time // nil means absent; absence is legal
	Payload   *Payload   // nil means no recognized payload fields were present
}

// HasTimestamp reports whether Timestamp is present.
func (e Event) HasTimestamp() bool { return e.Timestamp != nil }

// ToolCallID returns the event's payload tool-call-id, if any.
func (e Event) ToolCallID() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.ToolCallID
}

// ToolName returns the event's tool-name, if any.
func (e Event) ToolName() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.ToolName
}

// Content returns the event's payload content, if any.
func (e Event) Content() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Content
}

// ToolRequests returns the event's tool requests, treating a nil payload or
// nil list as empty (LogParser contract: absence is equivalent to empty).
func (e Event) ToolRequests() []ToolRequest {
	if e.Payload == nil {
		return nil
	}
	return e.Payload.ToolRequests
}

// TurnID returns the event's payload turn-id, if any.
func (e Event) TurnID() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.TurnID
}
