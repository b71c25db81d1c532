// Package statusanalyzer implements the pure domain rules that classify a
// conversation's current status from its event history: no I/O, no
// goroutines, same input always yields the same output.
package statusanalyzer

import (
	"fmt"
	"time"

	"github.com/nrobbins/attnwatch/internal/event"
)

// Code is the tagged status value a Status carries — exactly one per Status.
type Code string

const (
	CodeEmpty              Code = "empty"
	CodeProcessing         Code = "processing"
	CodeWaitingForUser     Code = "waiting-for-user"
	CodeWaitingForApproval Code = "waiting-for-approval"
	CodeUserWaiting        Code = "user-waiting"
	CodeReady              Code = "ready"
	CodeUnknown            Code = "unknown"
)

// AttentionRequired reports whether code is one of the collectively
// attention-required codes (§3 invariant: all components agree on this
// set).
func (c Code) AttentionRequired() bool {
	return c == CodeWaitingForUser || c == CodeWaitingForApproval
}

// maxLastMessageLen is the truncation length for Status.LastMessage (§3, §8).
const maxLastMessageLen = 200

// Status is the analyzer's verdict for one conversation.
type Status struct {
	Code        Code
	Reason      string
	TurnID      string     // empty if not applicable
	LastMessage string     // empty if not applicable; length <= maxLastMessageLen
	Timestamp   *time.Time // nil if not applicable or absent on the source event
}

// Analyze is the pure Events → ConversationStatus function specified in
// §4.4. It never performs I/O and is safe to call concurrently on disjoint
// inputs — the kind of function the teacher's detectAgentSessionStatus
// family approximates with live file reads; here the event slice has
// already been pulled out of the filesystem by the caller.
func Analyze(events []event.Event) Status {
	if len(events) == 0 {
		return Status{Code: CodeEmpty, Reason: "No events"}
	}

	scoped := scopeToCurrentSession(events)
	if len(scoped) == 0 {
		return Status{Code: CodeEmpty, Reason: "No events in current session"}
	}

	if st, ok := analyzePendingApproval(scoped); ok {
		return st
	}

	return analyzeTurns(scoped)
}

// scopeToCurrentSession returns the subsequence starting at the most recent
// session-start event (inclusive), or the full list if no session-start
// exists (§4.4 Step 1, §GLOSSARY "Scoped events").
func scopeToCurrentSession(events []event.Event) []event.Event {
	lastStart := -1
	for i, ev := range events {
		if ev.Kind == event.KindSessionStart {
			lastStart = i
		}
	}
	if lastStart < 0 {
		return events
	}
	return events[lastStart:]
}

// analyzePendingApproval implements §4.4 Step 3. ok is false when an abort
// event anywhere in scoped means this step yields no verdict and the caller
// must fall through to turn-based classification.
func analyzePendingApproval(scoped []event.Event) (Status, bool) {
	started := make(map[string]int) // tool-call-id -> index of most recent start
	completed := make(map[string]bool)

	for i, ev := range scoped {
		switch ev.Kind {
		case event.KindAbort:
			return Status{}, false
		case event.KindToolExecStart:
			if id := ev.ToolCallID(); id != "" {
				started[id] = i
			}
		case event.KindToolExecComplete:
			if id := ev.ToolCallID(); id != "" {
				completed[id] = true
			}
		}
	}

	pending := make(map[string]bool)
	for id := range started {
		if !completed[id] {
			pending[id] = true
		}
	}
	if len(pending) == 0 {
		return Status{}, false
	}

	// Most recent tool-execution-start whose call-id is in pending.
	toolName := ""
	for i := len(scoped) - 1; i >= 0; i-- {
		ev := scoped[i]
		if ev.Kind != event.KindToolExecStart {
			continue
		}
		if id := ev.ToolCallID(); pending[id] {
			toolName = ev.ToolName()
			break
		}
	}

	reason := "Tool waiting for approval"
	if toolName != "" {
		reason = fmt.Sprintf("Tool '%s' waiting for approval", toolName)
	}

	return Status{
		Code:      CodeWaitingForApproval,
		Reason:    reason,
		Timestamp: lastTimestamp(scoped),
	}, true
}

// analyzeTurns implements §4.4 Step 4.
func analyzeTurns(scoped []event.Event) Status {
	u, e, s := -1, -1, -1
	for i, ev := range scoped {
		switch ev.Kind {
		case event.KindUserMessage:
			u = i
		case event.KindAssistantTurnEnd:
			e = i
		case event.KindAssistantTurnStart:
			s = i
		}
	}

	switch {
	case s > e:
		return Status{
			Code:   CodeProcessing,
			Reason: "Agent is processing",
			TurnID: scoped[s].TurnID(),
		}

	case e > u || (e >= 0 && u == -1):
		return classifyTurnEnd(scoped, e)

	case u > e:
		return Status{
			Code:      CodeUserWaiting,
			Reason:    "Waiting for agent to start processing",
			Timestamp: scoped[u].Timestamp,
		}

	default:
		return Status{Code: CodeUnknown, Reason: "Unable to determine state"}
	}
}

// classifyTurnEnd distinguishes waiting-for-user from ready by walking
// backward from the turn-end event until an assistant-message or an
// assistant-turn-start is reached.
func classifyTurnEnd(scoped []event.Event, turnEndIdx int) Status {
	for i := turnEndIdx - 1; i >= 0; i-- {
		ev := scoped[i]
		switch ev.Kind {
		case event.KindAssistantMessage:
			if len(ev.ToolRequests()) == 0 {
				return Status{
					Code:        CodeWaitingForUser,
					Reason:      "Agent completed turn, awaiting user response",
					LastMessage: truncate(ev.Content(), maxLastMessageLen),
					Timestamp:   lastTimestamp(scoped),
				}
			}
			return Status{
				Code:      CodeReady,
				Reason:    "Agent completed turn with pending tool requests",
				Timestamp: lastTimestamp(scoped),
			}
		case event.KindAssistantTurnStart:
			return Status{Code: CodeReady, Reason: "Turn ended with no reply", Timestamp: lastTimestamp(scoped)}
		}
	}
	return Status{Code: CodeReady, Reason: "Turn ended with no reply", Timestamp: lastTimestamp(scoped)}
}

func lastTimestamp(scoped []event.Event) *time.Time {
	if len(scoped) == 0 {
		return nil
	}
	return scoped[len(scoped)-1].Timestamp
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
