package statusanalyzer

import (
	"strings"
	"testing"
	"time"

	"github.com/nrobbins/attnwatch/internal/event"
)

func ts(sec int) *time.Time {
	t := time.Unix(int64(sec), 0).UTC()
	return &t
}

func userMsg(timestamp *time.Time) event.Event {
	return event.Event{Kind: event.KindUserMessage, Timestamp: timestamp}
}

func turnStart(turnID string, timestamp *time.Time) event.Event {
	p := &event.Payload{TurnID: turnID}
	return event.Event{Kind: event.KindAssistantTurnStart, Payload: p, Timestamp: timestamp}
}

func turnEnd(timestamp *time.Time) event.Event {
	return event.Event{Kind: event.KindAssistantTurnEnd, Timestamp: timestamp}
}

func assistantMsg(content string, toolReqs []event.ToolRequest, timestamp *time.Time) event.Event {
	return event.Event{
		Kind:      event.KindAssistantMessage,
		Payload:   &event.Payload{Content: content, ToolRequests: toolReqs},
		Timestamp: timestamp,
	}
}

func toolStart(callID, name string, timestamp *time.Time) event.Event {
	return event.Event{
		Kind:      event.KindToolExecStart,
		Payload:   &event.Payload{ToolCallID: callID, ToolName: name},
		Timestamp: timestamp,
	}
}

func toolComplete(callID string, timestamp *time.Time) event.Event {
	return event.Event{
		Kind:      event.KindToolExecComplete,
		Payload:   &event.Payload{ToolCallID: callID},
		Timestamp: timestamp,
	}
}

func sessionStart(timestamp *time.Time) event.Event {
	return event.Event{Kind: event.KindSessionStart, Timestamp: timestamp}
}

func abort(timestamp *time.Time) event.Event {
	return event.Event{Kind: event.KindAbort, Timestamp: timestamp}
}

func TestEmpty(t *testing.T) {
	st := Analyze(nil)
	if st.Code != CodeEmpty || st.Reason != "No events" {
		t.Fatalf("got %+v", st)
	}
}

func TestSessionStartAloneIsNotEmptyAfterScoping(t *testing.T) {
	events := []event.Event{sessionStart(ts(1))}
	st := Analyze(events)
	// Scoping keeps the last session-start itself, so it never empties a
	// non-empty list: a session-start with nothing after it falls into the
	// unknown turn-classification branch, not the empty one.
	if st.Code == CodeEmpty {
		t.Fatalf("session-start alone should not be empty, got %+v", st)
	}
}

func TestLoneTurnEndIsReady(t *testing.T) {
	st := Analyze([]event.Event{turnEnd(ts(1))})
	if st.Code != CodeReady {
		t.Fatalf("got %+v, want ready", st)
	}
}

func TestLoneUserMessageIsUserWaiting(t *testing.T) {
	st := Analyze([]event.Event{userMsg(ts(1))})
	if st.Code != CodeUserWaiting {
		t.Fatalf("got %+v, want user-waiting", st)
	}
}

func TestTurnEndWithToolRequestsIsReadyNotWaiting(t *testing.T) {
	events := []event.Event{
		userMsg(ts(1)),
		turnStart("t1", ts(2)),
		assistantMsg("", []event.ToolRequest{{Name: "bash"}}, ts(3)),
		turnEnd(ts(4)),
	}
	st := Analyze(events)
	if st.Code != CodeReady {
		t.Fatalf("got %+v, want ready", st)
	}
}

// Scenario 1: waiting for user after completed turn.
func TestScenarioWaitingForUser(t *testing.T) {
	events := []event.Event{
		userMsg(ts(1)),
		turnStart("", ts(2)),
		assistantMsg("I've completed the task.", nil, ts(3)),
		turnEnd(ts(4)),
	}
	st := Analyze(events)
	if st.Code != CodeWaitingForUser {
		t.Fatalf("got %+v", st)
	}
	if st.Reason != "Agent completed turn, awaiting user response" {
		t.Fatalf("reason = %q", st.Reason)
	}
	if st.LastMessage != "I've completed the task." {
		t.Fatalf("lastMessage = %q", st.LastMessage)
	}
}

// Scenario 2: processing.
func TestScenarioProcessing(t *testing.T) {
	events := []event.Event{
		userMsg(ts(1)),
		turnStart("turn-123", ts(2)),
	}
	st := Analyze(events)
	if st.Code != CodeProcessing {
		t.Fatalf("got %+v", st)
	}
	if st.TurnID != "turn-123" {
		t.Fatalf("turnID = %q", st.TurnID)
	}
}

// Scenario 3: pending bash approval.
func TestScenarioPendingApproval(t *testing.T) {
	events := []event.Event{
		userMsg(ts(1)),
		turnStart("", ts(2)),
		assistantMsg("", []event.ToolRequest{{Name: "bash"}}, ts(3)),
		toolStart("call_1", "bash", ts(4)),
	}
	st := Analyze(events)
	if st.Code != CodeWaitingForApproval {
		t.Fatalf("got %+v", st)
	}
	if !strings.Contains(st.Reason, "bash") || !strings.Contains(st.Reason, "approval") {
		t.Fatalf("reason = %q", st.Reason)
	}
}

// Scenario 4: multi-session old abort ignored.
func TestScenarioMultiSessionOldAbortIgnored(t *testing.T) {
	events := []event.Event{
		sessionStart(ts(0)),
		userMsg(ts(1)),
		turnStart("", ts(2)),
		toolStart("old", "bash", ts(3)),
		abort(ts(4)),
		sessionStart(ts(5)),
		userMsg(ts(6)),
		turnStart("", ts(7)),
		assistantMsg("Build succeeded", nil, ts(8)),
		turnEnd(ts(9)),
	}
	st := Analyze(events)
	if st.Code != CodeWaitingForUser {
		t.Fatalf("got %+v", st)
	}
	if st.LastMessage != "Build succeeded" {
		t.Fatalf("lastMessage = %q", st.LastMessage)
	}
}

// Scenario 5: abort clears pending approval.
func TestScenarioAbortClearsPending(t *testing.T) {
	events := []event.Event{
		userMsg(ts(1)),
		turnStart("", ts(2)),
		toolStart("c1", "bash", ts(3)),
		abort(ts(4)),
	}
	st := Analyze(events)
	if st.Code == CodeWaitingForApproval {
		t.Fatalf("got waiting-for-approval, want anything else")
	}
}

func TestLastMessageTruncatedAt200(t *testing.T) {
	long := strings.Repeat("x", 300)
	events := []event.Event{
		userMsg(ts(1)),
		turnStart("", ts(2)),
		assistantMsg(long, nil, ts(3)),
		turnEnd(ts(4)),
	}
	st := Analyze(events)
	if len(st.LastMessage) != 200 {
		t.Fatalf("len = %d, want 200", len(st.LastMessage))
	}
}

func TestToolCompleteClearsApproval(t *testing.T) {
	events := []event.Event{
		userMsg(ts(1)),
		turnStart("", ts(2)),
		toolStart("c1", "bash", ts(3)),
		toolComplete("c1", ts(4)),
	}
	st := Analyze(events)
	if st.Code == CodeWaitingForApproval {
		t.Fatalf("completed tool should not be pending: %+v", st)
	}
}

func TestAttentionRequiredSet(t *testing.T) {
	if !CodeWaitingForUser.AttentionRequired() || !CodeWaitingForApproval.AttentionRequired() {
		t.Fatal("waiting codes must be attention-required")
	}
	for _, c := range []Code{CodeEmpty, CodeProcessing, CodeUserWaiting, CodeReady, CodeUnknown} {
		if c.AttentionRequired() {
			t.Fatalf("%s must not be attention-required", c)
		}
	}
}

func TestPurity(t *testing.T) {
	events := []event.Event{
		userMsg(ts(1)),
		turnStart("t", ts(2)),
		assistantMsg("hi", nil, ts(3)),
		turnEnd(ts(4)),
	}
	a := Analyze(events)
	b := Analyze(events)
	if a != b {
		t.Fatalf("same input produced different output: %+v vs %+v", a, b)
	}
}
