package event

import "testing"

func TestParseKindKnownAndUnknown(t *testing.T) {
	cases := map[string]Kind{
		"user-message":            KindUserMessage,
		"assistant-turn-start":    KindAssistantTurnStart,
		"assistant-turn-end":      KindAssistantTurnEnd,
		"assistant-message":       KindAssistantMessage,
		"tool-execution-start":    KindToolExecStart,
		"tool-execution-complete": KindToolExecComplete,
		"abort":                   KindAbort,
		"session-start":           KindSessionStart,
		"something-nobody-wrote":  KindUnknown,
		"":                        KindUnknown,
	}
	for in, want := range cases {
		if got := ParseKind(in); got != want {
			t.Errorf("ParseKind(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestAccessorsNilSafeOnEmptyEvent(t *testing.T) {
	var e Event
	if e.HasTimestamp() {
		t.Fatal("zero-value event must not have a timestamp")
	}
	if e.ToolCallID() != "" || e.ToolName() != "" || e.Content() != "" || e.TurnID() != "" {
		t.Fatalf("got %+v", e)
	}
	if e.ToolRequests() != nil {
		t.Fatalf("got %+v", e.ToolRequests())
	}
}

func TestAccessorsReadPayload(t *testing.T) {
	e := Event{
		Kind: KindAssistantMessage,
		Payload: &Payload{
			TurnID:       "t1",
			Content:      "hello",
			ToolCallID:   "c1",
			ToolName:     "bash",
			ToolRequests: []ToolRequest{{ID: "c1", Name: "bash"}},
		},
	}
	if e.TurnID() != "t1" || e.Content() != "hello" || e.ToolCallID() != "c1" || e.ToolName() != "bash" {
		t.Fatalf("got %+v", e)
	}
	if len(e.ToolRequests()) != 1 {
		t.Fatalf("got %+v", e.ToolRequests())
	}
}
