package agentssdk

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/strongdm/ai-agents-sdk/pkg/agents"
	llmsdk "github.com/strongdm/ai-llm-sdk/pkg/llm"

	"github.com/strongdm/ai-eventsink/pkg/eventsink"
)

// mockRunHooks implements agents.RunHooks for testing.
type mockRunHooks struct {
	toolStartCalled bool
	returnErr       error
}

func (m *mockRunHooks) OnAgentStart(ctx context.Context, runCtx *agents.AgentHookContext, agent *agents.Agent) error {
	return m.returnErr
}

func (m *mockRunHooks) OnAgentEnd(ctx context.Context, runCtx *agents.AgentHookContext, agent *agents.Agent, result agents.RunResult) error {
	return m.returnErr
}

func (m *mockRunHooks) OnHandoff(ctx context.Context, runCtx *agents.RunContext, from *agents.Agent, to *agents.Agent) error {
	return m.returnErr
}

func (m *mockRunHooks) OnToolStart(ctx context.Context, runCtx *agents.RunContext, agent *agents.Agent, tool agents.Tool, call llmsdk.ToolCall) error {
	m.toolStartCalled = true
	return m.returnErr
}

func (m *mockRunHooks) OnToolEnd(ctx context.Context, runCtx *agents.RunContext, agent *agents.Agent, tool agents.Tool, output string) error {
	return m.returnErr
}

func (m *mockRunHooks) OnLLMStart(ctx context.Context, runCtx *agents.RunContext, agent *agents.Agent, req llmsdk.Request) error {
	return m.returnErr
}

func (m *mockRunHooks) OnLLMEnd(ctx context.Context, runCtx *agents.RunContext, agent *agents.Agent, resp llmsdk.Response) error {
	return m.returnErr
}

// eventRecorder is a listener that keeps every event it receives.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) HandleEvent(ctx context.Context, event Event) eventsink.Completion {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) getEvents() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]Event, len(r.events))
	copy(result, r.events)
	return result
}

func (r *eventRecorder) kinds() []EventKind {
	var kinds []EventKind
	for _, e := range r.getEvents() {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func newRecordingSink() (*eventsink.Sink[Event], *eventRecorder) {
	sink := eventsink.New[Event](eventsink.WithLogErrors(false))
	rec := &eventRecorder{}
	sink.AddListener(rec)
	return sink, rec
}

func TestHookAdapter_ImplementsRunHooks(t *testing.T) {
	sink, _ := newRecordingSink()
	var _ agents.RunHooks = NewHookAdapter(sink, nil)
}

func TestHookAdapter_OnToolStart_DispatchesEvent(t *testing.T) {
	sink, rec := newRecordingSink()
	adapter := NewHookAdapter(sink, nil)

	ctx := WithRunID(context.Background(), "run-123")
	agent := agents.NewAgent(agents.AgentConfig{Name: "test-agent"})

	err := adapter.OnToolStart(ctx, nil, agent, agents.Tool{Name: "WebSearch"}, llmsdk.ToolCall{ID: "call-456"})
	if err != nil {
		t.Fatalf("OnToolStart returned error: %v", err)
	}

	events := rec.getEvents()
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Kind != EventToolStart {
		t.Errorf("Kind = %q, want %q", e.Kind, EventToolStart)
	}
	if e.RunID != "run-123" {
		t.Errorf("RunID = %q, want %q", e.RunID, "run-123")
	}
	if e.AgentName != "test-agent" || e.ToolName != "WebSearch" || e.ToolCallID != "call-456" {
		t.Errorf("unexpected event fields: %+v", e)
	}
	if e.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestHookAdapter_DispatchesEveryHook(t *testing.T) {
	sink, rec := newRecordingSink()
	adapter := NewHookAdapter(sink, nil)
	ctx := context.Background()
	from := agents.NewAgent(agents.AgentConfig{Name: "triage"})
	to := agents.NewAgent(agents.AgentConfig{Name: "billing"})
	tool := agents.Tool{Name: "Lookup"}
	var result agents.RunResult

	adapter.OnAgentStart(ctx, nil, from)
	adapter.OnLLMStart(ctx, nil, from, llmsdk.Request{Model: "gpt-4o"})
	adapter.OnLLMEnd(ctx, nil, from, llmsdk.Response{Model: "gpt-4o", FinishReason: llmsdk.FinishReasonToolCalls})
	adapter.OnToolStart(ctx, nil, from, tool, llmsdk.ToolCall{ID: "c1"})
	adapter.OnToolEnd(ctx, nil, from, tool, "four")
	adapter.OnHandoff(ctx, nil, from, to)
	adapter.OnAgentEnd(ctx, nil, to, result)

	want := []EventKind{
		EventAgentStart, EventLLMStart, EventLLMEnd,
		EventToolStart, EventToolEnd, EventHandoff, EventAgentEnd,
	}
	got := rec.kinds()
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kind %d = %q, want %q", i, got[i], want[i])
		}
	}

	events := rec.getEvents()
	if events[1].Model != "gpt-4o" {
		t.Errorf("LLM start Model = %q, want gpt-4o", events[1].Model)
	}
	if events[2].FinishReason != string(llmsdk.FinishReasonToolCalls) {
		t.Errorf("FinishReason = %q", events[2].FinishReason)
	}
	if events[4].OutputLength != 4 {
		t.Errorf("OutputLength = %d, want 4", events[4].OutputLength)
	}
	if events[5].AgentName != "triage" || events[5].ToAgent != "billing" {
		t.Errorf("handoff = %q -> %q", events[5].AgentName, events[5].ToAgent)
	}
	if events[0].RunID != "" {
		t.Errorf("RunID should be empty without a run context, got %q", events[0].RunID)
	}
}

func TestHookAdapter_DelegatesToInnerAndReturnsItsError(t *testing.T) {
	sink, rec := newRecordingSink()
	expectedErr := errors.New("inner hook error")
	inner := &mockRunHooks{returnErr: expectedErr}
	adapter := NewHookAdapter(sink, inner)

	agent := agents.NewAgent(agents.AgentConfig{Name: "agent"})
	err := adapter.OnToolStart(context.Background(), nil, agent, agents.Tool{Name: "Tool"}, llmsdk.ToolCall{})

	if !inner.toolStartCalled {
		t.Error("Inner hook OnToolStart was not called")
	}
	if !errors.Is(err, expectedErr) {
		t.Errorf("Expected inner error %v, got %v", expectedErr, err)
	}
	if len(rec.getEvents()) != 1 {
		t.Error("Event should be dispatched even when the inner hook fails")
	}
}

func TestHookAdapter_ListenerFailureDoesNotFailHook(t *testing.T) {
	sink, _ := newRecordingSink()
	var routed []error
	sink.AddErrorHandler(eventsink.NewErrorHandler(func(err error) {
		routed = append(routed, err)
	}))
	sink.AddListener(eventsink.NewListener(func(ctx context.Context, e Event) error {
		panic("listener bug")
	}))
	adapter := NewHookAdapter(sink, nil)

	err := adapter.OnAgentStart(context.Background(), nil, nil)
	if err != nil {
		t.Errorf("OnAgentStart returned error: %v", err)
	}
	if len(routed) != 1 {
		t.Errorf("Expected listener panic to be routed once, got %d", len(routed))
	}
}

func TestRunIDFromContext(t *testing.T) {
	if _, ok := RunIDFromContext(context.Background()); ok {
		t.Error("RunIDFromContext should report false when unset")
	}
	if _, ok := RunIDFromContext(WithRunID(context.Background(), "")); ok {
		t.Error("RunIDFromContext should report false for an empty ID")
	}
	if id, ok := RunIDFromContext(WithRunID(context.Background(), "run-1")); !ok || id != "run-1" {
		t.Errorf("RunIDFromContext = %q, %v", id, ok)
	}
}
