// event.go defines the lifecycle events dispatched for instrumented runs.

package agentssdk

import "time"

// EventKind identifies the lifecycle point an Event describes.
type EventKind string

const (
	EventRunStart   EventKind = "run_start"
	EventRunEnd     EventKind = "run_end"
	EventAgentStart EventKind = "agent_start"
	EventAgentEnd   EventKind = "agent_end"
	EventHandoff    EventKind = "handoff"
	EventToolStart  EventKind = "tool_start"
	EventToolEnd    EventKind = "tool_end"
	EventLLMStart   EventKind = "llm_start"
	EventLLMEnd     EventKind = "llm_end"
)

// Event is one lifecycle point of an agent run. Only the fields relevant to
// Kind are set. Prompt, message and tool output text are never copied.
type Event struct {
	Kind      EventKind
	Timestamp time.Time

	// RunID is set when the run was started through a WrappedRunner.
	RunID string

	// AgentName is the agent the event belongs to. For handoffs it is the
	// agent handing off.
	AgentName string

	// ToAgent is the handoff target.
	ToAgent string

	ToolName   string
	ToolCallID string

	// OutputLength is the length of the tool output in bytes.
	OutputLength int

	Model        string
	Provider     string
	FinishReason string
	TotalTokens  int

	// Err is the run error on EventRunEnd; a *eventsink.PanicError if the
	// run panicked.
	Err error

	// ErrClass is Classify(Err) on a failed EventRunEnd.
	ErrClass ErrClass
}
