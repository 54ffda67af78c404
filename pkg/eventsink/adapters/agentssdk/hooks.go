// hooks.go implements agents.RunHooks on top of an eventsink.Sink.

package agentssdk

import (
	"context"
	"time"

	"github.com/strongdm/ai-agents-sdk/pkg/agents"
	llmsdk "github.com/strongdm/ai-llm-sdk/pkg/llm"

	"github.com/strongdm/ai-eventsink/pkg/eventsink"
)

// HookAdapter dispatches an Event for every run hook, then delegates to an
// inner RunHooks. Listener failures go to the sink's error handlers and
// never fail the run; only errors from the inner hooks are returned.
type HookAdapter struct {
	sink  *eventsink.Sink[Event]
	inner agents.RunHooks
	now   func() time.Time
}

// NewHookAdapter wraps inner (which may be nil) so that every hook is also
// dispatched to sink.
func NewHookAdapter(sink *eventsink.Sink[Event], inner agents.RunHooks) *HookAdapter {
	return &HookAdapter{
		sink:  sink,
		inner: inner,
		now:   time.Now,
	}
}

func (h *HookAdapter) dispatch(ctx context.Context, event Event) {
	event.Timestamp = h.now()
	if runID, ok := RunIDFromContext(ctx); ok {
		event.RunID = runID
	}
	h.sink.Dispatch(ctx, event)
}

// OnAgentStart dispatches EventAgentStart.
func (h *HookAdapter) OnAgentStart(ctx context.Context, runCtx *agents.AgentHookContext, agent *agents.Agent) error {
	h.dispatch(ctx, Event{Kind: EventAgentStart, AgentName: agentName(agent)})
	if h.inner != nil {
		return h.inner.OnAgentStart(ctx, runCtx, agent)
	}
	return nil
}

// OnAgentEnd dispatches EventAgentEnd.
func (h *HookAdapter) OnAgentEnd(ctx context.Context, runCtx *agents.AgentHookContext, agent *agents.Agent, result agents.RunResult) error {
	h.dispatch(ctx, Event{Kind: EventAgentEnd, AgentName: agentName(agent)})
	if h.inner != nil {
		return h.inner.OnAgentEnd(ctx, runCtx, agent, result)
	}
	return nil
}

// OnHandoff dispatches EventHandoff.
func (h *HookAdapter) OnHandoff(ctx context.Context, runCtx *agents.RunContext, from *agents.Agent, to *agents.Agent) error {
	h.dispatch(ctx, Event{Kind: EventHandoff, AgentName: agentName(from), ToAgent: agentName(to)})
	if h.inner != nil {
		return h.inner.OnHandoff(ctx, runCtx, from, to)
	}
	return nil
}

// OnToolStart dispatches EventToolStart.
func (h *HookAdapter) OnToolStart(ctx context.Context, runCtx *agents.RunContext, agent *agents.Agent, tool agents.Tool, call llmsdk.ToolCall) error {
	h.dispatch(ctx, Event{
		Kind:       EventToolStart,
		AgentName:  agentName(agent),
		ToolName:   tool.Name,
		ToolCallID: call.ID,
	})
	if h.inner != nil {
		return h.inner.OnToolStart(ctx, runCtx, agent, tool, call)
	}
	return nil
}

// OnToolEnd dispatches EventToolEnd with the output length only.
func (h *HookAdapter) OnToolEnd(ctx context.Context, runCtx *agents.RunContext, agent *agents.Agent, tool agents.Tool, output string) error {
	h.dispatch(ctx, Event{
		Kind:         EventToolEnd,
		AgentName:    agentName(agent),
		ToolName:     tool.Name,
		OutputLength: len(output),
	})
	if h.inner != nil {
		return h.inner.OnToolEnd(ctx, runCtx, agent, tool, output)
	}
	return nil
}

// OnLLMStart dispatches EventLLMStart.
func (h *HookAdapter) OnLLMStart(ctx context.Context, runCtx *agents.RunContext, agent *agents.Agent, req llmsdk.Request) error {
	h.dispatch(ctx, Event{
		Kind:      EventLLMStart,
		AgentName: agentName(agent),
		Model:     req.Model,
		Provider:  string(req.Provider),
	})
	if h.inner != nil {
		return h.inner.OnLLMStart(ctx, runCtx, agent, req)
	}
	return nil
}

// OnLLMEnd dispatches EventLLMEnd.
func (h *HookAdapter) OnLLMEnd(ctx context.Context, runCtx *agents.RunContext, agent *agents.Agent, resp llmsdk.Response) error {
	h.dispatch(ctx, Event{
		Kind:         EventLLMEnd,
		AgentName:    agentName(agent),
		Model:        resp.Model,
		FinishReason: string(resp.FinishReason),
		TotalTokens:  resp.Usage.TotalTokens,
	})
	if h.inner != nil {
		return h.inner.OnLLMEnd(ctx, runCtx, agent, resp)
	}
	return nil
}

func agentName(agent *agents.Agent) string {
	if agent == nil {
		return ""
	}
	return agent.Name()
}
