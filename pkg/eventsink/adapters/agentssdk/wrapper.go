// wrapper.go wraps agents.Runner so each run is reported to an event sink.

package agentssdk

import (
	"context"
	"log"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/strongdm/ai-agents-sdk/pkg/agents"

	"github.com/strongdm/ai-eventsink/pkg/eventsink"
)

// WrapOption configures a WrappedRunner.
type WrapOption func(*WrappedRunner)

// WithLogger sets a logger for run IDs and failures. Nil disables logging.
func WithLogger(logger *log.Logger) WrapOption {
	return func(w *WrappedRunner) {
		w.logger = logger
	}
}

// WrappedRunner runs agents through an inner agents.Runner and dispatches
// lifecycle events for each run to an event sink.
type WrappedRunner struct {
	inner  *agents.Runner
	sink   *eventsink.Sink[Event]
	logger *log.Logger
}

// Instrument wraps runner so that every run dispatches EventRunStart, the
// hook events of the run, and EventRunEnd to sink.
//
//	events := eventsink.New[agentssdk.Event]()
//	events.AddListener(eventsink.NewAsyncListener(metrics.Observe))
//	runner := agentssdk.Instrument(agents.NewRunner(client), events)
//	result, err := runner.Run(ctx, agent, input, session, nil)
func Instrument(runner *agents.Runner, sink *eventsink.Sink[Event], opts ...WrapOption) *WrappedRunner {
	w := &WrappedRunner{
		inner: runner,
		sink:  sink,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run executes the agent with the given input and session.
func (w *WrappedRunner) Run(ctx context.Context, agent *agents.Agent, input string, session agents.Session, cfg *agents.RunConfig) (result agents.RunResult, err error) {
	ctx = w.start(ctx, agent)
	defer w.finish(ctx, agent, &err)

	return w.inner.Run(ctx, agent, input, session, w.wrapRunConfig(cfg))
}

// RunOnce executes a single turn of the agent.
func (w *WrappedRunner) RunOnce(ctx context.Context, agent *agents.Agent, input string, cfg *agents.RunConfig) (result agents.RunResult, err error) {
	ctx = w.start(ctx, agent)
	defer w.finish(ctx, agent, &err)

	return w.inner.RunOnce(ctx, agent, input, w.wrapRunConfig(cfg))
}

// RunStream starts a streaming run. EventRunEnd is dispatched when the
// stream has been started, not when it is drained.
func (w *WrappedRunner) RunStream(ctx context.Context, agent *agents.Agent, input string, session agents.Session, cfg *agents.RunConfig) (stream *agents.StreamingRun, err error) {
	ctx = w.start(ctx, agent)
	defer w.finish(ctx, agent, &err)

	return w.inner.RunStream(ctx, agent, input, session, w.wrapRunConfig(cfg))
}

// start tags ctx with a run ID, unless it already carries one, and
// dispatches EventRunStart.
func (w *WrappedRunner) start(ctx context.Context, agent *agents.Agent) context.Context {
	runID, ok := RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = WithRunID(ctx, runID)
	}
	if w.logger != nil {
		w.logger.Printf("agentssdk: run %s started (agent %q)", runID, agentName(agent))
	}
	w.sink.Dispatch(ctx, Event{
		Kind:      EventRunStart,
		Timestamp: time.Now(),
		RunID:     runID,
		AgentName: agentName(agent),
	})
	return ctx
}

// finish dispatches EventRunEnd. A panic is dispatched as a
// *eventsink.PanicError and then re-raised.
func (w *WrappedRunner) finish(ctx context.Context, agent *agents.Agent, errp *error) {
	r := recover()

	runID, _ := RunIDFromContext(ctx)
	event := Event{
		Kind:      EventRunEnd,
		Timestamp: time.Now(),
		RunID:     runID,
		AgentName: agentName(agent),
		Err:       *errp,
	}
	if r != nil {
		event.Err = &eventsink.PanicError{Value: r, Stack: string(debug.Stack())}
	}
	if event.Err != nil {
		event.ErrClass = Classify(event.Err)
		if w.logger != nil {
			w.logger.Printf("agentssdk: run %s failed (%s): %v", runID, event.ErrClass, event.Err)
		}
	}
	w.sink.Dispatch(ctx, event)

	if r != nil {
		panic(r)
	}
}

// wrapRunConfig clones cfg and wraps its hooks with a HookAdapter.
func (w *WrappedRunner) wrapRunConfig(cfg *agents.RunConfig) *agents.RunConfig {
	var cloned agents.RunConfig
	if cfg != nil {
		cloned = *cfg
	}
	cloned.Hooks = NewHookAdapter(w.sink, cloned.Hooks)
	return &cloned
}

// Inner returns the underlying Runner.
func (w *WrappedRunner) Inner() *agents.Runner {
	return w.inner
}
