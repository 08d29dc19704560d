// Package generation mediates between user intent ("generate",
// "regenerate"), the per-identity cooldown policy, the external report
// generator, and the two-phase preview/commit flow.
package generation

import (
	"context"
	"sync"
	"time"

	"github.com/karthiBP/aegis-incidents/internal/pkg/ctxlog"
	"github.com/karthiBP/aegis-incidents/internal/pkg/metrics"
)

// State is the generation state for one identity.
type State string

// Generation states. success does not persist anything: the preview is held
// for the caller to accept or discard.
const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StatePreviewing State = "previewing"
	StateError      State = "error"
)

type identityState struct {
	state     State
	preview   *ReportResult
	lastError string
}

// Workflow orchestrates rate-limited, preview-gated report generation,
// keyed by authenticated identity so concurrent sessions of different
// users never interfere.
type Workflow struct {
	generator Generator
	cooldowns CooldownStore

	mu     sync.Mutex
	states map[string]*identityState
}

// NewWorkflow creates a generation workflow.
func NewWorkflow(generator Generator, cooldowns CooldownStore) *Workflow {
	return &Workflow{
		generator: generator,
		cooldowns: cooldowns,
		states:    make(map[string]*identityState),
	}
}

// CanGenerate reports whether the identity is outside its cooldown window.
func (w *Workflow) CanGenerate(identity string) bool {
	return w.cooldowns.CanGenerate(identity)
}

// CooldownRemaining returns the time until the identity may generate again.
func (w *Workflow) CooldownRemaining(identity string) time.Duration {
	return w.cooldowns.Remaining(identity)
}

// Generate runs a cooldown-checked generation. Both first generations and
// explicit regenerations go through here; the server-side cooldown check
// is authoritative for either intent. On success the result is stored as
// the identity's preview (overwriting any previous preview) and the
// cooldown clock restarts.
func (w *Workflow) Generate(ctx context.Context, identity string, req ReportRequest) (*ReportResult, error) {
	if !w.cooldowns.CanGenerate(identity) {
		metrics.GenerationRequests.WithLabelValues("rate_limited").Inc()
		return nil, ErrRateLimited
	}
	return w.run(ctx, identity, req)
}

func (w *Workflow) run(ctx context.Context, identity string, req ReportRequest) (*ReportResult, error) {
	w.mu.Lock()
	st := w.identityState(identity)
	if st.state == StateGenerating {
		w.mu.Unlock()
		return nil, ErrGenerationInFlight
	}
	st.state = StateGenerating
	st.lastError = ""
	w.mu.Unlock()

	start := time.Now()
	result, err := w.generator.Generate(ctx, req)
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		st.state = StateError
		st.lastError = err.Error()
		outcome := "failed"
		if err == ErrGeneratorBusy {
			outcome = "busy"
		}
		metrics.GenerationRequests.WithLabelValues(outcome).Inc()
		ctxlog.FromContext(ctx).Error("report generation failed",
			"generator", w.generator.Name(),
			"error", err,
		)
		return nil, err
	}

	// Each successful run overwrites the previous preview; discarded
	// previews keep no history.
	st.state = StatePreviewing
	st.preview = result
	w.cooldowns.MarkGenerated(identity)

	outcome := "success"
	if w.generator.Name() == "mock" {
		outcome = "mock"
	}
	metrics.GenerationRequests.WithLabelValues(outcome).Inc()

	ctxlog.FromContext(ctx).Info("report generated",
		"generator", w.generator.Name(),
		"action_items", len(result.ActionItems),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}

// Preview returns the identity's pending preview, or nil when none exists.
func (w *Workflow) Preview(identity string) *ReportResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	st, ok := w.states[identity]
	if !ok {
		return nil
	}
	return st.preview
}

// Status returns the identity's generation state and, in the error state,
// the human-readable reason.
func (w *Workflow) Status(identity string) (State, string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	st, ok := w.states[identity]
	if !ok {
		return StateIdle, ""
	}
	return st.state, st.lastError
}

// ConsumePreview removes and returns the identity's preview for committing.
// ErrNoPreview when nothing was generated, or the preview was already
// committed or discarded (including after a session reset).
func (w *Workflow) ConsumePreview(identity string) (*ReportResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	st, ok := w.states[identity]
	if !ok || st.preview == nil {
		return nil, ErrNoPreview
	}

	preview := st.preview
	st.preview = nil
	st.state = StateIdle
	return preview, nil
}

// Discard drops the identity's preview and generation state. The cooldown
// clock is not reset.
func (w *Workflow) Discard(identity string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.states, identity)
}

func (w *Workflow) identityState(identity string) *identityState {
	st, ok := w.states[identity]
	if !ok {
		st = &identityState{state: StateIdle}
		w.states[identity] = st
	}
	return st
}
