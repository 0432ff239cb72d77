package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge is a span processor that turns task spans into renderer events.
// Spans from other instrumentation scopes, such as library tracers sharing
// the provider, are not tasks and are dropped.
type Bridge struct {
	renderer ports.Renderer
	scope    string
}

// NewBridge returns a Bridge reporting spans of the kiln tracer to renderer.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{renderer: renderer, scope: InstrumentationName}
}

// taskID returns the renderer ID of a task span, or false for spans the
// renderer must not see.
func (b *Bridge) taskID(s sdktrace.ReadOnlySpan) (string, bool) {
	if b.renderer == nil || s.InstrumentationScope().Name != b.scope {
		return "", false
	}
	sc := s.SpanContext()
	if !sc.IsValid() {
		return "", false
	}
	return sc.SpanID().String(), true
}

// OnStart reports a task as started. The parent is the enclosing task span, if any.
func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	id, ok := b.taskID(s)
	if !ok {
		return
	}

	var parentID string
	if psc := trace.SpanContextFromContext(parent); psc.IsValid() {
		parentID = psc.SpanID().String()
	}
	b.renderer.OnTaskStart(id, parentID, s.Name(), s.StartTime())
}

// OnEnd reports a task as finished, failed when the span status is an error.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	id, ok := b.taskID(s)
	if !ok {
		return
	}
	b.renderer.OnTaskComplete(id, s.EndTime(), taskError(s))
}

func taskError(s sdktrace.ReadOnlySpan) error {
	status := s.Status()
	if status.Code != codes.Error {
		return nil
	}
	if status.Description == "" {
		return domain.Annotate(domain.ErrTaskExecutionFailed, "task", s.Name())
	}
	return errors.New(status.Description)
}

// ForceFlush is a no-op; events are delivered synchronously.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown is a no-op; the renderer is stopped by its owner.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}
