package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newRecordingTracer(t *testing.T) (*telemetry.OTelTracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return telemetry.NewOTelTracer(tp, telemetry.InstrumentationName), recorder
}

func attrMap(kvs []attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

func TestOTelTracer_StartAttributes(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	_, span := tracer.Start(context.Background(), "scss",
		ports.WithAttribute("kind", "style"),
		ports.WithAttribute("watch", false),
	)
	span.SetAttribute("files", 3)
	span.SetAttribute("elapsed", 1500*time.Millisecond)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "scss", ended[0].Name())
	assert.Equal(t, map[string]string{
		"kind":    "style",
		"watch":   "false",
		"files":   "3",
		"elapsed": "1.5s",
	}, attrMap(ended[0].Attributes()))
}

func TestOTelSpan_RecordError(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	_, span := tracer.Start(context.Background(), "js")
	span.RecordError(errors.New("bundle failed"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "bundle failed", ended[0].Status().Description)
}

func TestOTelSpan_WriteWithoutRenderer(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	_, span := tracer.Start(context.Background(), "images")
	n, err := span.Write([]byte("optimized logo.png"))
	require.NoError(t, err)
	assert.Equal(t, 18, n)
	span.End()

	events := recorder.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "log", events[0].Name)
}

func TestOTelTracer_WithRenderer(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	tracer, _ := newRecordingTracer(t)
	tracer.WithRenderer(renderer).WithFlushInterval(time.Hour)

	deps := map[string][]string{"scss": {"clean"}}
	renderer.EXPECT().OnPlanEmit([]string{"clean", "scss"}, deps, []string{"scss"})
	tracer.EmitPlan(context.Background(), []string{"clean", "scss"}, deps, []string{"scss"})

	_, span := tracer.Start(context.Background(), "scss")
	renderer.EXPECT().OnTaskLog(gomock.Any(), []byte("line one\nline two\n")).Times(1)

	_, err := span.Write([]byte("line one\n"))
	require.NoError(t, err)
	_, err = span.Write([]byte("line two\n"))
	require.NoError(t, err)
	span.End()
}

func TestBridge(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	tracer := telemetry.NewOTelTracer(tp, telemetry.InstrumentationName)

	var rootID string
	renderer.EXPECT().OnTaskStart(gomock.Any(), "", "run", gomock.Any()).
		Do(func(spanID, _, _ string, _ time.Time) { rootID = spanID })
	ctx, root := tracer.Start(context.Background(), "run")

	renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), "js", gomock.Any()).
		Do(func(_, parentID, _ string, _ time.Time) { assert.Equal(t, rootID, parentID) })
	_, child := tracer.Start(ctx, "js")

	renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(_ string, _ time.Time, err error) {
			require.Error(t, err)
			assert.Equal(t, "unexpected token", err.Error())
		})
	child.RecordError(errors.New("unexpected token"))
	child.End()

	renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil)
	root.End()
}

func TestBridge_FailureWithoutDescription(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	renderer.EXPECT().OnTaskStart(gomock.Any(), "", "images", gomock.Any())
	renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(_ string, _ time.Time, err error) {
			require.ErrorIs(t, err, domain.ErrTaskExecutionFailed)
		})

	_, span := tp.Tracer(telemetry.InstrumentationName).Start(context.Background(), "images")
	span.SetStatus(codes.Error, "")
	span.End()
}

func TestBridge_IgnoresOtherScopes(t *testing.T) {
	ctrl := gomock.NewController(t)
	// No expectations: any renderer call fails the test.
	renderer := mocks.NewMockRenderer(ctrl)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := tp.Tracer("net/http").Start(context.Background(), "GET /")
	span.End()
}

func TestBridge_NilRenderer(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(nil)))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := tp.Tracer("nil").Start(context.Background(), "noop")
	span.End()
}
