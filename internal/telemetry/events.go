package telemetry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/petasbytes/go-chatbot/internal/metrics"
)

// ContextAssembled records the shape of one assembled model context.
func (r *Recorder) ContextAssembled(ctx context.Context, systemBytes, tools, memorySlots int, boundary string, history metrics.Transcript) {
	r.Emit(ctx, "context_assembled",
		zap.Int("system_bytes", systemBytes),
		zap.Int("tools", tools),
		zap.Int("memory_slots", memorySlots),
		zap.String("cache_boundary", boundary),
		zap.Int("history_turns", history.Turns),
		zap.Int("invocations", history.Invocations),
		zap.Int("error_outcomes", history.ErrorOutcomes),
	)
}

// ModelCall records one model round trip. err is reduced to its presence.
func (r *Recorder) ModelCall(ctx context.Context, model string, d time.Duration, blocks int, err error) {
	r.Emit(ctx, "model_call",
		zap.String("model", model),
		zap.Int64("duration_ms", d.Milliseconds()),
		zap.Int("blocks", blocks),
		errorField(err, "model error"),
	)
}

// ToolExec records one tool invocation. Only sizes and an error class are kept so raw
// payloads never reach the file.
func (r *Recorder) ToolExec(ctx context.Context, tool string, d time.Duration, inputSize, outputSize int, errClass string) {
	r.Emit(ctx, "tool_exec",
		zap.String("tool_name", tool),
		zap.Int64("duration_ms", d.Milliseconds()),
		zap.Int("input_size", inputSize),
		zap.Int("output_size", outputSize),
		errorClass(errClass),
	)
}

func errorField(err error, class string) zap.Field {
	if err == nil {
		return errorClass("")
	}
	return errorClass(class)
}

func errorClass(class string) zap.Field {
	if class == "" {
		return zap.Reflect("error", nil)
	}
	return zap.String("error", class)
}
