package runner

import (
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/petasbytes/go-chatbot/internal/telemetry"
)

// Option configures a Runner.
type Option func(*Runner)

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithRecorder(rec *telemetry.Recorder) Option {
	return func(r *Runner) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithParallelDispatch runs the invocations of one batch concurrently. Batches that
// contain a mutating tool still run one at a time.
func WithParallelDispatch(on bool) Option {
	return func(r *Runner) { r.parallel = on }
}

// WithToolTimeout bounds each handler call. Zero means no bound.
func WithToolTimeout(d time.Duration) Option {
	return func(r *Runner) { r.toolTimeout = d }
}

// WithModelTimeout bounds each model call. Zero means no bound.
func WithModelTimeout(d time.Duration) Option {
	return func(r *Runner) { r.modelTimeout = d }
}

// WithMaxSteps caps model calls per user turn.
func WithMaxSteps(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxSteps = n
		}
	}
}

// WithExitSentinel sets the input that ends Run. Matching ignores case.
func WithExitSentinel(s string) Option {
	return func(r *Runner) {
		if s = strings.TrimSpace(s); s != "" {
			r.exit = s
		}
	}
}

// WithToolEcho prints "Calling <tool>(<args>)" to w before each dispatch.
func WithToolEcho(w io.Writer) Option {
	return func(r *Runner) { r.echo = w }
}
