package telemetry

import (
	"context"

	"go.uber.org/zap"

	"github.com/petasbytes/go-chatbot/internal/metrics"
)

// FeaturesVersion is bumped whenever the feature set changes shape.
const FeaturesVersion = "1"

// TurnStarted records counts derived from the user's text. The text itself is never written.
func (r *Recorder) TurnStarted(ctx context.Context, user string) {
	if !r.Enabled() {
		return
	}
	f := metrics.CountText(user)
	r.Emit(ctx, "turn_started",
		zap.String("features_version", FeaturesVersion),
		zap.Dict("user",
			zap.Int("bytes", f.Bytes),
			zap.Int("runes", f.Runes),
			zap.Int("words", f.Words),
			zap.Int("lines", f.Lines),
		),
	)
}
