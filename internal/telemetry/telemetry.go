package telemetry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultArtifactsDir holds events.jsonl when no directory is configured.
const DefaultArtifactsDir = ".agent"

// EventsFile is the JSONL file name inside the artifacts directory.
const EventsFile = "events.jsonl"

// Config controls JSONL emission.
type Config struct {
	Observe      bool
	ArtifactsDir string
}

// Recorder writes one JSON object per event to <ArtifactsDir>/events.jsonl. Each line
// carries RFC3339Nano "time" and "event" plus the event fields. A disabled Recorder
// drops everything and never touches the filesystem. Safe for concurrent use.
type Recorder struct {
	log  *zap.Logger
	file *os.File
}

// Nop returns a disabled Recorder.
func Nop() *Recorder {
	return &Recorder{log: zap.NewNop()}
}

// NewRecorder opens the events file when cfg.Observe is set.
func NewRecorder(cfg Config) (*Recorder, error) {
	if !cfg.Observe {
		return Nop(), nil
	}
	dir := cfg.ArtifactsDir
	if dir == "" {
		dir = DefaultArtifactsDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("telemetry: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, EventsFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.Lock(f), zapcore.DebugLevel)
	return &Recorder{log: zap.New(core), file: f}, nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		MessageKey:     "event",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     utcRFC3339Nano,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
}

func utcRFC3339Nano(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(time.RFC3339Nano))
}

// Enabled reports whether events are written.
func (r *Recorder) Enabled() bool { return r != nil && r.file != nil }

// Emit writes one event. The turn id in ctx, if any, is added as turn_id.
func (r *Recorder) Emit(ctx context.Context, name string, fields ...zap.Field) {
	if r == nil || r.file == nil {
		return
	}
	if id, ok := TurnIDFromContext(ctx); ok {
		fields = append(fields, zap.String("turn_id", id))
	}
	r.log.Info(name, fields...)
}

// Close flushes and closes the events file.
func (r *Recorder) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	_ = r.log.Sync()
	return r.file.Close()
}
