package telemetry_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/petasbytes/go-chatbot/internal/metrics"
	"github.com/petasbytes/go-chatbot/internal/telemetry"
)

func TestTurnStarted_HappyPath(t *testing.T) {
	r, base := newRecorder(t)

	ctx := telemetry.WithTurnID(context.Background(), "turn-xyz")
	user := "hello  world\nthis is\tgo"
	want := metrics.CountText(user)

	r.TurnStarted(ctx, user)

	m := lastEvent(t, base)
	if m["event"] != "turn_started" {
		t.Fatalf("event mismatch: %v", m["event"])
	}
	if m["turn_id"] != "turn-xyz" {
		t.Fatalf("turn_id mismatch: %v", m["turn_id"])
	}
	if m["features_version"] != telemetry.FeaturesVersion {
		t.Fatalf("features_version mismatch: %v", m["features_version"])
	}
	userMap, ok := m["user"].(map[string]any)
	if !ok {
		t.Fatalf("user field missing or wrong type: %T", m["user"])
	}
	if userMap["bytes"] != float64(want.Bytes) ||
		userMap["runes"] != float64(want.Runes) ||
		userMap["words"] != float64(want.Words) ||
		userMap["lines"] != float64(want.Lines) {
		t.Fatalf("user features mismatch: got %#v, want %#v", userMap, want)
	}
}

func TestTurnStarted_MultibyteAndMultiline(t *testing.T) {
	r, base := newRecorder(t)
	ctx := telemetry.WithTurnID(context.Background(), "turn-multi")

	r.TurnStarted(ctx, "héllö 世界") // bytes=14, runes=8, words=2, lines=1
	u1 := lastEvent(t, base)["user"].(map[string]any)
	if u1["bytes"] != float64(14) || u1["runes"] != float64(8) || u1["words"] != float64(2) || u1["lines"] != float64(1) {
		t.Fatalf("multibyte mismatch: %#v", u1)
	}

	r.TurnStarted(ctx, "a\nb\n") // bytes=4, runes=4, words=2, lines=3
	u2 := lastEvent(t, base)["user"].(map[string]any)
	if u2["bytes"] != float64(4) || u2["runes"] != float64(4) || u2["words"] != float64(2) || u2["lines"] != float64(3) {
		t.Fatalf("multiline mismatch: %#v", u2)
	}
}

func TestTurnStarted_NoRawTextLeakage(t *testing.T) {
	r, base := newRecorder(t)
	user := "Remember that I'm allergic to peanuts"

	r.TurnStarted(context.Background(), user)

	b, err := os.ReadFile(filepath.Join(base, telemetry.EventsFile))
	if err != nil {
		t.Fatalf("read events: %v", err)
	}
	if strings.Contains(string(b), "peanuts") {
		t.Fatal("raw input text found in events.jsonl")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(b))), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := m["text"]; ok {
		t.Fatal("unexpected text field present in event")
	}
}

func TestTurnStarted_Disabled_NoEvent(t *testing.T) {
	base := t.TempDir()
	r, err := telemetry.NewRecorder(telemetry.Config{ArtifactsDir: base})
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	r.TurnStarted(context.Background(), "some text")

	if _, err := os.Stat(filepath.Join(base, telemetry.EventsFile)); !os.IsNotExist(err) {
		t.Fatalf("expected no events file when observe is off, got err=%v", err)
	}
}
