package runner_test

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/petasbytes/go-chatbot/internal/runner"
	"github.com/petasbytes/go-chatbot/internal/telemetry"
)

func readEvents(t *testing.T, dir string) []gjson.Result {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, telemetry.EventsFile))
	require.NoError(t, err)
	defer f.Close()

	var out []gjson.Result
	s := bufio.NewScanner(f)
	for s.Scan() {
		require.True(t, gjson.Valid(s.Text()), s.Text())
		out = append(out, gjson.Parse(s.Text()))
	}
	require.NoError(t, s.Err())
	return out
}

func TestRespond_EmitsTelemetryForOneTurn(t *testing.T) {
	dir := t.TempDir()
	rec, err := telemetry.NewRecorder(telemetry.Config{Observe: true, ArtifactsDir: dir})
	require.NoError(t, err)

	f := newFixture(t, script(
		invoke(call("a", "tool_calculator", `{"operation":"divide","first_number":1,"second_number":0}`)),
		text("undefined"),
	), runner.WithRecorder(rec))

	_, err = f.r.Respond(context.Background(), "what is 1/0")
	require.NoError(t, err)
	require.NoError(t, rec.Close())

	events := readEvents(t, dir)
	var names []string
	for _, e := range events {
		names = append(names, e.Get("event").String())
	}
	assert.Equal(t, []string{
		"turn_started",
		"context_assembled", "model_call",
		"tool_exec",
		"context_assembled", "model_call",
	}, names)

	turnID := events[0].Get("turn_id").String()
	require.NotEmpty(t, turnID)
	for _, e := range events {
		assert.Equal(t, turnID, e.Get("turn_id").String(), e.Raw)
	}

	exec := events[3]
	assert.Equal(t, "tool_calculator", exec.Get("tool_name").String())
	assert.Equal(t, "EXECUTION_ERROR", exec.Get("error").String())
	assert.Zero(t, exec.Get("output_size").Int())

	assert.Equal(t, "scripted/test", events[2].Get("model").String())
	assert.Equal(t, "system", events[1].Get("cache_boundary").String())
	assert.EqualValues(t, 1, events[4].Get("error_outcomes").Int())
	assert.NotContains(t, events[0].Raw, "what is 1/0", "raw user text must not be recorded")
}

func TestRespond_TurnIDsDifferPerTurn(t *testing.T) {
	dir := t.TempDir()
	rec, err := telemetry.NewRecorder(telemetry.Config{Observe: true, ArtifactsDir: dir})
	require.NoError(t, err)

	f := newFixture(t, script(text("one"), text("two")), runner.WithRecorder(rec))
	for _, in := range []string{"a", "b"} {
		_, err := f.r.Respond(context.Background(), in)
		require.NoError(t, err)
	}
	require.NoError(t, rec.Close())

	events := readEvents(t, dir)
	require.Len(t, events, 6)
	assert.NotEqual(t, events[0].Get("turn_id").String(), events[3].Get("turn_id").String())
}
