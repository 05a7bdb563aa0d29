package prompt_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-chatbot/internal/conversation"
	"github.com/petasbytes/go-chatbot/internal/prompt"
	"github.com/petasbytes/go-chatbot/memory"
	"github.com/petasbytes/go-chatbot/tools"
)

func setup(t *testing.T) (*memory.Store, *tools.Registry, *conversation.State) {
	t.Helper()
	store := memory.NewStore(5, memory.DropNewest)
	reg, err := tools.DefaultRegistry(tools.Deps{Memory: store})
	require.NoError(t, err)
	return store, reg, conversation.NewState()
}

// toolNames compares catalogs by name; definitions carry funcs, which cmp cannot diff.
func toolNames(defs []tools.ToolDefinition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Name
	}
	return out
}

func TestAssemble_EmptyMemoryIsPreambleOnly(t *testing.T) {
	store, reg, state := setup(t)
	a := prompt.NewAssembler(prompt.Preamble(""), store, reg)

	ctx := a.Assemble(state)
	assert.Equal(t, prompt.Preamble(""), ctx.SystemText)
	assert.NotContains(t, ctx.SystemText, "Long-term memory")
	assert.Zero(t, ctx.MemorySlots)
	assert.Equal(t, prompt.SegmentSystem, ctx.CacheBoundary)
	assert.Empty(t, ctx.History)
	assert.Equal(t, toolNames(reg.Catalog()), toolNames(ctx.Tools))
}

func TestAssemble_MemorySectionAfterSavingFact(t *testing.T) {
	store, reg, state := setup(t)
	a := prompt.NewAssembler(prompt.Preamble(""), store, reg)
	require.NoError(t, state.AppendUser("Remember that I'm allergic to peanuts"))

	save, err := reg.Resolve("save_memory")
	require.NoError(t, err)
	_, err = save.Function(context.Background(), []byte(`{"text":"allergic to peanuts"}`))
	require.NoError(t, err)

	ctx := a.Assemble(state)
	assert.True(t, strings.HasPrefix(ctx.SystemText, prompt.Preamble("")))
	assert.Contains(t, ctx.SystemText, "\n0: allergic to peanuts")
	assert.True(t, strings.HasSuffix(ctx.SystemText, "0: allergic to peanuts"))
	assert.Equal(t, 1, ctx.MemorySlots)
	require.Len(t, ctx.History, 1)
}

func TestAssemble_Deterministic(t *testing.T) {
	store, reg, state := setup(t)
	store.Save("prefers metric units")
	store.Save("vegetarian")
	require.NoError(t, state.AppendUser("hi"))
	require.NoError(t, state.AppendAssistant([]conversation.Block{
		conversation.Text("checking"),
		conversation.Invocation("call_1", "tool_calculator", []byte(`{"first_number":1,"second_number":2,"operation":"add"}`)),
	}))
	a := prompt.NewAssembler("preamble", store, reg)

	first := a.Assemble(state)
	second := a.Assemble(state)

	assert.Equal(t, first.SystemText, second.SystemText)
	assert.Equal(t, toolNames(first.Tools), toolNames(second.Tools))
	assert.Empty(t, cmp.Diff(first.History, second.History, cmpopts.EquateEmpty()))
	assert.Equal(t, "preamble\n\n## Long-term memory\nFacts saved about the user, as <index>: <text>. Use delete_memory with the index to remove one.\n0: prefers metric units\n1: vegetarian", first.SystemText)
	assert.Equal(t, 2, first.MemorySlots)
}

func TestAssemble_DoesNotMutate(t *testing.T) {
	store, reg, state := setup(t)
	store.Save("a")
	require.NoError(t, state.AppendUser("hi"))
	a := prompt.NewAssembler("p", store, reg)

	ctx := a.Assemble(state)
	ctx.History[0].Content[0].Text = "changed"
	ctx.Tools[0].Name = "changed"

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 1, state.Len())
	last, _ := state.Last()
	assert.Equal(t, "hi", last.PlainText())
	assert.Equal(t, "tool_weather", reg.Catalog()[0].Name)
}

func TestPreamble(t *testing.T) {
	assert.Contains(t, prompt.Preamble(""), "located in Porto, Portugal.")
	assert.Contains(t, prompt.Preamble("Lisbon, Portugal"), "located in Lisbon, Portugal.")
}

func TestSegment_String(t *testing.T) {
	assert.Equal(t, "tools", prompt.SegmentTools.String())
	assert.Equal(t, "system", prompt.SegmentSystem.String())
	assert.Equal(t, "history", prompt.SegmentHistory.String())
}

// A slot whose text spans lines must still count as one slot.
type multilineMemory struct{}

func (multilineMemory) Render() string { return "0: likes tea\n   and coffee" }
func (multilineMemory) Len() int       { return 1 }

func TestAssemble_MemorySlotsCountsEntries(t *testing.T) {
	_, reg, state := setup(t)
	a := prompt.NewAssembler(prompt.Preamble(""), multilineMemory{}, reg)

	ctx := a.Assemble(state)
	assert.Equal(t, 1, ctx.MemorySlots)
	assert.Contains(t, ctx.SystemText, "0: likes tea")
}
