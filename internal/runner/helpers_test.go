package runner_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-chatbot/internal/conversation"
	"github.com/petasbytes/go-chatbot/internal/prompt"
	"github.com/petasbytes/go-chatbot/internal/runner"
	"github.com/petasbytes/go-chatbot/memory"
	"github.com/petasbytes/go-chatbot/tools"
)

type reply struct {
	blocks []conversation.Block
	err    error
}

// scriptedModel returns its replies in order, then the fallback (or a plain "done").
type scriptedModel struct {
	mu       sync.Mutex
	replies  []reply
	fallback func(call int) reply
	seen     []prompt.Context
}

func script(replies ...reply) *scriptedModel {
	return &scriptedModel{replies: replies}
}

func (m *scriptedModel) Complete(_ context.Context, pc prompt.Context) ([]conversation.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, pc)
	if len(m.replies) > 0 {
		r := m.replies[0]
		m.replies = m.replies[1:]
		return r.blocks, r.err
	}
	if m.fallback != nil {
		r := m.fallback(len(m.seen))
		return r.blocks, r.err
	}
	return []conversation.Block{conversation.Text("done")}, nil
}

func (m *scriptedModel) String() string { return "scripted/test" }

func (m *scriptedModel) calls() []prompt.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]prompt.Context(nil), m.seen...)
}

func text(s string) reply {
	return reply{blocks: []conversation.Block{conversation.Text(s)}}
}

func invoke(blocks ...conversation.Block) reply {
	return reply{blocks: blocks}
}

func call(id, name, args string) conversation.Block {
	return conversation.Invocation(id, name, json.RawMessage(args))
}

type fixture struct {
	store *memory.Store
	reg   *tools.Registry
	model *scriptedModel
	r     *runner.Runner
}

func newFixture(t *testing.T, model *scriptedModel, opts ...runner.Option) *fixture {
	t.Helper()
	store := memory.NewStore(5, memory.DropNewest)
	reg, err := tools.DefaultRegistry(tools.Deps{Memory: store})
	require.NoError(t, err)
	return newFixtureWith(t, store, reg, model, opts...)
}

func newFixtureWith(t *testing.T, store *memory.Store, reg *tools.Registry, model *scriptedModel, opts ...runner.Option) *fixture {
	t.Helper()
	asm := prompt.NewAssembler(prompt.Preamble(""), store, reg)
	return &fixture{store: store, reg: reg, model: model, r: runner.New(model, reg, asm, opts...)}
}

// barrierTool completes with "parallel" when all n barrier tools are running at once and
// with "serial" when it gave up waiting.
type barrier struct {
	arrive sync.WaitGroup
	all    chan struct{}
	wait   time.Duration
}

func newBarrier(n int, wait time.Duration) *barrier {
	b := &barrier{all: make(chan struct{}), wait: wait}
	b.arrive.Add(n)
	go func() {
		b.arrive.Wait()
		close(b.all)
	}()
	return b
}

func (b *barrier) tool(name string, mutates bool) tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:    name,
		Mutates: mutates,
		Function: func(ctx context.Context, _ json.RawMessage) (string, error) {
			b.arrive.Done()
			select {
			case <-b.all:
				return "parallel", nil
			case <-time.After(b.wait):
				return "serial", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		},
	}
}
