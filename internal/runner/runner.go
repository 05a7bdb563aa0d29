package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/petasbytes/go-chatbot/internal/conversation"
	"github.com/petasbytes/go-chatbot/internal/metrics"
	"github.com/petasbytes/go-chatbot/internal/prompt"
	"github.com/petasbytes/go-chatbot/internal/provider"
	"github.com/petasbytes/go-chatbot/internal/telemetry"
	"github.com/petasbytes/go-chatbot/tools"
)

const (
	DefaultMaxSteps     = 16
	DefaultExitSentinel = "quit"
)

var (
	// ErrTooManySteps is returned when one user turn needs more model calls than allowed.
	ErrTooManySteps = errors.New("too many model calls in one turn")

	// ErrEmptyInput is returned by Respond for blank user text.
	ErrEmptyInput = errors.New("empty user input")

	// ErrAwaitingUser is returned by Step when only user input can advance the loop.
	ErrAwaitingUser = errors.New("waiting for user input")
)

// ModelClient sends an assembled context to a language model and returns the response
// blocks in the order the model produced them.
type ModelClient interface {
	Complete(ctx context.Context, pc prompt.Context) ([]conversation.Block, error)
}

// ToolInvoker resolves and runs tools by name.
type ToolInvoker interface {
	Resolve(name string) (tools.ToolDefinition, error)
	Invoke(ctx context.Context, name string, input json.RawMessage) (string, error)
}

// Assembler projects the transcript into a model context.
type Assembler interface {
	Assemble(t prompt.Transcript) prompt.Context
}

// Runner drives one conversation: it owns the transcript and is the only writer to it.
// A Runner is not safe for concurrent use.
type Runner struct {
	model     ModelClient
	tools     ToolInvoker
	assembler Assembler
	state     *conversation.State

	logger       *zap.Logger
	recorder     *telemetry.Recorder
	parallel     bool
	toolTimeout  time.Duration
	modelTimeout time.Duration
	maxSteps     int
	exit         string
	echo         io.Writer
}

func New(model ModelClient, invoker ToolInvoker, assembler Assembler, opts ...Option) *Runner {
	r := &Runner{
		model:     model,
		tools:     invoker,
		assembler: assembler,
		state:     conversation.NewState(),
		logger:    zap.NewNop(),
		recorder:  telemetry.Nop(),
		maxSteps:  DefaultMaxSteps,
		exit:      DefaultExitSentinel,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Phase reports where the loop is.
func (r *Runner) Phase() conversation.Phase { return r.state.Phase() }

// Transcript returns a snapshot of the conversation so far.
func (r *Runner) Transcript() []conversation.Turn { return r.state.Turns() }

// Step performs one transition out of AwaitModel or DispatchTools and returns the turn it
// appended. In AwaitUser it returns ErrAwaitingUser.
func (r *Runner) Step(ctx context.Context) (conversation.Turn, error) {
	switch r.state.Phase() {
	case conversation.AwaitModel:
		return r.callModel(ctx)
	case conversation.DispatchTools:
		return r.dispatch(ctx)
	default:
		return conversation.Turn{}, ErrAwaitingUser
	}
}

// Respond appends the user's text and steps until the assistant hands control back.
// It returns every turn appended, starting with the user turn. Model failures are
// returned unrecovered; tool failures become error outcomes. Blank text is rejected with
// ErrEmptyInput and nothing is appended.
func (r *Runner) Respond(ctx context.Context, text string) ([]conversation.Turn, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	ctx, _ = telemetry.EnsureTurnID(ctx)
	if err := r.state.AppendUser(text); err != nil {
		return nil, err
	}
	r.recorder.TurnStarted(ctx, text)
	last, _ := r.state.Last()
	r.logTurn(last)

	appended := []conversation.Turn{last}
	calls := 0
	for r.state.Phase() != conversation.AwaitUser {
		if r.state.Phase() == conversation.AwaitModel {
			if calls == r.maxSteps {
				return appended, fmt.Errorf("%w: limit %d", ErrTooManySteps, r.maxSteps)
			}
			calls++
		}
		turn, err := r.Step(ctx)
		if err != nil {
			return appended, err
		}
		appended = append(appended, turn)
	}
	return appended, nil
}

func (r *Runner) callModel(ctx context.Context) (conversation.Turn, error) {
	pc := r.assembler.Assemble(r.state)
	r.recorder.ContextAssembled(ctx, len(pc.SystemText), len(pc.Tools), pc.MemorySlots,
		pc.CacheBoundary.String(), metrics.CountTranscript(pc.History))

	callCtx := ctx
	if r.modelTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.modelTimeout)
		defer cancel()
	}

	start := time.Now()
	blocks, err := r.model.Complete(callCtx, pc)
	r.recorder.ModelCall(ctx, modelName(r.model), time.Since(start), len(blocks), err)
	if err != nil {
		r.logger.Error("model call failed", zap.Error(err))
		return conversation.Turn{}, err
	}

	if err := r.state.AppendAssistant(blocks); err != nil {
		return conversation.Turn{}, fmt.Errorf("%w: invalid response: %w", provider.ErrModelClient, err)
	}
	last, _ := r.state.Last()
	r.logTurn(last)
	return last, nil
}

// dispatch runs every pending invocation and appends their outcomes in invocation order.
func (r *Runner) dispatch(ctx context.Context) (conversation.Turn, error) {
	pending := r.state.PendingInvocations()
	outcomes := make([]conversation.Block, len(pending))
	if r.echo != nil {
		for _, inv := range pending {
			fmt.Fprintf(r.echo, "Calling %s(%s)\n", inv.Name, inv.Arguments)
		}
	}

	if r.parallel && len(pending) > 1 && !r.anyMutates(pending) {
		g, gctx := errgroup.WithContext(ctx)
		for i, inv := range pending {
			i, inv := i, inv
			g.Go(func() error {
				outcomes[i] = r.execTool(gctx, inv)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, inv := range pending {
			outcomes[i] = r.execTool(ctx, inv)
		}
	}

	if err := r.state.AppendToolResults(outcomes); err != nil {
		return conversation.Turn{}, err
	}
	last, _ := r.state.Last()
	r.logTurn(last)
	return last, nil
}

func (r *Runner) anyMutates(invs []conversation.Block) bool {
	for _, inv := range invs {
		if def, err := r.tools.Resolve(inv.Name); err == nil && def.Mutates {
			return true
		}
	}
	return false
}

// execTool never fails: unknown tools and handler errors become error outcomes so the
// model can react to them.
func (r *Runner) execTool(ctx context.Context, inv conversation.Block) conversation.Block {
	r.logger.Debug("calling tool", zap.String("tool", inv.Name), zap.ByteString("args", inv.Arguments))

	callCtx := ctx
	if r.toolTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.toolTimeout)
		defer cancel()
	}

	start := time.Now()
	out, err := r.tools.Invoke(callCtx, inv.Name, inv.Arguments)
	elapsed := time.Since(start)
	if err != nil {
		r.recorder.ToolExec(ctx, inv.Name, elapsed, len(inv.Arguments), 0, errorClass(err))
		r.logger.Warn("tool failed", zap.String("tool", inv.Name), zap.Duration("elapsed", elapsed), zap.Error(err))
		// Preserve the detailed message for the model; telemetry only sees the class.
		return conversation.Outcome(inv.ID, err.Error(), true)
	}
	r.recorder.ToolExec(ctx, inv.Name, elapsed, len(inv.Arguments), len(out), "")
	return conversation.Outcome(inv.ID, out, false)
}

func errorClass(err error) string {
	var te *tools.ToolError
	if errors.As(err, &te) {
		return te.Code
	}
	return "tool error"
}

func (r *Runner) logTurn(t conversation.Turn) {
	if ce := r.logger.Check(zap.DebugLevel, "turn appended"); ce != nil {
		b, _ := json.MarshalIndent(t, "", "  ")
		ce.Write(zap.String("role", string(t.Role)), zap.ByteString("turn", b))
	}
}

func modelName(m ModelClient) string {
	if s, ok := m.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", m)
}
