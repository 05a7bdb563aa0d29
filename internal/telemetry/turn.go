package telemetry

import (
	"context"

	"github.com/google/uuid"
)

type turnIDKey struct{}

// NewTurnID returns a fresh identifier for one user turn.
func NewTurnID() string { return uuid.NewString() }

// WithTurnID tags ctx with id. Every event emitted under ctx carries it as turn_id.
func WithTurnID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, turnIDKey{}, id)
}

// TurnIDFromContext returns the turn id carried by ctx. An empty id counts as absent.
func TurnIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, _ := ctx.Value(turnIDKey{}).(string)
	return id, id != ""
}

// EnsureTurnID returns ctx unchanged when it already carries a turn id, and otherwise a
// child tagged with a new one.
func EnsureTurnID(ctx context.Context) (context.Context, string) {
	if id, ok := TurnIDFromContext(ctx); ok {
		return ctx, id
	}
	id := NewTurnID()
	return WithTurnID(ctx, id), id
}
