package conversation

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfPhase is returned when a turn's role is not allowed after the current tail.
	ErrOutOfPhase = errors.New("turn out of phase")

	// ErrUnmatchedOutcome is returned when a tool_result turn does not answer the pending
	// invocations exactly, in order.
	ErrUnmatchedOutcome = errors.New("tool outcomes do not match pending invocations")

	// ErrInvalidBlock is returned when a block kind is not allowed for the turn's role
	// or is missing its identifier.
	ErrInvalidBlock = errors.New("invalid content block")
)

// Phase is the position of the turn loop, derived from the transcript tail.
type Phase int

const (
	AwaitUser Phase = iota
	AwaitModel
	DispatchTools
)

func (p Phase) String() string {
	switch p {
	case AwaitUser:
		return "AWAIT_USER"
	case AwaitModel:
		return "AWAIT_MODEL"
	case DispatchTools:
		return "DISPATCH_TOOLS"
	default:
		return "UNKNOWN"
	}
}

// PhaseOf returns the phase that follows the last turn of turns.
func PhaseOf(turns []Turn) Phase {
	if len(turns) == 0 {
		return AwaitUser
	}
	last := turns[len(turns)-1]
	switch last.Role {
	case RoleUser, RoleToolResult:
		return AwaitModel
	case RoleAssistant:
		if last.HasInvocations() {
			return DispatchTools
		}
	}
	return AwaitUser
}

// expectedRole maps a phase to the only role that may be appended in it.
func expectedRole(p Phase) Role {
	switch p {
	case AwaitModel:
		return RoleAssistant
	case DispatchTools:
		return RoleToolResult
	default:
		return RoleUser
	}
}

// Validate checks a whole transcript against the alternation and pairing invariants.
// It reports the first offending turn index.
func Validate(turns []Turn) error {
	for i, t := range turns {
		if err := checkNext(turns[:i], t); err != nil {
			return fmt.Errorf("turn %d: %w", i, err)
		}
	}
	return nil
}

// checkNext reports whether t may be appended after prior.
func checkNext(prior []Turn, t Turn) error {
	p := PhaseOf(prior)
	if want := expectedRole(p); t.Role != want {
		return fmt.Errorf("%w: %s turn during %s (want %s)", ErrOutOfPhase, t.Role, p, want)
	}
	switch t.Role {
	case RoleUser:
		return checkKinds(t, BlockText)
	case RoleAssistant:
		if err := checkKinds(t, BlockText, BlockToolInvocation); err != nil {
			return err
		}
		return checkInvocationIDs(t)
	case RoleToolResult:
		if err := checkKinds(t, BlockToolOutcome); err != nil {
			return err
		}
		return matchOutcomes(prior[len(prior)-1].Invocations(), t.Content)
	}
	return fmt.Errorf("%w: unknown role %q", ErrOutOfPhase, t.Role)
}

func checkKinds(t Turn, allowed ...BlockKind) error {
	for i, b := range t.Content {
		ok := false
		for _, k := range allowed {
			if b.Kind == k {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%w: %s block %d in %s turn", ErrInvalidBlock, b.Kind, i, t.Role)
		}
	}
	return nil
}

// checkInvocationIDs requires non-empty, distinct invocation ids within one assistant turn.
func checkInvocationIDs(t Turn) error {
	seen := make(map[string]struct{})
	for _, b := range t.Invocations() {
		if b.ID == "" || b.Name == "" {
			return fmt.Errorf("%w: tool_invocation without id or name", ErrInvalidBlock)
		}
		if _, dup := seen[b.ID]; dup {
			return fmt.Errorf("%w: duplicate invocation id %q", ErrInvalidBlock, b.ID)
		}
		seen[b.ID] = struct{}{}
	}
	return nil
}

// matchOutcomes requires outcomes[i] to answer invocations[i] for every i, with no extras.
func matchOutcomes(invocations, outcomes []Block) error {
	reason := ""
	switch {
	case len(outcomes) < len(invocations):
		reason = "missing_results"
	case len(outcomes) > len(invocations):
		reason = "extra_results"
	default:
		for i := range invocations {
			if outcomes[i].InvocationID != invocations[i].ID {
				reason = fmt.Sprintf("ordering_invalid at %d (want %q, got %q)", i, invocations[i].ID, outcomes[i].InvocationID)
				break
			}
		}
	}
	if reason != "" {
		return fmt.Errorf("%w: %s", ErrUnmatchedOutcome, reason)
	}
	return nil
}
