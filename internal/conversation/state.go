package conversation

// State is the append-only transcript of one session. It is owned by a single turn loop
// and is not safe for concurrent use.
type State struct {
	turns []Turn
}

// NewState returns an empty transcript in the AwaitUser phase.
func NewState() *State {
	return &State{}
}

// Phase reports the current loop phase.
func (s *State) Phase() Phase { return PhaseOf(s.turns) }

// Len returns the number of turns.
func (s *State) Len() int { return len(s.turns) }

// Turns returns a snapshot copy of the transcript.
func (s *State) Turns() []Turn {
	out := make([]Turn, len(s.turns))
	for i, t := range s.turns {
		out[i] = t.clone()
	}
	return out
}

// Last returns the most recent turn.
func (s *State) Last() (Turn, bool) {
	if len(s.turns) == 0 {
		return Turn{}, false
	}
	return s.turns[len(s.turns)-1].clone(), true
}

// PendingInvocations returns the invocations awaiting outcomes, or nil outside DispatchTools.
func (s *State) PendingInvocations() []Block {
	if s.Phase() != DispatchTools {
		return nil
	}
	return s.turns[len(s.turns)-1].Invocations()
}

// AppendUser appends a user text turn. Allowed only in AwaitUser.
func (s *State) AppendUser(text string) error {
	return s.append(Turn{Role: RoleUser, Content: []Block{Text(text)}})
}

// AppendAssistant appends the model's blocks, preserving their order. Allowed only in AwaitModel.
func (s *State) AppendAssistant(blocks []Block) error {
	return s.append(Turn{Role: RoleAssistant, Content: blocks})
}

// AppendToolResults appends the outcomes for the pending invocations. Allowed only in
// DispatchTools, and outcomes must answer every pending invocation in order.
func (s *State) AppendToolResults(outcomes []Block) error {
	return s.append(Turn{Role: RoleToolResult, Content: outcomes})
}

// append validates t against the tail and leaves the state unchanged on error.
func (s *State) append(t Turn) error {
	if err := checkNext(s.turns, t); err != nil {
		return err
	}
	s.turns = append(s.turns, t.clone())
	return nil
}
