package conversation

import (
	"encoding/json"
	"strings"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleToolResult Role = "tool_result"
)

// BlockKind tags the variant carried by a Block.
type BlockKind string

const (
	BlockText           BlockKind = "text"
	BlockToolInvocation BlockKind = "tool_invocation"
	BlockToolOutcome    BlockKind = "tool_outcome"
)

// Block is one content element of a turn. Only the fields of its Kind are set.
type Block struct {
	Kind BlockKind `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// tool_invocation
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`

	// tool_outcome
	InvocationID string `json:"invocation_id,omitempty"`
	Payload      string `json:"payload,omitempty"`
	IsError      bool   `json:"is_error,omitempty"`
}

// Text returns a text block.
func Text(s string) Block {
	return Block{Kind: BlockText, Text: s}
}

// Invocation returns a tool_invocation block. Empty arguments are normalised to {}.
func Invocation(id, name string, args json.RawMessage) Block {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	return Block{Kind: BlockToolInvocation, ID: id, Name: name, Arguments: args}
}

// Outcome returns a tool_outcome block answering the invocation with the given id.
func Outcome(invocationID, payload string, isError bool) Block {
	return Block{Kind: BlockToolOutcome, InvocationID: invocationID, Payload: payload, IsError: isError}
}

// Turn is one role-tagged transcript entry.
type Turn struct {
	Role    Role    `json:"role"`
	Content []Block `json:"content"`
}

// Invocations returns the tool_invocation blocks of t in order.
func (t Turn) Invocations() []Block {
	var out []Block
	for _, b := range t.Content {
		if b.Kind == BlockToolInvocation {
			out = append(out, b)
		}
	}
	return out
}

// HasInvocations reports whether t requests at least one tool call.
func (t Turn) HasInvocations() bool {
	for _, b := range t.Content {
		if b.Kind == BlockToolInvocation {
			return true
		}
	}
	return false
}

// PlainText joins the text blocks of t with newlines, skipping empty ones.
func (t Turn) PlainText() string {
	var parts []string
	for _, b := range t.Content {
		if b.Kind == BlockText && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func (t Turn) clone() Turn {
	c := Turn{Role: t.Role, Content: make([]Block, len(t.Content))}
	copy(c.Content, t.Content)
	for i := range c.Content {
		if a := c.Content[i].Arguments; a != nil {
			c.Content[i].Arguments = append(json.RawMessage(nil), a...)
		}
	}
	return c
}
