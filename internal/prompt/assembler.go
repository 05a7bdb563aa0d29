package prompt

import (
	"fmt"
	"strings"

	"github.com/petasbytes/go-chatbot/internal/conversation"
	"github.com/petasbytes/go-chatbot/tools"
)

// Segment identifies one part of the assembled context in reuse order.
type Segment int

const (
	SegmentTools Segment = iota
	SegmentSystem
	SegmentHistory
)

func (s Segment) String() string {
	switch s {
	case SegmentTools:
		return "tools"
	case SegmentSystem:
		return "system"
	case SegmentHistory:
		return "history"
	default:
		return fmt.Sprintf("segment(%d)", int(s))
	}
}

// Context is everything a model client needs for one call.
type Context struct {
	SystemText string
	Tools      []tools.ToolDefinition
	History    []conversation.Turn

	// CacheBoundary is the last segment, inclusive, that may be reused across calls.
	CacheBoundary Segment

	// MemorySlots is the number of memory entries rendered into SystemText.
	MemorySlots int
}

// MemoryView is the read side of the memory store.
type MemoryView interface {
	Render() string
	Len() int
}

// Catalog lists registered tools in a stable order.
type Catalog interface {
	Catalog() []tools.ToolDefinition
}

// Transcript yields a snapshot of the conversation.
type Transcript interface {
	Turns() []conversation.Turn
}

const memoryHeader = "## Long-term memory\nFacts saved about the user, as <index>: <text>. Use delete_memory with the index to remove one."

// Assembler builds a Context from the current memory, catalog, and transcript. It never
// mutates any of them.
type Assembler struct {
	preamble string
	memory   MemoryView
	catalog  Catalog
}

func NewAssembler(preamble string, memory MemoryView, catalog Catalog) *Assembler {
	return &Assembler{preamble: strings.TrimSpace(preamble), memory: memory, catalog: catalog}
}

// Assemble projects the current state into a model context. Calling it twice without an
// intervening mutation yields equal results.
func (a *Assembler) Assemble(t Transcript) Context {
	system, slots := a.systemText()
	return Context{
		SystemText:    system,
		Tools:         a.catalog.Catalog(),
		History:       t.Turns(),
		CacheBoundary: SegmentSystem,
		MemorySlots:   slots,
	}
}

func (a *Assembler) systemText() (string, int) {
	if a.memory == nil || a.memory.Len() == 0 {
		return a.preamble, 0
	}
	rendered := a.memory.Render()
	if rendered == "" {
		return a.preamble, 0
	}

	var b strings.Builder
	if a.preamble != "" {
		b.WriteString(a.preamble)
		b.WriteString("\n\n")
	}
	b.WriteString(memoryHeader)
	b.WriteByte('\n')
	b.WriteString(rendered)
	return b.String(), a.memory.Len()
}
