// Package prompt assembles the per-call model context: system text (preamble plus the
// rendered memory), the tool catalog, and the transcript, with one cache boundary.
//
// Order of reuse is fixed: tools, then system, then history. The boundary names the last
// segment that is stable across calls; the assembler always places it after the system text.
package prompt
