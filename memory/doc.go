// Package memory provides the bounded long-term memory the assistant curates through tools.
//
// Model:
//   - An ordered list of short facts, capacity-bounded; indices are positions and shift on delete.
//   - Process-local only; nothing is written to disk.
package memory
