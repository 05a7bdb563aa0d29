// Package conversation holds the ordered transcript of a chat session.
//
// Invariants:
//   - user -> assistant; an assistant turn with tool invocations is followed by exactly one
//     tool_result turn answering every invocation, in the same order.
//   - an assistant turn without invocations hands control back to the user.
//
// Flow:
//
//	user(text) -> assistant(tool_invocation...) -> tool_result(tool_outcome...) -> assistant(text)
package conversation
