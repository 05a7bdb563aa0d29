// Package runner is the turn loop. It owns the conversation transcript, calls the model
// with an assembled context, and dispatches tool invocations through the registry.
//
// Invariants:
//   - one model call outstanding at a time; a dispatch batch completes before the next call.
//   - outcomes are appended in invocation order even when a batch runs concurrently.
//   - tool failures become error outcomes; model failures are returned to the caller.
//
// Flow:
//
//	AWAIT_USER -(user text)-> AWAIT_MODEL -(invocations)-> DISPATCH_TOOLS -> AWAIT_MODEL
//	AWAIT_MODEL -(text only)-> AWAIT_USER
package runner
