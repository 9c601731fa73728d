// Package errors provides structured error types for the defer-runtime library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: source position, frame
// kind, detail message, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseRegister, errors.KindAsyncOutsideAsync).
//		Pos("main.vey:12:3").
//		Frame("block").
//		Detail("defer await requires an async enclosing context").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.EscapingTransfer(pos, "break")
//	err := errors.FrameDead(pos)
//
// Registration-time rejections carry PhaseRegister and report true from
// IsStatic, so front ends can route them as compile errors rather than
// runtime failures.
//
// # Failure chains
//
// FailureChain aggregates every error raised while draining one frame's
// deferred actions, most-recent-first. The chain itself is a throwable
// error value: Error() reports the primary failure and Unwrap() steps
// outward to each suppressed failure, so errors.Is/As and generic logging
// tooling compose unchanged. Chains are immutable; Record never mutates
// its input.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
