// Package errdefs defines the error taxonomy shared by every embodiment
// package.
//
// All failures are synchronous: they are raised where they are detected,
// unwind the entire embodiment call, and are never retried or recovered
// internally. Callers classify them with the Is* predicates, which see
// through wrapping via errors.As.
package errdefs
