// Package engine implements the embodiment strategies.
//
// Every strategy satisfies Engine and is observably equivalent for inputs
// without cycles or key collisions:
//
// Recursive:
// Tree recursion over the template. Containers are bracketed by a
// cycle.Guard so sibling branches never see each other's in-progress
// state. Map keys and values are embodied in insertion order and the
// resulting pairs go through ResolveKeys.
//
// Iterative:
// The same contract computed with an explicit work stack, for templates
// deeper than a goroutine stack should hold. Each container is expanded
// (marked in progress, children pushed) and later collected (built from
// its children's results, memoized by identity). In-progress and
// collected containers live in disjoint sets: re-meeting an in-progress
// container is a cycle, re-meeting a collected one is a diamond and its
// result is reused.
//
// Compiled:
// The template is flattened once into leaves; leaves whose string holds a
// marker, and key segments that hold one, are flagged. Each call copies
// the leaves, substitutes only the flagged ones, and rebuilds the nested
// value. Compiled forms are cached by content fingerprint, never by
// template identity. Two distinct template keys that resolve to the same
// key always fail with KEY_COLLISION; the collision policy is not applied.
//
// Engines hold no per-call state and are safe for concurrent use.
package engine
