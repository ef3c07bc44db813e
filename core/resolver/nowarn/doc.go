// Package nowarn computes, for a resolved dependency graph, the set of
// diagnostic codes that must be suppressed for each transitive package
// because every path from the consuming project to that package already
// suppresses them.
//
// It is a pure, single-threaded, in-memory computation: no I/O, no locking,
// no background work. One Resolve call is independent of every other.
package nowarn
