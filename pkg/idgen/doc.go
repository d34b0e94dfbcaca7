// Package idgen hands out globally-unique 64-bit identifiers without a
// database round trip per request.
//
// # Design
//
// A persisted counter row (id_counters.last_reserved) is the single source
// of truth for how far identifiers have been durably reserved. The generator
// advances it in fixed-size blocks (default 65536) through the statement
// executor and then serves individual identifiers and ranges from the
// reserved window with nothing but in-memory arithmetic.
//
// Replenishment of an exhausted window is single-flight: concurrent blocked
// callers share one store round trip instead of racing to issue their own.
// The fast-path condition is re-checked after acquiring the replenish mutex;
// removing that second check would waste a reserved block on every contended
// replenishment.
//
// # Guarantees and costs
//
//   - identifiers are never reused within a process, and never reused across
//     restarts either: a new process reserves strictly above the last
//     durable value
//   - a crash discards the unused remainder of the current window; gaps in
//     the identifier space are expected and harmless
//   - concurrent IDRange calls return pairwise-disjoint contiguous ranges
//
// Requesting a range of zero identifiers is a programmer error and panics;
// it never reaches the store.
package idgen
