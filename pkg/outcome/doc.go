// Package outcome defines the tagged success/failure value returned by the
// statement executor and everything built on top of it.
//
// An Outcome is never an excuse to hide an error: the executor either returns
// a classified Outcome (the normal path, including exhausted retries) or
// panics on programmer errors such as invalid arguments. The classification
// is deliberately coarse; it exists so callers can decide whether a retry at
// their level is sensible (a Duplicate will not go away, a TooManyRetries
// means the store was unreachable for the whole budget).
package outcome
