// Package query is the client's fetch cache and mutation bookkeeping.
//
// Cached results are keyed by resource kind plus parameters (see Key).
// Mutations invalidate exactly the keys they affect, by prefix, and the
// next Fetch of an invalidated key goes back to the backend. A response
// that arrives after its key was invalidated, or after a newer request for
// the same key resolved, is never stored.
//
// InFlight tracks one running action per entity so a repeated submission
// for the same entity is dropped while unrelated entities stay usable.
package query
