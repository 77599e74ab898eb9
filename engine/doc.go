// Package engine drives a battle as an append-only event log.
//
// A Processor owns one battle. Every change goes through Submit: the event
// is stamped with its origin, checked against the player's rights, validated
// by the rules bundle, applied to the state and appended to the Timeline
// together with a checksum of the resulting state. Apply hooks may produce
// derived events; the processor drains them through the same pipeline with
// the parent event as origin, so the log records the full causal chain.
//
// The timeline is the source of truth. Replay rebuilds a state from any
// recorded log and verifies every checksum along the way, which is how undo,
// client mirrors and offline verification all work.
//
// Server and Client add the authoritative topology on top: the server owns
// the writable processor and the rights table, clients hold verified mirrors
// and send intents.
package engine
