// Package event defines the immutable event envelope, the built-in payload
// taxonomy and the serialization codec.
//
// An Event describes one intended state transition. Events are validated and
// applied by an engine.Processor; once appended to a timeline, an event and
// its origin link never change.
//
// Every event carries an Origin: either the identity of the submitter that
// initiated it, or the id of the event that derived it. Origins form the
// causality chain that tooling can walk backwards from any event.
package event
