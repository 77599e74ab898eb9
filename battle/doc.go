// Package battle holds the mutable battle state: the entity registry, the
// space assignments, the round cursor and the metrics storage.
//
// State is owned by an engine.Processor and is mutated exclusively by the
// processor's submit pipeline while it applies events. The exported mutators
// on State and its sub-objects exist for the processor and for rules apply
// hooks invoked by it; calling them from anywhere else breaks replay
// determinism.
package battle
