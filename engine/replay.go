package engine

import (
	"github.com/saltmarsh/skirmish/battle"
	"github.com/saltmarsh/skirmish/rules"
)

// Replay rebuilds a processor from a recorded timeline.
//
// Each entry is re-applied through the same apply path Submit uses, but the
// derived events the hooks return are discarded: the recorded timeline
// already contains them as ordinary entries, so collecting them again would
// duplicate history. After every entry the rebuilt state's checksum must
// match the recorded one; a mismatch is an integrity violation naming the
// offending event.
//
// Replaying the same entries with the same bundle always produces the same
// state. Sinks registered on the returned processor only see events
// submitted after the replay.
func Replay(bundle rules.Bundle, entries []Entry, opts ...Option) (*Processor, error) {
	p, err := New(bundle, opts...)
	if err != nil {
		return nil, err
	}
	for _, recorded := range entries {
		if err := p.replayEntry(recorded); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Verify replays the entries and discards the result, reporting only whether
// the recorded history is internally consistent.
func Verify(bundle rules.Bundle, entries []Entry, opts ...Option) error {
	_, err := Replay(bundle, entries, opts...)
	return err
}

// replayEntry re-applies one recorded entry and verifies the checksum.
func (p *Processor) replayEntry(recorded Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ev := recorded.Event
	if ev.ID != p.timeline.NextID() {
		return integrityf("replay: non-contiguous event id %d, expected %d", ev.ID, p.timeline.NextID())
	}
	if err := p.validate(ev); err != nil {
		return integrityf("replay: recorded event %s no longer validates: %v", ev.String(), err)
	}
	if _, err := p.apply(ev); err != nil {
		return err
	}
	p.state.Metrics().AddSystem(battle.MetricEventsProcessed, 1)
	sum, err := StateChecksum(p.state)
	if err != nil {
		return integrityf("replay: checksum after %s: %v", ev.String(), err)
	}
	if sum != recorded.Checksum {
		return integrityf("replay: checksum mismatch after %s: recorded %s, rebuilt %s",
			ev.String(), recorded.Checksum, sum)
	}
	if err := p.timeline.Append(Entry{Event: ev, Checksum: sum}); err != nil {
		return err
	}
	p.sinks.notify(Entry{Event: ev, Checksum: sum})
	return nil
}
