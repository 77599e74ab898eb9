package battle

import "sort"

// System metrics maintained by the engine.
const (
	// MetricEventsProcessed counts events applied to the state.
	MetricEventsProcessed = "engine.events_processed"
	// MetricTeamsCreated counts created teams.
	MetricTeamsCreated = "engine.teams_created"
	// MetricCreaturesCreated counts created creatures.
	MetricCreaturesCreated = "engine.creatures_created"
	// MetricObjectsCreated counts created objects.
	MetricObjectsCreated = "engine.objects_created"
	// MetricRoundsCompleted counts completed rounds.
	MetricRoundsCompleted = "engine.rounds_completed"
)

// Metrics stores named counters derived from battle activity.
//
// System metrics are written only by the engine. User metrics are an open
// namespace for rules implementations; rules can add, overwrite and remove
// them freely during apply hooks.
type Metrics struct {
	system map[string]int64
	user   map[string]int64
}

// NewMetrics creates an empty metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		system: make(map[string]int64),
		user:   make(map[string]int64),
	}
}

// System returns the value of a system metric.
func (m *Metrics) System(id string) (int64, bool) {
	v, ok := m.system[id]
	return v, ok
}

// User returns the value of a user metric.
func (m *Metrics) User(id string) (int64, bool) {
	v, ok := m.user[id]
	return v, ok
}

// AddSystem increments a system metric. Reserved for the engine.
func (m *Metrics) AddSystem(id string, delta int64) {
	m.system[id] += delta
}

// SetUser sets a user metric, creating it if absent.
func (m *Metrics) SetUser(id string, value int64) {
	m.user[id] = value
}

// AddUser increments a user metric, creating it if absent.
func (m *Metrics) AddUser(id string, delta int64) {
	m.user[id] += delta
}

// RemoveUser deletes a user metric.
func (m *Metrics) RemoveUser(id string) {
	delete(m.user, id)
}

// snapshot returns all metrics in a deterministic order.
func (m *Metrics) snapshot() []metricSnapshot {
	out := make([]metricSnapshot, 0, len(m.system)+len(m.user))
	for id, v := range m.system {
		out = append(out, metricSnapshot{ID: id, Value: v, User: false})
	}
	for id, v := range m.user {
		out = append(out, metricSnapshot{ID: id, Value: v, User: true})
	}
	// Sort by (ID, User) so a user metric sharing an id with a system
	// metric still snapshots in a fixed order.
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return !out[i].User && out[j].User
	})
	return out
}

type metricSnapshot struct {
	ID    string `json:"id"`
	Value int64  `json:"value"`
	User  bool   `json:"user,omitempty"`
}
