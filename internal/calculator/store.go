package calculator

import (
	"sync"

	"calc-engine/internal/engine"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultMaxSessions bounds the store when NewStore is given zero.
const DefaultMaxSessions = 64

// session wraps one engine session. The engine is single threaded, so every
// action runs under mu; events emitted by the engine queue in pending until
// the handler drains them.
type session struct {
	id      string
	mu      sync.Mutex
	calc    *engine.Session
	pending []engine.Event
}

// do runs fn with exclusive access to the engine session and returns the
// events it emitted.
func (s *session) do(fn func(*engine.Session) error) ([]engine.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := fn(s.calc)
	events := s.pending
	s.pending = nil
	return events, err
}

// Store keeps calculator sessions in memory, evicting the least recently
// used one once max is reached. It also reports session gauges to
// Prometheus.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	lastUsed map[string]uint64
	clock    uint64
	max      int

	activeDesc  *prometheus.Desc
	historyDesc *prometheus.Desc
}

func NewStore(max int) *Store {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &Store{
		sessions: make(map[string]*session),
		lastUsed: make(map[string]uint64),
		max:      max,
		activeDesc: prometheus.NewDesc("calculator_sessions_active",
			"Calculator sessions held in memory.", nil, nil),
		historyDesc: prometheus.NewDesc("calculator_history_entries",
			"History entries held across all calculator sessions.", nil, nil),
	}
}

// Create starts a session in the given angle mode. The returned id is a
// random UUID. If the store is full the least recently used session is
// dropped and its id returned as evicted.
func (st *Store) Create(mode engine.AngleMode) (s *session, evicted string) {
	s = &session{id: uuid.NewString()}
	s.calc = engine.NewSession(
		engine.WithAngleMode(mode),
		engine.WithHook(func(e engine.Event) { s.pending = append(s.pending, e) }),
	)

	st.mu.Lock()
	defer st.mu.Unlock()

	if len(st.sessions) >= st.max {
		evicted = st.oldestLocked()
		delete(st.sessions, evicted)
		delete(st.lastUsed, evicted)
	}
	st.sessions[s.id] = s
	st.touchLocked(s.id)
	return s, evicted
}

// Get returns the session with id and marks it used.
func (st *Store) Get(id string) (*session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if ok {
		st.touchLocked(id)
	}
	return s, ok
}

func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	_, ok := st.sessions[id]
	delete(st.sessions, id)
	delete(st.lastUsed, id)
	return ok
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) touchLocked(id string) {
	st.clock++
	st.lastUsed[id] = st.clock
}

func (st *Store) oldestLocked() string {
	var (
		oldest string
		at     uint64
	)
	for id, t := range st.lastUsed {
		if oldest == "" || t < at {
			oldest, at = id, t
		}
	}
	return oldest
}

// Describe implements prometheus.Collector.
func (st *Store) Describe(ch chan<- *prometheus.Desc) {
	ch <- st.activeDesc
	ch <- st.historyDesc
}

// Collect implements prometheus.Collector.
func (st *Store) Collect(ch chan<- prometheus.Metric) {
	st.mu.Lock()
	sessions := make([]*session, 0, len(st.sessions))
	for _, s := range st.sessions {
		sessions = append(sessions, s)
	}
	st.mu.Unlock()

	entries := 0
	for _, s := range sessions {
		s.mu.Lock()
		entries += len(s.calc.History())
		s.mu.Unlock()
	}

	ch <- prometheus.MustNewConstMetric(st.activeDesc, prometheus.GaugeValue, float64(len(sessions)))
	ch <- prometheus.MustNewConstMetric(st.historyDesc, prometheus.GaugeValue, float64(entries))
}
