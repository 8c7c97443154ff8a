package calculator

import (
	"strings"
	"testing"

	"calc-engine/internal/engine"

	"github.com/google/uuid"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStoreCreateAssignsUUIDAndMode(t *testing.T) {
	st := NewStore(0)

	s, evicted := st.Create(engine.Radians)
	if evicted != "" {
		t.Fatalf("expected no eviction, got %q", evicted)
	}
	if _, err := uuid.Parse(s.id); err != nil {
		t.Fatalf("expected UUID session id, got %q: %v", s.id, err)
	}
	if s.calc.AngleMode() != engine.Radians {
		t.Fatalf("expected RAD, got %s", s.calc.AngleMode())
	}

	got, ok := st.Get(s.id)
	if !ok || got != s {
		t.Fatal("expected to find the created session")
	}
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	st := NewStore(2)

	a, _ := st.Create(engine.Degrees)
	b, _ := st.Create(engine.Degrees)

	// a becomes the most recently used, so b goes first.
	st.Get(a.id)

	c, evicted := st.Create(engine.Degrees)
	if evicted != b.id {
		t.Fatalf("expected %q evicted, got %q", b.id, evicted)
	}
	if st.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", st.Len())
	}
	if _, ok := st.Get(b.id); ok {
		t.Fatal("expected evicted session to be gone")
	}
	for _, s := range []*session{a, c} {
		if _, ok := st.Get(s.id); !ok {
			t.Fatalf("expected session %q to survive", s.id)
		}
	}
}

func TestStoreDelete(t *testing.T) {
	st := NewStore(0)
	s, _ := st.Create(engine.Degrees)

	if !st.Delete(s.id) {
		t.Fatal("expected delete to report the session existed")
	}
	if st.Delete(s.id) {
		t.Fatal("expected second delete to report nothing removed")
	}
}

func TestSessionDoDrainsEvents(t *testing.T) {
	st := NewStore(0)
	s, _ := st.Create(engine.Degrees)

	events, err := s.do(func(c *engine.Session) error {
		c.OnToken("1/0")
		c.OnAction(engine.ActionEquals)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].Kind != engine.EventEvalError {
		t.Fatalf("expected one eval error event, got %#v", events)
	}

	events, _ = s.do(func(c *engine.Session) error {
		c.OnAction(engine.ActionClear)
		c.OnToken("2*3")
		c.OnAction(engine.ActionEquals)
		return nil
	})
	if len(events) != 1 || events[0].Kind != engine.EventCommitted {
		t.Fatalf("expected pending queue to be drained between actions, got %#v", events)
	}
}

func TestStoreCollect(t *testing.T) {
	st := NewStore(0)
	a, _ := st.Create(engine.Degrees)
	st.Create(engine.Degrees)

	a.do(func(c *engine.Session) error {
		for _, expr := range []string{"1+1", "2+2", "3+3"} {
			c.OnAction(engine.ActionClear)
			c.OnToken(expr)
			c.OnAction(engine.ActionEquals)
		}
		return nil
	})

	expected := `
# HELP calculator_history_entries History entries held across all calculator sessions.
# TYPE calculator_history_entries gauge
calculator_history_entries 3
# HELP calculator_sessions_active Calculator sessions held in memory.
# TYPE calculator_sessions_active gauge
calculator_sessions_active 2
`
	if err := promtestutil.CollectAndCompare(st, strings.NewReader(expected)); err != nil {
		t.Fatalf("unexpected collected metrics: %v", err)
	}
}
