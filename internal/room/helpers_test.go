package room

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/tandem/internal/tasks"
)

const (
	waitFor   = time.Second
	pollEvery = 5 * time.Millisecond
)

// fakeConn records every message sent to it.
type fakeConn struct {
	id string

	mu     sync.Mutex
	msgs   []any
	closed bool
}

var connSeq atomic.Int64

func newFakeConn(name string) *fakeConn {
	return &fakeConn{id: fmt.Sprintf("%s-%d", name, connSeq.Add(1))}
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Send(msg any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}
	f.msgs = append(f.msgs, msg)
	return true
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) messages() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]any(nil), f.msgs...)
}

func (f *fakeConn) types() []string {
	msgs := f.messages()
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, msgType(m))
	}
	return out
}

func (f *fakeConn) ofType(typ string) []any {
	var out []any
	for _, m := range f.messages() {
		if msgType(m) == typ {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeConn) count(typ string) int {
	return len(f.ofType(typ))
}

// lastOf returns the most recent message of typ, failing the test if none
// was sent.
func (f *fakeConn) lastOf(t *testing.T, typ string) any {
	t.Helper()
	msgs := f.ofType(typ)
	require.NotEmpty(t, msgs, "%s never received %s; got %v", f.id, typ, f.types())
	return msgs[len(msgs)-1]
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	f.msgs = nil
	f.mu.Unlock()
}

func msgType(msg any) string {
	data, err := json.Marshal(msg)
	if err != nil {
		return ""
	}
	var head struct {
		Type string `json:"type"`
	}
	_ = json.Unmarshal(data, &head)
	return head.Type
}

// manualTicks hands out tick channels that only fire when the test says so.
type manualTicks struct {
	mu      sync.Mutex
	ch      chan time.Time
	started int
	stopped int
}

func (m *manualTicks) Ticks(time.Duration) (<-chan time.Time, func()) {
	ch := make(chan time.Time)

	m.mu.Lock()
	m.ch = ch
	m.started++
	m.mu.Unlock()

	return ch, func() {
		m.mu.Lock()
		m.stopped++
		m.mu.Unlock()
	}
}

// fire delivers one tick to the most recent countdown. It reports false if
// nothing was listening.
func (m *manualTicks) fire() bool {
	m.mu.Lock()
	ch := m.ch
	m.mu.Unlock()

	if ch == nil {
		return false
	}

	select {
	case ch <- time.Now():
		return true
	case <-time.After(200 * time.Millisecond):
		return false
	}
}

func (m *manualTicks) running() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started - m.stopped
}

// stubRepo serves admin CRUD from a real in-memory repository and fetches
// from a fixed pool, optionally holding each fetch until gate is closed.
type stubRepo struct {
	*tasks.Repository

	mu      sync.Mutex
	pool    map[string][]tasks.Record
	fetches int
	gate    chan struct{}
	entered chan struct{}
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		Repository: tasks.NewRepository(tasks.NewMemoryStore(), time.Second, zerolog.Nop()),
		pool:       tasks.SeedSet(),
	}
}

func (r *stubRepo) FetchShuffled(_ context.Context, category string, count int, _ string) []tasks.Record {
	r.mu.Lock()
	r.fetches++
	gate, entered := r.gate, r.entered
	pool := r.pool[category]
	r.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	if len(pool) > count {
		pool = pool[:count]
	}
	return append([]tasks.Record(nil), pool...)
}

func (r *stubRepo) setPool(category string, records []tasks.Record) {
	r.mu.Lock()
	r.pool[category] = records
	r.mu.Unlock()
}

func (r *stubRepo) fetchCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetches
}

type harness struct {
	broker *Broker
	ticks  *manualTicks
	repo   *stubRepo
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		ticks: &manualTicks{},
		repo:  newStubRepo(),
	}
	h.broker = NewBroker(h.repo, Options{
		AdminPassword: "secret",
		Logger:        zerolog.Nop(),
		Ticks:         h.ticks,
	})
	t.Cleanup(h.broker.Shutdown)

	return h
}

func (h *harness) send(c Conn, cmd Command) {
	h.broker.Handle(context.Background(), c, cmd)
}

// room creates a room for a and seats b in it.
func (h *harness) room(t *testing.T, a, b *fakeConn) string {
	t.Helper()

	code, err := h.broker.CreateRoom(a)
	require.NoError(t, err)

	role, err := h.broker.JoinRoom(b, code)
	require.NoError(t, err)
	require.Equal(t, Second, role)

	return code
}

// playing creates a room and starts kind in it.
func (h *harness) playing(t *testing.T, kind string) (string, *fakeConn, *fakeConn) {
	t.Helper()

	a, b := newFakeConn("a"), newFakeConn("b")
	code := h.room(t, a, b)

	h.send(a, Command{Type: CmdSelectGame, RoomCode: code, GameKind: kind})
	h.send(a, Command{Type: CmdStartGame, RoomCode: code})
	require.Equal(t, 1, a.count(EvtGameStarted))

	return code, a, b
}

func (h *harness) session(t *testing.T, code string) *Session {
	t.Helper()
	s, ok := h.broker.Lookup(code)
	require.True(t, ok, "room %s not found", code)
	return s
}

func (s *Session) currentTimer() *countdown {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer
}
