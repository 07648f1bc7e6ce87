package room

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Seednode/tandem/internal/tasks"
)

// Conn is the outbound side of a client connection.
type Conn interface {
	ID() string
	// Send queues msg without blocking. It reports false when the
	// connection is gone or cannot keep up.
	Send(msg any) bool
	Close()
}

// TaskSource supplies shuffled task records for a game.
type TaskSource interface {
	FetchShuffled(ctx context.Context, category string, count int, level string) []tasks.Record
}

// origin identifies who issued a mutation. Players act through their
// seat; admins act on any room and pass through the same methods.
type origin struct {
	conn  string
	role  Role
	admin bool
}

func adminOrigin(conn string) origin {
	return origin{conn: conn, admin: true}
}

type participant struct {
	conn  Conn
	role  Role
	ready bool
}

// Session is the state of one room. Every method locks the session; none
// of them call back into the Broker.
type Session struct {
	mu sync.Mutex

	code  string
	log   zerolog.Logger
	ticks TickSource
	now   func() time.Time

	participants map[string]*participant
	observers    map[string]Conn

	state   State
	kind    string
	scores  map[Role]int
	tasks   []tasks.Record
	cursor  int
	turn    Role
	timer   *countdown
	history []Entry
	words   []WordEntry

	// epoch changes whenever a pending start must be discarded.
	epoch  uint64
	closed bool

	createdAt  time.Time
	lastActive time.Time
}

func newSession(code string, ticks TickSource, now func() time.Time, logger zerolog.Logger) *Session {
	t := now()

	return &Session{
		code:         code,
		log:          logger.With().Str("room", code).Logger(),
		ticks:        ticks,
		now:          now,
		participants: make(map[string]*participant, 2),
		observers:    make(map[string]Conn),
		state:        Empty,
		scores:       newScores(),
		turn:         First,
		createdAt:    t,
		lastActive:   t,
	}
}

func newScores() map[Role]int {
	return map[Role]int{First: 0, Second: 0}
}

func (s *Session) Code() string {
	return s.code
}

// join seats c in the free role. The creator always ends up first.
func (s *Session) join(c Conn) (Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrRoomNotFound
	}

	if len(s.participants) >= 2 {
		return "", ErrRoomFull
	}

	role := First
	for _, p := range s.participants {
		if p.role == First {
			role = Second
		}
	}

	s.participants[c.ID()] = &participant{conn: c, role: role}
	if s.state == Empty {
		s.state = Waiting
	}
	s.touchLocked()

	if len(s.participants) == 1 {
		c.Send(RoomMessage{Type: EvtRoomCreated, RoomCode: s.code, Role: role})
	} else {
		c.Send(RoomMessage{Type: EvtRoomJoined, RoomCode: s.code, Role: role})
		s.broadcastExceptLocked(c.ID(), Event{Type: EvtPartnerJoined})
	}

	s.log.Info().Str("conn", c.ID()).Str("role", string(role)).Msg("player joined")

	return role, nil
}

// leave removes the participant on conn and returns how many remain.
func (s *Session) leave(conn string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.participants[conn]
	if !ok {
		return len(s.participants)
	}

	delete(s.participants, conn)
	s.touchLocked()

	s.log.Info().Str("conn", conn).Str("role", string(p.role)).Msg("player left")

	if len(s.participants) == 0 {
		s.cancelTimerLocked()
		return 0
	}

	s.broadcastLocked(Event{Type: EvtPartnerDisconnected})

	return len(s.participants)
}

// close tears the session down: the timer stops, observers are told, and
// the participants still seated are returned so the caller can drop them.
func (s *Session) close() []Conn {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	s.cancelTimerLocked()

	for _, o := range s.observers {
		o.Send(RoomMessage{Type: EvtRoomClosed, RoomCode: s.code})
	}
	s.observers = map[string]Conn{}

	conns := make([]Conn, 0, len(s.participants))
	for _, p := range s.participants {
		conns = append(conns, p.conn)
	}

	return conns
}

func (s *Session) watch(c Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.observers[c.ID()] = c
	c.Send(AdminGameData{Type: EvtAdminGameData, Game: s.snapshotLocked()})
}

func (s *Session) unwatch(conn string) {
	s.mu.Lock()
	delete(s.observers, conn)
	s.mu.Unlock()
}

func (s *Session) selectGame(o origin, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.permitLocked(o) {
		return
	}

	switch s.state {
	case Waiting, Selecting, Finished:
	default:
		return
	}

	if _, ok := LookupKind(name); !ok {
		return
	}

	s.cancelTimerLocked()
	s.resetReadyLocked()
	s.kind = name
	s.state = Selecting
	s.epoch++
	s.touchLocked()

	s.broadcastLocked(GameSelected{Type: EvtGameSelected, GameKind: name})
}

func (s *Session) setReady(o origin, ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.admin || !s.permitLocked(o) {
		return
	}

	p := s.participants[o.conn]
	p.ready = ready
	s.touchLocked()

	allReady := len(s.participants) == 2
	for _, other := range s.participants {
		allReady = allReady && other.ready
	}

	s.broadcastLocked(ReadyStatus{
		Type:     EvtPlayerReadyStatus,
		Role:     p.role,
		Ready:    ready,
		AllReady: allReady,
	})
}

// start fetches the task sequence without holding the lock, then applies
// it only if nothing else restarted or reset the game in the meantime.
// Commands that arrive during the fetch see the pre-start state.
func (s *Session) start(ctx context.Context, o origin, src TaskSource, name, level string) bool {
	s.mu.Lock()

	if !s.permitLocked(o) || !s.startableLocked() {
		s.mu.Unlock()
		return false
	}

	if name == "" {
		name = s.kind
	}

	kind, ok := LookupKind(name)
	if !ok {
		s.mu.Unlock()
		return false
	}

	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	var records []tasks.Record
	if kind.hasTasks() {
		records = src.FetchShuffled(ctx, kind.Category, kind.Count, level)
	}
	if records == nil {
		records = []tasks.Record{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.epoch != epoch || !s.startableLocked() {
		s.log.Debug().Str("kind", kind.Name).Msg("discarding stale start")
		return false
	}

	s.kind = kind.Name
	s.state = Playing
	s.tasks = records
	s.cursor = 0
	s.scores = newScores()
	s.history = nil
	s.words = nil
	s.turn = First
	s.touchLocked()

	s.broadcastLocked(GameStarted{
		Type:          EvtGameStarted,
		GameKind:      kind.Name,
		Tasks:         records,
		StartingRole:  First,
		HasTimer:      kind.Seconds > 0,
		TimerDuration: kind.Seconds,
	})

	s.armLocked(kind.Seconds)

	s.log.Info().Str("kind", kind.Name).Int("tasks", len(records)).Msg("game started")

	return true
}

func (s *Session) startableLocked() bool {
	return !s.closed && (s.state == Waiting || s.state == Selecting)
}

func (s *Session) submitAnswer(o origin, action string, value json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.permitLocked(o) || s.state != Playing {
		return
	}

	entry := Entry{
		Timestamp: s.now(),
		Role:      o.role,
		Action:    action,
		Value:     value,
	}
	s.history = append(s.history, entry)
	s.touchLocked()

	s.broadcastLocked(AnswerSubmitted{Type: EvtAnswerSubmitted, Entry: entry})
}

// addPoints changes role's score. Players may only score for their own
// seat and never negatively; admins may adjust either seat in either
// direction. No score drops below zero.
func (s *Session) addPoints(o origin, role Role, points int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.permitLocked(o) || s.state != Playing {
		return
	}

	if !o.admin {
		role = o.role
		if points < 0 {
			return
		}
	}

	if !role.valid() {
		return
	}

	s.scores[role] = max(0, s.scores[role]+points)
	s.touchLocked()

	s.broadcastLocked(ScoresUpdated{Type: EvtScoresUpdated, Scores: maps.Clone(s.scores)})
}

func (s *Session) addWord(o origin, word string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	word = strings.TrimSpace(word)
	if word == "" || !s.permitLocked(o) || s.state != Playing {
		return
	}

	entry := WordEntry{Word: word, Role: o.role}
	s.words = append(s.words, entry)
	s.touchLocked()

	s.broadcastLocked(WordAdded{Type: EvtWordAdded, WordEntry: entry})
}

// nextTask advances the cursor. Reaching the end of the sequence finishes
// the game, which emits game_finished and nothing else. Games without a
// task sequence only pass the turn.
func (s *Session) nextTask(o origin, switchTurn bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.permitLocked(o) || s.state != Playing {
		return
	}

	s.touchLocked()

	if len(s.tasks) == 0 {
		if switchTurn {
			s.switchTurnLocked()
		}
		return
	}

	s.cursor++
	if switchTurn {
		s.turn = s.turn.Other()
	}

	if s.cursor >= len(s.tasks) {
		s.cursor = len(s.tasks)
		s.finishLocked()
		return
	}

	msg := NextTask{Type: EvtNextTask, Task: s.tasks[s.cursor], Index: s.cursor}
	if switchTurn {
		msg.TurnRole = s.turn
	}
	s.broadcastLocked(msg)

	if switchTurn {
		s.broadcastLocked(TurnChanged{Type: EvtTurnChanged, TurnRole: s.turn})
	}
}

func (s *Session) switchTurn(o origin) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.permitLocked(o) || s.state != Playing {
		return
	}

	s.touchLocked()
	s.switchTurnLocked()
}

func (s *Session) switchTurnLocked() {
	s.turn = s.turn.Other()
	s.broadcastLocked(TurnChanged{Type: EvtTurnChanged, TurnRole: s.turn})
}

// resetTimer re-arms the countdown with seconds; zero stops it.
func (s *Session) resetTimer(o origin, seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.permitLocked(o) || s.state != Playing || seconds < 0 {
		return
	}

	s.touchLocked()
	s.armLocked(seconds)

	if seconds > 0 {
		s.broadcastLocked(TimerUpdate{Type: EvtTimerUpdate, Remaining: seconds})
	}
}

func (s *Session) toggleTimer(o origin) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.permitLocked(o) || s.state != Playing {
		return
	}

	s.touchLocked()
	s.toggleTimerLocked()
}

func (s *Session) finish(o origin) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.permitLocked(o) {
		return
	}

	s.touchLocked()
	s.finishLocked()
}

// finishLocked moves a playing game to finished. Every path that ends a
// game goes through here, so game_finished is sent once per game.
func (s *Session) finishLocked() {
	if s.state != Playing {
		return
	}

	s.cancelTimerLocked()
	s.state = Finished

	s.broadcastLocked(GameFinished{Type: EvtGameFinished, FinalScores: maps.Clone(s.scores)})

	s.log.Info().Str("kind", s.kind).Interface("scores", s.scores).Msg("game finished")
}

func (s *Session) returnToGames(o origin) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.permitLocked(o) {
		return
	}

	switch s.state {
	case Selecting, Playing, Finished:
	default:
		return
	}

	s.cancelTimerLocked()
	s.resetReadyLocked()
	s.kind = ""
	s.tasks = nil
	s.cursor = 0
	s.history = nil
	s.words = nil
	s.turn = First
	s.state = Waiting
	s.epoch++
	s.touchLocked()

	s.broadcastLocked(Event{Type: EvtReturnToGames})
}

func (s *Session) summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.summaryLocked()
}

func (s *Session) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

func (s *Session) summaryLocked() Summary {
	return Summary{
		RoomCode:    s.code,
		GameKind:    s.kind,
		State:       s.state,
		PlayerCount: len(s.participants),
		Scores:      maps.Clone(s.scores),
		Cursor:      s.cursor,
		TaskCount:   len(s.tasks),
		Turn:        s.turn,
		Timer:       s.timer.snapshot(),
	}
}

func (s *Session) snapshotLocked() Snapshot {
	players := make([]PlayerView, 0, len(s.participants))
	for _, p := range s.participants {
		players = append(players, PlayerView{Role: p.role, Ready: p.ready})
	}
	slices.SortFunc(players, func(a, b PlayerView) int {
		return strings.Compare(string(a.Role), string(b.Role))
	})

	return Snapshot{
		Summary:    s.summaryLocked(),
		Players:    players,
		Tasks:      slices.Clone(s.tasks),
		Log:        slices.Clone(s.history),
		Words:      slices.Clone(s.words),
		Observers:  len(s.observers),
		CreatedAt:  s.createdAt,
		LastActive: s.lastActive,
	}
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastActive.Before(cutoff)
}

// permitLocked checks that a player command still comes from a seated
// connection. Admin commands are checked by the Broker.
func (s *Session) permitLocked(o origin) bool {
	if s.closed {
		return false
	}

	if o.admin {
		return true
	}

	p, ok := s.participants[o.conn]
	return ok && p.role == o.role
}

func (s *Session) resetReadyLocked() {
	for _, p := range s.participants {
		p.ready = false
	}
}

func (s *Session) touchLocked() {
	s.lastActive = s.now()
}

// broadcastLocked queues msg for every participant and observer, once per
// connection. Queuing happens under the session lock, so all recipients
// see a room's events in the order they were accepted.
func (s *Session) broadcastLocked(msg any) {
	s.broadcastExceptLocked("", msg)
}

func (s *Session) broadcastExceptLocked(skip string, msg any) {
	sent := make(map[string]struct{}, len(s.participants)+len(s.observers))

	for id, p := range s.participants {
		if id == skip {
			continue
		}
		sent[id] = struct{}{}
		p.conn.Send(msg)
	}

	for id, o := range s.observers {
		if id == skip {
			continue
		}
		if _, dup := sent[id]; dup {
			continue
		}
		o.Send(msg)
	}
}
