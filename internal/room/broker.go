// Package room hosts the two-player rooms: codes, per-room game state,
// countdowns and the routing of client commands to the right room.
package room

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Seednode/tandem/internal/tasks"
)

// TaskRepository is the task surface the broker needs: shuffled fetches for
// games and CRUD for admins.
type TaskRepository interface {
	TaskSource
	List(ctx context.Context, category, level string) ([]tasks.Record, error)
	Add(ctx context.Context, category string, raw json.RawMessage) (tasks.Record, error)
	Update(ctx context.Context, category, id string, patch json.RawMessage) (tasks.Record, error)
	Delete(ctx context.Context, category, id string) error
}

type Options struct {
	// AdminPassword gates the admin commands. Empty disables them.
	AdminPassword string
	Logger        zerolog.Logger
	// Ticks drives countdowns; nil means the wall clock.
	Ticks TickSource
	// NewCode generates candidate room codes; nil means NewCode.
	NewCode func() string
	Now     func() time.Time
}

type binding struct {
	code string
	role Role
}

// Broker owns every room and the index from connections to seats.
//
// Lock order is Broker then Session. Sessions never call back into the
// Broker.
type Broker struct {
	mu       sync.Mutex
	rooms    map[string]*Session
	bindings map[string]binding
	admins   map[string]bool
	watching map[string]string

	repo     TaskRepository
	password string
	log      zerolog.Logger
	ticks    TickSource
	newCode  func() string
	now      func() time.Time
}

func NewBroker(repo TaskRepository, opts Options) *Broker {
	b := &Broker{
		rooms:    make(map[string]*Session),
		bindings: make(map[string]binding),
		admins:   make(map[string]bool),
		watching: make(map[string]string),
		repo:     repo,
		password: opts.AdminPassword,
		log:      opts.Logger.With().Str("component", "room").Logger(),
		ticks:    opts.Ticks,
		newCode:  opts.NewCode,
		now:      opts.Now,
	}

	if b.ticks == nil {
		b.ticks = wallClock{}
	}
	if b.newCode == nil {
		b.newCode = NewCode
	}
	if b.now == nil {
		b.now = time.Now
	}

	return b
}

// Handle routes one inbound command. A panic while handling it is logged
// and dropped so that one room cannot take down the others.
func (b *Broker) Handle(ctx context.Context, c Conn, cmd Command) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Str("conn", c.ID()).
				Str("type", cmd.Type).
				Str("panic", fmt.Sprint(r)).
				Msg("recovered from panic while handling command")
		}
	}()

	switch cmd.Type {
	case CmdCreateRoom:
		_, _ = b.CreateRoom(c)
	case CmdJoinRoom:
		_, _ = b.JoinRoom(c, cmd.RoomCode)
	case CmdSelectGame, CmdPlayerReady, CmdStartGame, CmdSubmitAnswer,
		CmdUpdateScore, CmdNextTask, CmdAddWord, CmdFinishGame, CmdReturnToGames:
		b.handlePlayer(ctx, c, cmd)
	case CmdAdminLogin:
		b.login(c, cmd.Password)
	default:
		if strings.HasPrefix(cmd.Type, "admin_") || adminCommands[cmd.Type] {
			b.handleAdmin(ctx, c, cmd)
			return
		}
		b.log.Debug().Str("conn", c.ID()).Str("type", cmd.Type).Msg("ignoring unknown command")
	}
}

func (b *Broker) handlePlayer(ctx context.Context, c Conn, cmd Command) {
	s, o, ok := b.seat(c, cmd.RoomCode)
	if !ok {
		return
	}

	switch cmd.Type {
	case CmdSelectGame:
		s.selectGame(o, cmd.GameKind)
	case CmdPlayerReady:
		s.setReady(o, cmd.Ready)
	case CmdStartGame:
		s.start(ctx, o, b.repo, cmd.GameKind, cmd.Level)
	case CmdSubmitAnswer:
		s.submitAnswer(o, cmd.Action, cmd.Value)
	case CmdUpdateScore:
		s.addPoints(o, o.role, cmd.Points)
	case CmdNextTask:
		s.nextTask(o, cmd.SwitchTurn)
	case CmdAddWord:
		s.addWord(o, cmd.Word)
	case CmdFinishGame:
		s.finish(o)
	case CmdReturnToGames:
		s.returnToGames(o)
	}
}

// seat resolves a player command to the sender's room. Commands from
// connections without a seat, or naming a room other than their own, are
// stale and ignored.
func (b *Broker) seat(c Conn, roomCode string) (*Session, origin, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bnd, ok := b.bindings[c.ID()]
	if !ok {
		return nil, origin{}, false
	}

	if roomCode != "" && NormalizeCode(roomCode) != bnd.code {
		b.log.Debug().Str("conn", c.ID()).Str("room", roomCode).Msg("ignoring command for another room")
		return nil, origin{}, false
	}

	s, ok := b.rooms[bnd.code]
	if !ok {
		return nil, origin{}, false
	}

	return s, origin{conn: c.ID(), role: bnd.role}, true
}

// CreateRoom opens a room under an unused code with c seated first.
func (b *Broker) CreateRoom(c Conn) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, bound := b.bindings[c.ID()]; bound {
		c.Send(errorMessage(ErrAlreadyInRoom))
		return "", ErrAlreadyInRoom
	}

	code := b.unusedCodeLocked()
	s := newSession(code, b.ticks, b.now, b.log)

	role, err := s.join(c)
	if err != nil {
		return "", err
	}

	b.rooms[code] = s
	b.bindings[c.ID()] = binding{code: code, role: role}

	b.log.Info().Str("room", code).Str("conn", c.ID()).Msg("room created")

	return code, nil
}

// unusedCodeLocked retries the generator until it hits a code that no live
// room holds.
func (b *Broker) unusedCodeLocked() string {
	for {
		code := b.newCode()
		if _, taken := b.rooms[code]; !taken {
			return code
		}
	}
}

// JoinRoom seats c in the room with the given code.
func (b *Broker) JoinRoom(c Conn, code string) (Role, error) {
	code = NormalizeCode(code)

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, bound := b.bindings[c.ID()]; bound {
		c.Send(errorMessage(ErrAlreadyInRoom))
		return "", ErrAlreadyInRoom
	}

	s, ok := b.rooms[code]
	if !ok {
		c.Send(errorMessage(ErrRoomNotFound))
		return "", ErrRoomNotFound
	}

	role, err := s.join(c)
	if err != nil {
		c.Send(errorMessage(err))
		return "", err
	}

	b.bindings[c.ID()] = binding{code: code, role: role}

	return role, nil
}

// Lookup returns the live room with the given code.
func (b *Broker) Lookup(code string) (*Session, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.rooms[NormalizeCode(code)]
	return s, ok
}

// Disconnect forgets everything tied to c. A room left without players is
// evicted in the same step.
func (b *Broker) Disconnect(c Conn) {
	id := c.ID()

	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.admins, id)
	b.unwatchLocked(id)

	bnd, ok := b.bindings[id]
	if !ok {
		return
	}
	delete(b.bindings, id)

	s, ok := b.rooms[bnd.code]
	if !ok {
		return
	}

	if s.leave(id) == 0 {
		b.evictLocked(bnd.code)
	}
}

// evictLocked removes a room, stops its countdown and returns the
// connections still seated in it.
func (b *Broker) evictLocked(code string) []Conn {
	s, ok := b.rooms[code]
	if !ok {
		return nil
	}

	delete(b.rooms, code)

	for conn, watched := range b.watching {
		if watched == code {
			delete(b.watching, conn)
		}
	}

	conns := s.close()
	for _, c := range conns {
		delete(b.bindings, c.ID())
	}

	b.log.Info().Str("room", code).Msg("room evicted")

	return conns
}

// Reap evicts rooms with no activity since cutoff and drops their
// connections. It returns the number of rooms evicted.
func (b *Broker) Reap(cutoff time.Time) int {
	var stale []Conn
	evicted := 0

	b.mu.Lock()
	for code, s := range b.rooms {
		if s.idleSince(cutoff) {
			stale = append(stale, b.evictLocked(code)...)
			evicted++
		}
	}
	b.mu.Unlock()

	for _, c := range stale {
		c.Close()
	}

	return evicted
}

// RunReaper evicts rooms idle for longer than idle until ctx is done.
func (b *Broker) RunReaper(ctx context.Context, idle time.Duration) {
	if idle <= 0 {
		return
	}

	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := b.Reap(b.now().Add(-idle)); n > 0 {
				b.log.Info().Int("rooms", n).Dur("idle", idle).Msg("reaped idle rooms")
			}
		}
	}
}

// Shutdown evicts every room and closes its connections.
func (b *Broker) Shutdown() {
	var conns []Conn

	b.mu.Lock()
	for code := range b.rooms {
		conns = append(conns, b.evictLocked(code)...)
	}
	b.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}

// Rooms returns a summary of every live room, ordered by code.
func (b *Broker) Rooms() []Summary {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.summariesLocked()
}

func (b *Broker) summariesLocked() []Summary {
	out := make([]Summary, 0, len(b.rooms))
	for _, s := range b.rooms {
		out = append(out, s.summary())
	}

	slices.SortFunc(out, func(a, b Summary) int {
		return strings.Compare(a.RoomCode, b.RoomCode)
	})

	return out
}
