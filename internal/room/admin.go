package room

import (
	"context"
	"crypto/subtle"
)

// adminCommands lists the privileged commands without the admin_ prefix.
var adminCommands = map[string]bool{
	CmdGetActiveGames: true,
	CmdGetTasks:       true,
	CmdAddTask:        true,
	CmdDeleteTask:     true,
	CmdUpdateTask:     true,
}

func (b *Broker) login(c Conn, password string) {
	ok := b.password != "" &&
		subtle.ConstantTimeCompare([]byte(password), []byte(b.password)) == 1

	b.mu.Lock()
	if ok {
		b.admins[c.ID()] = true
	} else {
		delete(b.admins, c.ID())
		b.unwatchLocked(c.ID())
	}
	b.mu.Unlock()

	c.Send(AdminAuthenticated{Type: EvtAdminAuthenticated, Success: ok})

	if ok {
		b.log.Info().Str("conn", c.ID()).Msg("admin logged in")
	} else {
		b.log.Warn().Str("conn", c.ID()).Msg("failed admin login")
	}
}

func (b *Broker) isAdmin(c Conn) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.admins[c.ID()]
}

// handleAdmin runs a privileged command. Connections that have not logged
// in get no reply at all.
func (b *Broker) handleAdmin(ctx context.Context, c Conn, cmd Command) {
	if !b.isAdmin(c) {
		return
	}

	switch cmd.Type {
	case CmdAdminGetGames, CmdGetActiveGames:
		c.Send(AdminGamesList{Type: EvtAdminGamesList, Games: b.Rooms()})
	case CmdAdminWatchGame:
		b.watch(c, cmd.RoomCode)
	case CmdAdminUnwatch:
		b.mu.Lock()
		b.unwatchLocked(c.ID())
		b.mu.Unlock()
	case CmdAdminAddScore, CmdAdminNextTask, CmdAdminSwitchTurn,
		CmdAdminResetTimer, CmdAdminPauseTimer, CmdAdminFinishGame:
		b.override(c, cmd)
	case CmdGetTasks, CmdAddTask, CmdDeleteTask, CmdUpdateTask:
		b.manageTasks(ctx, c, cmd)
	}
}

// watch subscribes c to a room's broadcasts. An admin watches one room at
// a time.
func (b *Broker) watch(c Conn, code string) {
	code = NormalizeCode(code)

	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.rooms[code]
	if !ok {
		c.Send(errorMessage(ErrRoomNotFound))
		return
	}

	if b.watching[c.ID()] != code {
		b.unwatchLocked(c.ID())
	}

	b.watching[c.ID()] = code
	s.watch(c)
}

func (b *Broker) unwatchLocked(conn string) {
	code, ok := b.watching[conn]
	if !ok {
		return
	}

	delete(b.watching, conn)

	if s, ok := b.rooms[code]; ok {
		s.unwatch(conn)
	}
}

// override applies a forced mutation through the same session methods the
// players use, then sends the acting admin the resulting state.
func (b *Broker) override(c Conn, cmd Command) {
	s, ok := b.Lookup(cmd.RoomCode)
	if !ok {
		c.Send(errorMessage(ErrRoomNotFound))
		return
	}

	o := adminOrigin(c.ID())

	switch cmd.Type {
	case CmdAdminAddScore:
		s.addPoints(o, cmd.Role, cmd.Points)
	case CmdAdminNextTask:
		s.nextTask(o, true)
	case CmdAdminSwitchTurn:
		s.switchTurn(o)
	case CmdAdminResetTimer:
		s.resetTimer(o, cmd.Seconds)
	case CmdAdminPauseTimer:
		s.toggleTimer(o)
	case CmdAdminFinishGame:
		s.finish(o)
	}

	b.log.Info().Str("conn", c.ID()).Str("room", s.Code()).Str("type", cmd.Type).Msg("admin override")

	c.Send(AdminGameData{Type: EvtAdminGameData, Game: s.snapshot()})
}

func (b *Broker) manageTasks(ctx context.Context, c Conn, cmd Command) {
	log := b.log.With().Str("conn", c.ID()).Str("category", cmd.Category).Logger()

	switch cmd.Type {
	case CmdGetTasks:
		records, err := b.repo.List(ctx, cmd.Category, cmd.Level)
		if err != nil {
			log.Warn().Err(err).Msg("listing tasks")
			c.Send(errorMessage(err))
			return
		}
		c.Send(TasksList{Type: EvtTasksList, Category: cmd.Category, Level: cmd.Level, Tasks: records})

	case CmdAddTask:
		rec, err := b.repo.Add(ctx, cmd.Category, cmd.Record)
		if err != nil {
			log.Warn().Err(err).Msg("adding task")
			c.Send(errorMessage(err))
			return
		}
		log.Info().Str("task", rec.ID).Msg("task added")
		c.Send(TaskChanged{Type: EvtTaskAdded, Category: cmd.Category, Task: rec})

	case CmdUpdateTask:
		rec, err := b.repo.Update(ctx, cmd.Category, cmd.TaskID, cmd.Patch)
		if err != nil {
			log.Warn().Err(err).Str("task", cmd.TaskID).Msg("updating task")
			c.Send(errorMessage(err))
			return
		}
		log.Info().Str("task", rec.ID).Msg("task updated")
		c.Send(TaskChanged{Type: EvtTaskUpdated, Category: cmd.Category, Task: rec})

	case CmdDeleteTask:
		if err := b.repo.Delete(ctx, cmd.Category, cmd.TaskID); err != nil {
			log.Warn().Err(err).Str("task", cmd.TaskID).Msg("deleting task")
			c.Send(errorMessage(err))
			return
		}
		log.Info().Str("task", cmd.TaskID).Msg("task deleted")
		c.Send(TaskDeleted{Type: EvtTaskDeleted, Category: cmd.Category, TaskID: cmd.TaskID})
	}
}
