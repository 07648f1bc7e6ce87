package room

import (
	"context"
	"time"
)

const tickInterval = time.Second

// TickSource supplies the ticks that drive a countdown. The returned stop
// function releases the source.
type TickSource interface {
	Ticks(d time.Duration) (<-chan time.Time, func())
}

type wallClock struct{}

func (wallClock) Ticks(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// countdown is the single armed timer of a session. A session compares
// its current handle against the one a tick belongs to, so ticks from a
// replaced countdown are discarded.
type countdown struct {
	remaining int
	paused    bool
	cancel    context.CancelFunc
}

func (cd *countdown) snapshot() TimerSnapshot {
	if cd == nil {
		return TimerSnapshot{}
	}
	return TimerSnapshot{Running: true, Remaining: cd.remaining, Paused: cd.paused}
}

// armLocked replaces any running countdown with a fresh one of seconds.
// Zero or fewer seconds leaves the session untimed.
func (s *Session) armLocked(seconds int) {
	s.cancelTimerLocked()

	if seconds <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	cd := &countdown{remaining: seconds, cancel: cancel}
	s.timer = cd

	ticks, stop := s.ticks.Ticks(tickInterval)
	go s.runCountdown(ctx, cd, ticks, stop)
}

func (s *Session) cancelTimerLocked() {
	if s.timer == nil {
		return
	}
	s.timer.cancel()
	s.timer = nil
}

func (s *Session) runCountdown(ctx context.Context, cd *countdown, ticks <-chan time.Time, stop func()) {
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			if !s.tick(cd) {
				return
			}
		}
	}
}

// tick advances cd by one second. It reports whether the countdown should
// keep running.
func (s *Session) tick(cd *countdown) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.timer != cd {
		return false
	}

	if cd.paused {
		return true
	}

	if cd.remaining > 0 {
		cd.remaining--
		s.broadcastLocked(TimerUpdate{Type: EvtTimerUpdate, Remaining: cd.remaining})
	}

	if cd.remaining > 0 {
		return true
	}

	s.cancelTimerLocked()
	s.broadcastLocked(Event{Type: EvtTimerFinished})
	s.finishLocked()

	return false
}

// toggleTimerLocked pauses or resumes the countdown without touching the
// remaining time.
func (s *Session) toggleTimerLocked() {
	if s.timer == nil {
		return
	}

	s.timer.paused = !s.timer.paused
	s.broadcastLocked(TimerPaused{
		Type:      EvtTimerPaused,
		Paused:    s.timer.paused,
		Remaining: s.timer.remaining,
	})
}
