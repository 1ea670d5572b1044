package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/familybudget/core/logger"
	"github.com/m3rciful/familybudget/internal/conversation"
)

// JanitorOptions sets the expiry policy. Zero TTLs disable that sweep.
type JanitorOptions struct {
	DraftTTL time.Duration
	IdleTTL  time.Duration
	Interval time.Duration
}

// Janitor periodically drops abandoned drafts and idle sessions.
type Janitor struct {
	machine *conversation.Machine
	opts    JanitorOptions

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewJanitor returns a stopped janitor for machine.
func NewJanitor(machine *conversation.Machine, opts JanitorOptions) *Janitor {
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	return &Janitor{machine: machine, opts: opts}
}

// StartCleanup begins periodic sweeps. Calling it twice is a no-op.
func (j *Janitor) StartCleanup() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.stop != nil {
		return
	}
	j.stop = make(chan struct{})
	j.done = make(chan struct{})
	go j.loop(j.stop, j.done)
}

func (j *Janitor) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(j.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			j.Sweep()
		case <-stop:
			return
		}
	}
}

// Sweep runs one expiry pass and returns the drafts and sessions dropped.
func (j *Janitor) Sweep() (drafts, sessions int) {
	start := time.Now()
	drafts = j.machine.ExpireDrafts(j.opts.DraftTTL)
	if j.opts.IdleTTL > 0 {
		sessions = j.machine.Store().Evict(j.opts.IdleTTL)
	}
	if drafts > 0 || sessions > 0 {
		logger.LogEvent(context.Background(), logger.Session, slog.LevelInfo, "session.sweep",
			slog.String("status", "ok"),
			slog.Int("drafts", drafts),
			slog.Int("count", sessions),
			slog.Duration("duration", time.Since(start)),
		)
	}
	return drafts, sessions
}

// Stop ends the sweep loop and waits for it to exit.
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.stop == nil {
		return
	}
	close(j.stop)
	<-j.done
	j.stop, j.done = nil, nil
}
