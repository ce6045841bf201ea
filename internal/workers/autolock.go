// SPDX-License-Identifier: Apache-2.0

package workers

import (
	"context"
	"time"

	"github.com/askarin/fieldvault/internal/logger"
	"github.com/askarin/fieldvault/internal/session"
)

// AutoLockWorker locks the session after a period of inactivity so a
// forgotten terminal does not hold the derived key forever. Checks run on
// a fraction of the idle budget to keep the overshoot small.
type AutoLockWorker struct {
	session *session.Session
	after   time.Duration
	logger  *logger.Logger

	// interval overrides the derived check period when non-zero.
	interval time.Duration

	ctx context.Context
}

// NewAutoLockWorker builds the worker. A zero or negative after duration
// disables it: Run returns immediately.
func NewAutoLockWorker(ctx context.Context, sess *session.Session, after time.Duration, log *logger.Logger) *AutoLockWorker {
	return &AutoLockWorker{
		session: sess,
		after:   after,
		logger:  log,
		ctx:     ctx,
	}
}

// Run implements [Worker]. It spawns the watch goroutine and returns.
func (w *AutoLockWorker) Run() {
	if w.after <= 0 {
		w.logger.Debug().Msg("auto-lock disabled")
		return
	}

	go w.watch()
}

func (w *AutoLockWorker) watch() {
	interval := w.interval
	if interval == 0 {
		interval = w.after / 4
		if interval < time.Second {
			interval = time.Second
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if w.session.State() == session.Unlocked && w.session.IdleFor() >= w.after {
				w.session.Lock()
				w.logger.Info().
					Str("owner_id", w.session.OwnerID()).
					Dur("idle", w.after).
					Msg("session locked after inactivity")
			}
		}
	}
}
