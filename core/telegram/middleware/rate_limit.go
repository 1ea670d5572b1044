package middleware

import (
	"log/slog"
	"sync"
	"time"

	coreconfig "github.com/m3rciful/familybudget/core/config"
	"github.com/m3rciful/familybudget/core/logger"
	tghelpers "github.com/m3rciful/familybudget/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// Now overrides the clock in tests.
	Now func() time.Time
}

// UpdateKind names the update type in rate limit exclusions.
func UpdateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return coreconfig.UpdateCallback
	case upd.Message != nil:
		return coreconfig.UpdateMessage
	case upd.Query != nil:
		return coreconfig.UpdateInlineQuery
	}
	return "other"
}

// RateLimitMiddleware returns a middleware that enforces a minimum interval
// between updates from the same user. Limited updates are dropped.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	var (
		mu       sync.Mutex
		lastSeen = make(map[int64]time.Time)
		lastGC   time.Time
	)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			if _, skip := opts.Exclude[UpdateKind(c.Update())]; skip {
				return next(c)
			}

			t := now()
			mu.Lock()
			if t.Sub(lastGC) > time.Minute {
				for id, seen := range lastSeen {
					if t.Sub(seen) >= opts.Interval {
						delete(lastSeen, id)
					}
				}
				lastGC = t
			}
			if last, ok := lastSeen[user.ID]; ok && t.Sub(last) < opts.Interval {
				mu.Unlock()
				logger.Warn(tghelpers.BuildContext(c), "tg", "tg.rate_limit",
					slog.String("status", "rate_limited"),
					slog.String("outcome", "rate_limited"),
				)
				if opts.OnLimited != nil {
					_ = opts.OnLimited(c)
				}
				return nil
			}
			lastSeen[user.ID] = t
			mu.Unlock()
			return next(c)
		}
	}
}
