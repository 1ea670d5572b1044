package middleware

import (
	"log/slog"

	"github.com/m3rciful/familybudget/core/logger"
	tghelpers "github.com/m3rciful/familybudget/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware ensures that only the admin user can invoke downstream handlers.
// A zero AdminID rejects everyone.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if opts.AdminID == 0 || user == nil || user.ID != opts.AdminID {
				logger.Warn(tghelpers.BuildContext(c), "tg", "access.denied",
					slog.String("status", "skip"),
				)
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
