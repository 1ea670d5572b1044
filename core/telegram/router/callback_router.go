package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/familybudget/core/telegram"
	"github.com/m3rciful/familybudget/core/telegram/callbacks"
	"github.com/m3rciful/familybudget/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute returns a handler that routes callbacks through the registry.
// Every callback query is answered before dispatch so the client stops its
// loading indicator.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}

		key := callbacks.CallbackKey(c)
		_ = c.Respond()

		cbHandler, route, ok := reg.ResolveCallback(key)
		if !ok || cbHandler == nil {
			return handleWithSummary(c, "callback.not_found", start, "skip", "skip", func() error {
				if fb := reg.CallbackNotFound(); fb != nil {
					return fb(c)
				}
				return nil
			}, slog.String("cb_key", key))
		}

		name := "callback." + normalizeHandlerName(route)
		return handleWithSummary(c, name, start, "", "", func() error {
			return cbHandler(c)
		}, slog.String("cb_key", key))
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
