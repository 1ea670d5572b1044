// Package router turns registry entries into Telegram routes wrapped with
// the shared middleware and a per-update handler summary.
package router

import (
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/familybudget/core/logger"
	tghelpers "github.com/m3rciful/familybudget/core/telegram/helpers"
	"github.com/m3rciful/familybudget/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

func handleWithSummary(c tele.Context, handlerName string, start time.Time, statusOverride, outcomeOverride string, fn func() error, extras ...slog.Attr) error {
	tghelpers.WithHandler(c, handlerName)
	err := fn()
	logHandlerSummary(c, handlerName, start, statusOverride, outcomeOverride, err, extras...)
	return err
}

func logHandlerSummary(c tele.Context, handlerName string, start time.Time, statusOverride, outcomeOverride string, err error, extras ...slog.Attr) {
	ctx := tghelpers.WithHandler(c, handlerName)
	msgs, kb := tghelpers.GetCounters(c)

	status := statusOverride
	if status == "" {
		status = logger.Status(err)
	}
	outcome := outcomeOverride
	if outcome == "" {
		outcome = logger.Status(err)
	}

	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(netutil.Redact(err), 256)),
			slog.String("err_code", deriveErrorCode(err)),
			slog.String("error_kind", netutil.Classify(err)),
		)
	}
	attrs = append(attrs, extras...)
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
	}
	logger.LogEvent(ctx, logger.TG, level, "handler.handled", attrs...)
}

// startedAt returns when the update entered the middleware chain.
func startedAt(c tele.Context) time.Time {
	if t, ok := c.Get("update_start").(time.Time); ok {
		return t
	}
	return time.Now()
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}

// deriveErrorCode names an error for log aggregation: HTTP_<status> when a
// status is known, else the error's type name.
func deriveErrorCode(err error) string {
	if err == nil {
		return ""
	}
	if code := netutil.StatusCode(err); code > 0 {
		return "HTTP_" + strconv.Itoa(code)
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil && t.Name() != "" {
		return strings.ToUpper(t.Name())
	}
	return "UNKNOWN_ERROR"
}
