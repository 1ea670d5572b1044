package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/familybudget/core/logger"
	"github.com/m3rciful/familybudget/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("op", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends raw text (no parse mode) to the current chat.
func SendText(c tele.Context, text string) error {
	countOutgoing(c, false)
	return sendAsync(c, "send.text", "sendMessage", func() error {
		return c.Send(text)
	})
}

// SendKeyboard sends text with an inline keyboard to the current chat.
func SendKeyboard(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	countOutgoing(c, markup != nil)
	return sendAsync(c, "send.keyboard", "sendMessage", func() error {
		if markup == nil {
			return c.Send(text)
		}
		return c.Send(text, markup)
	})
}

// Edit replaces the text of the message the callback came from. A nil
// markup removes the inline keyboard.
func Edit(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	countOutgoing(c, markup != nil)
	return sendAsync(c, "edit.text", "editMessageText", func() error {
		if markup == nil {
			return c.Edit(text)
		}
		return c.Edit(text, markup)
	})
}

// EditKeyboard swaps only the inline keyboard of the callback's message.
func EditKeyboard(c tele.Context, markup *tele.ReplyMarkup) error {
	countOutgoing(c, true)
	return sendAsync(c, "edit.keyboard", "editMessageReplyMarkup", func() error {
		return c.Edit(markup)
	})
}
