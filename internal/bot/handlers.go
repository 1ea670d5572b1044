package bot

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/familybudget/core/buildinfo"
	"github.com/m3rciful/familybudget/core/logger"
	"github.com/m3rciful/familybudget/core/telegram/callbacks"
	"github.com/m3rciful/familybudget/core/telegram/helpers"
	"github.com/m3rciful/familybudget/core/telegram/state"
	"github.com/m3rciful/familybudget/internal/conversation"

	tele "gopkg.in/telebot.v4"
)

const (
	msgUnknownText = "I did not understand that. " + conversation.MsgSignIn
	msgNotAdmin    = "This command is only available to the bot admin."
)

func (b *Bot) onStart(c tele.Context) error {
	var userID int64
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	return render(c, b.machine.Start(helpers.BuildContext(c), state.KeyOf(c), userID))
}

func (b *Bot) onCancel(c tele.Context) error {
	return render(c, b.machine.Cancel(helpers.BuildContext(c), state.KeyOf(c)))
}

func (b *Bot) onMenu(c tele.Context) error {
	return render(c, b.machine.Menu(state.KeyOf(c)))
}

func (b *Bot) onBegin(c tele.Context) error {
	return render(c, b.machine.Begin(helpers.BuildContext(c), state.KeyOf(c)))
}

func (b *Bot) onAccountStatus(c tele.Context) error {
	text := b.reporter.AccountStatus(helpers.BuildContext(c), b.machine.Token(state.KeyOf(c)))
	return helpers.Edit(c, text, nil)
}

func (b *Bot) onFamilyStatus(c tele.Context) error {
	text := b.reporter.FamilyStatus(helpers.BuildContext(c), b.machine.Token(state.KeyOf(c)))
	return helpers.Edit(c, text, nil)
}

func (b *Bot) onProfile(c tele.Context) error {
	key := state.KeyOf(c)
	text := b.reporter.Profile(helpers.BuildContext(c), b.machine.Token(key), key.UserID)
	return helpers.Edit(c, text, nil)
}

// onStep feeds a step button to the machine. Buttons from a finished or
// abandoned conversation are dropped.
func (b *Bot) onStep(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	data := callbacks.CallbackKey(c)
	replies, ok := b.machine.HandleCallback(ctx, state.KeyOf(c), data)
	if !ok {
		logger.Debug(ctx, "fsm", "fsm.callback.stale",
			slog.String("status", "skip"),
			slog.String("payload", logger.SanitizeLimit(data, 64)),
		)
		return nil
	}
	return render(c, replies)
}

func (b *Bot) onIgnore(tele.Context) error {
	return nil
}

// InProgress reports whether the sender is in the middle of a transaction.
func (b *Bot) InProgress(c tele.Context) bool {
	return b.machine.Active(state.KeyOf(c))
}

// ManagerHandler feeds free text to the active conversation. Text arriving
// while a button is expected gets a hint instead.
func (b *Bot) ManagerHandler(c tele.Context) error {
	replies, ok := b.machine.HandleText(helpers.BuildContext(c), state.KeyOf(c), c.Text())
	if !ok {
		return helpers.SendText(c, conversation.MsgUseButtons)
	}
	return render(c, replies)
}

func (b *Bot) onUnknownText(c tele.Context) error {
	return helpers.SendText(c, msgUnknownText)
}

func (b *Bot) onAdminReject(c tele.Context) error {
	return helpers.SendText(c, msgNotAdmin)
}

func helpText(cmds []tele.Command) string {
	var sb strings.Builder
	sb.WriteString("Available commands:")
	for _, cmd := range cmds {
		fmt.Fprintf(&sb, "\n  /%s - %s", cmd.Text, cmd.Description)
	}
	return sb.String()
}

func (b *Bot) onStats(c tele.Context) error {
	store := b.machine.Store()
	drafts := 0
	store.Sweep(func(_ state.Key, s *state.Session[conversation.Session]) {
		if !s.Idle() {
			drafts++
		}
	})
	var sent, failed uint64
	if d := b.sender.Load(); d != nil {
		sent, failed = d.SentCount(), d.ErrorCount()
	}
	text := fmt.Sprintf("Bot %s\n  Sessions: %d\n  Active drafts: %d\n  Messages sent: %d\n  Send failures: %d",
		buildinfo.String(), store.Len(), drafts, sent, failed)
	logger.Info(helpers.BuildContext(c), "app", "stats",
		slog.Int("count", store.Len()),
		slog.Int("drafts", drafts),
	)
	return helpers.SendText(c, text)
}
