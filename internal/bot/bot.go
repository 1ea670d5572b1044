// Package bot adapts the conversation machine and status reporter to
// Telegram updates.
package bot

import (
	"sync/atomic"

	"github.com/m3rciful/familybudget/core/telegram/sender"
	"github.com/m3rciful/familybudget/internal/conversation"
	"github.com/m3rciful/familybudget/internal/status"
)

// Bot holds the handlers for one running bot.
type Bot struct {
	machine  *conversation.Machine
	reporter *status.Reporter
	sender   atomic.Pointer[sender.Dispatcher]
}

// New builds the handler set over machine and reporter.
func New(machine *conversation.Machine, reporter *status.Reporter) *Bot {
	return &Bot{machine: machine, reporter: reporter}
}

// AttachSender exposes the outbound dispatcher to /stats.
func (b *Bot) AttachSender(d *sender.Dispatcher) {
	b.sender.Store(d)
}
