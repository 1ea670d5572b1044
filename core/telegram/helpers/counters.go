package helpers

import tele "gopkg.in/telebot.v4"

const (
	counterMessages = "out_messages"
	counterKeyboard = "out_kb"
)

// countOutgoing records one outbound message for the handler summary.
func countOutgoing(c tele.Context, withKeyboard bool) {
	n, _ := c.Get(counterMessages).(int)
	c.Set(counterMessages, n+1)
	if withKeyboard {
		c.Set(counterKeyboard, true)
	}
}

// GetCounters returns how many messages the current update produced and
// whether any of them carried a keyboard.
func GetCounters(c tele.Context) (int, bool) {
	n, _ := c.Get(counterMessages).(int)
	kb, _ := c.Get(counterKeyboard).(bool)
	return n, kb
}
