package bot

import (
	"github.com/m3rciful/familybudget/core/telegram/helpers"
	"github.com/m3rciful/familybudget/core/telegram/keyboard"
	"github.com/m3rciful/familybudget/internal/conversation"

	tele "gopkg.in/telebot.v4"
)

func markup(rows [][]conversation.Button) *tele.ReplyMarkup {
	if rows == nil {
		return nil
	}
	btns := make([][]keyboard.InlineBtn, len(rows))
	for i, row := range rows {
		btns[i] = make([]keyboard.InlineBtn, len(row))
		for j, b := range row {
			btns[i][j] = keyboard.InlineBtn{Text: b.Text, Data: b.Data}
		}
	}
	return keyboard.InlineButtonsRows(btns...)
}

// render delivers replies in order. Edits need the message a button was
// pressed on; without one they are sent as new messages.
func render(c tele.Context, replies []conversation.Reply) error {
	for _, r := range replies {
		var err error
		kind := r.Kind
		if kind != conversation.Send && c.Callback() == nil {
			kind = conversation.Send
		}
		switch kind {
		case conversation.Edit:
			err = helpers.Edit(c, r.Text, markup(r.Keyboard))
		case conversation.EditKeyboard:
			kb := markup(r.Keyboard)
			if kb == nil {
				kb = keyboard.RemoveKeyboard()
			}
			err = helpers.EditKeyboard(c, kb)
		default:
			if r.Keyboard != nil {
				err = helpers.SendKeyboard(c, r.Text, markup(r.Keyboard))
			} else {
				err = helpers.SendText(c, r.Text)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}
