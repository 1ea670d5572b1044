package bot

import (
	tg "github.com/m3rciful/familybudget/core/telegram"
	"github.com/m3rciful/familybudget/core/telegram/helpers"
	"github.com/m3rciful/familybudget/core/telegram/router"
	"github.com/m3rciful/familybudget/internal/calendar"
	"github.com/m3rciful/familybudget/internal/conversation"

	tele "gopkg.in/telebot.v4"
)

// Register adds the commands and callbacks of the bot to reg.
func (b *Bot) Register(reg *tg.Registry) error {
	reg.RegisterCommand("/start", tg.Command{Handler: b.onStart, Description: "Sign in and show the menu"})
	reg.RegisterCommand("/cancel", tg.Command{Handler: b.onCancel, Description: "Cancel the current transaction"})
	reg.RegisterCommand("/menu", tg.Command{Handler: b.onMenu, Description: "Show the main menu"})
	reg.RegisterCommand("/help", tg.Command{
		Handler: func(c tele.Context) error {
			return helpers.SendText(c, helpText(reg.ListCommands(true)))
		},
		Description: "List commands",
	})
	reg.RegisterCommand("/stats", tg.Command{Handler: b.onStats, Description: "Runtime statistics", AdminOnly: true, Hidden: true})

	exact := map[string]tele.HandlerFunc{
		conversation.CallbackAddTransaction: b.onBegin,
		conversation.CallbackAccountStatus:  b.onAccountStatus,
		conversation.CallbackFamilyStatus:   b.onFamilyStatus,
		conversation.CallbackProfile:        b.onProfile,
		calendar.Ignore:                     b.onIgnore,
	}
	for key, h := range exact {
		if err := reg.RegisterCallback(key, h); err != nil {
			return err
		}
	}
	for _, prefix := range conversation.Prefixes() {
		if err := reg.RegisterCallbackPrefix(prefix, b.onStep); err != nil {
			return err
		}
	}
	reg.SetTextFallback(b.onUnknownText)
	return nil
}

// Routes returns the telebot routes for reg with this bot as the text FSM.
func (b *Bot) Routes(reg *tg.Registry, adminID int64) []tg.Route {
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       adminID,
		OnAdminReject: b.onAdminReject,
	})
	routes = append(routes, router.CallbackRoute(reg))
	routes = append(routes, router.TextRoutes(b, reg, router.TextOptions{})...)
	return routes
}
