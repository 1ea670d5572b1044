package app

import (
	"context"
	"fmt"

	"github.com/m3rciful/familybudget/core/logger"
	tg "github.com/m3rciful/familybudget/core/telegram"
	"github.com/m3rciful/familybudget/core/telegram/helpers"
	"github.com/m3rciful/familybudget/core/telegram/state"
	"github.com/m3rciful/familybudget/internal/bot"
	"github.com/m3rciful/familybudget/internal/budget"
	"github.com/m3rciful/familybudget/internal/conversation"
	"github.com/m3rciful/familybudget/internal/status"

	tele "gopkg.in/telebot.v4"
)

const msgSlowDown = "Too many requests, please slow down."

// App is a bootstrapped bot ready to run.
type App struct {
	cfg     *Config
	bot     *bot.Bot
	janitor *bot.Janitor
	reg     *tg.Registry
}

// Bootstrap initialises logging and builds the bot from cfg.
func Bootstrap(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	if err := logger.InitLogger(cfg.CoreConfig()); err != nil {
		return nil, fmt.Errorf("app: logger init: %w", err)
	}
	if err := conversation.Validate(); err != nil {
		return nil, err
	}

	client, err := budget.New(budget.Config{
		BaseURL:            cfg.API.BaseURL,
		ServiceToken:       cfg.API.ServiceToken,
		Timeout:            cfg.apiTimeout(),
		InsecureSkipVerify: cfg.API.InsecureSkipVerify,
	})
	if err != nil {
		return nil, err
	}

	machine := conversation.New(client, state.NewStore[conversation.Session]())
	b := bot.New(machine, status.NewReporter(client))
	reg := tg.NewRegistry()
	if err := b.Register(reg); err != nil {
		return nil, fmt.Errorf("app: register handlers: %w", err)
	}

	return &App{
		cfg: cfg,
		bot: b,
		janitor: bot.NewJanitor(machine, bot.JanitorOptions{
			DraftTTL: cfg.draftTTL(),
			IdleTTL:  cfg.idleTTL(),
			Interval: cfg.sweepInterval(),
		}),
		reg: reg,
	}, nil
}

// TelegramRunOptions assembles the runtime options for tg.RunTelegram.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()
	return tg.RunOptions{
		Config:   core,
		Registry: a.reg,
		Middlewares: tg.DefaultMiddlewares(core, func(c tele.Context) error {
			if c.Callback() != nil {
				return c.Respond(&tele.CallbackResponse{Text: msgSlowDown})
			}
			return helpers.SendText(c, msgSlowDown)
		}),
		Routes: a.bot.Routes(a.reg, core.Telegram.AdminID),
		OnStart: func(_ context.Context, rt tg.Runtime) error {
			a.bot.AttachSender(rt.Dispatcher)
			a.janitor.StartCleanup()
			return nil
		},
		OnStop: func(context.Context, tg.Runtime) error {
			a.janitor.Stop()
			return nil
		},
	}, nil
}
