package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	coreconfig "github.com/m3rciful/familybudget/core/config"
	coretelegram "github.com/m3rciful/familybudget/core/telegram"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type app struct {
	opts coretelegram.RunOptions
	err  error
}

func (a app) TelegramRunOptions() (coretelegram.RunOptions, error) { return a.opts, a.err }

func TestRunWiresHooks(t *testing.T) {
	t.Setenv("TEST_CONFIG_PATH", "/etc/bot.yaml")
	var (
		loadedFrom string
		order      []string
	)
	err := Run(Options{
		ConfigEnvVar: "TEST_CONFIG_PATH",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			loadedFrom = path
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(ConfigCarrier) (TelegramApp, error) {
			return app{opts: coretelegram.RunOptions{
				OnStart: func(context.Context, coretelegram.Runtime) error {
					order = append(order, "start")
					return nil
				},
				OnStop: func(context.Context, coretelegram.Runtime) error {
					order = append(order, "stop")
					return nil
				},
			}}, nil
		},
		ShutdownLogger: func() error {
			order = append(order, "logger")
			return nil
		},
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			if err := opts.OnStart(ctx, coretelegram.Runtime{}); err != nil {
				return err
			}
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if loadedFrom != "/etc/bot.yaml" {
		t.Fatalf("config path = %q", loadedFrom)
	}
	if strings.Join(order, ",") != "start,stop,logger" {
		t.Fatalf("order = %v", order)
	}
}

func TestRunErrors(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	if err := Run(Options{}); err == nil {
		t.Fatalf("expected missing LoadConfig error")
	}

	load := func(string) (ConfigCarrier, error) { return carrier{cfg: &coreconfig.Config{}}, nil }
	boot := func(ConfigCarrier) (TelegramApp, error) { return app{}, nil }
	if err := Run(Options{LoadConfig: load, Bootstrap: boot}); err == nil || !strings.Contains(err.Error(), "config path") {
		t.Fatalf("expected config path error, got %v", err)
	}

	err := Run(Options{
		DefaultConfigPath: "x.yaml",
		LoadConfig:        func(string) (ConfigCarrier, error) { return nil, errors.New("nope") },
		Bootstrap:         boot,
		ShutdownLogger:    func() error { return nil },
	})
	if err == nil || !strings.Contains(err.Error(), "failed to load config") {
		t.Fatalf("expected load error, got %v", err)
	}

	err = Run(Options{
		DefaultConfigPath: "x.yaml",
		LoadConfig:        load,
		Bootstrap:         func(ConfigCarrier) (TelegramApp, error) { return app{err: errors.New("bad")}, nil },
		ShutdownLogger:    func() error { return nil },
	})
	if err == nil || !strings.Contains(err.Error(), "options build failed") {
		t.Fatalf("expected options error, got %v", err)
	}
}
