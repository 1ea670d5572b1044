package telegram

import (
	"errors"
	"testing"

	tele "gopkg.in/telebot.v4"
)

func named(name string, calls *[]string) tele.HandlerFunc {
	return func(tele.Context) error {
		*calls = append(*calls, name)
		return nil
	}
}

func TestResolveCallbackExactBeatsPrefix(t *testing.T) {
	var calls []string
	r := NewRegistry()
	if err := r.RegisterCallbackPrefix("calendar-", named("calendar", &calls)); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterCallbackPrefix("calendar-month-", named("month", &calls)); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterCallback("calendar-today", named("today", &calls)); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		key, route string
	}{
		{"calendar-today", "calendar-today"},
		{"calendar-month-2024-3", "calendar-month-*"},
		{"calendar-day-2024-3-5", "calendar-*"},
	}
	for _, tc := range cases {
		h, route, ok := r.ResolveCallback(tc.key)
		if !ok || route != tc.route {
			t.Fatalf("ResolveCallback(%q) = %q, %v; want %q", tc.key, route, ok, tc.route)
		}
		_ = h(nil)
	}
	want := []string{"today", "month", "calendar"}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
	}

	if _, _, ok := r.ResolveCallback("category_1"); ok {
		t.Fatalf("unexpected match for unregistered key")
	}
}

func TestRegisterCallbackRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	h := func(tele.Context) error { return nil }
	if err := r.RegisterCallback("profile", h); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterCallback("profile", h); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if err := r.RegisterCallbackPrefix("who_", h); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterCallbackPrefix("who_", h); err == nil {
		t.Fatalf("expected duplicate prefix error")
	}
	if err := r.RegisterCallback("", h); err == nil {
		t.Fatalf("expected error for empty key")
	}
	got := r.ListCallbacks()
	if len(got) != 2 || got[0] != "profile" || got[1] != "who_*" {
		t.Fatalf("ListCallbacks = %v", got)
	}
}

type fakeSetter struct {
	got []tele.Command
	err error
}

func (f *fakeSetter) SetCommands(opts ...interface{}) error {
	if len(opts) > 0 {
		f.got, _ = opts[0].([]tele.Command)
	}
	return f.err
}

func TestCommandsAndMenu(t *testing.T) {
	r := NewRegistry()
	h := func(tele.Context) error { return nil }
	r.RegisterCommand("/start", Command{Handler: h, Description: "Sign in"})
	r.RegisterCommand("/cancel", Command{Handler: h, Description: "Cancel", Aliases: []string{"stop"}})
	r.RegisterCommand("/stats", Command{Handler: h, Description: "Stats", AdminOnly: true})
	r.RegisterCommand("nolead", Command{Handler: h, Description: "x"})
	r.RegisterCommand("/start", Command{Handler: h, Description: "dup"})

	if len(r.Commands()) != 3 {
		t.Fatalf("commands = %d, want 3", len(r.Commands()))
	}
	if key, _, ok := r.LookupCommand("stop"); !ok || key != "/cancel" {
		t.Fatalf("alias lookup = %q, %v", key, ok)
	}
	if key, cmd, ok := r.LookupCommand("/start"); !ok || key != "/start" || cmd.Description != "Sign in" {
		t.Fatalf("lookup /start = %q %+v %v", key, cmd, ok)
	}

	fs := &fakeSetter{}
	InitBotCommands(fs, r)
	if len(fs.got) != 2 || fs.got[0].Text != "cancel" || fs.got[1].Text != "start" {
		t.Fatalf("menu = %+v", fs.got)
	}

	InitBotCommands(&fakeSetter{err: errors.New("boom")}, r)
}
