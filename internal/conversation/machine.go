// Package conversation drives the guided transaction entry dialog.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/familybudget/core/logger"
	"github.com/m3rciful/familybudget/core/telegram/state"
	"github.com/m3rciful/familybudget/internal/budget"
	"github.com/m3rciful/familybudget/internal/calendar"
)

// API is the part of the budget client the dialog needs.
type API interface {
	Authenticate(ctx context.Context, telegramUserID int64) (string, error)
	Categories(ctx context.Context, token string) ([]budget.Category, error)
	Users(ctx context.Context, token string) ([]budget.User, error)
	Accounts(ctx context.Context, token string, owner *int64) ([]budget.Account, error)
	Currencies(ctx context.Context, token string) ([]budget.Currency, error)
	SubmitTransaction(ctx context.Context, token string, tx budget.Transaction) error
}

// Session is the per-conversation record kept in the state store.
type Session struct {
	AuthToken string
	Draft     *Draft
}

// Store is the session store used by Machine.
type Store = state.Store[Session]

// Machine sequences the steps. All work on one session runs under that
// session's lock, so API round trips of one user never block another.
type Machine struct {
	api   API
	store *Store
	now   func() time.Time
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock sets the time source used for the initial calendar month.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

// New builds a Machine over api and store.
func New(api API, store *Store, opts ...Option) *Machine {
	m := &Machine{api: api, store: store, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the underlying session store.
func (m *Machine) Store() *Store {
	return m.store
}

// Start authenticates the platform user and shows the menu. Any draft in
// progress is discarded.
func (m *Machine) Start(ctx context.Context, key state.Key, platformUserID int64) []Reply {
	var out []Reply
	m.store.Update(key, func(s *state.Session[Session]) {
		from := s.State
		s.Data.Draft = nil
		s.State = state.StateIdle

		token, err := m.api.Authenticate(ctx, platformUserID)
		if err != nil {
			s.Data.AuthToken = ""
			logger.LogEvent(ctx, logger.FSM, slog.LevelWarn, "fsm.auth",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
			out = []Reply{{Kind: Send, Text: MsgAuthFailed}}
			return
		}
		s.Data.AuthToken = token
		logTransition(ctx, from, state.StateIdle, "auth")
		out = []Reply{menuReply()}
	})
	return out
}

// Menu shows the main menu again for a signed-in session.
func (m *Machine) Menu(key state.Key) []Reply {
	if m.Token(key) == "" {
		return []Reply{{Kind: Send, Text: MsgNotSignedIn}}
	}
	return []Reply{menuReply()}
}

// Begin starts a fresh draft and asks for the title.
func (m *Machine) Begin(ctx context.Context, key state.Key) []Reply {
	var out []Reply
	m.store.Update(key, func(s *state.Session[Session]) {
		if s.Data.AuthToken == "" {
			out = []Reply{{Kind: Send, Text: MsgNotSignedIn}}
			return
		}
		from := s.State
		s.Data.Draft = &Draft{}
		s.State = StateTitle
		logTransition(ctx, from, StateTitle, "begin")
		out = []Reply{{Kind: Edit, Text: MsgEnterTitle}}
	})
	return out
}

// Cancel discards the draft and returns to idle.
func (m *Machine) Cancel(ctx context.Context, key state.Key) []Reply {
	var out []Reply
	m.store.Update(key, func(s *state.Session[Session]) {
		if s.Idle() {
			out = []Reply{{Kind: Send, Text: MsgNothingToCancel}}
			return
		}
		from := s.State
		s.Data.Draft = nil
		s.State = state.StateIdle
		logTransition(ctx, from, state.StateIdle, "cancel")
		out = []Reply{{Kind: Send, Text: MsgCancelled}}
	})
	return out
}

// HandleText feeds free text to the current step. It reports false when no
// text step is active.
func (m *Machine) HandleText(ctx context.Context, key state.Key, text string) ([]Reply, bool) {
	return m.feed(ctx, key, inputText, text)
}

// HandleCallback feeds a button payload to the current step. It reports
// false when no step is waiting for a payload with this prefix. Malformed
// payloads are consumed without changing the session.
func (m *Machine) HandleCallback(ctx context.Context, key state.Key, data string) ([]Reply, bool) {
	return m.feed(ctx, key, inputCallback, data)
}

func (m *Machine) feed(ctx context.Context, key state.Key, kind inputKind, input string) ([]Reply, bool) {
	if !m.store.InProgress(key) {
		return nil, false
	}
	var (
		out      []Reply
		consumed bool
	)
	m.store.Update(key, func(s *state.Session[Session]) {
		tr, ok := transitions[s.State]
		if !ok || tr.input != kind || s.Data.Draft == nil {
			return
		}
		if kind == inputCallback && !strings.HasPrefix(input, tr.prefix) {
			return
		}
		consumed = true

		replies, advance, err := tr.handle(m, ctx, &s.Data, input)
		if err != nil {
			logger.LogEvent(ctx, logger.FSM, slog.LevelWarn, "fsm.input.invalid",
				slog.String("status", "skip"),
				slog.String("state", string(s.State)),
				slog.String("input", kind.String()),
				slog.String("payload", logger.SanitizeLimit(input, 64)),
				slog.String("err", err.Error()),
			)
			return
		}
		out = replies
		if !advance {
			return
		}
		from := s.State
		s.State = tr.next
		logTransition(ctx, from, tr.next, kind.String())
		if s.State == StateEnd {
			s.Data.Draft = nil
			s.State = state.StateIdle
		}
	})
	return out, consumed
}

// Token returns the stored API token for key, or "".
func (m *Machine) Token(key state.Key) string {
	s, _ := m.store.View(key)
	return s.Data.AuthToken
}

// Active reports whether key is in the middle of a transaction.
func (m *Machine) Active(key state.Key) bool {
	return m.store.InProgress(key)
}

// ExpireDrafts drops drafts whose session has been idle longer than maxAge.
// Tokens are kept. It returns the number of drafts dropped.
func (m *Machine) ExpireDrafts(maxAge time.Duration) int {
	if maxAge <= 0 {
		return 0
	}
	cutoff := m.now().Add(-maxAge)
	n := 0
	m.store.Sweep(func(k state.Key, s *state.Session[Session]) {
		if s.Idle() || s.Touched.After(cutoff) {
			return
		}
		logger.LogEvent(context.Background(), logger.FSM, slog.LevelInfo, "fsm.draft.expired",
			slog.String("status", "ok"),
			slog.Int64("chat_id", k.ChatID),
			slog.Int64("user_id", k.UserID),
			slog.String("from", string(s.State)),
		)
		s.Data.Draft = nil
		s.State = state.StateIdle
		n++
	})
	return n
}

func (m *Machine) onTitle(ctx context.Context, s *Session, text string) ([]Reply, bool, error) {
	if err := s.Draft.SetTitle(text); err != nil {
		return nil, false, err
	}
	cats, err := m.api.Categories(ctx, s.AuthToken)
	if err != nil {
		return []Reply{{Kind: Send, Text: MsgSelectCategory + "\n" + fetchNote("categories", err)}}, true, nil
	}
	buttons := make([]Button, 0, len(cats))
	for _, c := range cats {
		buttons = append(buttons, Button{Text: c.Title, Data: PrefixCategory + strconv.FormatInt(c.ID, 10)})
	}
	return []Reply{{Kind: Send, Text: MsgSelectCategory, Keyboard: column(buttons)}}, true, nil
}

func (m *Machine) onCategory(ctx context.Context, s *Session, data string) ([]Reply, bool, error) {
	id, err := parseID(data, PrefixCategory)
	if err != nil {
		return nil, false, err
	}
	if err := s.Draft.SetCategory(id); err != nil {
		return nil, false, err
	}
	out := []Reply{{Kind: Edit, Text: fmt.Sprintf("Selected category ID: %d\nWho is this transaction for?", id)}}
	users, err := m.api.Users(ctx, s.AuthToken)
	if err != nil {
		return append(out, Reply{Kind: Send, Text: MsgChoosePerson + "\n" + fetchNote("users", err)}), true, nil
	}
	buttons := make([]Button, 0, len(users))
	for _, u := range users {
		buttons = append(buttons, Button{Text: u.Username, Data: PrefixWho + strconv.FormatInt(u.ID, 10)})
	}
	return append(out, Reply{Kind: Send, Text: MsgChoosePerson, Keyboard: column(buttons)}), true, nil
}

func (m *Machine) onWho(ctx context.Context, s *Session, data string) ([]Reply, bool, error) {
	id, err := parseID(data, PrefixWho)
	if err != nil {
		return nil, false, err
	}
	if err := s.Draft.SetWho(id); err != nil {
		return nil, false, err
	}
	out := []Reply{{Kind: Edit, Text: MsgSelectAccount}}
	accounts, err := m.api.Accounts(ctx, s.AuthToken, nil)
	if err != nil {
		return append(out, Reply{Kind: Send, Text: MsgChooseAccount + "\n" + fetchNote("accounts", err)}), true, nil
	}
	buttons := make([]Button, 0, len(accounts))
	for _, a := range accounts {
		buttons = append(buttons, Button{
			Text: a.Title + " - " + a.OwnerUsername,
			Data: PrefixAccount + strconv.FormatInt(a.ID, 10),
		})
	}
	return append(out, Reply{Kind: Send, Text: MsgChooseAccount, Keyboard: column(buttons)}), true, nil
}

func (m *Machine) onAccount(_ context.Context, s *Session, data string) ([]Reply, bool, error) {
	id, err := parseID(data, PrefixAccount)
	if err != nil {
		return nil, false, err
	}
	if err := s.Draft.SetAccount(id); err != nil {
		return nil, false, err
	}
	return []Reply{{Kind: Edit, Text: fmt.Sprintf("Selected account ID: %d\nEnter the amount (format: 123.45):", id)}}, true, nil
}

func (m *Machine) onAmount(ctx context.Context, s *Session, text string) ([]Reply, bool, error) {
	if err := s.Draft.SetAmount(text); err != nil {
		return nil, false, err
	}
	currencies, err := m.api.Currencies(ctx, s.AuthToken)
	if err != nil {
		return []Reply{{Kind: Send, Text: MsgSelectCurrency + "\n" + fetchNote("currencies", err)}}, true, nil
	}
	buttons := make([]Button, 0, len(currencies))
	for _, c := range currencies {
		buttons = append(buttons, Button{Text: c.Title, Data: PrefixCurrency + strconv.FormatInt(c.ID, 10)})
	}
	return []Reply{{Kind: Send, Text: MsgSelectCurrency, Keyboard: column(buttons)}}, true, nil
}

func (m *Machine) onCurrency(_ context.Context, s *Session, data string) ([]Reply, bool, error) {
	id, err := parseID(data, PrefixCurrency)
	if err != nil {
		return nil, false, err
	}
	if err := s.Draft.SetCurrency(id); err != nil {
		return nil, false, err
	}
	now := m.now()
	return []Reply{{Kind: Edit, Text: MsgChooseDate, Keyboard: calendarKeyboard(now.Year(), now.Month())}}, true, nil
}

func (m *Machine) onDate(ctx context.Context, s *Session, data string) ([]Reply, bool, error) {
	switch {
	case calendar.IsMonth(data):
		y, mo, err := calendar.ParseMonth(data)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", errBadInput, err)
		}
		return []Reply{{Kind: EditKeyboard, Keyboard: calendarKeyboard(y, mo)}}, false, nil
	case calendar.IsDay(data):
		day, err := calendar.ParseDay(data)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", errBadInput, err)
		}
		if err := s.Draft.SetDate(day.Format("2006-01-02")); err != nil {
			return nil, false, err
		}
		start := time.Now()
		err = m.api.SubmitTransaction(ctx, s.AuthToken, s.Draft.Transaction())
		logger.LogEvent(ctx, logger.FSM, slog.LevelInfo, "fsm.submit",
			slog.String("status", logger.Status(err)),
			slog.Duration("duration", logger.Took(start)),
		)
		if err != nil {
			text := MsgTxFailed
			if errors.Is(err, budget.ErrUnauthenticated) {
				text += " " + MsgSignIn
			}
			return []Reply{{Kind: Edit, Text: text}}, true, nil
		}
		return []Reply{{Kind: Edit, Text: MsgTxAdded}}, true, nil
	}
	return nil, false, fmt.Errorf("%w: unknown calendar payload", errBadInput)
}

func calendarKeyboard(year int, month time.Month) [][]Button {
	grid := calendar.Render(year, month)
	rows := make([][]Button, 0, len(grid))
	for _, row := range grid {
		r := make([]Button, 0, len(row))
		for _, cell := range row {
			r = append(r, Button{Text: cell.Label, Data: cell.Payload})
		}
		rows = append(rows, r)
	}
	return rows
}

func parseID(data, prefix string) (int64, error) {
	raw, ok := strings.CutPrefix(data, prefix)
	if !ok || raw == "" {
		return 0, fmt.Errorf("%w: %q", errBadInput, data)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: %q", errBadInput, data)
	}
	return id, nil
}

func fetchNote(what string, err error) string {
	note := "Unable to fetch " + what + "."
	if errors.Is(err, budget.ErrUnauthenticated) {
		note += " " + MsgSignIn
	}
	return note
}

func logTransition(ctx context.Context, from, to state.State, via string) {
	logger.LogEvent(ctx, logger.FSM, slog.LevelDebug, "fsm.transition",
		slog.String("status", "ok"),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		slog.String("op", via),
	)
}
