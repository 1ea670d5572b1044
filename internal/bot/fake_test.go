package bot

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/familybudget/internal/budget"

	tele "gopkg.in/telebot.v4"
)

type outMsg struct {
	op     string
	text   string
	markup *tele.ReplyMarkup
}

// fakeCtx implements the parts of tele.Context the handlers touch.
// Calling anything else panics on the nil embedded interface.
type fakeCtx struct {
	tele.Context
	upd   tele.Update
	store map[string]any
	out   []outMsg
}

func newTextCtx(updateID int, userID int64, text string) *fakeCtx {
	u := &tele.User{ID: userID, Username: "anna"}
	return &fakeCtx{upd: tele.Update{ID: updateID, Message: &tele.Message{
		Sender: u,
		Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		Text:   text,
	}}}
}

func newCallbackCtx(updateID int, userID int64, data string) *fakeCtx {
	u := &tele.User{ID: userID, Username: "anna"}
	return &fakeCtx{upd: tele.Update{ID: updateID, Callback: &tele.Callback{
		ID:     "cb",
		Sender: u,
		Data:   data,
		Message: &tele.Message{
			ID:   9,
			Chat: &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		},
	}}}
}

func (f *fakeCtx) Update() tele.Update { return f.upd }

func (f *fakeCtx) Sender() *tele.User {
	switch {
	case f.upd.Message != nil:
		return f.upd.Message.Sender
	case f.upd.Callback != nil:
		return f.upd.Callback.Sender
	}
	return nil
}

func (f *fakeCtx) Chat() *tele.Chat {
	switch {
	case f.upd.Message != nil:
		return f.upd.Message.Chat
	case f.upd.Callback != nil && f.upd.Callback.Message != nil:
		return f.upd.Callback.Message.Chat
	}
	return nil
}

func (f *fakeCtx) Callback() *tele.Callback { return f.upd.Callback }

func (f *fakeCtx) Text() string {
	if f.upd.Message != nil {
		return f.upd.Message.Text
	}
	return ""
}

func (f *fakeCtx) Get(key string) interface{} { return f.store[key] }

func (f *fakeCtx) Set(key string, v interface{}) {
	if f.store == nil {
		f.store = map[string]any{}
	}
	f.store[key] = v
}

func (f *fakeCtx) Respond(...*tele.CallbackResponse) error { return nil }

func (f *fakeCtx) Send(what interface{}, opts ...interface{}) error {
	f.out = append(f.out, outMsg{op: "send", text: what.(string), markup: markupOf(opts)})
	return nil
}

func (f *fakeCtx) Edit(what interface{}, opts ...interface{}) error {
	if m, ok := what.(*tele.ReplyMarkup); ok {
		f.out = append(f.out, outMsg{op: "edit_keyboard", markup: m})
		return nil
	}
	f.out = append(f.out, outMsg{op: "edit", text: what.(string), markup: markupOf(opts)})
	return nil
}

func markupOf(opts []interface{}) *tele.ReplyMarkup {
	for _, o := range opts {
		if m, ok := o.(*tele.ReplyMarkup); ok {
			return m
		}
	}
	return nil
}

func (f *fakeCtx) last() outMsg {
	if len(f.out) == 0 {
		return outMsg{}
	}
	return f.out[len(f.out)-1]
}

// fakeAPI serves both the conversation and the status readers.
type fakeAPI struct {
	mu        sync.Mutex
	authErr   error
	submitted []budget.Transaction
}

func (f *fakeAPI) Authenticate(context.Context, int64) (string, error) {
	if f.authErr != nil {
		return "", f.authErr
	}
	return "tok", nil
}

func (f *fakeAPI) Categories(_ context.Context, token string) ([]budget.Category, error) {
	if token == "" {
		return nil, budget.ErrUnauthenticated
	}
	return []budget.Category{{ID: 3, Title: "Groceries"}}, nil
}

func (f *fakeAPI) Users(_ context.Context, token string) ([]budget.User, error) {
	if token == "" {
		return nil, budget.ErrUnauthenticated
	}
	return []budget.User{{ID: 7, Username: "anna"}}, nil
}

func (f *fakeAPI) Accounts(_ context.Context, token string, _ *int64) ([]budget.Account, error) {
	if token == "" {
		return nil, budget.ErrUnauthenticated
	}
	return []budget.Account{{ID: 2, Title: "Cash", Owner: 7, OwnerUsername: "anna", Currency: 1, Balance: decimal.RequireFromString("10.5")}}, nil
}

func (f *fakeAPI) Currencies(_ context.Context, token string) ([]budget.Currency, error) {
	if token == "" {
		return nil, budget.ErrUnauthenticated
	}
	return []budget.Currency{{ID: 1, Title: "Euro", Code: "EUR"}}, nil
}

func (f *fakeAPI) Profile(_ context.Context, token string) (budget.Profile, error) {
	if token == "" {
		return budget.Profile{}, budget.ErrUnauthenticated
	}
	return budget.Profile{ID: 7, Username: "anna", Family: budget.Family{Title: "Home", Members: []int64{7}}}, nil
}

func (f *fakeAPI) FamilyStatus(_ context.Context, token string) (budget.FamilyStatus, error) {
	if token == "" {
		return budget.FamilyStatus{}, budget.ErrUnauthenticated
	}
	return budget.FamilyStatus{Title: "Home", Current: decimal.RequireFromString("100"), Currency: "EUR"}, nil
}

func (f *fakeAPI) SubmitTransaction(_ context.Context, token string, tx budget.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token == "" {
		return budget.ErrUnauthenticated
	}
	f.submitted = append(f.submitted, tx)
	return nil
}
