package bot

import (
	"errors"
	"strings"
	"testing"
	"time"

	tg "github.com/m3rciful/familybudget/core/telegram"
	"github.com/m3rciful/familybudget/core/telegram/state"
	"github.com/m3rciful/familybudget/internal/conversation"
	"github.com/m3rciful/familybudget/internal/status"

	tele "gopkg.in/telebot.v4"
)

const userID int64 = 42

func setup(t *testing.T, api *fakeAPI) (*Bot, *tg.Registry) {
	t.Helper()
	now := func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) }
	m := conversation.New(api, state.NewStore[conversation.Session](), conversation.WithClock(now))
	b := New(m, status.NewReporter(api))
	reg := tg.NewRegistry()
	if err := b.Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return b, reg
}

func press(t *testing.T, reg *tg.Registry, data string) *fakeCtx {
	t.Helper()
	c := newCallbackCtx(1, userID, data)
	h, _, ok := reg.ResolveCallback(data)
	if !ok {
		t.Fatalf("no handler for %q", data)
	}
	if err := h(c); err != nil {
		t.Fatalf("callback %q: %v", data, err)
	}
	return c
}

func say(t *testing.T, b *Bot, text string) *fakeCtx {
	t.Helper()
	c := newTextCtx(1, userID, text)
	if !b.InProgress(c) {
		t.Fatalf("no conversation in progress for %q", text)
	}
	if err := b.ManagerHandler(c); err != nil {
		t.Fatalf("text %q: %v", text, err)
	}
	return c
}

func TestStartShowsMenu(t *testing.T) {
	b, _ := setup(t, &fakeAPI{})
	c := newTextCtx(1, userID, "/start")
	if err := b.onStart(c); err != nil {
		t.Fatal(err)
	}
	got := c.last()
	if got.op != "send" || got.text != conversation.MsgMenu {
		t.Fatalf("reply = %+v", got)
	}
	if got.markup == nil || len(got.markup.InlineKeyboard) != 4 {
		t.Fatalf("menu markup = %+v", got.markup)
	}
	if data := got.markup.InlineKeyboard[0][0].Data; data != conversation.CallbackAddTransaction {
		t.Fatalf("first button data = %q", data)
	}
}

func TestStartAuthFailure(t *testing.T) {
	b, _ := setup(t, &fakeAPI{authErr: errors.New("denied")})
	c := newTextCtx(1, userID, "/start")
	if err := b.onStart(c); err != nil {
		t.Fatal(err)
	}
	if got := c.last(); got.text != conversation.MsgAuthFailed || got.markup != nil {
		t.Fatalf("reply = %+v", got)
	}
}

func TestFullTransactionThroughHandlers(t *testing.T) {
	api := &fakeAPI{}
	b, reg := setup(t, api)
	if err := b.onStart(newTextCtx(1, userID, "/start")); err != nil {
		t.Fatal(err)
	}

	c := press(t, reg, conversation.CallbackAddTransaction)
	if got := c.last(); got.op != "edit" || got.text != conversation.MsgEnterTitle {
		t.Fatalf("begin reply = %+v", got)
	}

	c = say(t, b, "Milk")
	if got := c.last(); got.text != conversation.MsgSelectCategory || got.markup.InlineKeyboard[0][0].Data != "category_3" {
		t.Fatalf("category prompt = %+v", got)
	}

	c = press(t, reg, "category_3")
	if len(c.out) != 2 || c.out[0].op != "edit" || c.out[1].text != conversation.MsgChoosePerson {
		t.Fatalf("category replies = %+v", c.out)
	}
	press(t, reg, "who_7")
	press(t, reg, "account_2")

	c = say(t, b, "12.50")
	if got := c.last(); got.text != conversation.MsgSelectCurrency {
		t.Fatalf("currency prompt = %+v", got)
	}

	c = press(t, reg, "currency_1")
	got := c.last()
	if got.op != "edit" || got.text != conversation.MsgChooseDate || got.markup == nil {
		t.Fatalf("date prompt = %+v", got)
	}
	if label := got.markup.InlineKeyboard[0][0].Text; label != "March 2024" {
		t.Fatalf("calendar label = %q", label)
	}

	c = press(t, reg, "calendar-month-2024-2")
	if got := c.last(); got.op != "edit_keyboard" || got.markup.InlineKeyboard[0][0].Text != "February 2024" {
		t.Fatalf("month nav = %+v", got)
	}

	press(t, reg, "ignore")

	c = press(t, reg, "calendar-day-2024-2-29")
	if got := c.last(); got.op != "edit" || got.text != conversation.MsgTxAdded {
		t.Fatalf("submit reply = %+v", got)
	}
	if len(api.submitted) != 1 {
		t.Fatalf("submitted = %d", len(api.submitted))
	}
	tx := api.submitted[0]
	if tx.Title != "Milk" || tx.Category != 3 || tx.Who != 7 || tx.Account != 2 || tx.Amount != "12.50" || tx.Currency != 1 || tx.Date != "2024-02-29" {
		t.Fatalf("transaction = %+v", tx)
	}
	if b.InProgress(newTextCtx(1, userID, "")) {
		t.Fatalf("conversation still active after submit")
	}
}

func TestAccountStatusWinsOverAccountPrefix(t *testing.T) {
	b, reg := setup(t, &fakeAPI{})
	_ = b.onStart(newTextCtx(1, userID, "/start"))
	c := press(t, reg, conversation.CallbackAccountStatus)
	got := c.last()
	if got.op != "edit" || !strings.HasPrefix(got.text, "Account status:") {
		t.Fatalf("reply = %+v", got)
	}
	if !strings.Contains(got.text, "Cash: 10.50 EUR") {
		t.Fatalf("balance line missing: %q", got.text)
	}
}

func TestStatusWithoutSignIn(t *testing.T) {
	_, reg := setup(t, &fakeAPI{})
	c := press(t, reg, conversation.CallbackFamilyStatus)
	if got := c.last(); !strings.Contains(got.text, "Send /start to sign in.") {
		t.Fatalf("reply = %+v", got)
	}
	c = press(t, reg, conversation.CallbackProfile)
	if got := c.last(); !strings.HasPrefix(got.text, "Unable to fetch user details.") {
		t.Fatalf("reply = %+v", got)
	}
}

func TestStaleStepButtonIsIgnored(t *testing.T) {
	_, reg := setup(t, &fakeAPI{})
	c := press(t, reg, "category_3")
	if len(c.out) != 0 {
		t.Fatalf("stale button produced output: %+v", c.out)
	}
}

func TestTextWhileButtonExpected(t *testing.T) {
	b, reg := setup(t, &fakeAPI{})
	_ = b.onStart(newTextCtx(1, userID, "/start"))
	press(t, reg, conversation.CallbackAddTransaction)
	say(t, b, "Milk")

	c := say(t, b, "Groceries")
	if got := c.last(); got.text != conversation.MsgUseButtons {
		t.Fatalf("reply = %+v", got)
	}
}

func TestCancel(t *testing.T) {
	b, reg := setup(t, &fakeAPI{})
	_ = b.onStart(newTextCtx(1, userID, "/start"))
	press(t, reg, conversation.CallbackAddTransaction)

	c := newTextCtx(2, userID, "/cancel")
	if err := b.onCancel(c); err != nil {
		t.Fatal(err)
	}
	if got := c.last(); got.text != conversation.MsgCancelled {
		t.Fatalf("reply = %+v", got)
	}
	if b.InProgress(c) {
		t.Fatalf("still in progress after cancel")
	}
}

func TestRoutesCallbackAndAdmin(t *testing.T) {
	b, reg := setup(t, &fakeAPI{})
	routes := b.Routes(reg, 1)

	find := func(endpoint any) tele.HandlerFunc {
		for _, r := range routes {
			if r.Endpoint == endpoint {
				return r.Handler
			}
		}
		t.Fatalf("no route for %v", endpoint)
		return nil
	}

	c := newCallbackCtx(5, userID, "unknown_payload")
	if err := find(tele.OnCallback)(c); err != nil {
		t.Fatalf("unknown callback: %v", err)
	}
	if len(c.out) != 0 {
		t.Fatalf("unknown callback produced output: %+v", c.out)
	}

	c = newTextCtx(6, userID, "/stats")
	if err := find("/stats")(c); err != nil {
		t.Fatal(err)
	}
	if got := c.last(); got.text != msgNotAdmin {
		t.Fatalf("non-admin stats reply = %+v", got)
	}

	c = newTextCtx(7, 1, "/stats")
	if err := find("/stats")(c); err != nil {
		t.Fatal(err)
	}
	if got := c.last(); !strings.Contains(got.text, "Sessions:") {
		t.Fatalf("admin stats reply = %+v", got)
	}

	c = newTextCtx(8, userID, "hello")
	if err := find(tele.OnText)(c); err != nil {
		t.Fatal(err)
	}
	if got := c.last(); got.text != msgUnknownText {
		t.Fatalf("idle text reply = %+v", got)
	}
}

func TestHelpListsVisibleCommands(t *testing.T) {
	_, reg := setup(t, &fakeAPI{})
	text := helpText(reg.ListCommands(true))
	if !strings.Contains(text, "/start") || !strings.Contains(text, "/cancel") {
		t.Fatalf("help = %q", text)
	}
	if strings.Contains(text, "/stats") {
		t.Fatalf("admin command listed: %q", text)
	}
}
