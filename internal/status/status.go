// Package status renders the read-only account, family and profile summaries.
package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/m3rciful/familybudget/core/logger"
	"github.com/m3rciful/familybudget/internal/budget"
)

const (
	msgNoUser     = "Unable to fetch user details."
	msgNoAccounts = "No account data available."
	msgNoFamily   = "Unable to fetch family status."
	msgSignIn     = "Send /start to sign in."
)

// API is the part of the budget client the summaries read from.
type API interface {
	Profile(ctx context.Context, token string) (budget.Profile, error)
	Users(ctx context.Context, token string) ([]budget.User, error)
	Accounts(ctx context.Context, token string, owner *int64) ([]budget.Account, error)
	Currencies(ctx context.Context, token string) ([]budget.Currency, error)
	FamilyStatus(ctx context.Context, token string) (budget.FamilyStatus, error)
}

// Reporter builds summary texts. It never mutates session state.
type Reporter struct {
	api API
	log *slog.Logger
}

// NewReporter returns a Reporter reading from api.
func NewReporter(api API) *Reporter {
	return &Reporter{api: api, log: logger.Component("status")}
}

// AccountStatus lists the balances of the user's own accounts.
func (r *Reporter) AccountStatus(ctx context.Context, token string) string {
	start := time.Now()
	var (
		profile    budget.Profile
		currencies []budget.Currency
		curErr     error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = r.api.Profile(gctx, token)
		return err
	})
	g.Go(func() error {
		// A missing currency list only degrades the codes.
		currencies, curErr = r.api.Currencies(gctx, token)
		return nil
	})
	if err := g.Wait(); err != nil {
		r.done(ctx, "account_status", start, err)
		return withHint(msgNoUser, err)
	}

	owner := profile.ID
	accounts, err := r.api.Accounts(ctx, token, &owner)
	if err != nil || len(accounts) == 0 {
		r.done(ctx, "account_status", start, err)
		return withHint(msgNoAccounts, err)
	}

	codes := make(map[int64]string, len(currencies))
	for _, c := range currencies {
		codes[c.ID] = c.Code
	}
	var b strings.Builder
	b.WriteString("Account status:")
	for _, a := range accounts {
		code, ok := codes[a.Currency]
		if !ok {
			code = "Unknown"
		}
		fmt.Fprintf(&b, "\n  %s: %s %s", a.Title, a.Balance.StringFixed(2), code)
	}
	r.done(ctx, "account_status", start, curErr)
	return b.String()
}

// FamilyStatus shows the family balance.
func (r *Reporter) FamilyStatus(ctx context.Context, token string) string {
	start := time.Now()
	fs, err := r.api.FamilyStatus(ctx, token)
	r.done(ctx, "family_status", start, err)
	if err != nil {
		return withHint(msgNoFamily, err)
	}
	return fmt.Sprintf("Family status:\n  Title: %s\n  Current Balance: %s %s",
		fs.Title, fs.Current.StringFixed(2), fs.Currency)
}

// Profile shows the user's details and family members. telegramUserID is
// the platform id of the requesting user.
func (r *Reporter) Profile(ctx context.Context, token string, telegramUserID int64) string {
	start := time.Now()
	var (
		profile budget.Profile
		users   []budget.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = r.api.Profile(gctx, token)
		return err
	})
	g.Go(func() error {
		users, _ = r.api.Users(gctx, token)
		return nil
	})
	if err := g.Wait(); err != nil {
		r.done(ctx, "profile", start, err)
		return withHint(msgNoUser, err)
	}

	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	members := make([]string, 0, len(profile.Family.Members))
	for _, id := range profile.Family.Members {
		if n, ok := names[id]; ok {
			members = append(members, n)
		} else {
			members = append(members, "Unknown")
		}
	}
	lastName := profile.LastName
	if lastName == "" {
		lastName = "-"
	}

	r.done(ctx, "profile", start, nil)
	return fmt.Sprintf("Profile:\n"+
		"  Username: %s\n"+
		"  First Name: %s\n"+
		"  Last Name: %s\n"+
		"  Email: %s\n"+
		"  Telegram User ID: %d\n"+
		"  Role: %s\n"+
		"  Family: %s\n"+
		"    - Members: %s",
		profile.Username, profile.FirstName, lastName, profile.Email,
		telegramUserID, profile.Role, profile.Family.Title, strings.Join(members, ", "))
}

func (r *Reporter) done(ctx context.Context, op string, start time.Time, err error) {
	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("op", op),
		slog.Duration("duration", logger.Took(start)),
	}
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("err", err.Error()))
	}
	logger.LogEvent(ctx, r.log, level, "status.render", attrs...)
}

func withHint(msg string, err error) string {
	if errors.Is(err, budget.ErrUnauthenticated) {
		return msg + " " + msgSignIn
	}
	return msg
}
