package conversation

import (
	"context"
	"errors"
	"sync"

	"github.com/m3rciful/familybudget/internal/budget"
)

type fakeAPI struct {
	mu        sync.Mutex
	authErr   error
	fetchErr  error
	submitErr error
	submitted []budget.Transaction
	tokens    []string
}

func (f *fakeAPI) Authenticate(_ context.Context, id int64) (string, error) {
	if f.authErr != nil {
		return "", f.authErr
	}
	return "token-for-user", nil
}

func (f *fakeAPI) note(token string) error {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
	if token == "" {
		return budget.ErrUnauthenticated
	}
	return f.fetchErr
}

func (f *fakeAPI) Categories(_ context.Context, token string) ([]budget.Category, error) {
	if err := f.note(token); err != nil {
		return nil, err
	}
	return []budget.Category{{ID: 3, Title: "Groceries"}, {ID: 4, Title: "Rent"}}, nil
}

func (f *fakeAPI) Users(_ context.Context, token string) ([]budget.User, error) {
	if err := f.note(token); err != nil {
		return nil, err
	}
	return []budget.User{{ID: 7, Username: "anna"}}, nil
}

func (f *fakeAPI) Accounts(_ context.Context, token string, _ *int64) ([]budget.Account, error) {
	if err := f.note(token); err != nil {
		return nil, err
	}
	return []budget.Account{{ID: 2, Title: "Cash", Owner: 7, OwnerUsername: "anna"}}, nil
}

func (f *fakeAPI) Currencies(_ context.Context, token string) ([]budget.Currency, error) {
	if err := f.note(token); err != nil {
		return nil, err
	}
	return []budget.Currency{{ID: 1, Title: "Euro", Code: "EUR"}}, nil
}

func (f *fakeAPI) SubmitTransaction(_ context.Context, token string, tx budget.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token == "" {
		return budget.ErrUnauthenticated
	}
	f.submitted = append(f.submitted, tx)
	return f.submitErr
}

var errBoom = errors.New("boom")
