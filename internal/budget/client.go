// Package budget is a client for the family budget REST API.
package budget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/familybudget/core/logger"
	"github.com/m3rciful/familybudget/core/telegram/netutil"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

// Config holds the client settings.
type Config struct {
	BaseURL            string
	ServiceToken       string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Client talks to the budget API. It never retries: a failed call is
// reported to the caller right away.
type Client struct {
	base         *url.URL
	serviceToken string
	http         *http.Client
}

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if raw == "" {
		return nil, errors.New("budget: base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("budget: invalid base url %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		base:         base,
		serviceToken: strings.TrimSpace(cfg.ServiceToken),
		http: &http.Client{
			Timeout:   timeout,
			Transport: netutil.NewTransport(netutil.TransportOptions{InsecureSkipVerify: cfg.InsecureSkipVerify}),
		},
	}, nil
}

// Authenticate exchanges a Telegram user id for a session token.
func (c *Client) Authenticate(ctx context.Context, telegramUserID int64) (string, error) {
	body := map[string]int64{"telegram_userid": telegramUserID}
	var out struct {
		Token string `json:"token"`
	}
	code, err := c.do(ctx, "auth", http.MethodPost, "/auth/telegram/", nil, c.serviceToken, body, &out, http.StatusOK)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return "", fmt.Errorf("%w (%d)", ErrAuthFailed, code)
		}
		return "", err
	}
	if out.Token == "" {
		return "", ErrAuthFailed
	}
	return out.Token, nil
}

// Categories lists transaction categories.
func (c *Client) Categories(ctx context.Context, token string) ([]Category, error) {
	var out []Category
	if err := c.get(ctx, "categories", "/category/", nil, token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Users lists family members.
func (c *Client) Users(ctx context.Context, token string) ([]User, error) {
	var out []User
	if err := c.get(ctx, "users", "/users/", nil, token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Accounts lists accounts, optionally only those of owner. Each account is
// annotated with its owner's username, or "Unknown" when it cannot be resolved.
func (c *Client) Accounts(ctx context.Context, token string, owner *int64) ([]Account, error) {
	var q url.Values
	if owner != nil {
		q = url.Values{"owner": {strconv.FormatInt(*owner, 10)}}
	}
	var out []Account
	if err := c.get(ctx, "accounts", "/account/", q, token, &out); err != nil {
		return nil, err
	}

	names := map[int64]string{}
	if users, err := c.Users(ctx, token); err == nil {
		for _, u := range users {
			names[u.ID] = u.Username
		}
	}
	for i := range out {
		if n, ok := names[out[i].Owner]; ok {
			out[i].OwnerUsername = n
		} else {
			out[i].OwnerUsername = "Unknown"
		}
	}
	return out, nil
}

// Currencies lists currencies.
func (c *Client) Currencies(ctx context.Context, token string) ([]Currency, error) {
	var out []Currency
	if err := c.get(ctx, "currencies", "/currency/", nil, token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Profile returns the authenticated user.
func (c *Client) Profile(ctx context.Context, token string) (Profile, error) {
	var out Profile
	if err := c.get(ctx, "profile", "/users/me/", nil, token, &out); err != nil {
		return Profile{}, err
	}
	return out, nil
}

// FamilyStatus returns the first family status entry.
func (c *Client) FamilyStatus(ctx context.Context, token string) (FamilyStatus, error) {
	var out []FamilyStatus
	if err := c.get(ctx, "family_status", "/family-state/", nil, token, &out); err != nil {
		return FamilyStatus{}, err
	}
	if len(out) == 0 {
		return FamilyStatus{}, ErrNotFound
	}
	return out[0], nil
}

// SubmitTransaction creates a transaction. Only 201 Created counts as success.
func (c *Client) SubmitTransaction(ctx context.Context, token string, tx Transaction) error {
	if token == "" {
		return ErrUnauthenticated
	}
	_, err := c.do(ctx, "submit_transaction", http.MethodPost, "/transaction/", nil, token, tx, nil, http.StatusCreated)
	return err
}

func (c *Client) get(ctx context.Context, op, path string, q url.Values, token string, out any) error {
	if token == "" {
		return ErrUnauthenticated
	}
	_, err := c.do(ctx, op, http.MethodGet, path, q, token, nil, out, http.StatusOK)
	return err
}

// do performs one request and decodes the response into out when the
// status equals want. It returns the observed status code.
func (c *Client) do(ctx context.Context, op, method, path string, q url.Values, token string, in, out any, want int) (code int, err error) {
	start := time.Now()
	defer func() {
		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		attrs := []slog.Attr{
			slog.String("status", logger.Status(err)),
			slog.String("op", op),
			slog.Int("http_code", code),
			slog.Duration("duration", logger.Took(start)),
		}
		if err != nil {
			attrs = append(attrs,
				slog.String("err", err.Error()),
				slog.String("error_kind", netutil.Classify(err)),
			)
		}
		logger.LogEvent(ctx, logger.API, level, "api.call", attrs...)
	}()

	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if in != nil {
		data, mErr := json.Marshal(in)
		if mErr != nil {
			return 0, fmt.Errorf("budget: %s: encode: %w", op, mErr)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return 0, fmt.Errorf("budget: %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	req.Header.Set("X-Request-ID", requestID(ctx))

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("budget: %s: %w", op, err)
	}
	defer resp.Body.Close()
	code = resp.StatusCode

	if code != want {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return code, &StatusError{Op: op, StatusCode: code}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return code, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return code, fmt.Errorf("budget: %s: decode: %w", op, err)
	}
	return code, nil
}

func requestID(ctx context.Context) string {
	if rid := logger.RIDFrom(ctx); rid != "" {
		return rid
	}
	return uuid.NewString()
}
