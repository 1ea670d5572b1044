package telegram

import (
	"net/http"
	"time"

	"github.com/m3rciful/familybudget/core/telegram/netutil"
)

const (
	defaultClientTimeout = 30 * time.Second
	defaultRetryAttempts = 3
	defaultRetryBackoff  = 2 * time.Second
)

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls.
// pollTimeout extends the client timeout so long polls are not cut short.
func BuildHTTPClient(pollTimeout time.Duration) *http.Client {
	timeout := defaultClientTimeout
	if pollTimeout > 0 {
		timeout += pollTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &netutil.RetryTransport{
			Base:       netutil.NewTransport(netutil.TransportOptions{ResponseHeaderTimeout: pollTimeout + 5*time.Second}),
			MaxRetries: defaultRetryAttempts,
			Backoff:    defaultRetryBackoff,
		},
	}
}
