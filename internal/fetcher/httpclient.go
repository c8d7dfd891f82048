package fetcher

import (
	"strings"
	"time"

	"resty.dev/v3"
)

const defaultTimeout = 30 * time.Second

// ClientOptions configures the shared HTTP client.
type ClientOptions struct {
	BaseURL string
	// Authorization is sent verbatim as the Authorization header when set
	Authorization string
	Timeout       time.Duration
}

// NewHTTPClient creates a new HTTP client for JSON APIs.
// Requests are sent once; a failed date is reported, not retried.
func NewHTTPClient(opts ClientOptions) *resty.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	if opts.Authorization != "" {
		client.SetHeader("Authorization", opts.Authorization)
	}

	return client
}
