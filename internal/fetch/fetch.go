// Package fetch wraps all traffic to the ticket site: browser-shaped
// headers, per-attempt timeouts with retries, and the gate-aware refetch
// that applies freshly solved credentials.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/x/ticketwatch/internal/challenge"
)

const (
	// attemptTimeout bounds a single request attempt; it is re-armed for
	// every retry.
	attemptTimeout = 4 * time.Second
	// retryCount is on top of the first attempt: 3 attempts total.
	retryCount    = 2
	retryWaitTime = 250 * time.Millisecond
)

// siteHeaders is the fixed header set the site expects on every request,
// including the XHR marker its calendar endpoints check for.
var siteHeaders = map[string]string{
	"authority":          "ecm.coopculture.it",
	"accept":             "text/html, */*; q=0.01",
	"accept-language":    "it-IT,it;q=0.9,en-US;q=0.8,en;q=0.7",
	"referer":            "https://ecm.coopculture.it/index.php?option=com_snapp&view=event&id=3793660E-5E3F-9172-2F89-016CB3FAD609&catalogid=B79E95CA-090E-FDA8-2364-017448FF0FA0&lang=it",
	"sec-ch-ua":          `"Google Chrome";v="117", "Not;A=Brand";v="8", "Chromium";v="117"`,
	"sec-ch-ua-mobile":   "?0",
	"sec-ch-ua-platform": `"macOS"`,
	"sec-fetch-dest":     "empty",
	"sec-fetch-mode":     "cors",
	"sec-fetch-site":     "same-origin",
	"user-agent":         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
	"x-requested-with":   "XMLHttpRequest",
}

const (
	// gateActionHeader marks a response that cleared the Octofence gate
	// without needing challenge cookies.
	gateActionHeader = "X-Octofence-Action"
	gateForwarded    = "forwarded"
)

// Resolver obtains gate credentials; concrete type is the challenge
// Coordinator.
type Resolver interface {
	Resolve(ctx context.Context, triggerPage []byte) (challenge.Credential, error)
}

// Client is the sole HTTP path to the ticket site. It owns the current
// outgoing Cookie header; all mutation goes through SetCredential on the
// rare resolution path, serialized by the Coordinator.
type Client struct {
	http     *resty.Client
	resolver Resolver

	mu     sync.Mutex
	cookie string
}

// NewClient builds a client with the site header set and retry
// discipline. Wire a Resolver with SetResolver before using
// GetThroughGate.
func NewClient() *Client {
	rc := resty.New().
		SetTimeout(attemptTimeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(retryWaitTime).
		AddRetryCondition(func(_ *resty.Response, err error) bool {
			return err != nil
		}).
		SetHeaders(siteHeaders)
	return &Client{http: rc}
}

func (c *Client) SetResolver(r Resolver) {
	c.resolver = r
}

// SetCredential installs cred as the outgoing Cookie header for all
// subsequent requests.
func (c *Client) SetCredential(cred challenge.Credential) {
	c.mu.Lock()
	c.cookie = cred.CookieHeader()
	c.mu.Unlock()
}

// Get issues one resilient GET: up to 3 attempts, each bounded by its own
// timeout. Exhausting all attempts surfaces the transport error.
func (c *Client) Get(ctx context.Context, url string) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx)
	if ck := c.cookieHeader(); ck != "" {
		req.SetHeader("Cookie", ck)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	return resp, nil
}

// GetThroughGate fetches url and, when the response was not forwarded
// past the gate, resolves credentials and re-issues the request once.
// This is the only place solved credentials become live traffic.
func (c *Client) GetThroughGate(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	if gateBypassed(resp) {
		return resp.Body(), nil
	}

	slog.DebugContext(ctx, "gate challenge hit", "url", url)
	if c.resolver == nil {
		return nil, fmt.Errorf("gated response for %s and no resolver configured", url)
	}
	cred, err := c.resolver.Resolve(ctx, resp.Body())
	if err != nil {
		return nil, fmt.Errorf("resolving challenge: %w", err)
	}
	c.SetCredential(cred)

	resp, err = c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (c *Client) cookieHeader() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cookie
}

func gateBypassed(resp *resty.Response) bool {
	return resp.Header().Get(gateActionHeader) == gateForwarded
}
