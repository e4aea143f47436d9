// Package health reports run liveness to a healthchecks.io-style
// endpoint: a start ping when a run begins, then exactly one success or
// fail ping with the outcome.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const pingTimeout = 10 * time.Second

// Pinger posts health signals. A Pinger with an empty URL is disabled and
// every call is a no-op, so callers never need to branch.
type Pinger struct {
	url  string
	http *resty.Client
}

func New(url string) *Pinger {
	return &Pinger{
		url:  url,
		http: resty.New().SetTimeout(pingTimeout),
	}
}

// Start signals that a run has begun.
func (p *Pinger) Start(ctx context.Context) error {
	return p.ping(ctx, "/start", "")
}

// Success signals a completed run. body may be a string or any
// JSON-encodable value.
func (p *Pinger) Success(ctx context.Context, body any) error {
	return p.ping(ctx, "", body)
}

// Fail signals an aborted run, carrying the error message.
func (p *Pinger) Fail(ctx context.Context, body any) error {
	return p.ping(ctx, "/fail", body)
}

func (p *Pinger) ping(ctx context.Context, suffix string, body any) error {
	if p.url == "" {
		return nil
	}

	text, ok := body.(string)
	if !ok && body != nil {
		encoded, err := json.MarshalIndent(body, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding ping body: %w", err)
		}
		text = string(encoded)
	}

	_, err := p.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/plain").
		SetBody(text).
		Post(p.url + suffix)
	if err != nil {
		return fmt.Errorf("health ping%s: %w", suffix, err)
	}
	return nil
}
