package challenge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// resolveCooldown keeps a completed resolution published so a burst of
	// near-simultaneous failures cannot trigger a thundering-herd retry.
	resolveCooldown = 2 * time.Second
	resolveTimeout  = 30 * time.Second
	// resolveAttempts bounds how many fresh scripts one resolution will
	// chew through before surfacing the failure.
	resolveAttempts = 3
)

// ScriptSource fetches a fresh copy of the challenge page, used when a
// solve attempt has to be retried with new script text.
type ScriptSource func(ctx context.Context) ([]byte, error)

// Coordinator owns the single in-flight challenge resolution. Concurrent
// callers attach to the same pending task instead of independently
// re-solving the challenge and hammering the site.
type Coordinator struct {
	cache  *Cache
	source ScriptSource

	cooldown   time.Duration
	retryPause time.Duration

	mu   sync.Mutex
	task *resolveTask
}

type resolveTask struct {
	done chan struct{}
	cred Credential
	err  error
}

// NewCoordinator creates a coordinator that refetches challenge pages via
// source and persists solved credentials into cache.
func NewCoordinator(cache *Cache, source ScriptSource) *Coordinator {
	return &Coordinator{
		cache:      cache,
		source:     source,
		cooldown:   resolveCooldown,
		retryPause: 500 * time.Millisecond,
	}
}

// Resolve returns gate credentials, starting a resolution if none is in
// flight and otherwise joining the pending one. triggerPage is the gated
// response body that prompted the call; its script feeds the first
// attempt so the page is not fetched twice.
func (c *Coordinator) Resolve(ctx context.Context, triggerPage []byte) (Credential, error) {
	c.mu.Lock()
	t := c.task
	if t == nil {
		t = &resolveTask{done: make(chan struct{})}
		c.task = t
		go c.run(t, triggerPage)
	}
	c.mu.Unlock()

	select {
	case <-t.done:
		return t.cred, t.err
	case <-ctx.Done():
		return Credential{}, ctx.Err()
	}
}

// run executes one resolution and schedules the shared-slot reset. The
// resolution is detached from any single caller's context: once started
// it runs to completion for everyone attached to it.
func (c *Coordinator) run(t *resolveTask, triggerPage []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	t.cred, t.err = c.resolve(ctx, triggerPage)
	close(t.done)

	time.AfterFunc(c.cooldown, func() {
		c.mu.Lock()
		if c.task == t {
			c.task = nil
		}
		c.mu.Unlock()
	})
}

func (c *Coordinator) resolve(ctx context.Context, triggerPage []byte) (Credential, error) {
	attempt := 0
	var cred Credential

	solveOnce := func() error {
		attempt++
		page := triggerPage
		if attempt > 1 || len(page) == 0 {
			// A failed solve is never retried against the same script;
			// each attempt works on a freshly fetched page.
			var err error
			page, err = c.source(ctx)
			if err != nil {
				return fmt.Errorf("refetching challenge page: %w", err)
			}
		}

		script, err := ExtractScript(page)
		if err != nil {
			return err
		}
		solved, err := Solve(script)
		if err != nil {
			if errors.Is(err, ErrPattern) {
				slog.ErrorContext(ctx, "challenge shape drift: script parsed but the cookie assignment is gone", "attempt", attempt)
			}
			return err
		}
		if !solved.Valid() {
			return fmt.Errorf("solved credential is missing required cookies")
		}
		cred = solved
		return nil
	}

	err := backoff.Retry(solveOnce, backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryPause), resolveAttempts-1), ctx))
	if err != nil {
		return Credential{}, err
	}

	slog.InfoContext(ctx, "challenge resolved", "attempts", attempt)
	if err := c.cache.Save(cred); err != nil {
		// The credential still works for this run; only reuse is lost.
		slog.WarnContext(ctx, "failed to cache credential", "error", err)
	}
	return cred, nil
}
