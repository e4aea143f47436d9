// Package runner orchestrates one watch cycle: fetch every configured
// ticket type through the gate, extract availability, diff against the
// persisted snapshot, notify on changes, and persist the new snapshot.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/x/ticketwatch/internal/availability"
	"github.com/x/ticketwatch/internal/challenge"
	"github.com/x/ticketwatch/internal/config"
	"github.com/x/ticketwatch/internal/diagnose"
	"github.com/x/ticketwatch/internal/fetch"
	"github.com/x/ticketwatch/internal/health"
	"github.com/x/ticketwatch/internal/notify"
	"github.com/x/ticketwatch/internal/snapshot"
	"github.com/x/ticketwatch/internal/storage"
)

// ErrUnknownTicketType is returned when a run is requested for a key
// missing from the configuration.
var ErrUnknownTicketType = errors.New("unknown ticket type")

// Result is the trigger response: an HTTP-shaped status code and a JSON
// body, either the new snapshot or {"message": ...} on failure.
type Result struct {
	StatusCode int
	Body       []byte
}

// Runner wires the pipeline together. The credential slot lives in the
// fetch client and the in-flight challenge task in the coordinator; the
// runner itself is stateless between cycles.
type Runner struct {
	cfg      config.Config
	client   *fetch.Client
	store    storage.Store
	notifier notify.Notifier
	health   *health.Pinger
}

// New builds a fully wired Runner from configuration.
func New(cfg config.Config) (*Runner, error) {
	if len(cfg.TicketTypes) == 0 {
		return nil, fmt.Errorf("no ticket types configured")
	}

	var store storage.Store
	var err error
	if cfg.GistID != "" {
		store, err = storage.NewGist(cfg.GistID, cfg.GithubToken)
	} else {
		store, err = storage.NewFS(cfg.DataDir)
	}
	if err != nil {
		return nil, err
	}

	var notifier notify.Notifier
	switch cfg.Notifier {
	case "telegram":
		notifier, err = notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
	case "twitter":
		notifier, err = notify.NewTwitter()
	case "none":
		notifier = notify.Discard{}
	default:
		err = fmt.Errorf("unknown notifier %q", cfg.Notifier)
	}
	if err != nil {
		return nil, err
	}

	client := fetch.NewClient()
	cache := challenge.NewCache(cfg.CredentialFile, cfg.CachePassphrase)

	// Retried solves refetch the challenge from the first calendar URL;
	// any gated endpoint serves the same script.
	challengeURL := cfg.TicketTypes[0].CalendarURL
	coord := challenge.NewCoordinator(cache, func(ctx context.Context) ([]byte, error) {
		resp, err := client.Get(ctx, challengeURL)
		if err != nil {
			return nil, err
		}
		return resp.Body(), nil
	})
	client.SetResolver(coord)

	// Seed the cookie header from a still-fresh cached credential so the
	// first request of the run may skip resolution entirely.
	if cred, ok, err := cache.Load(); err != nil {
		slog.Warn("ignoring unreadable credential cache", "error", err)
	} else if ok {
		client.SetCredential(cred)
	}

	return &Runner{
		cfg:      cfg,
		client:   client,
		store:    store,
		notifier: notifier,
		health:   health.New(cfg.HealthcheckURL),
	}, nil
}

// Run executes one full cycle over all configured ticket types.
func (r *Runner) Run(ctx context.Context) Result {
	return r.run(ctx, r.cfg.TicketTypes)
}

// RunOne executes one cycle for a single ticket type.
func (r *Runner) RunOne(ctx context.Context, key string) Result {
	tt, ok := r.cfg.Lookup(key)
	if !ok {
		return r.fail(ctx, fmt.Errorf("%w: %q", ErrUnknownTicketType, key))
	}
	return r.run(ctx, []config.TicketType{tt})
}

func (r *Runner) run(ctx context.Context, types []config.TicketType) Result {
	go func() {
		if err := r.health.Start(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("start ping failed", "error", err)
		}
	}()

	next, changed, err := r.check(ctx, types)
	if err != nil {
		return r.fail(ctx, err)
	}

	if changed {
		if err := r.health.Success(ctx, next); err != nil {
			slog.Warn("success ping failed", "error", err)
		}
	} else {
		if err := r.health.Success(ctx, "No changes"); err != nil {
			slog.Warn("success ping failed", "error", err)
		}
	}

	body, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return r.fail(ctx, err)
	}
	return Result{StatusCode: 200, Body: body}
}

// check runs the scrape-diff-notify-persist sequence. Ticket types are
// checked concurrently; any failure aborts the whole run before anything
// is persisted.
func (r *Runner) check(ctx context.Context, types []config.TicketType) (snapshot.Snapshot, bool, error) {
	prev, err := storage.LoadState(ctx, r.store)
	if err != nil {
		return nil, false, err
	}

	next := snapshot.Snapshot{}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, tt := range types {
		tt := tt
		g.Go(func() error {
			return r.checkType(gctx, tt, next, &mu)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	// A run overwrites only the keys it scraped. Single-type runs must
	// leave every sibling type's persisted entries intact, or the next
	// full run re-flags them as new.
	merged := make(snapshot.Snapshot, len(prev)+len(next))
	maps.Copy(merged, prev)
	maps.Copy(merged, next)

	changed := snapshot.Changed(prev, merged)
	for _, key := range changed {
		slog.InfoContext(ctx, "changes detected", "key", key, "entries", len(merged[key]))
		if err := r.notifier.Notify(ctx, changeMessage(key, merged[key])); err != nil {
			return nil, false, fmt.Errorf("sending notification for %s: %w", key, err)
		}
	}
	for key := range next {
		if !slices.Contains(changed, key) {
			slog.InfoContext(ctx, "no change", "key", key)
		}
	}

	// The snapshot is persisted whether or not anything changed; the
	// persisted copy always reflects the latest scrape.
	if err := storage.SaveState(ctx, r.store, merged); err != nil {
		return nil, false, err
	}
	return merged, len(changed) > 0, nil
}

// checkType scrapes one ticket type: its calendar and, when configured,
// its time-slot listing for the target date. fetch → extract is strictly
// sequential within a type.
func (r *Runner) checkType(ctx context.Context, tt config.TicketType, next snapshot.Snapshot, mu *sync.Mutex) error {
	page, err := r.client.GetThroughGate(ctx, tt.CalendarURL)
	if err != nil {
		return err
	}
	days, err := availability.Calendar(page)
	if err != nil {
		if errors.Is(err, availability.ErrIncompleteCalendar) {
			r.dump(ctx, tt.Key+"-calendar", page)
		}
		return fmt.Errorf("%s calendar: %w", tt.Key, err)
	}
	dates := availability.AvailableDates(days)

	mu.Lock()
	next[tt.Key] = dates
	mu.Unlock()

	if tt.TimeSlotURL == "" || r.cfg.TargetDate == "" {
		return nil
	}

	slotURL := strings.Replace(tt.TimeSlotURL, "{date}", url.QueryEscape(r.cfg.TargetDate), 1)
	page, err = r.client.GetThroughGate(ctx, slotURL)
	if err != nil {
		return err
	}
	slots, err := availability.TimeSlots(page, r.cfg.TargetDate)
	if err != nil {
		if errors.Is(err, availability.ErrInvalidTimePage) {
			r.dump(ctx, tt.Key+"-times", page)
		}
		return fmt.Errorf("%s time slots: %w", tt.Key, err)
	}

	mu.Lock()
	next[snapshot.TimesKey(tt.Key)] = availability.AvailableTimes(slots)
	mu.Unlock()
	return nil
}

// dump persists a failed page for diagnosis. Dump failures are logged,
// not raised: the scrape error that triggered the dump is the one that
// matters.
func (r *Runner) dump(ctx context.Context, label string, page []byte) {
	key, err := storage.DumpHTML(ctx, r.store, label, page)
	if err != nil {
		slog.ErrorContext(ctx, "dump failed", "label", label, "error", err)
		return
	}
	slog.ErrorContext(ctx, "page dumped for diagnosis", "key", key, "summary", diagnose.Summarize(page))
}

func (r *Runner) fail(ctx context.Context, runErr error) Result {
	slog.ErrorContext(ctx, "run failed", "error", runErr)
	if err := r.health.Fail(ctx, runErr.Error()); err != nil {
		slog.Warn("fail ping failed", "error", err)
	}

	body, err := json.MarshalIndent(map[string]string{"message": runErr.Error()}, "", "  ")
	if err != nil {
		body = []byte(`{"message":"internal error"}`)
	}
	return Result{StatusCode: 500, Body: body}
}

func changeMessage(key string, entries []string) string {
	list := strings.Join(entries, ", ")
	if base, isTimes := strings.CutSuffix(key, "_times"); isTimes {
		return fmt.Sprintf("%s ticket - available times: %s", base, list)
	}
	return fmt.Sprintf("%s ticket - available dates: %s", key, list)
}
