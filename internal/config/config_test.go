package config

import (
	"strings"
	"testing"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("NOTIFIER", "none")

		cfg, err := FromEnv()
		if err != nil {
			t.Fatalf("from env: %v", err)
		}
		if len(cfg.TicketTypes) != 2 {
			t.Fatalf("got %d ticket types, want 2", len(cfg.TicketTypes))
		}
		if cfg.TicketTypes[0].Key != "full" || cfg.TicketTypes[1].Key != "simple" {
			t.Errorf("unexpected ticket type keys: %+v", cfg.TicketTypes)
		}
		if !strings.Contains(cfg.TicketTypes[0].CalendarURL, "getEventsCalendar") {
			t.Errorf("unexpected calendar URL %q", cfg.TicketTypes[0].CalendarURL)
		}
		if cfg.CredentialFile == "" {
			t.Error("credential file default missing")
		}
	})

	t.Run("telegram requires credentials", func(t *testing.T) {
		t.Setenv("NOTIFIER", "telegram")
		t.Setenv("TELEGRAM_BOT_TOKEN", "")
		t.Setenv("TELEGRAM_CHAT_ID", "")
		if _, err := FromEnv(); err == nil {
			t.Error("expected error for missing telegram credentials")
		}
	})

	t.Run("unknown notifier", func(t *testing.T) {
		t.Setenv("NOTIFIER", "carrier-pigeon")
		if _, err := FromEnv(); err == nil {
			t.Error("expected error for unknown notifier")
		}
	})
}

func TestLookup(t *testing.T) {
	cfg := Config{TicketTypes: defaultTicketTypes}
	if _, ok := cfg.Lookup("full"); !ok {
		t.Error("expected to find full")
	}
	if _, ok := cfg.Lookup("vip"); ok {
		t.Error("did not expect to find vip")
	}
}
