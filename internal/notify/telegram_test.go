package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTelegram(t *testing.T) {
	t.Run("requires credentials", func(t *testing.T) {
		if _, err := NewTelegram("", "chat"); err == nil {
			t.Error("expected error for empty token")
		}
		if _, err := NewTelegram("token", ""); err == nil {
			t.Error("expected error for empty chat ID")
		}
	})

	t.Run("sends message", func(t *testing.T) {
		var gotPath string
		var gotPayload map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			json.NewDecoder(r.Body).Decode(&gotPayload)
			json.NewEncoder(w).Encode(map[string]any{"ok": true})
		}))
		defer srv.Close()

		tg, err := NewTelegram("bot-token", "chat-42")
		if err != nil {
			t.Fatalf("new telegram: %v", err)
		}
		tg.baseURL = srv.URL + "/bot"

		if err := tg.Notify(context.Background(), "full ticket - available dates: 02/11/2023"); err != nil {
			t.Fatalf("notify: %v", err)
		}
		if !strings.HasSuffix(gotPath, "/botbot-token/sendMessage") {
			t.Errorf("unexpected path %q", gotPath)
		}
		if gotPayload["chat_id"] != "chat-42" {
			t.Errorf("chat_id = %v", gotPayload["chat_id"])
		}
		if gotPayload["text"] != "full ticket - available dates: 02/11/2023" {
			t.Errorf("text = %v", gotPayload["text"])
		}
	})

	t.Run("API rejection is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"ok": false, "description": "chat not found"})
		}))
		defer srv.Close()

		tg, _ := NewTelegram("bot-token", "chat-42")
		tg.baseURL = srv.URL + "/bot"

		err := tg.Notify(context.Background(), "hello")
		if err == nil || !strings.Contains(err.Error(), "chat not found") {
			t.Fatalf("expected rejection error, got %v", err)
		}
	})
}
