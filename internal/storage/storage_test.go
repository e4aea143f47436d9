package storage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/x/ticketwatch/internal/snapshot"
)

func TestFS(t *testing.T) {
	ctx := context.Background()

	t.Run("put then get", func(t *testing.T) {
		fs, err := NewFS(t.TempDir())
		if err != nil {
			t.Fatalf("new fs: %v", err)
		}
		if err := fs.Put(ctx, "state.json", []byte(`{"full":[]}`)); err != nil {
			t.Fatalf("put: %v", err)
		}
		got, err := fs.Get(ctx, "state.json")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if string(got) != `{"full":[]}` {
			t.Errorf("got %q", got)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		fs, err := NewFS(t.TempDir())
		if err != nil {
			t.Fatalf("new fs: %v", err)
		}
		_, err = fs.Get(ctx, "state.json")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestState(t *testing.T) {
	ctx := context.Background()

	t.Run("missing state is empty prior state", func(t *testing.T) {
		fs, _ := NewFS(t.TempDir())
		snap, err := LoadState(ctx, fs)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if len(snap) != 0 {
			t.Errorf("expected empty snapshot, got %v", snap)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		fs, _ := NewFS(t.TempDir())
		want := snapshot.Snapshot{"full": {"01/11/2023", "02/11/2023"}}
		if err := SaveState(ctx, fs, want); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, err := LoadState(ctx, fs)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("state mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestDumpHTML(t *testing.T) {
	fs, _ := NewFS(t.TempDir())
	key, err := DumpHTML(context.Background(), fs, "full-calendar", []byte("<html></html>"))
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.HasSuffix(key, "-full-calendar-dump.html") {
		t.Errorf("unexpected dump key %q", key)
	}
	if _, err := fs.Get(context.Background(), key); err != nil {
		t.Errorf("dumped page not readable: %v", err)
	}
}

func TestGist(t *testing.T) {
	ctx := context.Background()

	newServerAndStore := func(t *testing.T, handler http.HandlerFunc) *Gist {
		t.Helper()
		srv := httptest.NewServer(handler)
		t.Cleanup(srv.Close)
		g, err := NewGist("abc123", "token")
		if err != nil {
			t.Fatalf("new gist: %v", err)
		}
		g.baseURL = srv.URL
		return g
	}

	t.Run("get returns file content", func(t *testing.T) {
		g := newServerAndStore(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != "GET" || r.URL.Path != "/abc123" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"files": map[string]any{
					"state.json": map[string]string{"content": `{"full":[]}`},
				},
			})
		})

		got, err := g.Get(ctx, "state.json")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if string(got) != `{"full":[]}` {
			t.Errorf("got %q", got)
		}
	})

	t.Run("missing file is ErrNotFound", func(t *testing.T) {
		g := newServerAndStore(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"files": map[string]any{}})
		})
		_, err := g.Get(ctx, "state.json")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("put patches the gist", func(t *testing.T) {
		var gotPayload struct {
			Files map[string]struct {
				Content string `json:"content"`
			} `json:"files"`
		}
		g := newServerAndStore(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != "PATCH" {
				t.Errorf("unexpected method %s", r.Method)
			}
			if auth := r.Header.Get("Authorization"); auth != "token token" {
				t.Errorf("unexpected auth header %q", auth)
			}
			json.NewDecoder(r.Body).Decode(&gotPayload)
			w.WriteHeader(http.StatusOK)
		})
		if err := g.Put(ctx, "state.json", []byte(`{"full":[]}`)); err != nil {
			t.Fatalf("put: %v", err)
		}
		if gotPayload.Files["state.json"].Content != `{"full":[]}` {
			t.Errorf("server saw payload %+v", gotPayload)
		}
	})
}
