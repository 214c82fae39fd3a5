package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookstore/internal/http/handlers"
	"bookstore/internal/http/server"
	"bookstore/internal/metrics"
	"bookstore/internal/repos"
	"bookstore/internal/services"
	"bookstore/internal/storage"
)

const testSID = "test-session"

type testEnv struct {
	app      *fiber.App
	sessions *services.SessionService
	kv       *storage.Memory
	reg      *prometheus.Registry
}

// newTestApp wires the real server over an in-memory catalog and KV.
func newTestApp(t *testing.T, opts server.Options) *testEnv {
	t.Helper()
	return newTestAppWithSessions(t, opts, services.SessionConfig{})
}

func newTestAppWithSessions(t *testing.T, opts server.Options, cfg services.SessionConfig) *testEnv {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	catalogSvc := services.NewCatalogService(repos.NewProductRepo(db))
	if err := catalogSvc.Load(); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	kv := storage.NewMemory()
	reg := prometheus.NewRegistry()
	sessions := services.NewSessionService(kv, catalogSvc, metrics.New(reg), cfg)
	t.Cleanup(func() {
		_ = sessions.Close()
		_ = db.Close()
	})

	if opts.Metrics == nil {
		opts.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}
	app := server.New(handlers.NewDeps(sessions, catalogSvc), opts)
	return &testEnv{app: app, sessions: sessions, kv: kv, reg: reg}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(&http.Cookie{Name: "sid", Value: testSID})
	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

type logEntry struct {
	Level     string         `json:"level"`
	Action    string         `json:"action"`
	SessionID string         `json:"session_id"`
	Fields    map[string]any `json:"fields"`
}

type lockedBuf struct {
	b  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedBuf{b: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	mu.Lock()
	defer mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}
