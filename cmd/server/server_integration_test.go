package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"tropicalrevolution/internal/config"
	"tropicalrevolution/internal/game"
	"tropicalrevolution/internal/serverapp"
	"tropicalrevolution/internal/store"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestServer_PageAndEmbeddedStatic(t *testing.T) {
	app := newTestApp(t, store.NewMemoryStore())

	pageRes := app.request(http.MethodGet, "/", nil, "")
	if pageRes.Code != http.StatusOK {
		t.Fatalf("page expected 200, got %d", pageRes.Code)
	}
	for _, want := range []string{`id="actions-panel"`, `id="island-map"`, `data-zone="Capital"`, `data-zone="Palm Beach"`} {
		if !strings.Contains(pageRes.Body.String(), want) {
			t.Fatalf("page missing %q", want)
		}
	}

	for _, path := range []string{"/static/js/main.js", "/static/css/style.css", "/static/data/game-data.json"} {
		res := app.request(http.MethodGet, path, nil, "")
		if res.Code != http.StatusOK {
			t.Fatalf("embedded static asset %s expected 200, got %d", path, res.Code)
		}
		if res.Body.Len() == 0 {
			t.Fatalf("embedded static asset %s should not be empty", path)
		}
	}

	if res := app.request(http.MethodGet, "/nope", nil, ""); res.Code != http.StatusNotFound {
		t.Fatalf("unknown page expected 404, got %d", res.Code)
	}
}

func TestServer_HealthAndReadinessExposeRequestID(t *testing.T) {
	app := newTestApp(t, store.NewMemoryStore())

	for _, path := range []string{"/healthz", "/readyz"} {
		res := app.request(http.MethodGet, path, nil, "")
		if res.Code != http.StatusOK {
			t.Fatalf("%s expected 200, got %d body=%s", path, res.Code, res.Body.String())
		}
		if rid := strings.TrimSpace(res.Header().Get("X-Request-Id")); rid == "" {
			t.Fatalf("%s missing X-Request-Id header", path)
		}
	}

	if entries := app.logs.FilterMessage("http_request").Len(); entries != 2 {
		t.Fatalf("expected 2 access log entries, got %d", entries)
	}
}

func TestServer_ReadinessFailsWhenStoreIsDown(t *testing.T) {
	app := newTestApp(t, downStore{store.NewMemoryStore()})

	res := app.request(http.MethodGet, "/readyz", nil, "")
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz expected 503, got %d", res.Code)
	}
}

func TestServer_PlaySessionSurvivesRestart(t *testing.T) {
	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "saves"))
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	app := newTestApp(t, st)

	res := app.request(http.MethodPost, "/api/actions/invest_health", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("invest_health expected 200, got %d body=%s", res.Code, res.Body.String())
	}
	res = app.request(http.MethodPost, "/api/turn", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("turn expected 200, got %d body=%s", res.Code, res.Body.String())
	}
	played := decodeState(t, res)
	if played.Year != 1986 {
		t.Fatalf("expected year 1986 after one turn, got %d", played.Year)
	}
	if played.Resources.Budget != 13000 {
		t.Fatalf("expected budget 13000, got %d", played.Resources.Budget)
	}

	restarted := newTestApp(t, st)
	restarted.cookies = app.cookies
	res = restarted.request(http.MethodGet, "/api/state", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("state expected 200, got %d", res.Code)
	}
	if got := decodeState(t, res); got != played {
		t.Fatalf("state after restart = %+v, want %+v", got, played)
	}

	stranger := newTestApp(t, st)
	if got := decodeState(t, stranger.request(http.MethodGet, "/api/state", nil, "")); got != game.DefaultState() {
		t.Fatalf("new visitor should start fresh, got %+v", got)
	}
}

func TestServer_MetricsCountActions(t *testing.T) {
	app := newTestApp(t, store.NewMemoryStore())
	app.request(http.MethodPost, "/api/actions/crackdown", nil, "")

	res := app.request(http.MethodGet, "/metrics", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("metrics expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `tropical_actions_total{action="crackdown",outcome="applied"}`) {
		t.Fatalf("metrics missing crackdown counter:\n%s", res.Body.String())
	}
}

type downStore struct {
	*store.MemoryStore
}

func (downStore) Ping(context.Context) error { return io.ErrUnexpectedEOF }

type testApp struct {
	handler http.Handler
	logs    *observer.ObservedLogs
	cookies map[string]*http.Cookie
}

func newTestApp(t *testing.T, st store.Store) *testApp {
	t.Helper()

	cfg := loadTestConfig(t)
	core, logs := observer.New(zap.InfoLevel)

	h, err := serverapp.NewHandler(context.Background(), serverapp.Options{
		Config:        cfg,
		Store:         st,
		StaticDir:     filepath.Join(projectRoot(t), "static"),
		UseDiskStatic: false,
		NewRoller:     func(string) game.Roller { return game.NewFixedRoller(0.5) },
		Logger:        zap.New(core),
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	return &testApp{
		handler: h,
		logs:    logs,
		cookies: map[string]*http.Cookie{},
	}
}

func (a *testApp) request(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range a.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		cp := *c
		a.cookies[c.Name] = &cp
	}
	return rec
}

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfgPath := filepath.Join(projectRoot(t), "tropical_config.yml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("load config %s: %v", cfgPath, err)
	}
	return cfg
}

func projectRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime.Caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) game.State {
	t.Helper()
	var out struct {
		State game.State `json:"state"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(rec.Body.Bytes()), &out); err != nil {
		t.Fatalf("decode state failed: %v body=%s", err, rec.Body.String())
	}
	return out.State
}
