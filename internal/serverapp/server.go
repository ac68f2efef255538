package serverapp

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"tropicalrevolution/internal/audio"
	"tropicalrevolution/internal/config"
	"tropicalrevolution/internal/eventlog"
	"tropicalrevolution/internal/game"
	"tropicalrevolution/internal/httpmw"
	"tropicalrevolution/internal/server"
	"tropicalrevolution/internal/session"
	"tropicalrevolution/internal/store"
	"tropicalrevolution/internal/zones"
	staticfiles "tropicalrevolution/static"
	"tropicalrevolution/ui/page"

	"github.com/a-h/templ"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Options struct {
	Config        *config.Config
	Store         store.Store
	StaticDir     string
	UseDiskStatic bool
	ZoneSource    string
	Production    bool
	CookieSecure  bool
	// NewRoller overrides the per-session event roller; tests pin it.
	NewRoller  func(id string) game.Roller
	Clock      eventlog.Clock
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewHandler(ctx context.Context, opts Options) (http.Handler, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if strings.TrimSpace(opts.StaticDir) == "" {
		opts.StaticDir = "static"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	cfg := opts.Config
	rules := cfg.Rules()

	var staticFS fs.FS = staticfiles.EmbeddedFS()
	if opts.UseDiskStatic {
		staticFS = os.DirFS(opts.StaticDir)
	}

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "tropical-revolution",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	newRoller := opts.NewRoller
	if newRoller == nil && cfg.SeededRNG.Enabled {
		newRoller = session.SeededRollers(cfg.SeededRNG.Seed)
	}
	registry := session.NewRegistry(session.Options{
		Store:     opts.Store,
		Rules:     rules,
		LogLimit:  cfg.Log.MaxEntries,
		Clock:     opts.Clock,
		NewRoller: newRoller,
		MaxLoaded: cfg.Sessions.MaxLoaded,
		IdleTTL:   cfg.Sessions.IdleTTL,
		Logger:    opts.Logger,
	})
	go registry.Run(ctx, cfg.Sessions.SweepEvery)

	source := cfg.Zones.Source
	if s := strings.TrimSpace(opts.ZoneSource); s != "" {
		source = s
	}
	fb := cfg.Zones.Fallback
	loader := zones.Loader{
		FS:       staticFS,
		Client:   opts.HTTPClient,
		Fallback: zones.Zone{Name: fb.Name, Type: fb.Type, X: fb.X, Y: fb.Y, W: fb.W, H: fb.H},
		Logger:   opts.Logger.Named("zones"),
	}
	zs := loader.Load(ctx, source)
	opts.Logger.Info("zones loaded", zap.String("source", source), zap.Int("count", len(zs)))

	api := server.NewHandler(registry, zs, audio.NewCatalog(cfg.Audio.Base), opts.Logger)
	api.SetCookieSecure(opts.CookieSecure)
	api.Register(mux, &server.RouteRegistry{})
	logSecurityHints(opts.Logger, opts.Production, opts.CookieSecure)

	mux.Handle("GET /api/config", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := registry.Ping(r.Context()); err != nil {
			opts.Logger.Warn("readiness check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "save storage unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":       true,
			"service":  "tropical-revolution",
			"sessions": registry.Len(),
			"time":     time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("GET /{$}", templ.Handler(page.GamePage(page.GameData{
		Start:   rules.Start,
		Actions: rules.Actions,
		Zones:   zs,
	})))

	return httpmw.Chain(
		mux,
		httpmw.WithRequestID,
		httpmw.WithAccessLog(opts.Logger.Named("http")),
		httpmw.WithRecover(opts.Logger),
	), nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func logSecurityHints(logger *zap.Logger, production, cookieSecure bool) {
	if production && !cookieSecure {
		logger.Warn("production environment without TR_COOKIE_SECURE; session cookie is sent over plain http")
	}
}
