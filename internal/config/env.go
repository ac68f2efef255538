package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Env holds process settings read from the environment (optionally
// preloaded from .env by the commands).
type Env struct {
	Port         string `envconfig:"TR_PORT" default:"42069"`
	ConfigPath   string `envconfig:"TR_CONFIG" default:"tropical_config.yml"`
	DataDir      string `envconfig:"TR_DATA_DIR" default:"data"`
	StaticDir    string `envconfig:"TR_STATIC_DIR" default:"static"`
	DevStatic    bool   `envconfig:"TR_DEV_STATIC" default:"false"`
	Environment  string `envconfig:"TR_ENV" default:"development"`
	CookieSecure bool   `envconfig:"TR_COOKIE_SECURE" default:"false"`

	Store         string `envconfig:"TR_STORE" default:"file"`
	RedisAddr     string `envconfig:"TR_REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"TR_REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"TR_REDIS_DB" default:"0"`
	SQLitePath    string `envconfig:"TR_SQLITE_PATH" default:"data/tropical.db"`

	LogLevel    string `envconfig:"TR_LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"TR_LOG_ENCODING" default:"json"`
	LogOutput   string `envconfig:"TR_LOG_OUTPUT"`

	// ZoneSource overrides zones.source from the config file.
	ZoneSource string `envconfig:"TR_ZONE_SOURCE"`
}

var storeBackends = map[string]bool{"file": true, "memory": true, "redis": true, "sqlite": true}

func LoadEnv() (Env, error) {
	var e Env
	if err := envconfig.Process("", &e); err != nil {
		return Env{}, fmt.Errorf("load env: %w", err)
	}
	e.Store = strings.ToLower(strings.TrimSpace(e.Store))
	if !storeBackends[e.Store] {
		return Env{}, fmt.Errorf("load env: unknown TR_STORE %q (want file, memory, redis or sqlite)", e.Store)
	}
	return e, nil
}

func (e Env) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(e.Port), ":")
}

func (e Env) IsProduction() bool {
	switch strings.ToLower(strings.TrimSpace(e.Environment)) {
	case "production", "prod":
		return true
	default:
		return false
	}
}
