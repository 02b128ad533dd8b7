package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "coronastats.json5"

const (
	defaultPort            = "8080"
	defaultSourceURL       = "https://www.worldometers.info/coronavirus/"
	defaultInviteURL       = "https://discordapp.com/oauth2/authorize?client_id=685268214435020809&scope=bot&permissions=52224"
	defaultRefreshInterval = 60 * time.Second
	defaultStartupDelay    = 10 * time.Millisecond
	defaultRequestTimeout  = 30 * time.Second
	defaultUserAgent       = "Mozilla/5.0 (compatible; coronastats/1.0)"
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"
)

type Config struct {
	Port            string
	SourceURL       string
	InviteURL       string
	RefreshInterval time.Duration
	StartupDelay    time.Duration
	RequestTimeout  time.Duration
	UserAgent       string
	AllowedOrigins  []string
	LogLevel        string
	LogFormat       string
}

// Load builds the config from defaults, then the config file at path (and
// its .local override), then environment variables. An empty path reads
// DefaultFile and tolerates its absence.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultFile
	}

	file, err := ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && optional {
		slog.Debug("no config file, using defaults and environment", "path", path)
	} else if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(&file)
	return resolve(file)
}

// applyEnv overrides file values with any set environment variables.
func applyEnv(f *File) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&f.Port, "PORT")
	setString(&f.SourceURL, "SOURCE_URL")
	setString(&f.InviteURL, "INVITE_URL")
	setString(&f.RefreshInterval, "REFRESH_INTERVAL")
	setString(&f.StartupDelay, "STARTUP_DELAY")
	setString(&f.RequestTimeout, "REQUEST_TIMEOUT")
	setString(&f.UserAgent, "USER_AGENT")
	setString(&f.LogLevel, "LOG_LEVEL")
	setString(&f.LogFormat, "LOG_FORMAT")

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		f.AllowedOrigins = strings.Split(origins, ",")
	}
}

func resolve(f File) (*Config, error) {
	cfg := &Config{
		Port:           orDefault(f.Port, defaultPort),
		SourceURL:      orDefault(f.SourceURL, defaultSourceURL),
		InviteURL:      orDefault(f.InviteURL, defaultInviteURL),
		UserAgent:      orDefault(f.UserAgent, defaultUserAgent),
		LogLevel:       orDefault(strings.ToLower(f.LogLevel), defaultLogLevel),
		LogFormat:      orDefault(strings.ToLower(f.LogFormat), defaultLogFormat),
		AllowedOrigins: f.AllowedOrigins,
	}

	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid port %q", cfg.Port)
	}

	if cfg.RefreshInterval, err = duration("refresh_interval", f.RefreshInterval, defaultRefreshInterval); err != nil {
		return nil, err
	}
	if cfg.StartupDelay, err = duration("startup_delay", f.StartupDelay, defaultStartupDelay); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = duration("request_timeout", f.RequestTimeout, defaultRequestTimeout); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval <= 0 {
		return nil, fmt.Errorf("refresh_interval must be positive, got %s", cfg.RefreshInterval)
	}

	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	for i, origin := range cfg.AllowedOrigins {
		cfg.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func duration(key, v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", key, v)
	}
	return d, nil
}
