package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// File is the on-disk form of Config. Durations use time.ParseDuration
// syntax, e.g. "60s".
type File struct {
	Port            string   `json:"port"`
	SourceURL       string   `json:"source_url"`
	InviteURL       string   `json:"invite_url"`
	RefreshInterval string   `json:"refresh_interval"`
	StartupDelay    string   `json:"startup_delay"`
	RequestTimeout  string   `json:"request_timeout"`
	UserAgent       string   `json:"user_agent"`
	AllowedOrigins  []string `json:"allowed_origins"`
	LogLevel        string   `json:"log_level"`
	LogFormat       string   `json:"log_format"`
}

// localPath turns "dir/name.ext" into "dir/name.local.ext".
func localPath(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

// ReadFile reads the json5 file at name and merges <name>.local.<ext> over
// it when present. It returns os.ErrNotExist only when neither exists.
func ReadFile(name string) (File, error) {
	var out File
	found := false

	base, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if err == nil {
		found = true
		if len(base) > 0 {
			if err := json5.Unmarshal(base, &out); err != nil {
				return out, fmt.Errorf("%s: %w", name, err)
			}
		}
	}

	local := localPath(name)
	override, err := os.ReadFile(local)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if err == nil {
		found = true
		if len(override) > 0 {
			var overrideFile File
			if err := json5.Unmarshal(override, &overrideFile); err != nil {
				return out, fmt.Errorf("%s: %w", local, err)
			}
			if err := mergo.Merge(&out, overrideFile, mergo.WithOverride); err != nil {
				return out, err
			}
			slog.Info("merging config with local overrides", "local", local)
		}
	}

	if !found {
		return out, os.ErrNotExist
	}
	return out, nil
}
