package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/soltrace/internal/config"
	"github.com/rs/zerolog/log"
)

// loadOverlay applies the keys present in path over config.Default. It
// reads the same sectioned file `config init` writes, but unknown keys
// only warn; `config validate` is the strict check.
func loadOverlay(path string) (config.Config, error) {
	cfg := config.Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var raw config.Config
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config.Config{}, fmt.Errorf("load soltrace config: %w", err)
	}
	for _, key := range meta.Undecoded() {
		log.Warn().Str("path", path).Str("key", key.String()).Msg("ignoring unknown config key")
	}

	if meta.IsDefined("server", "name") {
		if name := strings.TrimSpace(raw.Server.Name); name != "" {
			cfg.Server.Name = name
		}
	}
	if meta.IsDefined("server", "addr") {
		cfg.Server.Addr = strings.TrimSpace(raw.Server.Addr)
	}
	if meta.IsDefined("server", "cors_origins") {
		cfg.Server.CorsOrigins = normalizeOrigins(raw.Server.CorsOrigins)
	}
	if meta.IsDefined("server", "max_body_bytes") {
		cfg.Server.MaxBodyBytes = raw.Server.MaxBodyBytes
	}
	if meta.IsDefined("server", "api_token") {
		cfg.Server.APIToken = strings.TrimSpace(raw.Server.APIToken)
	}
	if meta.IsDefined("input", "format") {
		cfg.Input.Format = strings.ToLower(strings.TrimSpace(raw.Input.Format))
	}
	if meta.IsDefined("output", "format") {
		cfg.Output.Format = strings.ToLower(strings.TrimSpace(raw.Output.Format))
	}
	if meta.IsDefined("output", "typed") {
		cfg.Output.Typed = raw.Output.Typed
	}
	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "json") {
		cfg.Log.JSON = raw.Log.JSON
	}
	if meta.IsDefined("log", "timestamp") {
		cfg.Log.Timestamp = raw.Log.Timestamp
	}

	if err := config.Validate(cfg); err != nil {
		return config.Config{}, fmt.Errorf("soltrace config %s: %w", path, err)
	}
	return cfg, nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
