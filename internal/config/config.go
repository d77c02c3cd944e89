package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	InputText = "text"
	InputRPC  = "rpc"

	OutputJSON = "json"
	OutputYAML = "yaml"
	OutputTree = "tree"
)

// Config is the soltrace config file.
type Config struct {
	Server ServerConfig `toml:"server"`
	Input  InputConfig  `toml:"input"`
	Output OutputConfig `toml:"output"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures the HTTP API. A non-empty APIToken is required
// as a bearer token on /v1 routes.
type ServerConfig struct {
	Name         string   `toml:"name"`
	Addr         string   `toml:"addr"`
	CorsOrigins  []string `toml:"cors_origins"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
	APIToken     string   `toml:"api_token"`
}

type InputConfig struct {
	Format string `toml:"format"`
}

type OutputConfig struct {
	Format string `toml:"format"`
	Typed  bool   `toml:"typed"`
}

type LogConfig struct {
	Level     string `toml:"level"`
	JSON      bool   `toml:"json"`
	Timestamp bool   `toml:"timestamp"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Name:         "soltrace",
			Addr:         ":9300",
			CorsOrigins:  []string{"http://localhost:3000"},
			MaxBodyBytes: 4 << 20,
		},
		Input:  InputConfig{Format: InputText},
		Output: OutputConfig{Format: OutputJSON},
		Log:    LogConfig{Level: "info", Timestamp: true},
	}
}

// Load reads a full config file strictly: unknown keys are an error.
// Empty values fall back to defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("config parse failed (%s): %s", path, strict.String())
		}
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	fillDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func fillDefaults(cfg *Config) {
	def := Default()
	if strings.TrimSpace(cfg.Server.Name) == "" {
		cfg.Server.Name = def.Server.Name
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = def.Server.MaxBodyBytes
	}
	if strings.TrimSpace(cfg.Input.Format) == "" {
		cfg.Input.Format = def.Input.Format
	}
	if strings.TrimSpace(cfg.Output.Format) == "" {
		cfg.Output.Format = def.Output.Format
	}
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = def.Log.Level
	}
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Server.Name) == "" {
		return fmt.Errorf("server.name is required")
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return fmt.Errorf("server.addr is required")
	}
	if cfg.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes must not be negative")
	}
	switch cfg.Input.Format {
	case InputText, InputRPC:
	default:
		return fmt.Errorf("input.format %q: want %s or %s", cfg.Input.Format, InputText, InputRPC)
	}
	switch cfg.Output.Format {
	case OutputJSON, OutputYAML, OutputTree:
	default:
		return fmt.Errorf("output.format %q: want %s, %s or %s", cfg.Output.Format, OutputJSON, OutputYAML, OutputTree)
	}
	return nil
}
