// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for host-side engine settings: defaults
// first, then an optional YAML file, then environment variables on top.
// Game-side capacities live in the game's own GameConfig, not here.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// HostConfig holds the control API and frame hub settings.
type HostConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// InputRatePerSecond and InputBurst bound host input events per client.
	InputRatePerSecond float64 `yaml:"input_rate_per_second"`
	InputBurst         int     `yaml:"input_burst"`
}

// DefaultHost returns the default host configuration.
func DefaultHost() HostConfig {
	return HostConfig{
		Port:               3000,
		AllowedOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		InputRatePerSecond: 240,
		InputBurst:         480,
	}
}

// ObservabilityConfig configures the localhost-only debug server.
type ObservabilityConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// DefaultObservability returns safe defaults. The debug server binds to
// localhost only; pprof must never be exposed externally.
func DefaultObservability() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// TelemetryConfig configures the per-tick CSV recorder. An empty dir
// disables it.
type TelemetryConfig struct {
	Dir           string `yaml:"dir"`
	FlushInterval int    `yaml:"flush_interval"` // ticks between flushes
}

// DefaultTelemetry returns telemetry disabled.
func DefaultTelemetry() TelemetryConfig {
	return TelemetryConfig{FlushInterval: 600}
}

// EngineConfig holds host-side engine settings (the game supplies its own
// capacities and world size through GameConfig).
type EngineConfig struct {
	ManifestPath string `yaml:"manifest_path"`
	EffectsSeed  uint64 `yaml:"effects_seed"`
}

// DefaultEngine returns the default engine settings.
func DefaultEngine() EngineConfig {
	return EngineConfig{EffectsSeed: 42}
}

// AppConfig is the complete host configuration.
type AppConfig struct {
	Engine        EngineConfig        `yaml:"engine"`
	Host          HostConfig          `yaml:"host"`
	Observability ObservabilityConfig `yaml:"observability"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
}

// Load builds the configuration: defaults, then the YAML file at CONFIG_PATH
// (or path, if given), then environment overrides.
func Load(path string) (AppConfig, error) {
	cfg := AppConfig{
		Engine:        DefaultEngine(),
		Host:          DefaultHost(),
		Observability: DefaultObservability(),
		Telemetry:     DefaultTelemetry(),
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv layers environment variables over the loaded values.
func applyEnv(cfg *AppConfig) {
	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Host.Port = p
	}
	if m := os.Getenv("MANIFEST_PATH"); m != "" {
		cfg.Engine.ManifestPath = m
	}
	if s := getEnvInt("EFFECTS_SEED", 0); s > 0 {
		cfg.Engine.EffectsSeed = uint64(s)
	}
	if d := os.Getenv("TELEMETRY_DIR"); d != "" {
		cfg.Telemetry.Dir = d
	}
	if os.Getenv("DISABLE_DEBUG_SERVER") == "true" {
		cfg.Observability.Enabled = false
	}
	if a := os.Getenv("DEBUG_LISTEN_ADDR"); a != "" {
		cfg.Observability.ListenAddr = a
	}
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
