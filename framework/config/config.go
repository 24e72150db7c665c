package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-autowire/framework/validation"
)

// Config is the central typed configuration struct. Declare it as an
// instance in the registry's framework module and every resolved type can
// take a *Config constructor parameter.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Resolver ResolverConfig `yaml:"resolver"`
}

type AppConfig struct {
	Name  string `yaml:"name"`
	Env   string `yaml:"env"` // local | production | testing
	Debug bool   `yaml:"debug"`
	Port  string `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | console
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type ResolverConfig struct {
	// TraceResolutions logs every resolution frame; noisy, keep it off
	// outside local debugging.
	TraceResolutions bool `yaml:"trace_resolutions"`
}

func defaults() *Config {
	return &Config{
		App: AppConfig{
			Name:  "GoAutowire",
			Env:   "local",
			Debug: true,
			Port:  "8000",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Path:    "/metrics",
		},
		Resolver: ResolverConfig{
			TraceResolutions: false,
		},
	}
}

// Load reads .env (if present) and populates a Config from environment
// variables over the built-in defaults. Call once at bootstrap:
//
//	cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	cfg := defaults()
	cfg.applyEnv()
	return cfg
}

// LoadFile reads a YAML configuration file, then applies environment
// variables on top. The environment always wins, so one config file can
// serve every deployment.
func LoadFile(path string, envFiles ...string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := defaults()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	_ = godotenv.Load(files...)
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.App.Name = env("APP_NAME", c.App.Name)
	c.App.Env = env("APP_ENV", c.App.Env)
	c.App.Debug = envBool("APP_DEBUG", c.App.Debug)
	c.App.Port = env("APP_PORT", c.App.Port)

	c.Log.Level = env("LOG_LEVEL", c.Log.Level)
	c.Log.Format = env("LOG_FORMAT", c.Log.Format)

	c.Metrics.Enabled = envBool("METRICS_ENABLED", c.Metrics.Enabled)
	c.Metrics.Path = env("METRICS_PATH", c.Metrics.Path)

	c.Resolver.TraceResolutions = envBool("RESOLVER_TRACE", c.Resolver.TraceResolutions)
}

// Validate checks the loaded values against the framework's field rules and
// returns the error bag, empty when everything passes.
func (c *Config) Validate() *validation.Errors {
	return validation.Check(map[string]string{
		"app.name":     c.App.Name,
		"app.env":      c.App.Env,
		"app.port":     c.App.Port,
		"log.level":    c.Log.Level,
		"log.format":   c.Log.Format,
		"metrics.path": c.Metrics.Path,
	}, validation.Rules{
		"app.name":     "required",
		"app.env":      "required|in:local,production,testing",
		"app.port":     "required|integer",
		"log.level":    "required|in:debug,info,warn,error",
		"log.format":   "required|in:json,console",
		"metrics.path": "required|regex:^/",
	})
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool { return c.App.Env == "production" }

// IsTesting reports whether the app runs with APP_ENV=testing.
func (c *Config) IsTesting() bool { return c.App.Env == "testing" }

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
