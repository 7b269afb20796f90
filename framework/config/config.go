package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/km-arc/go-inject/framework/validation"
)

// Config is the central typed configuration struct.
type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Log       LogConfig       `envPrefix:"LOG_"`
	Inspector InspectorConfig `envPrefix:"INSPECTOR_"`
	Container ContainerConfig `envPrefix:"CONTAINER_"`
}

type AppConfig struct {
	Name  string `env:"NAME" envDefault:"go-inject"`
	Env   string `env:"ENV" envDefault:"local"` // local | testing | production
	Debug bool   `env:"DEBUG" envDefault:"true"`
	URL   string `env:"URL" envDefault:"http://localhost:8000"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"` // text | json
}

// InspectorConfig configures the HTTP endpoint that exposes the container.
type InspectorConfig struct {
	Addr    string `env:"ADDR" envDefault:":8000"`
	Enabled bool   `env:"ENABLED" envDefault:"true"`
}

type ContainerConfig struct {
	// Strict makes boot fail when the dependency graph has missing
	// providers or cycles.
	Strict bool `env:"STRICT" envDefault:"true"`
}

// Load reads the given .env files (default ".env") and the process
// environment into a Config. Missing files are skipped, later files override
// earlier ones and real environment variables override every file.
//
//	cfg, err := config.Load()
func Load(envFiles ...string) (*Config, error) {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}

	environment := make(map[string]string)
	for _, f := range files {
		values, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			// .env may not exist in production
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", f, err)
		}
		maps.Copy(environment, values)
	}
	maps.Copy(environment, env.ToMap(os.Environ()))

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the loaded values. It returns nil when they are valid.
func (c *Config) Validate() *validation.Errors {
	return validation.Make(map[string]string{
		"APP_NAME":       c.App.Name,
		"APP_ENV":        c.App.Env,
		"APP_URL":        c.App.URL,
		"LOG_LEVEL":      c.Log.Level,
		"LOG_FORMAT":     c.Log.Format,
		"INSPECTOR_ADDR": c.Inspector.Addr,
	}, validation.Rules{
		"APP_NAME":       "required|alpha_dash|max:64",
		"APP_ENV":        "required|in:local,testing,production",
		"APP_URL":        "required|url",
		"LOG_LEVEL":      "required|in:trace,debug,info,warn,warning,error,fatal,panic",
		"LOG_FORMAT":     "required|in:text,json",
		"INSPECTOR_ADDR": "required|addr",
	}).Errors()
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool { return c.App.Env == "production" }

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	i, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return b
}
