package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix      = "PRODUCT_SVC_"
	DefaultEnvFile = ".env"
	DefaultFile    = "config.yaml"

	DriverMemory   = "memory"
	DriverPostgres = "postgres"

	minSecretLen = 32
)

type Config struct {
	Server struct {
		Port    int    `koanf:"port"`
		Prefix  string `koanf:"prefix"`
		Timeout struct {
			ReadHeader time.Duration `koanf:"readheader"`
			Read       time.Duration `koanf:"read"`
			Write      time.Duration `koanf:"write"`
			Idle       time.Duration `koanf:"idle"`
			Shutdown   time.Duration `koanf:"shutdown"`
		} `koanf:"timeout"`
	} `koanf:"server"`

	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`

	Store struct {
		Driver string `koanf:"driver"`
	} `koanf:"store"`

	Database struct {
		URL     string `koanf:"url"`
		Migrate bool   `koanf:"migrate"`
	} `koanf:"database"`

	Metrics struct {
		Enabled bool   `koanf:"enabled"`
		Token   string `koanf:"token"`
	} `koanf:"metrics"`

	RateLimit struct {
		Writes int           `koanf:"writes"`
		Window time.Duration `koanf:"window"`
	} `koanf:"ratelimit"`

	Auth struct {
		Secret string `koanf:"secret"`
	} `koanf:"auth"`
}

func defaults() map[string]any {
	return map[string]any{
		"server.port":               8888,
		"server.prefix":             "/products",
		"server.timeout.readheader": "5s",
		"server.timeout.read":       "15s",
		"server.timeout.write":      "15s",
		"server.timeout.idle":       "60s",
		"server.timeout.shutdown":   "10s",
		"log.level":                 "info",
		"store.driver":              DriverMemory,
		"database.migrate":          true,
		"metrics.enabled":           true,
		"ratelimit.writes":          0,
		"ratelimit.window":          "1m",
	}
}

// Sources lists where Load looks. Empty paths are skipped.
type Sources struct {
	File    string
	EnvFile string
	Environ func() []string
}

func DefaultSources() Sources {
	return Sources{File: DefaultFile, EnvFile: DefaultEnvFile, Environ: os.Environ}
}

// Load layers defaults, the yaml file, the .env file and the process
// environment, later sources winning.
func Load(src Sources) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if src.File != "" {
		if err := k.Load(file.Provider(src.File), yaml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", src.File, err)
		}
	}

	if src.EnvFile != "" {
		vars, err := godotenv.Read(src.EnvFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", src.EnvFile, err)
		}
		if err := k.Load(confmap.Provider(envMap(vars), "."), nil); err != nil {
			return nil, fmt.Errorf("load %s: %w", src.EnvFile, err)
		}
	}

	if src.Environ != nil {
		vars := make(map[string]string)
		for _, kv := range src.Environ() {
			if key, val, ok := strings.Cut(kv, "="); ok {
				vars[key] = val
			}
		}
		if err := k.Load(confmap.Provider(envMap(vars), "."), nil); err != nil {
			return nil, fmt.Errorf("load env: %w", err)
		}
	} else if err := k.Load(env.Provider(EnvPrefix, ".", keyTransformer), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envMap(vars map[string]string) map[string]any {
	out := make(map[string]any, len(vars))
	for key, val := range vars {
		if !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		out[keyTransformer(key)] = val
	}
	return out
}

// PRODUCT_SVC_SERVER_TIMEOUT_READ -> server.timeout.read
func keyTransformer(key string) string {
	key = strings.TrimPrefix(key, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "_", ".")
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.Prefix, "/") {
		return fmt.Errorf("server prefix must start with '/': %q", c.Server.Prefix)
	}

	t := c.Server.Timeout
	for name, d := range map[string]time.Duration{
		"readheader": t.ReadHeader,
		"read":       t.Read,
		"write":      t.Write,
		"idle":       t.Idle,
		"shutdown":   t.Shutdown,
	} {
		if d <= 0 {
			return fmt.Errorf("invalid server %s timeout: %v", name, d)
		}
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if !isPostgresURL(c.Database.URL) {
			return fmt.Errorf("database url must start with postgres:// or postgresql://: %s", maskURL(c.Database.URL))
		}
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}

	if c.RateLimit.Writes < 0 {
		return fmt.Errorf("invalid ratelimit writes: %d", c.RateLimit.Writes)
	}
	if c.RateLimit.Writes > 0 && c.RateLimit.Window <= 0 {
		return fmt.Errorf("invalid ratelimit window: %v", c.RateLimit.Window)
	}

	if c.Auth.Secret != "" && len(c.Auth.Secret) < minSecretLen {
		return fmt.Errorf("auth secret must be at least %d chars", minSecretLen)
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf("server.port=%d server.prefix=%s log.level=%s store.driver=%s database.url=%s metrics.enabled=%t ratelimit.writes=%d auth=%t",
		c.Server.Port,
		c.Server.Prefix,
		c.Log.Level,
		c.Store.Driver,
		maskURL(c.Database.URL),
		c.Metrics.Enabled,
		c.RateLimit.Writes,
		c.Auth.Secret != "",
	)
}

func isPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

func maskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	if _, host, ok := strings.Cut(url, "@"); ok {
		return "****@" + host
	}
	return "****"
}
