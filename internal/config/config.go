package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// envPrefix namespaces the environment variables read by Load, e.g.
// MNEMIC_LISTEN_ADDR overrides listen_addr.
const envPrefix = "MNEMIC_"

// Config holds the service settings. Sources are merged in order of
// YAML file, environment, then command-line flags, so flags win.
type Config struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ModelDir   string `koanf:"model_dir" validate:"required"`
	ModelRepo  string `koanf:"model_repo"`
	CacheDir   string `koanf:"cache_dir" validate:"required"`
	DBPath     string `koanf:"db_path" validate:"required"`
	DaysAhead  int    `koanf:"days_ahead" validate:"gt=0"`
	LogLevel   string `koanf:"log_level" validate:"oneof=debug info warn error"`
}

// Load parses flags from args and resolves the final configuration.
func Load(args []string) (*Config, error) {
	f := pflag.NewFlagSet("mnemic", pflag.ContinueOnError)
	f.String("config", "", "Path to a YAML config file")
	f.String("listen_addr", ":8000", "Address the HTTP server listens on")
	f.String("model_dir", "model", "Directory holding the model artifacts")
	f.String("model_repo", "", "Optional git URL to fetch model artifacts from")
	f.String("cache_dir", "model-cache", "Directory for cached model repositories")
	f.String("db_path", "mnemic.db", "Path to the SQLite database file")
	f.Int("days_ahead", 30, "Default schedule look-ahead horizon in days")
	f.String("log_level", "info", "Log level: debug, info, warn or error")
	if err := f.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	k := koanf.New(".")

	if path, _ := f.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, fmt.Errorf("loading flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
