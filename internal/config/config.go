// Package config loads smartdex settings. Values are layered, later sources
// winning: flag defaults, the YAML config file, SMARTDEX_* environment
// variables (a .env file is read first if present), then flags set on the
// command line.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read into the config.
// SMARTDEX_SERVER_ADDR sets server.addr.
const EnvPrefix = "SMARTDEX_"

// Config holds all application configuration.
type Config struct {
	DB      DBConfig      `koanf:"db"`
	Log     LogConfig     `koanf:"log"`
	Server  ServerConfig  `koanf:"server"`
	Study   StudyConfig   `koanf:"study"`
	Quiz    QuizConfig    `koanf:"quiz"`
	Sources SourcesConfig `koanf:"sources"`
}

type DBConfig struct {
	Path string `koanf:"path" validate:"required"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"required,oneof=debug info warn error"`
	Format string `koanf:"format" validate:"required,oneof=text json"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required"`
}

type StudyConfig struct {
	Limit int `koanf:"limit" validate:"min=1,max=500"`
}

type QuizConfig struct {
	Count int    `koanf:"count" validate:"min=1,max=100"`
	Mode  string `koanf:"mode" validate:"oneof=multiple-choice true-false typing"`
}

type SourcesConfig struct {
	// ReposDir holds checkouts of git sources.
	ReposDir string `koanf:"repos_dir" validate:"required"`
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"db":               "db.path",
	"log-level":        "log.level",
	"log-format":       "log.format",
	"addr":             "server.addr",
	"shutdown-timeout": "server.shutdown_timeout",
	"limit":            "study.limit",
	"count":            "quiz.count",
	"mode":             "quiz.mode",
	"repos-dir":        "sources.repos_dir",
}

// RegisterFlags adds the config flags and their defaults to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML config file")
	fs.String("db", "smartdex.db", "path to the SQLite database file")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("log-format", "text", "log format (text, json)")
	fs.String("addr", ":8080", "HTTP listen address")
	fs.Duration("shutdown-timeout", 10*time.Second, "time allowed for in-flight requests on shutdown")
	fs.Int("limit", 20, "maximum number of cards in a study session")
	fs.Int("count", 10, "number of quiz questions")
	fs.String("mode", "multiple-choice", "quiz mode (multiple-choice, true-false, typing)")
	fs.String("repos-dir", "repos", "directory for git source checkouts")
}

// Load builds the configuration from fs, which must have been set up with
// RegisterFlags and parsed. The config file is taken from the --config flag.
func Load(fs *pflag.FlagSet) (*Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	k := koanf.New(".")

	configPath, err := fs.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("config flag not registered: %w", err)
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	// Unchanged flags only fill keys no other source has set.
	if err := k.Load(posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns SMARTDEX_SERVER_SHUTDOWN_TIMEOUT into server.shutdown_timeout.
func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
