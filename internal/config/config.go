// Package config resolves runtime settings from flags, LOSTFOUND_*
// environment variables, an optional .env file and an optional YAML file.
//
// Precedence, highest first: flags, environment (including .env), config
// file, defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "LOSTFOUND"

// Config holds everything the server needs to start.
type Config struct {
	DBPath     string
	Addr       string
	LogPath    string
	AdminEmail string
	Metrics    bool
	Mirror     Mirror
}

// Mirror configures where item changes are copied to. With neither a sheet
// URL nor Kafka brokers set, events are only logged.
type Mirror struct {
	SheetURL     string
	KafkaBrokers []string
	KafkaTopic   string
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

// ErrHelp is returned by Load when usage was requested and printed.
var ErrHelp = pflag.ErrHelp

// flag name -> viper key
var keys = map[string]string{
	"db":                   "db",
	"addr":                 "addr",
	"log":                  "log",
	"admin-email":          "admin-email",
	"metrics":              "metrics",
	"mirror-sheet-url":     "mirror.sheet-url",
	"mirror-kafka-brokers": "mirror.kafka-brokers",
	"mirror-kafka-topic":   "mirror.kafka-topic",
	"mirror-poll-interval": "mirror.poll-interval",
	"mirror-batch-size":    "mirror.batch-size",
	"mirror-max-attempts":  "mirror.max-attempts",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("lostfound", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.Usage = Usage
	fs.StringP("db", "d", "lostfound.sqlite3", "SQLite database path")
	fs.StringP("addr", "a", ":8080", "listen address")
	fs.StringP("log", "l", "", "log file path (default: stdout/stderr only)")
	fs.StringP("admin-email", "u", "admin@lostfound.local", "admin email on first run")
	fs.StringP("config", "c", "", "YAML config file")
	fs.Bool("metrics", true, "serve Prometheus metrics on /metrics")
	fs.String("mirror-sheet-url", "", "spreadsheet REST endpoint to mirror items to")
	fs.StringSlice("mirror-kafka-brokers", nil, "Kafka brokers to mirror items to")
	fs.String("mirror-kafka-topic", "lostfound.items", "Kafka topic for item events")
	fs.Duration("mirror-poll-interval", 5*time.Second, "how often pending mirror events are delivered")
	fs.Int("mirror-batch-size", 50, "mirror events delivered per poll")
	fs.Int("mirror-max-attempts", 5, "delivery attempts before a mirror event is abandoned")
	return fs
}

// Load parses args (without the program name) and resolves the final
// configuration. A .env file in the working directory is read first if
// present; it never overrides variables already set in the environment.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", flags.Arg(0))
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for name, key := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", name, err)
		}
	}

	configPath, _ := flags.GetString("config")
	if configPath == "" {
		configPath = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{
		DBPath:     v.GetString("db"),
		Addr:       v.GetString("addr"),
		LogPath:    v.GetString("log"),
		AdminEmail: strings.ToLower(strings.TrimSpace(v.GetString("admin-email"))),
		Metrics:    v.GetBool("metrics"),
		Mirror: Mirror{
			SheetURL:     v.GetString("mirror.sheet-url"),
			KafkaBrokers: splitList(v.GetStringSlice("mirror.kafka-brokers")),
			KafkaTopic:   v.GetString("mirror.kafka-topic"),
			PollInterval: v.GetDuration("mirror.poll-interval"),
			BatchSize:    v.GetInt("mirror.batch-size"),
			MaxAttempts:  v.GetInt("mirror.max-attempts"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("config: db path is empty")
	}
	if c.Addr == "" {
		return errors.New("config: listen address is empty")
	}
	if len(c.Mirror.KafkaBrokers) > 0 && c.Mirror.KafkaTopic == "" {
		return errors.New("config: kafka brokers set without a topic")
	}
	if c.Mirror.PollInterval <= 0 {
		return errors.New("config: mirror poll interval must be positive")
	}
	return nil
}

// Usage prints flag help to stdout.
func Usage() {
	fmt.Fprintf(os.Stdout, "Usage: lostfound [flags]\n\nFlags:\n%s", newFlagSet().FlagUsages())
	fmt.Fprintf(os.Stdout, "\nEvery flag can also be set as %s_<NAME> in the environment or a .env file,\n", EnvPrefix)
	fmt.Fprintln(os.Stdout, "for example LOSTFOUND_MIRROR_SHEET_URL.")
}

// splitList accepts both repeated values and comma separated strings.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
