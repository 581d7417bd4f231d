// Package config loads the market server settings: built-in defaults, then an
// optional YAML file, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mcdev12/hoops/go/internal/auction"
	"github.com/mcdev12/hoops/go/internal/dbconfig"
	"github.com/mcdev12/hoops/go/internal/gateway"
	"github.com/mcdev12/hoops/go/internal/outbox"
	"github.com/mcdev12/hoops/go/internal/sqlutil"
	"gopkg.in/yaml.v3"
)

// PathEnv names the YAML file to load, if any.
const PathEnv = "MARKET_CONFIG"

type Config struct {
	Server   ServerConfig        `yaml:"server"`
	Database dbconfig.Config     `yaml:"database"`
	Retry    sqlutil.RetryPolicy `yaml:"retry"`
	Market   MarketConfig        `yaml:"market"`
	Events   EventsConfig        `yaml:"events"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	LogLevel       string   `yaml:"log_level"`
	PrettyLogs     bool     `yaml:"pretty_logs"`
}

type MarketConfig struct {
	Rules auction.Rules `yaml:"rules"`
	// CacheTTL bounds how stale a ListMarket read may be. Zero disables caching.
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// SweepInterval is how often expired auctions are settled in the
	// background. Zero leaves settlement to the next read or bid.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// EventsConfig covers the outbox relay and the websocket gateway. Both are
// off unless Enabled is set, since they need NATS.
type EventsConfig struct {
	Enabled   bool                   `yaml:"enabled"`
	JetStream outbox.JetStreamConfig `yaml:"jetstream"`
	Relay     outbox.RelayConfig     `yaml:"relay"`
	Listener  outbox.ListenerConfig  `yaml:"listener"`
	Hub       gateway.HubConfig      `yaml:"hub"`
	Consumer  gateway.ConsumerConfig `yaml:"consumer"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           "8080",
			AllowedOrigins: []string{"*"},
			LogLevel:       "info",
		},
		Database: dbconfig.Default(),
		Retry:    sqlutil.DefaultRetryPolicy(),
		Market: MarketConfig{
			Rules:         auction.DefaultRules(),
			CacheTTL:      20 * time.Second,
			SweepInterval: 30 * time.Second,
		},
		Events: EventsConfig{
			JetStream: outbox.DefaultJetStreamConfig(),
			Relay:     outbox.DefaultRelayConfig(),
			Listener:  outbox.DefaultListenerConfig(),
			Hub:       gateway.DefaultHubConfig(),
			Consumer:  gateway.DefaultConsumerConfig(),
		},
	}
}

// Load builds the configuration from the file named by MARKET_CONFIG and the
// process environment.
func Load() (Config, error) {
	return load(os.Getenv(PathEnv), os.Getenv)
}

func load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	cfg.Events.Listener.DatabaseURL = cfg.Database.DSN()
	cfg.Events.Consumer.StreamName = cfg.Events.JetStream.StreamName
	cfg.Events.Consumer.SubjectPrefix = cfg.Events.JetStream.SubjectPrefix
	cfg.Events.Hub.AllowedOrigins = cfg.Server.AllowedOrigins
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = v
	}
	if v := getenv("NATS_URL"); v != "" {
		cfg.Events.JetStream.URL = v
	}

	var errs []error
	if err := cfg.Database.ApplyEnv(getenv); err != nil {
		errs = append(errs, err)
	}
	durations := map[string]*time.Duration{
		"MARKET_CACHE_TTL":      &cfg.Market.CacheTTL,
		"MARKET_SWEEP_INTERVAL": &cfg.Market.SweepInterval,
		"AUCTION_DURATION":      &cfg.Market.Rules.InitialDuration,
		"AUCTION_ANTI_SNIPE":    &cfg.Market.Rules.AntiSnipeWindow,
	}
	for key, dst := range durations {
		v := getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		*dst = d
	}
	if v := getenv("MARKET_EVENTS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("MARKET_EVENTS_ENABLED: %w", err))
		} else {
			cfg.Events.Enabled = b
		}
	}
	return errors.Join(errs...)
}

func (c Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	r := c.Market.Rules
	if r.InitialDuration <= 0 {
		errs = append(errs, errors.New("market.rules.initial_duration must be positive"))
	}
	if r.AntiSnipeWindow < 0 {
		errs = append(errs, errors.New("market.rules.anti_snipe_window must not be negative"))
	}
	if !r.MinIncrement.IsPositive() {
		errs = append(errs, errors.New("market.rules.min_increment must be positive"))
	}
	if r.MaxYears < 1 {
		errs = append(errs, errors.New("market.rules.max_years must be at least 1"))
	}
	if r.HardCloseAfter != 0 && r.HardCloseAfter < r.InitialDuration {
		errs = append(errs, errors.New("market.rules.hard_close_after must not be shorter than initial_duration"))
	}
	if c.Market.CacheTTL < 0 || c.Market.SweepInterval < 0 {
		errs = append(errs, errors.New("market cache_ttl and sweep_interval must not be negative"))
	}
	if err := c.Database.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry.max_attempts must be at least 1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
