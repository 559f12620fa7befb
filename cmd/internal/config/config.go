package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

const (
	StoreSQLite  = "sqlite"
	StoreMemory  = "memory"
	HistoryMem   = "memory"
	HistorySQL   = "sqlite"
	envConfigKey = "CALENDARBOT_CONFIG"
)

type LLMConfig struct {
	APIKey  string   `toml:"api_key"`
	BaseURL string   `toml:"base_url"`
	Model   string   `toml:"model"`
	Timeout Duration `toml:"timeout"`
}

type Config struct {
	Environment    string    `toml:"environment"`
	HTTPAddr       string    `toml:"http_addr"`
	DBPath         string    `toml:"db_path"`
	Store          string    `toml:"store"`
	HistoryBackend string    `toml:"history_backend"`
	HistoryLimit   int       `toml:"history_limit"`
	SnapshotLimit  int       `toml:"snapshot_limit"`
	OverlapPolicy  string    `toml:"overlap_policy"`
	SessionSecret  string    `toml:"session_secret"`
	SessionTTL     Duration  `toml:"session_ttl"`
	TelegramToken  string    `toml:"telegram_token"`
	LogLevel       string    `toml:"log_level"`
	LLM            LLMConfig `toml:"llm"`
}

// Duration decodes TOML strings such as "90s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func Defaults() *Config {
	return &Config{
		Environment:    "development",
		HTTPAddr:       ":6060",
		DBPath:         "./database.db",
		Store:          StoreSQLite,
		HistoryBackend: HistoryMem,
		HistoryLimit:   20,
		SnapshotLimit:  50,
		OverlapPolicy:  "model",
		SessionTTL:     Duration{24 * time.Hour},
		LogLevel:       "info",
		LLM: LLMConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
			Timeout: Duration{60 * time.Second},
		},
	}
}

// Load reads .env, then the TOML file named by CALENDARBOT_CONFIG, then the
// environment. Later sources win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn("no .env file found, using environment variables")
	}

	cfg := Defaults()
	if path := os.Getenv(envConfigKey); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	str("ENV", &c.Environment)
	str("HTTP_ADDR", &c.HTTPAddr)
	str("DB_PATH", &c.DBPath)
	str("STORE", &c.Store)
	str("HISTORY_BACKEND", &c.HistoryBackend)
	str("OVERLAP_POLICY", &c.OverlapPolicy)
	str("SESSION_SECRET", &c.SessionSecret)
	str("TELEGRAM_TOKEN", &c.TelegramToken)
	str("LOG_LEVEL", &c.LogLevel)
	str("OPENAI_API_KEY", &c.LLM.APIKey)
	str("OPENAI_BASE_URL", &c.LLM.BaseURL)
	str("OPENAI_MODEL", &c.LLM.Model)

	ints := map[string]*int{
		"HISTORY_LIMIT":  &c.HistoryLimit,
		"SNAPSHOT_LIMIT": &c.SnapshotLimit,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s must be an integer: %w", key, err)
			}
			*dst = n
		}
	}

	durations := map[string]*Duration{
		"SESSION_TTL": &c.SessionTTL,
		"LLM_TIMEOUT": &c.LLM.Timeout,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				return fmt.Errorf("%s must be a duration: %w", key, err)
			}
		}
	}
	return nil
}

// Validate checks the settings every command needs. needModel adds the
// language model credentials.
func (c *Config) Validate(needModel bool) error {
	var errs []error
	switch c.Store {
	case StoreSQLite, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("store must be %q or %q, got %q", StoreSQLite, StoreMemory, c.Store))
	}
	switch c.HistoryBackend {
	case HistoryMem, HistorySQL:
	default:
		errs = append(errs, fmt.Errorf("history backend must be %q or %q, got %q", HistoryMem, HistorySQL, c.HistoryBackend))
	}
	if c.HistoryBackend == HistorySQL && c.Store != StoreSQLite {
		errs = append(errs, errors.New("sqlite history backend requires the sqlite store"))
	}
	switch c.OverlapPolicy {
	case "model", "store", "either":
	default:
		errs = append(errs, fmt.Errorf("overlap policy must be model, store or either, got %q", c.OverlapPolicy))
	}
	if c.HistoryLimit <= 0 {
		errs = append(errs, errors.New("history limit must be positive"))
	}
	if c.SnapshotLimit <= 0 {
		errs = append(errs, errors.New("snapshot limit must be positive"))
	}
	if c.SessionTTL.Duration <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if needModel && c.LLM.APIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required but not set"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GommonLevel maps LogLevel onto the gommon logger.
func (c *Config) GommonLevel() log.Lvl {
	switch c.LogLevel {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}
