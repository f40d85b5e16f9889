package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"scalper_bot/internal/exchange"
	"scalper_bot/internal/models"
	"scalper_bot/internal/runner"
	"scalper_bot/internal/strategy"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDir         = "configs"
	defaultConfigFile = "values_local.yaml"

	tokenTelegramENV = "TELEGRAM_TOKEN"
	chatTelegramENV  = "TELEGRAM_CHAT_ID"
	databaseDSN      = "DATABASE_DSN"
	brokerKeyENV     = "BROKER_API_KEY"
	brokerSecretENV  = "BROKER_API_SECRET"
	brokerURLENV     = "BROKER_BASE_URL"
	redisAddrENV     = "REDIS_ADDR"
	symbolsENV       = "SYMBOLS"
	logLevelENV      = "LOG_LEVEL"
)

// Config ...
type Config struct {
	LogLevel string   `yaml:"log_level"`
	Symbols  []string `yaml:"symbols"`

	Broker struct {
		BaseURL   string        `yaml:"base_url"`
		WSURL     string        `yaml:"ws_url"`
		APIKey    string        `yaml:"api_key"`
		APISecret string        `yaml:"api_secret"`
		Timeout   time.Duration `yaml:"timeout"`
		TickTTL   time.Duration `yaml:"tick_ttl"`
	} `yaml:"broker"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	// пустой DSN: журнал сделок отключён
	DB string `yaml:"db_dsn"`

	// пустой адрес: свечи без кэша
	Redis struct {
		Addr      string `yaml:"addr"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		Namespace string `yaml:"namespace"`
	} `yaml:"redis"`

	Service struct {
		Host      string `yaml:"host"`
		AdminPort int    `yaml:"admin_port"`
	} `yaml:"service"`

	Tracing struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
	} `yaml:"tracing"`

	Strategy struct {
		Interval       time.Duration `yaml:"interval"`
		PollInterval   time.Duration `yaml:"poll_interval"`
		RegionWindow   int           `yaml:"region_window"`
		RegionK        float64       `yaml:"region_k"`
		MarginRatio    float64       `yaml:"margin_ratio"`
		PendingEnabled bool          `yaml:"pending_enabled"`
		PendingSLPct   float64       `yaml:"pending_sl_pct"`
		PendingTPPct   float64       `yaml:"pending_tp_pct"`
		Volume         float64       `yaml:"volume"`
		ConfirmEntries bool          `yaml:"confirm_entries"`
		ConfirmTimeout time.Duration `yaml:"confirm_timeout"`
		StochWindow    string        `yaml:"stoch_window"`
		NATRThreshold  float64       `yaml:"natr_threshold"`
		TFThreshold    int           `yaml:"tf_threshold"`
	} `yaml:"strategy"`
}

func defaults() Config {
	rc := runner.DefaultConfig()
	sc := strategy.DefaultConfig()

	var c Config
	c.LogLevel = "info"
	c.Broker.Timeout = 10 * time.Second
	c.Broker.TickTTL = 5 * time.Second
	c.Redis.Namespace = "scalper"
	c.Service.AdminPort = 8080
	c.Tracing.Port = 6831

	c.Strategy.Interval = rc.Interval
	c.Strategy.PollInterval = rc.PollInterval
	c.Strategy.RegionWindow = rc.RegionWindow
	c.Strategy.RegionK = rc.RegionK
	c.Strategy.MarginRatio = rc.MarginRatio
	c.Strategy.PendingEnabled = rc.PendingEnabled
	c.Strategy.PendingSLPct = rc.PendingSLPct
	c.Strategy.PendingTPPct = rc.PendingTPPct
	c.Strategy.ConfirmTimeout = rc.ConfirmTimeout
	c.Strategy.StochWindow = string(sc.StochWindow)
	c.Strategy.NATRThreshold = sc.NATRThreshold
	c.Strategy.TFThreshold = sc.TFThreshold
	return c
}

// NewConfig читает configs/$CONFIG_FILE (по умолчанию values_local.yaml), .env
// и переменные окружения. Любая ошибка здесь фатальна.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	name := getenvDefault(configFilePathENV, defaultConfigFile)
	return Load(filepath.Join(configDir, name))
}

func Load(path string) (*Config, error) {
	config := defaults()

	file, err := os.Open(path)
	if err != nil {
		return nil, &models.ConfigError{Field: "file", Reason: err.Error()}
	}
	defer func() {
		_ = file.Close()
	}()

	if err := yaml.NewDecoder(file).Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, &models.ConfigError{Field: "file", Reason: fmt.Sprintf("decode %s: %v", path, err)}
	}

	config.applyEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyEnv() {
	c.LogLevel = getenvDefault(logLevelENV, c.LogLevel)
	c.Broker.BaseURL = getenvDefault(brokerURLENV, c.Broker.BaseURL)
	c.Broker.APIKey = getenvDefault(brokerKeyENV, c.Broker.APIKey)
	c.Broker.APISecret = getenvDefault(brokerSecretENV, c.Broker.APISecret)
	c.Telegram.Token = getenvDefault(tokenTelegramENV, c.Telegram.Token)
	c.DB = getenvDefault(databaseDSN, c.DB)
	c.Redis.Addr = getenvDefault(redisAddrENV, c.Redis.Addr)

	if v := os.Getenv(chatTelegramENV); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.ChatID = id
		}
	}
	if v := os.Getenv(symbolsENV); v != "" {
		c.Symbols = splitSymbols(v)
	}

	c.Strategy.Interval = durationFromEnv("STRATEGY_INTERVAL", c.Strategy.Interval)
	c.Strategy.PollInterval = durationFromEnv("POLL_INTERVAL", c.Strategy.PollInterval)
	c.Strategy.MarginRatio = floatFromEnv("MARGIN_RATIO", c.Strategy.MarginRatio)
	c.Strategy.Volume = floatFromEnv("ORDER_VOLUME", c.Strategy.Volume)
	c.Strategy.RegionWindow = intFromEnv("REGION_WINDOW", c.Strategy.RegionWindow)
	c.Strategy.PendingEnabled = boolFromEnv("PENDING_ENABLED", c.Strategy.PendingEnabled)
	c.Strategy.ConfirmEntries = boolFromEnv("CONFIRM_ENTRIES", c.Strategy.ConfirmEntries)
	c.Service.AdminPort = intFromEnv("ADMIN_PORT", c.Service.AdminPort)
}

// Validate возвращает *models.ConfigError на первое нарушение.
func (c *Config) Validate() error {
	switch {
	case len(c.Symbols) == 0:
		return &models.ConfigError{Field: "symbols", Reason: "at least one symbol is required"}
	case c.Broker.BaseURL == "":
		return &models.ConfigError{Field: "broker.base_url", Reason: "required"}
	case c.Broker.APIKey == "" || c.Broker.APISecret == "":
		return &models.ConfigError{Field: "broker.api_key", Reason: "credentials are required"}
	case c.Strategy.Interval <= 0:
		return &models.ConfigError{Field: "strategy.interval", Reason: "must be positive"}
	case c.Strategy.PollInterval <= 0:
		return &models.ConfigError{Field: "strategy.poll_interval", Reason: "must be positive"}
	case c.Strategy.MarginRatio <= 0 || c.Strategy.MarginRatio > 1:
		return &models.ConfigError{Field: "strategy.margin_ratio", Reason: "must be in (0, 1]"}
	case c.Strategy.RegionWindow < 2:
		return &models.ConfigError{Field: "strategy.region_window", Reason: "must be at least 2"}
	case c.Strategy.RegionK <= 0:
		return &models.ConfigError{Field: "strategy.region_k", Reason: "must be positive"}
	case c.Strategy.NATRThreshold <= 0:
		return &models.ConfigError{Field: "strategy.natr_threshold", Reason: "must be positive"}
	case c.Strategy.TFThreshold <= 0:
		return &models.ConfigError{Field: "strategy.tf_threshold", Reason: "must be positive"}
	}
	switch strategy.StochWindow(c.Strategy.StochWindow) {
	case strategy.StochWindowFull, strategy.StochWindowNarrow:
	default:
		return &models.ConfigError{Field: "strategy.stoch_window", Reason: fmt.Sprintf("unknown %q", c.Strategy.StochWindow)}
	}
	return nil
}

func (c *Config) RunnerConfig() runner.Config {
	rc := runner.DefaultConfig()
	rc.Interval = c.Strategy.Interval
	rc.PollInterval = c.Strategy.PollInterval
	rc.RegionWindow = c.Strategy.RegionWindow
	rc.RegionK = c.Strategy.RegionK
	rc.MarginRatio = c.Strategy.MarginRatio
	rc.PendingEnabled = c.Strategy.PendingEnabled
	rc.PendingSLPct = c.Strategy.PendingSLPct
	rc.PendingTPPct = c.Strategy.PendingTPPct
	rc.Volume = c.Strategy.Volume
	rc.ConfirmEntries = c.Strategy.ConfirmEntries
	rc.ConfirmTimeout = c.Strategy.ConfirmTimeout
	return rc
}

func (c *Config) StrategyConfig() strategy.Config {
	sc := strategy.DefaultConfig()
	sc.StochWindow = strategy.StochWindow(c.Strategy.StochWindow)
	sc.NATRThreshold = c.Strategy.NATRThreshold
	sc.TFThreshold = c.Strategy.TFThreshold
	return sc
}

func (c *Config) ExchangeConfig() exchange.Config {
	return exchange.Config{
		BaseURL:   c.Broker.BaseURL,
		WSURL:     c.Broker.WSURL,
		APIKey:    c.Broker.APIKey,
		APISecret: c.Broker.APISecret,
		Timeout:   c.Broker.Timeout,
		TickTTL:   c.Broker.TickTTL,
	}
}

func splitSymbols(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToUpper(s))
		}
	}
	return out
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func boolFromEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if v == "1" || v == "true" || v == "TRUE" {
			return true
		}
		if v == "0" || v == "false" || v == "FALSE" {
			return false
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
