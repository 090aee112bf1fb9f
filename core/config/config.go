package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds bot transport settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
	// SessionTTLMinutes evicts idle conversation sessions; 0 disables eviction.
	SessionTTLMinutes int `yaml:"session_ttl_minutes" envconfig:"TELEGRAM_SESSION_TTL_MINUTES"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// DirectoryConfig holds the elevated MTProto account used for channel search.
// The bot identity itself cannot query the channel directory; all searches are
// funnelled through this account.
type DirectoryConfig struct {
	APIID       int    `yaml:"api_id" envconfig:"API_ID"`
	APIHash     string `yaml:"api_hash" envconfig:"API_HASH"`
	Phone       string `yaml:"phone" envconfig:"PHONE_NUMBER"`
	SessionFile string `yaml:"session_file" envconfig:"DIRECTORY_SESSION_FILE"`

	MaxResults int `yaml:"max_results" envconfig:"MAX_RESULTS"`
	PageSize   int `yaml:"page_size" envconfig:"PAGE_SIZE"`
	// StrategyOrder lists search strategies in priority order.
	// Allowed values: global, messages, dialogs, direct.
	StrategyOrder      []string `yaml:"strategy_order" envconfig:"STRATEGY_ORDER"`
	CallTimeoutSeconds int      `yaml:"call_timeout_seconds" envconfig:"DIRECTORY_CALL_TIMEOUT_SECONDS"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Stacks      string `yaml:"stacks"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	ErrorsFile  string `yaml:"errors_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
	// UpdateInlineQuery identifies inline query updates for rate limit exclusions.
	UpdateInlineQuery = "inline_query"
)

const (
	// StrategyGlobal is the per-term global directory search.
	StrategyGlobal = "global"
	// StrategyMessages is the per-term message-content search.
	StrategyMessages = "messages"
	// StrategyDialogs scans the elevated account's own conversation list.
	StrategyDialogs = "dialogs"
	// StrategyDirect is the last-resort search over the whole joined query.
	StrategyDirect = "direct"
)

const (
	defaultMaxResults  = 100
	defaultPageSize    = 6
	maxPageSize        = 10
	defaultCallTimeout = 20
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
// - "inline_query": inline query updates
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the full bot configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Directory DirectoryConfig `yaml:"directory"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	if cfg.Telegram.SessionTTLMinutes < 0 {
		return fmt.Errorf("telegram.session_ttl_minutes must be >= 0")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if err := normalizeDirectory(&cfg.Directory); err != nil {
		return err
	}

	allowed := map[string]struct{}{
		UpdateCallback:    {},
		UpdateMessage:     {},
		UpdateInlineQuery: {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message, inline_query", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}
	return nil
}

func normalizeDirectory(d *DirectoryConfig) error {
	if d.APIID <= 0 {
		return fmt.Errorf("directory.api_id is required")
	}
	if strings.TrimSpace(d.APIHash) == "" {
		return fmt.Errorf("directory.api_hash is required")
	}
	d.Phone = strings.TrimSpace(d.Phone)
	if d.Phone == "" {
		return fmt.Errorf("directory.phone is required")
	}
	if d.SessionFile == "" {
		d.SessionFile = "session_" + strings.TrimPrefix(d.Phone, "+") + ".json"
	}

	if d.MaxResults == 0 {
		d.MaxResults = defaultMaxResults
	}
	if d.MaxResults < 1 {
		return fmt.Errorf("directory.max_results must be >= 1")
	}
	if d.PageSize == 0 {
		d.PageSize = defaultPageSize
	}
	if d.PageSize < 1 || d.PageSize > maxPageSize {
		return fmt.Errorf("directory.page_size must be within [1, %d]", maxPageSize)
	}
	if d.CallTimeoutSeconds == 0 {
		d.CallTimeoutSeconds = defaultCallTimeout
	}
	if d.CallTimeoutSeconds < 0 {
		return fmt.Errorf("directory.call_timeout_seconds must be >= 0")
	}

	if len(d.StrategyOrder) == 0 {
		d.StrategyOrder = []string{StrategyGlobal, StrategyMessages, StrategyDialogs, StrategyDirect}
		return nil
	}
	known := map[string]struct{}{
		StrategyGlobal:   {},
		StrategyMessages: {},
		StrategyDialogs:  {},
		StrategyDirect:   {},
	}
	seen := make(map[string]struct{}, len(d.StrategyOrder))
	for i, s := range d.StrategyOrder {
		name := strings.ToLower(strings.TrimSpace(s))
		if _, ok := known[name]; !ok {
			return fmt.Errorf("invalid directory.strategy_order value %q; allowed: global, messages, dialogs, direct", s)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate directory.strategy_order value %q", s)
		}
		seen[name] = struct{}{}
		d.StrategyOrder[i] = name
	}
	return nil
}
