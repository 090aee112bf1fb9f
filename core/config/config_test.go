package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			Token:   "123:abc",
			RunMode: "longpoll",
		},
		Directory: DirectoryConfig{
			APIID:   12345,
			APIHash: "hash",
			Phone:   "+10000000000",
		},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	d := cfg.Directory
	if d.MaxResults != 100 {
		t.Errorf("max_results default = %d, want 100", d.MaxResults)
	}
	if d.PageSize != 6 {
		t.Errorf("page_size default = %d, want 6", d.PageSize)
	}
	if d.CallTimeoutSeconds != 20 {
		t.Errorf("call_timeout default = %d, want 20", d.CallTimeoutSeconds)
	}
	if d.SessionFile != "session_10000000000.json" {
		t.Errorf("session_file default = %q", d.SessionFile)
	}
	want := []string{StrategyGlobal, StrategyMessages, StrategyDialogs, StrategyDirect}
	if len(d.StrategyOrder) != len(want) {
		t.Fatalf("strategy order default = %v", d.StrategyOrder)
	}
	for i, s := range want {
		if d.StrategyOrder[i] != s {
			t.Fatalf("strategy order default = %v, want %v", d.StrategyOrder, want)
		}
	}
}

func TestNormalizeRunModeAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "polling"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Errorf("run_mode = %q, want longpoll", cfg.Telegram.RunMode)
	}
}

func TestNormalizeRejectsBadStrategy(t *testing.T) {
	cfg := validConfig()
	cfg.Directory.StrategyOrder = []string{"global", "nope"}
	err := Normalize(cfg)
	if err == nil || !strings.Contains(err.Error(), "strategy_order") {
		t.Fatalf("expected strategy_order error, got %v", err)
	}

	cfg = validConfig()
	cfg.Directory.StrategyOrder = []string{"global", "Global"}
	err = Normalize(cfg)
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestNormalizeRejectsOversizedPage(t *testing.T) {
	cfg := validConfig()
	cfg.Directory.PageSize = 11
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected page_size error")
	}
}

func TestNormalizeRequiresDirectoryAccount(t *testing.T) {
	cfg := validConfig()
	cfg.Directory.Phone = " "
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected phone error")
	}

	cfg = validConfig()
	cfg.Directory.APIID = 0
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected api_id error")
	}
}

func TestNormalizeWebhookRequirements(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "webhook"
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected webhook url error")
	}

	cfg.Webhook = WebhookConfig{URL: "https://example.com/hook", Listen: "0.0.0.0", Port: 8443}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
}
