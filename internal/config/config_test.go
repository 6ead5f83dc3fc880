package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(databaseDSNEnv, "")
	t.Setenv(facebookTokenEnv, "")
	t.Setenv(telegramTokenEnv, "")
	t.Setenv(telegramChatEnv, "")

	cfg := Load()

	if cfg.Logging.Level != "info" {
		t.Fatalf("unexpected default level: %q", cfg.Logging.Level)
	}
	if cfg.Scheduler.Interval != 24*time.Hour {
		t.Fatalf("unexpected default interval: %v", cfg.Scheduler.Interval)
	}
	if got := cfg.Scheduler.Location().String(); got != "Asia/Manila" {
		t.Fatalf("unexpected default timezone: %q", got)
	}
	if len(cfg.Malls) != 6 {
		t.Fatalf("expected 6 default malls, got %d", len(cfg.Malls))
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
logging:
  level: debug
scheduler:
  interval: 6h
  timezone: UTC
malls:
  - name: abreeza
    scraper: abreeza
    options:
      url: http://example.test/abreeza
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(databaseDSNEnv, "postgres://override@db/screenings")
	t.Setenv(telegramTokenEnv, "bot-token")
	t.Setenv(telegramChatEnv, "chat-42")
	t.Setenv(facebookTokenEnv, "")

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Fatalf("file level not applied: %q", cfg.Logging.Level)
	}
	if cfg.Scheduler.Interval != 6*time.Hour {
		t.Fatalf("file interval not applied: %v", cfg.Scheduler.Interval)
	}
	if got := cfg.Scheduler.Location().String(); got != "UTC" {
		t.Fatalf("file timezone not applied: %q", got)
	}

	// Environment wins over both file and defaults.
	if cfg.Database.DSN != "postgres://override@db/screenings" {
		t.Fatalf("DSN override not applied: %q", cfg.Database.DSN)
	}
	if cfg.Notifications.Telegram.BotToken != "bot-token" || cfg.Notifications.Telegram.ChatID != "chat-42" {
		t.Fatalf("telegram overrides not applied: %+v", cfg.Notifications.Telegram)
	}

	if len(cfg.Malls) != 1 || cfg.Malls[0].Options["url"] != "http://example.test/abreeza" {
		t.Fatalf("file malls not applied: %+v", cfg.Malls)
	}
}

func TestLoadUnknownTimezoneFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("scheduler:\n  timezone: Mars/Olympus\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()
	if got := cfg.Scheduler.Location().String(); got != "Asia/Manila" {
		t.Fatalf("expected fallback timezone, got %q", got)
	}
}
