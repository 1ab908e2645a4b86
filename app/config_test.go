package app

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `
telegram:
  token: "123:abc"
  run_mode: polling

logging:
  level: debug
  format: kv

database:
  host: localhost
  port: "5432"
  user: bot
  name: subgate
  sslmode: disable
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.RunMode != "longpoll" {
		t.Fatalf("run mode alias not normalized: %q", cfg.Telegram.RunMode)
	}
	if cfg.Database.Name != "subgate" {
		t.Fatalf("database name = %q", cfg.Database.Name)
	}
	if cfg.Database.MaxConnections != 10 {
		t.Fatalf("max connections default = %d", cfg.Database.MaxConnections)
	}
	if cfg.CoreConfig() == nil {
		t.Fatal("core config accessor returned nil")
	}
}

func TestLoadConfigRequiresDatabase(t *testing.T) {
	const noDB = `
telegram:
  token: "123:abc"
`
	if _, err := Load(writeConfig(t, noDB)); err == nil {
		t.Fatal("expected error for missing database section")
	}
}

func TestLoadConfigRequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	const noToken = `
database:
  host: localhost
  name: subgate
`
	if _, err := Load(writeConfig(t, noToken)); err == nil {
		t.Fatal("expected error for missing telegram token")
	}
}
