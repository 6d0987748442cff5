package alerts

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alerts.config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestLoad_SubstitutesEnvironment(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "123:abc")
	path := writeFile(t, `
alerts:
  enabled: true
  telegram:
    botToken: ${TEST_BOT_TOKEN}
    channelId: ${TEST_UNSET_CHANNEL}
  equipments:
    - name: Linea 1
      minTemp: 700
      maxTemp: 800
      enabled: true
      description: Linea de vaciado
    - name: Linea 2
      minTemp: 650
      maxTemp: 750
      enabled: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Enabled {
		t.Fatal("expected alerts enabled")
	}
	if cfg.Telegram.BotToken != "123:abc" {
		t.Fatalf("bot token: got %q", cfg.Telegram.BotToken)
	}
	if cfg.Telegram.ChannelID != "" {
		t.Fatalf("unset variable should expand to empty, got %q", cfg.Telegram.ChannelID)
	}
	eq, ok := cfg.Equipment("Linea 1")
	if !ok || eq.MinTemp != 700 || eq.MaxTemp != 800 || !eq.Enabled || eq.Description != "Linea de vaciado" {
		t.Fatalf("unexpected equipment: %+v ok=%v", eq, ok)
	}
	if _, ok := cfg.Equipment("linea 1"); ok {
		t.Fatal("lookup must be exact")
	}
}

func TestLoadOrDisabled(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{name: "missing file", path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") }},
		{name: "malformed yaml", path: func(t *testing.T) string { return writeFile(t, "alerts: [enabled: true\n  bad") }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := LoadOrDisabled(tc.path(t), nil)
			if cfg.Enabled || len(cfg.Equipments) != 0 {
				t.Fatalf("expected disabled empty config, got %+v", cfg)
			}
		})
	}
}

func TestLoad_ShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "alerts.config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Equipments) == 0 {
		t.Fatal("expected equipment entries in the shipped config")
	}
}
