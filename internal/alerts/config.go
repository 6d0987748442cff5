package alerts

import (
	"fmt"
	"os"
	"regexp"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/logger"

	"gopkg.in/yaml.v3"
)

// EquipmentConfig is the allowed temperature range of one equipment.
type EquipmentConfig struct {
	Name        string  `yaml:"name"`
	MinTemp     float64 `yaml:"minTemp"`
	MaxTemp     float64 `yaml:"maxTemp"`
	Enabled     bool    `yaml:"enabled"`
	Description string  `yaml:"description"`
}

type TelegramConfig struct {
	BotToken  string `yaml:"botToken"`
	ChannelID string `yaml:"channelId"`
}

type Config struct {
	Enabled    bool              `yaml:"enabled"`
	Telegram   TelegramConfig    `yaml:"telegram"`
	Equipments []EquipmentConfig `yaml:"equipments"`
}

type fileConfig struct {
	Alerts Config `yaml:"alerts"`
}

var envRef = regexp.MustCompile(`\$\{(\w+)\}`)

// expandEnv replaces ${VAR} with the variable's value, or "" when unset.
func expandEnv(b []byte) []byte {
	return envRef.ReplaceAllFunc(b, func(m []byte) []byte {
		name := envRef.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// Load reads the alerts file at path, substituting ${VAR} references first.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read alerts config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(expandEnv(b), &fc); err != nil {
		return Config{}, fmt.Errorf("parse alerts config %s: %w", path, err)
	}
	return fc.Alerts, nil
}

// LoadOrDisabled is Load for startup: any failure is logged and yields a
// disabled config with no equipment, so the process keeps running.
func LoadOrDisabled(path string, log *logger.Logger) Config {
	log = logger.OrNop(log)
	cfg, err := Load(path)
	if err != nil {
		log.Errorw("alerts_config_load_failed", "path", path, "error", err)
		return Config{}
	}
	log.Infow("alerts_config_loaded", "path", path, "enabled", cfg.Enabled, "equipments", len(cfg.Equipments))
	return cfg
}

// Equipment looks up the config of one equipment by exact name.
func (c Config) Equipment(name string) (EquipmentConfig, bool) {
	for _, eq := range c.Equipments {
		if eq.Name == name {
			return eq, true
		}
	}
	return EquipmentConfig{}, false
}
