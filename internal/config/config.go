package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the typed view of configs/config.yml plus environment overrides.
type Config struct {
	Port      string          `mapstructure:"port"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Auth      AuthConfig      `mapstructure:"auth"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Live      LiveConfig      `mapstructure:"live"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	Retention RetentionConfig `mapstructure:"retention"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SigningKey   string        `mapstructure:"signing_key"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	CookieName   string        `mapstructure:"cookie_name"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	SuperUser    SuperUser     `mapstructure:"super_user"`
}

// SuperUser is created on startup when the users table is empty.
type SuperUser struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type MQTTConfig struct {
	BrokerURL            string        `mapstructure:"broker_url"`
	Username             string        `mapstructure:"username"`
	Password             string        `mapstructure:"password"`
	ClientID             string        `mapstructure:"client_id"`
	QoS                  byte          `mapstructure:"qos"`
	HistoryTopic         string        `mapstructure:"history_topic"`
	RealtimeTopic        string        `mapstructure:"realtime_topic"`
	ControlTopic         string        `mapstructure:"control_topic"`
	ConnectRetryInterval time.Duration `mapstructure:"connect_retry_interval"`
	MaxReconnectInterval time.Duration `mapstructure:"max_reconnect_interval"`
}

type LiveConfig struct {
	StopDebounce time.Duration `mapstructure:"stop_debounce"`
	SendBuffer   int           `mapstructure:"send_buffer"`
}

type AlertsConfig struct {
	ConfigPath      string        `mapstructure:"config_path"`
	DispatchTimeout time.Duration `mapstructure:"dispatch_timeout"`
}

type RetentionConfig struct {
	Days     int           `mapstructure:"days"`
	Interval time.Duration `mapstructure:"interval"`
}

// SimulatorConfig drives cmd/gatewaysim, the stand-in for the PLC gateway.
type SimulatorConfig struct {
	Equipment        []string      `mapstructure:"equipment"`
	HistoryInterval  time.Duration `mapstructure:"history_interval"`
	RealtimeInterval time.Duration `mapstructure:"realtime_interval"`
	MinTemp          float64       `mapstructure:"min_temp"`
	MaxTemp          float64       `mapstructure:"max_temp"`
}

// brokerURLEnv overrides mqtt.broker_url, matching the deployment scripts.
const brokerURLEnv = "MQTT_BROKER_URL"

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", "monitoreo.db")
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.cookie_name", "access_token")
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.super_user.username", "")
	v.SetDefault("auth.super_user.password", "")
	v.SetDefault("mqtt.broker_url", "tcp://localhost:1883")
	v.SetDefault("mqtt.username", "admin")
	v.SetDefault("mqtt.password", "public")
	v.SetDefault("mqtt.client_id", "monitoreo-backend")
	v.SetDefault("mqtt.qos", 0)
	v.SetDefault("mqtt.history_topic", "plcTemperaturas/historial/+")
	v.SetDefault("mqtt.realtime_topic", "plcTemperaturas/tiemporeal/+")
	v.SetDefault("mqtt.control_topic", "gatewayTemperaturas/control/tiemporeal")
	v.SetDefault("mqtt.connect_retry_interval", time.Second)
	v.SetDefault("mqtt.max_reconnect_interval", 30*time.Second)
	v.SetDefault("live.stop_debounce", 100*time.Millisecond)
	v.SetDefault("live.send_buffer", 64)
	v.SetDefault("alerts.config_path", "configs/alerts.config.yaml")
	v.SetDefault("alerts.dispatch_timeout", 10*time.Second)
	v.SetDefault("retention.days", 30)
	v.SetDefault("retention.interval", time.Hour)
	v.SetDefault("simulator.equipment", []string{"Torre Fusora", "Linea 1", "Linea 2", "Linea 3", "Linea 4", "Estacion 1", "Estacion 2", "Linea 7"})
	v.SetDefault("simulator.history_interval", 20*time.Minute)
	v.SetDefault("simulator.realtime_interval", 2*time.Second)
	v.SetDefault("simulator.min_temp", 700.0)
	v.SetDefault("simulator.max_temp", 750.0)
}

// Load reads config.yml from dir. A missing file is not an error: defaults
// and environment variables (MQTT_PASSWORD, AUTH_SIGNING_KEY, ...) still apply.
func Load(dir string) (*Config, error) {
	cfg, err := read(dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadSimulator reads the same files as Load but only validates the
// sections the gateway simulator uses.
func LoadSimulator(dir string) (*Config, error) {
	cfg, err := read(dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateSimulator(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(dir)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config in %q: %w", dir, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if u := os.Getenv(brokerURLEnv); u != "" {
		cfg.MQTT.BrokerURL = u
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		return errors.New("auth.signing_key is required (set AUTH_SIGNING_KEY)")
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	if c.Retention.Days < 0 {
		return fmt.Errorf("retention.days must be >= 0, got %d", c.Retention.Days)
	}
	if c.Retention.Days > 0 && c.Retention.Interval <= 0 {
		return fmt.Errorf("retention.interval must be > 0 when retention is enabled, got %s", c.Retention.Interval)
	}
	if c.Live.SendBuffer <= 0 {
		return fmt.Errorf("live.send_buffer must be > 0, got %d", c.Live.SendBuffer)
	}
	return nil
}

func (c *Config) validateSimulator() error {
	s := c.Simulator
	if len(s.Equipment) == 0 {
		return errors.New("simulator.equipment must list at least one equipment")
	}
	if s.HistoryInterval <= 0 || s.RealtimeInterval <= 0 {
		return errors.New("simulator intervals must be > 0")
	}
	if s.MinTemp > s.MaxTemp {
		return fmt.Errorf("simulator.min_temp %.1f is above max_temp %.1f", s.MinTemp, s.MaxTemp)
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	return nil
}
