// Package daemonconfig loads the small, mostly-static process-level
// configuration the daemon needs before it ever touches the persisted
// policy document: listen addresses, log level, the policy file path, and
// debug-component toggles. It is deliberately separate from the policy
// Config the core owns and mutates at runtime (see internal/config).
package daemonconfig

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the ambient daemon configuration.
type Config struct {
	Bus     BusConfig     `mapstructure:"bus"`
	Listen  ListenConfig  `mapstructure:"listen"`
	Logging LoggingConfig `mapstructure:"logging"`
	Policy  PolicyConfig  `mapstructure:"policy"`
	Debug   DebugConfig   `mapstructure:"debug"`
	History HistoryConfig `mapstructure:"history"`
	Auth    AuthConfig    `mapstructure:"auth"`
}

// BusConfig selects the I2C bus and optional address overrides.
type BusConfig struct {
	Index          int    `mapstructure:"index"`
	BatteryAddrHex string `mapstructure:"battery_addr_hex"`
	RTCAddrHex     string `mapstructure:"rtc_addr_hex"`
	Model          string `mapstructure:"model"`
}

// ListenConfig is the set of transport listen addresses.
type ListenConfig struct {
	TCP   string `mapstructure:"tcp"`
	HTTP  string `mapstructure:"http"`
	MDNS  bool   `mapstructure:"mdns_enabled"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PolicyConfig locates the persisted policy document on disk.
type PolicyConfig struct {
	Path         string `mapstructure:"path"`
	AutoRecovery bool   `mapstructure:"auto_recovery"`
}

// DebugConfig gates the component-scoped trace logger.
type DebugConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Components []string `mapstructure:"components"`
}

// HistoryConfig locates the telemetry history database and its retention
// window.
type HistoryConfig struct {
	Path           string        `mapstructure:"path"`
	MigrationsPath string        `mapstructure:"migrations_path"`
	Retention      time.Duration `mapstructure:"retention"`
}

// AuthConfig holds the JWT signing secret for internal/authseam. A
// generated secret is persisted back to disk on first run so restarts
// don't invalidate every outstanding session token.
type AuthConfig struct {
	SecretPath string `mapstructure:"secret_path"`
}

func setDefaults() {
	viper.SetDefault("bus.index", 1)
	viper.SetDefault("bus.model", "PiSugar 3")
	viper.SetDefault("listen.tcp", ":8423")
	viper.SetDefault("listen.http", ":8421")
	viper.SetDefault("listen.mdns_enabled", true)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("policy.path", "/etc/sugarbeardd/config.json")
	viper.SetDefault("policy.auto_recovery", true)
	viper.SetDefault("debug.enabled", false)
	viper.SetDefault("debug.components", []string{})
	viper.SetDefault("history.path", "/var/lib/sugarbeardd/history.db")
	viper.SetDefault("history.migrations_path", "/etc/sugarbeardd/migrations/history")
	viper.SetDefault("history.retention", "168h")
	viper.SetDefault("auth.secret_path", "/etc/sugarbeardd/jwt.secret")
}

// Load reads daemon.yaml (searching ./configs then .), falling back to
// defaults, with LOG_LEVEL and BUS_MODEL environment overrides.
func Load(configPath string) (*Config, error) {
	viper.SetConfigName("daemon")
	viper.SetConfigType("yaml")
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
	}

	setDefaults()

	viper.AutomaticEnv()
	viper.BindEnv("logging.level", "LOG_LEVEL")
	viper.BindEnv("bus.model", "BUS_MODEL")
	viper.BindEnv("policy.path", "POLICY_PATH")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read daemon config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal daemon config: %w", err)
	}
	return &cfg, nil
}
