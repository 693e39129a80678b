package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Places  PlacesConfig  `yaml:"places" mapstructure:"places"`
	Traffic TrafficConfig `yaml:"traffic" mapstructure:"traffic"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the spatial database backend.
type StoreConfig struct {
	DatabaseURL     string        `yaml:"database_url" mapstructure:"database_url"`
	MinConns        int32         `yaml:"min_conns" mapstructure:"min_conns"`
	MaxConns        int32         `yaml:"max_conns" mapstructure:"max_conns"`
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`
}

// PlacesConfig holds the business-dataset API settings.
type PlacesConfig struct {
	BaseURL  string  `yaml:"base_url" mapstructure:"base_url"`
	Email    string  `yaml:"email" mapstructure:"email"`
	Password string  `yaml:"password" mapstructure:"password"`
	UserID   string  `yaml:"user_id" mapstructure:"user_id"`
	RPS      float64 `yaml:"rps" mapstructure:"rps"`
}

// TrafficConfig holds the traffic-analysis API settings.
type TrafficConfig struct {
	BaseURL         string        `yaml:"base_url" mapstructure:"base_url"`
	Username        string        `yaml:"username" mapstructure:"username"`
	Password        string        `yaml:"password" mapstructure:"password"`
	PollInterval    time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	PollMaxAttempts int           `yaml:"poll_max_attempts" mapstructure:"poll_max_attempts"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SITESCORER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.refresh_interval", time.Hour)
	v.SetDefault("places.base_url", "http://37.27.195.216:8000")
	v.SetDefault("traffic.base_url", "http://49.12.190.229:8000")
	v.SetDefault("traffic.poll_interval", 5*time.Second)
	v.SetDefault("traffic.poll_max_attempts", 60)
	v.SetDefault("server.port", 8000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
