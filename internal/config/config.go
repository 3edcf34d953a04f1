package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Bus      BusConfig      `mapstructure:"bus"`
	Sensors  SensorsConfig  `mapstructure:"sensors"`
	Profiles ProfilesConfig `mapstructure:"board_profiles"`
}

type ServerConfig struct {
	HTTPPort        int           `mapstructure:"http_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// BusConfig selects the I2C bus and the key-scan cadence. The expander
// addresses themselves are part of the board contract and live in
// internal/board, not here.
type BusConfig struct {
	Name         string        `mapstructure:"name"`
	ScanInterval time.Duration `mapstructure:"scan_interval"`
}

// SensorsConfig names the GPIO lines of the three discrete HT inputs.
type SensorsConfig struct {
	HT1Pin string `mapstructure:"ht1_pin"`
	HT2Pin string `mapstructure:"ht2_pin"`
	HT3Pin string `mapstructure:"ht3_pin"`
}

type ProfilesConfig struct {
	SearchPaths []string `mapstructure:"search_paths"`
	Board       string   `mapstructure:"board"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	// Defaults setzen
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.shutdown_timeout", "30s")
	viper.SetDefault("bus.name", "")
	viper.SetDefault("bus.scan_interval", "100ms")
	viper.SetDefault("sensors.ht1_pin", "GPIO32")
	viper.SetDefault("sensors.ht2_pin", "GPIO33")
	viper.SetDefault("sensors.ht3_pin", "GPIO14")
	viper.SetDefault("board_profiles.search_paths", []string{"board-profiles"})
	viper.SetDefault("board_profiles.board", "kc868-a16")

	// Environment Variables automatisch binden (Viper Feature)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("KC868") // Environment Variables mit Prefix KC868_

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
