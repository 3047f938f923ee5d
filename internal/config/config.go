package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DataFile string `mapstructure:"data_file"`

	SessionStart string `mapstructure:"session_start"` // "09:30"
	SessionEnd   string `mapstructure:"session_end"`   // "16:00"

	MaxSpreadRatio float64       `mapstructure:"max_spread_ratio"`
	MaxAbsReturn   float64       `mapstructure:"max_abs_return"`
	BarWidth       time.Duration `mapstructure:"bar_width"`

	EWMALambda    float64 `mapstructure:"ewma_lambda"`
	BaselineDelta float64 `mapstructure:"baseline_delta"`
	K0            float64 `mapstructure:"k0"`
	K1            float64 `mapstructure:"k1"`
	MinSpread     float64 `mapstructure:"min_spread"`
	Phi           float64 `mapstructure:"phi"`
	AlphaAS       float64 `mapstructure:"alpha_as"`

	Serve  bool   `mapstructure:"serve"`
	Port   string `mapstructure:"port"`
	DB_DSN string `mapstructure:"db_dsn"`
}

func LoadConfig() (config Config, err error) {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	viper.SetDefault("data_file", "data/quotes.csv")
	viper.SetDefault("session_start", "09:30")
	viper.SetDefault("session_end", "16:00")
	viper.SetDefault("max_spread_ratio", 0.01)
	viper.SetDefault("max_abs_return", 0.01)
	viper.SetDefault("bar_width", time.Minute)
	viper.SetDefault("ewma_lambda", 0.94)
	viper.SetDefault("baseline_delta", 0.03)
	viper.SetDefault("k0", 0.01)
	viper.SetDefault("k1", 1.0)
	viper.SetDefault("min_spread", 0.005)
	viper.SetDefault("phi", 0.001)
	viper.SetDefault("alpha_as", 0.02)
	viper.SetDefault("serve", false)
	viper.SetDefault("port", "8080")
	viper.SetDefault("db_dsn", "")

	err = viper.ReadInConfig()
	// If config file not found, we can still use env vars and defaults
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	}

	if err != nil {
		return Config{}, err
	}
	err = viper.Unmarshal(&config)
	return
}

// SessionBounds parses the HH:MM session window into offsets from midnight.
func (c Config) SessionBounds() (start, end time.Duration, err error) {
	start, err = parseClock(c.SessionStart)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid session_start: %w", err)
	}
	end, err = parseClock(c.SessionEnd)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid session_end: %w", err)
	}
	if end <= start {
		return 0, 0, fmt.Errorf("session_end %q not after session_start %q", c.SessionEnd, c.SessionStart)
	}
	return start, end, nil
}

func parseClock(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value out of range: %q", s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}
