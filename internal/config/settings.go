package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rgehrsitz/finrechner/internal/domain"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FINRECHNER_SERVER_ADDR
const EnvPrefix = "FINRECHNER"

// Settings are the runtime settings of the CLI, the server and the TUI
type Settings struct {
	LogLevel   string             `mapstructure:"log_level"`
	Server     ServerSettings     `mapstructure:"server"`
	MonteCarlo MonteCarloSettings `mapstructure:"montecarlo"`
	MarketData MarketDataSettings `mapstructure:"market_data"`
}

type ServerSettings struct {
	Addr         string        `mapstructure:"addr"`
	MaxBodyBytes int           `mapstructure:"max_body_bytes"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type MonteCarloSettings struct {
	Workers        int     `mapstructure:"workers"` // 0 = one per CPU
	MaxSimulations int     `mapstructure:"max_simulations"`
	DisplayPaths   int     `mapstructure:"display_paths"`
	RiskFreeRate   float64 `mapstructure:"risk_free_rate"` // used when an input leaves it at 0
}

type MarketDataSettings struct {
	PriceDir      string        `mapstructure:"price_dir"`
	PriceURL      string        `mapstructure:"price_url"`
	LookbackYears int           `mapstructure:"lookback_years"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "60s")

	v.SetDefault("montecarlo.workers", 0)
	v.SetDefault("montecarlo.max_simulations", 100000)
	v.SetDefault("montecarlo.display_paths", 15)
	v.SetDefault("montecarlo.risk_free_rate", 0.0)

	v.SetDefault("market_data.price_dir", "")
	v.SetDefault("market_data.price_url", "")
	v.SetDefault("market_data.lookback_years", 5)
	v.SetDefault("market_data.timeout", "5s")
}

// LoadSettings reads defaults, then the optional settings file at path, then
// FINRECHNER_* environment variables
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &settings, nil
}

// Validate checks value ranges
func (s *Settings) Validate() error {
	switch strings.ToLower(s.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", s.LogLevel)
	}
	if s.Server.MaxBodyBytes <= 0 {
		return errors.New("server.max_body_bytes must be positive")
	}
	if s.MonteCarlo.Workers < 0 {
		return errors.New("montecarlo.workers cannot be negative")
	}
	if s.MonteCarlo.MaxSimulations <= 0 {
		return errors.New("montecarlo.max_simulations must be positive")
	}
	if s.MonteCarlo.DisplayPaths <= 0 {
		return errors.New("montecarlo.display_paths must be positive")
	}
	if s.MarketData.PriceDir != "" && s.MarketData.PriceURL != "" {
		return errors.New("set either market_data.price_dir or market_data.price_url, not both")
	}
	return nil
}

// ApplyMonteCarloDefaults fills the fields a Monte Carlo input left unset
func (s *Settings) ApplyMonteCarloDefaults(p *domain.MonteCarloParams) {
	if p.DisplayPaths == 0 {
		p.DisplayPaths = s.MonteCarlo.DisplayPaths
	}
	if p.RiskFreeRate == 0 {
		p.RiskFreeRate = s.MonteCarlo.RiskFreeRate
	}
}
