package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"mt5-gateway/internal/model"
	"mt5-gateway/internal/trade"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Terminal TerminalConfig `yaml:"terminal"`
	Trading  TradingConfig  `yaml:"trading"`
	Range    RangeConfig    `yaml:"range"`
}

type ServerConfig struct {
	Port int    `yaml:"port" validate:"required,gt=0,lte=65535"`
	Mode string `yaml:"mode" validate:"omitempty,oneof=debug release"`
}

// TerminalConfig is the terminal bridge connection. Credentials are the
// trade account's, forwarded to the terminal on connect.
type TerminalConfig struct {
	BridgeURL          string `yaml:"bridge_url" validate:"required"`
	Login              int64  `yaml:"login" validate:"required"`
	Password           string `yaml:"password" validate:"required"`
	Server             string `yaml:"server" validate:"required"`
	DialTimeoutSeconds int    `yaml:"dial_timeout_seconds" validate:"omitempty,gt=0"`
}

type TradingConfig struct {
	// Cutoff is the pending-order expiration time of day in the reference
	// timezone, e.g. "15:59:50".
	Cutoff string `yaml:"cutoff" validate:"required"`
	// ReferenceTimezone anchors range windows and the cutoff.
	ReferenceTimezone string `yaml:"reference_timezone" validate:"required"`
	// ServerTimezone is the broker server timezone.
	ServerTimezone string `yaml:"server_timezone" validate:"required"`
	// ExchangeMIC selects the calendar behind /market_status.
	ExchangeMIC string `yaml:"exchange_mic"`
	// CloseDeviationPoints is the slippage allowance for close-all orders,
	// in points. Absent means 10; an explicit 0 disables the allowance.
	CloseDeviationPoints *int `yaml:"close_deviation_points" validate:"omitempty,gte=0"`
	// Symbols holds per-symbol quirks keyed by symbol name.
	Symbols trade.Rules `yaml:"symbols"`
}

type RangeConfig struct {
	TimeframeMinutes int `yaml:"timeframe_minutes" validate:"omitempty,gt=0"`
	Bars             int `yaml:"bars" validate:"omitempty,gt=0"`
	Attempts         int `yaml:"attempts" validate:"omitempty,gt=0"`
	// BackoffSeconds is the wait between extraction attempts. Absent means
	// 3; an explicit 0 retries immediately.
	BackoffSeconds *int `yaml:"backoff_seconds" validate:"omitempty,gte=0"`
}

// Load reads, defaults and validates the configuration.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Terminal.DialTimeoutSeconds == 0 {
		c.Terminal.DialTimeoutSeconds = 10
	}
	if c.Trading.Cutoff == "" {
		c.Trading.Cutoff = "15:59:50"
	}
	if c.Trading.ReferenceTimezone == "" {
		c.Trading.ReferenceTimezone = "America/New_York"
	}
	if c.Trading.ServerTimezone == "" {
		c.Trading.ServerTimezone = "EET"
	}
	if c.Trading.ExchangeMIC == "" {
		c.Trading.ExchangeMIC = "xnys"
	}
	if c.Trading.CloseDeviationPoints == nil {
		deviation := 10
		c.Trading.CloseDeviationPoints = &deviation
	}
	if c.Range.TimeframeMinutes == 0 {
		c.Range.TimeframeMinutes = 5
	}
	if c.Range.Bars == 0 {
		c.Range.Bars = 300
	}
	if c.Range.Attempts == 0 {
		c.Range.Attempts = 5
	}
	if c.Range.BackoffSeconds == nil {
		backoff := 3
		c.Range.BackoffSeconds = &backoff
	}
}

// Validate checks struct tags plus what the tags cannot express: a
// parseable cutoff and loadable timezones.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}

	if _, err := model.ParseTimeOfDay(c.Trading.Cutoff); err != nil {
		return fmt.Errorf("trading.cutoff: %w", err)
	}
	if _, err := time.LoadLocation(c.Trading.ReferenceTimezone); err != nil {
		return fmt.Errorf("trading.reference_timezone: %w", err)
	}
	if _, err := time.LoadLocation(c.Trading.ServerTimezone); err != nil {
		return fmt.Errorf("trading.server_timezone: %w", err)
	}

	return nil
}

// CutoffTime returns the parsed cutoff. Call after Validate.
func (c *Config) CutoffTime() model.TimeOfDay {
	t, _ := model.ParseTimeOfDay(c.Trading.Cutoff)

	return t
}

// ReferenceLocation returns the loaded reference timezone. Call after
// Validate.
func (c *Config) ReferenceLocation() *time.Location {
	loc, _ := time.LoadLocation(c.Trading.ReferenceTimezone)

	return loc
}

// ServerLocation returns the loaded broker server timezone. Call after
// Validate.
func (c *Config) ServerLocation() *time.Location {
	loc, _ := time.LoadLocation(c.Trading.ServerTimezone)

	return loc
}

// CloseDeviation returns the close-all slippage allowance in points. Call
// after Load.
func (c *Config) CloseDeviation() int {
	return *c.Trading.CloseDeviationPoints
}

// RangeBackoff returns the wait between range-extraction attempts. Call
// after Load.
func (c *Config) RangeBackoff() time.Duration {
	return time.Duration(*c.Range.BackoffSeconds) * time.Second
}
