// Package runconfig loads the CLI/config surface: initial cash, objective
// identifier, parameter-space declaration, worker count, and random-search
// iteration count. None of this is consumed by the core engine/sweep
// packages directly; cmd/backtestlab translates a loaded Config into
// their plain-struct inputs.
package runconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the complete run/sweep configuration surface.
type Config struct {
	Run         RunConfig         `mapstructure:"run"         yaml:"run"`
	Strategy    StrategyConfig    `mapstructure:"strategy"    yaml:"strategy"`
	Execution   ExecutionConfig   `mapstructure:"execution"   yaml:"execution"`
	KillSwitch  KillSwitchConfig  `mapstructure:"killswitch"  yaml:"killswitch"`
	Sweep       SweepConfig       `mapstructure:"sweep"       yaml:"sweep"`
	ResultStore ResultStoreConfig `mapstructure:"resultstore" yaml:"resultstore"`
	Logging     LoggingConfig     `mapstructure:"logging"     yaml:"logging"`
}

// RunConfig holds a single-backtest invocation's parameters.
type RunConfig struct {
	Symbol              string  `mapstructure:"symbol"                 yaml:"symbol"`
	InitialCash         float64 `mapstructure:"initial_cash"           yaml:"initial_cash"`
	AllowShort          bool    `mapstructure:"allow_short"             yaml:"allow_short"`
	ATRPeriod           int     `mapstructure:"atr_period"             yaml:"atr_period"`
	PriceBufferCapacity int     `mapstructure:"price_buffer_capacity"  yaml:"price_buffer_capacity"`
	DataFile            string  `mapstructure:"data_file"              yaml:"data_file"`
	BenchmarkFile       string  `mapstructure:"benchmark_file"         yaml:"benchmark_file"`
}

// StrategyConfig holds the ATR breakout reference strategy's tunable
// parameters, the subset sweepable via ToParameterSpace.
type StrategyConfig struct {
	Lookback              int     `mapstructure:"lookback"                 yaml:"lookback"`
	Multiplier            float64 `mapstructure:"multiplier"               yaml:"multiplier"`
	MinATRThreshold       float64 `mapstructure:"min_atr_threshold"        yaml:"min_atr_threshold"`
	StopLossATRMultiplier float64 `mapstructure:"stop_loss_atr_multiplier" yaml:"stop_loss_atr_multiplier"`
	DefaultSize           float64 `mapstructure:"default_size"             yaml:"default_size"`
	MaxRiskPerTrade       float64 `mapstructure:"max_risk_per_trade"       yaml:"max_risk_per_trade"`
	PositionSizeBudget    float64 `mapstructure:"position_size_budget"     yaml:"position_size_budget"`
	Direction             string  `mapstructure:"direction"                yaml:"direction"` // long, short, both
	UseDynamicTrailing    bool    `mapstructure:"use_dynamic_trailing"     yaml:"use_dynamic_trailing"`
	TrailingMinSamples    int     `mapstructure:"trailing_min_samples"     yaml:"trailing_min_samples"`
	TrailingMultiplier    float64 `mapstructure:"trailing_multiplier"      yaml:"trailing_multiplier"`
}

// ExecutionConfig selects and parameterizes the four pluggable execution
// models. Mode fields default to "none" (identity).
type ExecutionConfig struct {
	SpreadBps float64 `mapstructure:"spread_bps" yaml:"spread_bps"`

	SlippageMode      string          `mapstructure:"slippage_mode"       yaml:"slippage_mode"` // none, fixed, percentage, volume_tiered
	SlippageFixed     float64         `mapstructure:"slippage_fixed"      yaml:"slippage_fixed"`
	SlippageBps       float64         `mapstructure:"slippage_bps"        yaml:"slippage_bps"`
	SlippageTiers     []VolumeTierCfg `mapstructure:"slippage_tiers"      yaml:"slippage_tiers"`

	CommissionMode  string           `mapstructure:"commission_mode"  yaml:"commission_mode"` // none, per_share, percentage, tiered
	CommissionRate  float64          `mapstructure:"commission_rate"  yaml:"commission_rate"`
	CommissionFloor float64          `mapstructure:"commission_floor" yaml:"commission_floor"`
	CommissionTiers []NotionalTierCfg `mapstructure:"commission_tiers" yaml:"commission_tiers"`

	ImpactMode        string  `mapstructure:"impact_mode"        yaml:"impact_mode"` // none, linear, sqrt
	ImpactRate        float64 `mapstructure:"impact_rate"        yaml:"impact_rate"`
	ImpactCoefficient float64 `mapstructure:"impact_coefficient" yaml:"impact_coefficient"`
}

// VolumeTierCfg is one volume-tiered-slippage rung.
type VolumeTierCfg struct {
	Threshold float64 `mapstructure:"threshold" yaml:"threshold"`
	Bps       float64 `mapstructure:"bps"       yaml:"bps"`
}

// NotionalTierCfg is one tiered-commission rung.
type NotionalTierCfg struct {
	Threshold float64 `mapstructure:"threshold" yaml:"threshold"`
	Bps       float64 `mapstructure:"bps"       yaml:"bps"`
}

// KillSwitchConfig enables/configures the reference kill-switch triggers.
// A threshold of 0 for Drawdown/Loss disables that trigger (a legitimate
// config, since "halt immediately" is rarely intended).
type KillSwitchConfig struct {
	MaxDrawdown            float64 `mapstructure:"max_drawdown"             yaml:"max_drawdown"`
	MaxLossDollars         float64 `mapstructure:"max_loss_dollars"         yaml:"max_loss_dollars"`
	MaxVolatility          float64 `mapstructure:"max_volatility"           yaml:"max_volatility"`
	VolatilityLookbackBars int     `mapstructure:"volatility_lookback_bars" yaml:"volatility_lookback_bars"`
	VaRLimit               float64 `mapstructure:"var_limit"                yaml:"var_limit"`
	VaRConfidence          float64 `mapstructure:"var_confidence"           yaml:"var_confidence"`
	VaRLookbackBars        int     `mapstructure:"var_lookback_bars"        yaml:"var_lookback_bars"`
}

// ParameterSpec is one named parameter's candidate values, kept as an
// ordered slice (rather than a map) so YAML/env loading preserves the
// declaration order the sweep's enumeration follows.
type ParameterSpec struct {
	Name   string    `mapstructure:"name"   yaml:"name"`
	Values []float64 `mapstructure:"values" yaml:"values"`
}

// SweepConfig holds a parameter-sweep invocation's parameters.
type SweepConfig struct {
	Objective      string          `mapstructure:"objective"       yaml:"objective"`
	Mode           string          `mapstructure:"mode"            yaml:"mode"` // "cartesian" or "random"
	Iterations     int             `mapstructure:"iterations"      yaml:"iterations"`
	Workers        int             `mapstructure:"workers"         yaml:"workers"`
	Seed           int64           `mapstructure:"seed"            yaml:"seed"`
	ParameterSpace []ParameterSpec `mapstructure:"parameter_space" yaml:"parameter_space"`
}

// ResultStoreConfig controls optional SQLite persistence of sweep results.
type ResultStoreConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// LoggingConfig controls the ambient obslog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
}

const envPrefix = "BACKTESTLAB"

// Load searches the usual config locations (./config, ~/.backtestlab,
// /etc/backtestlab) for config.yaml, applies defaults and environment
// overrides, and returns the resolved Config. A missing config file is not
// an error; defaults plus env vars are used instead.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".backtestlab"))
	v.AddConfigPath("/etc/backtestlab")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("run.initial_cash", 100_000.0)
	v.SetDefault("run.allow_short", false)
	v.SetDefault("run.atr_period", 14)
	v.SetDefault("run.price_buffer_capacity", 20)

	v.SetDefault("strategy.lookback", 20)
	v.SetDefault("strategy.multiplier", 1.0)
	v.SetDefault("strategy.stop_loss_atr_multiplier", 2.0)
	v.SetDefault("strategy.default_size", 1.0)
	v.SetDefault("strategy.max_risk_per_trade", 0.01)
	v.SetDefault("strategy.position_size_budget", 100_000.0)
	v.SetDefault("strategy.direction", "both")
	v.SetDefault("strategy.trailing_multiplier", 2.0)

	v.SetDefault("execution.slippage_mode", "none")
	v.SetDefault("execution.commission_mode", "none")
	v.SetDefault("execution.impact_mode", "none")

	v.SetDefault("sweep.objective", "sharpe")
	v.SetDefault("sweep.mode", "cartesian")
	v.SetDefault("sweep.workers", 4)
	v.SetDefault("sweep.seed", 1)

	v.SetDefault("resultstore.enabled", false)
	v.SetDefault("resultstore.path", "./backtestlab.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// SaveToFile writes cfg to path as YAML, creating parent directories as
// needed. No cmd/backtestlab subcommand calls it.
func SaveToFile(cfg *Config, path string) error {
	if path == "" {
		path = filepath.Join(".", "config", "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
