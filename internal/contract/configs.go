package contract

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/huangsam/snowdash/schema"
)

// Dashboard parameter bounds and defaults.
const (
	DefaultEfficiencyLookbackDays = 7
	MinEfficiencyLookbackDays     = 1
	MaxEfficiencyLookbackDays     = 30

	DefaultAnomalyLookbackDays = 30
	MinAnomalyLookbackDays     = 7
	MaxAnomalyLookbackDays     = 90

	DefaultAnomalyThreshold = 2.0
	MinAnomalyThreshold     = 1.5
	MaxAnomalyThreshold     = 3.5
	AnomalyThresholdStep    = 0.1
)

// Dashboard layout constants.
const (
	TrendSeriesDays    = 14 // daily series fetched behind the KPI sparklines
	SparklineDays      = 7
	AttentionScore     = 70 // efficiency scores below this need attention
	MaxEfficiencyCards = 8
	MaxAnomalyCards    = 6
	WarehouseNameWidth = 20
)

// Default values for configuration.
const (
	DefaultCacheTTL    = 10 * time.Minute
	DefaultCreditPrice = 3.0
	DefaultListenAddr  = ":8080"
)

// ErrInvalidParams is returned when dashboard parameters fall outside their bounds.
var ErrInvalidParams = errors.New("invalid dashboard parameters")

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for the dashboard.
// This struct remains the "final, validated" config.
type Config struct {
	WarehouseBackend schema.WarehouseBackend
	WarehouseDSN     string // Please use env var as this is plaintext

	Params schema.DashboardParams

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheTTL       time.Duration

	SnapshotBackend   schema.DatabaseBackend
	SnapshotDBConnect string // Please use env var as this is plaintext

	CreditPrice  float64
	ListenAddr   string
	OTLPEndpoint string

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	WarehouseBackend  string  `mapstructure:"warehouse-backend"`
	WarehouseDSN      string  `mapstructure:"warehouse-dsn"`
	EfficiencyDays    int     `mapstructure:"efficiency-lookback"`
	AnomalyDays       int     `mapstructure:"anomaly-lookback"`
	AnomalyThreshold  float64 `mapstructure:"anomaly-threshold"`
	Output            string  `mapstructure:"output"`
	OutputFile        string  `mapstructure:"output-file"`
	Width             int     `mapstructure:"width"`
	CacheBackend      string  `mapstructure:"cache-backend"`
	CacheDBConnect    string  `mapstructure:"cache-db-connect"`
	CacheTTL          string  `mapstructure:"cache-ttl"`
	SnapshotBackend   string  `mapstructure:"snapshot-backend"`
	SnapshotDBConnect string  `mapstructure:"snapshot-db-connect"`
	CreditPrice       float64 `mapstructure:"credit-price"`
	OTLPEndpoint      string  `mapstructure:"otlp-endpoint"`
	Emoji             string  `mapstructure:"emoji"`
	Color             string  `mapstructure:"color"`

	// --- Fields from serveCmd.Flags() ---
	ListenAddr string `mapstructure:"listen-addr"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// CloneWithParams returns a copy of the Config with different dashboard parameters.
func (c *Config) CloneWithParams(params schema.DashboardParams) *Config {
	clone := c.Clone()
	clone.Params = params
	return clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateWarehouseConfig(cfg, input); err != nil {
		return err
	}
	params, err := ValidateParams(input.EfficiencyDays, input.AnomalyDays, input.AnomalyThreshold)
	if err != nil {
		return err
	}
	cfg.Params = params
	return validateBackendConfigs(cfg, input)
}

// ValidateParams checks dashboard parameters against their bounds.
// The threshold is snapped to its 0.1 step before the range check.
func ValidateParams(efficiencyDays, anomalyDays int, threshold float64) (schema.DashboardParams, error) {
	var params schema.DashboardParams
	if efficiencyDays < MinEfficiencyLookbackDays || efficiencyDays > MaxEfficiencyLookbackDays {
		return params, fmt.Errorf("%w: efficiency lookback must be between %d and %d days (received %d)",
			ErrInvalidParams, MinEfficiencyLookbackDays, MaxEfficiencyLookbackDays, efficiencyDays)
	}
	if anomalyDays < MinAnomalyLookbackDays || anomalyDays > MaxAnomalyLookbackDays {
		return params, fmt.Errorf("%w: anomaly lookback must be between %d and %d days (received %d)",
			ErrInvalidParams, MinAnomalyLookbackDays, MaxAnomalyLookbackDays, anomalyDays)
	}
	if math.IsNaN(threshold) {
		return params, fmt.Errorf("%w: anomaly threshold must be a number", ErrInvalidParams)
	}
	snapped := math.Round(threshold/AnomalyThresholdStep) / (1 / AnomalyThresholdStep)
	if snapped < MinAnomalyThreshold || snapped > MaxAnomalyThreshold {
		return params, fmt.Errorf("%w: anomaly threshold must be between %.1f and %.1f (received %v)",
			ErrInvalidParams, MinAnomalyThreshold, MaxAnomalyThreshold, threshold)
	}
	params.EfficiencyLookbackDays = efficiencyDays
	params.AnomalyLookbackDays = anomalyDays
	params.AnomalyThreshold = snapped
	return params, nil
}

// DefaultParams returns the dashboard parameters used when none are given.
func DefaultParams() schema.DashboardParams {
	return schema.DashboardParams{
		EfficiencyLookbackDays: DefaultEfficiencyLookbackDays,
		AnomalyLookbackDays:    DefaultAnomalyLookbackDays,
		AnomalyThreshold:       DefaultAnomalyThreshold,
	}
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.MemoryBackend, schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ProcessProfilingConfig enables profiling when a prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// validateSimpleInputs processes and validates output and presentation fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.OTLPEndpoint = input.OTLPEndpoint

	cfg.ListenAddr = input.ListenAddr
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}

	if input.CreditPrice < 0 || math.IsNaN(input.CreditPrice) {
		return fmt.Errorf("credit price cannot be negative (received %v)", input.CreditPrice)
	}
	cfg.CreditPrice = input.CreditPrice

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, json, csv, xlsx", input.Output)
	}
	if cfg.Output == schema.XLSXOut && cfg.OutputFile == "" {
		return errors.New("--output-file is required for xlsx output")
	}

	ttl := DefaultCacheTTL
	if input.CacheTTL != "" {
		parsed, err := time.ParseDuration(input.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid cache TTL %q: %w", input.CacheTTL, err)
		}
		ttl = parsed
	}
	if ttl <= 0 {
		return fmt.Errorf("cache TTL must be positive (received %s)", ttl)
	}
	cfg.CacheTTL = ttl

	return nil
}

// validateWarehouseConfig validates the warehouse dialect and DSN.
func validateWarehouseConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.WarehouseBackend = schema.WarehouseBackend(strings.ToLower(input.WarehouseBackend))
	if _, ok := schema.ValidWarehouseBackends[cfg.WarehouseBackend]; !ok {
		return fmt.Errorf("invalid warehouse backend '%s'. must be snowflake, postgresql, mysql, sqlite", input.WarehouseBackend)
	}
	cfg.WarehouseDSN = strings.TrimSpace(input.WarehouseDSN)
	if cfg.WarehouseDSN == "" {
		return fmt.Errorf("warehouse-dsn is required for the %s warehouse (set SNOWDASH_WAREHOUSE_DSN)", cfg.WarehouseBackend)
	}
	return nil
}

// validateBackendConfigs validates cache and snapshot backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be memory, sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Snapshot Backend Validation ---
	cfg.SnapshotBackend = schema.DatabaseBackend(strings.ToLower(input.SnapshotBackend))
	if cfg.SnapshotBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.SnapshotBackend]; !ok || cfg.SnapshotBackend == schema.MemoryBackend {
		return fmt.Errorf("invalid snapshot backend '%s'. must be sqlite, mysql, postgresql, none", input.SnapshotBackend)
	}
	cfg.SnapshotDBConnect = input.SnapshotDBConnect
	if err := ValidateDatabaseConnectionString(cfg.SnapshotBackend, cfg.SnapshotDBConnect); err != nil {
		return err
	}

	// Cache and snapshots must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.SnapshotBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		snapshotPath := cfg.SnapshotDBConnect
		if snapshotPath == "" {
			snapshotPath = GetSnapshotDBFilePath()
		}
		if cachePath == snapshotPath {
			return fmt.Errorf("cache and snapshot storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}
