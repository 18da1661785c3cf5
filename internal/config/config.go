package config

import (
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	ScanPath   string
	OutputFile string
	Format     string
	Severity   string
	Verbose    bool
	Watch      bool
	ReviewFile string
	Store      StoreConfig
	Rules      RulesConfig
}

// StoreConfig holds rule store configuration
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// RulesConfig holds detection rule configuration
type RulesConfig struct {
	Enabled        []string `mapstructure:"enabled"`
	Disabled       []string `mapstructure:"disabled"`
	FileExtensions []string `mapstructure:"file_extensions"`
	ExcludedDirs   []string `mapstructure:"excluded_dirs"`
}

// Load loads configuration from various sources
func Load() *Config {
	cfg := &Config{
		Format:   "text",
		Severity: "info",
		Store: StoreConfig{
			Driver: "sqlite3",
		},
		Rules: RulesConfig{
			FileExtensions: []string{
				".js", ".mjs", ".cjs", ".jsx", ".ts", ".mts", ".tsx",
			},
			ExcludedDirs: []string{
				"node_modules",
				"vendor",
				".git",
				"dist",
				"build",
				"coverage",
				".next",
				".cache",
			},
		},
	}

	// Override with viper values
	if viper.IsSet("format") {
		cfg.Format = viper.GetString("format")
	}
	if viper.IsSet("severity") {
		cfg.Severity = viper.GetString("severity")
	}
	if viper.IsSet("verbose") {
		cfg.Verbose = viper.GetBool("verbose")
	}
	if viper.IsSet("store") {
		viper.UnmarshalKey("store", &cfg.Store)
	}
	if viper.IsSet("rules") {
		viper.UnmarshalKey("rules", &cfg.Rules)
	}

	return cfg
}

// SeverityLevel represents finding severity levels
type SeverityLevel int

const (
	SeverityInfo SeverityLevel = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns string representation of severity level
func (s SeverityLevel) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseSeverity parses severity level from string
func ParseSeverity(s string) SeverityLevel {
	switch s {
	case "info":
		return SeverityInfo
	case "low":
		return SeverityLow
	case "medium":
		return SeverityMedium
	case "high":
		return SeverityHigh
	case "critical":
		return SeverityCritical
	default:
		return SeverityMedium
	}
}
