package config

import "testing"

func TestConfigLoad(t *testing.T) {
	cfg := Load()

	if cfg == nil {
		t.Fatal("Config should not be nil")
	}
	if cfg.Format != "text" {
		t.Errorf("Expected default format text, got %s", cfg.Format)
	}
	if cfg.Store.Driver != "sqlite3" {
		t.Errorf("Expected default store driver sqlite3, got %s", cfg.Store.Driver)
	}
	if len(cfg.Rules.FileExtensions) == 0 {
		t.Error("Should have default file extensions")
	}
	if len(cfg.Rules.ExcludedDirs) == 0 {
		t.Error("Should have default excluded directories")
	}
}

func TestSeverityParsing(t *testing.T) {
	tests := []struct {
		input    string
		expected SeverityLevel
	}{
		{"info", SeverityInfo},
		{"low", SeverityLow},
		{"medium", SeverityMedium},
		{"high", SeverityHigh},
		{"critical", SeverityCritical},
		{"bogus", SeverityMedium},
		{"", SeverityMedium},
	}

	for _, tt := range tests {
		if got := ParseSeverity(tt.input); got != tt.expected {
			t.Errorf("ParseSeverity(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestSeverityString(t *testing.T) {
	tests := []struct {
		level    SeverityLevel
		expected string
	}{
		{SeverityInfo, "info"},
		{SeverityLow, "low"},
		{SeverityMedium, "medium"},
		{SeverityHigh, "high"},
		{SeverityCritical, "critical"},
		{SeverityLevel(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("SeverityLevel(%d).String() = %q, expected %q", tt.level, got, tt.expected)
		}
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !(SeverityInfo < SeverityLow && SeverityLow < SeverityMedium &&
		SeverityMedium < SeverityHigh && SeverityHigh < SeverityCritical) {
		t.Error("Severity levels must be strictly ordered info < low < medium < high < critical")
	}
}
