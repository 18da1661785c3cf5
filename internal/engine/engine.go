package engine

import (
	"go.uber.org/zap"

	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/aggregator"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/extractor"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/finding"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/matcher"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/rules"
)

// Engine runs one synchronous analysis pass: extractor, matcher, aggregator.
// It holds no per-scan state, so independent scans may run in parallel as
// long as each receives its own rule snapshot.
type Engine struct {
	extractor *extractor.Extractor
	matcher   *matcher.Matcher
	logger    *zap.Logger
}

// ScanReport is the engine's best-effort result. Degraded marks scans where
// analysis lost fidelity (parse failure); Errors carries the reasons. A
// report is always produced, never an escaped error.
type ScanReport struct {
	Findings     []finding.Finding `json:"findings"`
	Score        int               `json:"score"`
	Degraded     bool              `json:"degraded"`
	Errors       []string          `json:"errors,omitempty"`
	SkippedRules []string          `json:"skipped_rules,omitempty"`
	Facts        *extractor.Result `json:"facts,omitempty"`
}

// New creates a new engine instance
func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		extractor: extractor.New(logger),
		matcher:   matcher.New(logger),
		logger:    logger,
	}
}

// Analyze scans a source unit against the supplied rule snapshot and merges
// optional external findings into the final report. On a parse failure the
// scan degrades to text-only rules and says so in the report.
func (e *Engine) Analyze(unit extractor.SourceUnit, active []rules.Rule, external []finding.Finding) *ScanReport {
	report := &ScanReport{}

	facts := e.extractor.Extract(unit)
	report.Facts = facts
	if len(facts.Errors) > 0 {
		report.Degraded = true
		report.Errors = append(report.Errors, facts.Errors...)
		e.logger.Warn("Proceeding with text-only analysis",
			zap.Strings("errors", facts.Errors))
	}

	matched := e.matcher.Match(unit, facts, active)
	report.SkippedRules = matched.SkippedRules

	merged := aggregator.Merge(matched.Findings, external)
	report.Findings = merged.Findings
	report.Score = merged.Score

	e.logger.Debug("Scan completed",
		zap.Int("findings", len(report.Findings)),
		zap.Int("score", report.Score),
		zap.Bool("degraded", report.Degraded))

	return report
}
