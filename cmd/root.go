package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/config"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/engine"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/extractor"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/finding"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/language"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/reporter"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/review"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/rules"
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/rulestore"
)

var (
	cfgFile     string
	outputFile  string
	format      string
	severity    string
	verbose     bool
	watchMode   bool
	rulesDB     string
	rulesDriver string
	importFile  string
	exportFile  string
	reviewFile  string
)

var rootCmd = &cobra.Command{
	Use:   "codesentinel [path]",
	Short: "Deterministic static-analysis engine for JavaScript and TypeScript",
	Long: `CodeSentinel turns raw source into structural facts and evaluates a
configurable set of pattern-based detection rules against it, producing
ranked, deduplicated findings and an architecture score. Findings from an
external reviewer can be merged into the report.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .codesentinel.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "text", "output format (text, json)")
	rootCmd.PersistentFlags().StringVarP(&severity, "severity", "s", "info", "minimum severity level (info, low, medium, high, critical)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&watchMode, "watch", "w", false, "re-run the scan when source files change")
	rootCmd.PersistentFlags().StringVar(&rulesDB, "rules-db", "", "rule store DSN (sqlite file path or mysql DSN); in-memory when empty")
	rootCmd.PersistentFlags().StringVar(&rulesDriver, "rules-driver", "", "rule store driver (sqlite3, mysql)")
	rootCmd.PersistentFlags().StringVar(&importFile, "import-rules", "", "import rules from a YAML file before scanning")
	rootCmd.PersistentFlags().StringVar(&exportFile, "export-rules", "", "export the rule set to a YAML file and exit")
	rootCmd.PersistentFlags().StringVar(&reviewFile, "review-file", "", "external reviewer payload (JSON array or labeled text) to merge")
}

func initConfig() {
	// A local .env may carry store credentials; ignore when absent.
	godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".codesentinel")
	}

	viper.SetEnvPrefix("CODESENTINEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	logger := initLogger()
	defer logger.Sync()

	scanPath := "."
	if len(args) > 0 {
		scanPath = args[0]
	}
	absPath, err := filepath.Abs(scanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	cfg := config.Load()
	cfg.ScanPath = absPath
	cfg.OutputFile = outputFile
	cfg.Format = format
	cfg.Severity = severity
	cfg.Verbose = verbose
	cfg.Watch = watchMode
	cfg.ReviewFile = reviewFile
	if rulesDriver != "" {
		cfg.Store.Driver = rulesDriver
	}
	if rulesDB != "" {
		cfg.Store.DSN = rulesDB
	}

	registry, closeStore, err := openRegistry(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	applyRuleToggles(cfg, registry, logger)

	if importFile != "" {
		data, err := os.ReadFile(importFile)
		if err != nil {
			return fmt.Errorf("failed to read rule file: %w", err)
		}
		count, err := registry.ImportYAML(data)
		if err != nil {
			return fmt.Errorf("failed to import rules: %w", err)
		}
		logger.Info("Rules imported", zap.Int("count", count), zap.String("file", importFile))
	}

	if exportFile != "" {
		data, err := registry.ExportYAML()
		if err != nil {
			return fmt.Errorf("failed to export rules: %w", err)
		}
		if err := os.WriteFile(exportFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write rule file: %w", err)
		}
		logger.Info("Rules exported", zap.String("file", exportFile))
		return nil
	}

	external, externalDegraded := loadExternalFindings(cfg, logger)

	run := func() error {
		return scanOnce(cfg, registry, external, externalDegraded, logger)
	}
	if err := run(); err != nil {
		return err
	}
	if cfg.Watch {
		return watchAndRescan(cfg, run, logger)
	}
	return nil
}

// openRegistry builds the rule registry over the configured store.
func openRegistry(cfg *config.Config, logger *zap.Logger) (*rules.Registry, func(), error) {
	if cfg.Store.DSN == "" {
		registry, err := rules.NewRegistry(rules.NewMemoryStore(), logger)
		if err != nil {
			return nil, nil, err
		}
		return registry, func() {}, nil
	}

	store, err := rulestore.Open(cfg.Store.Driver, cfg.Store.DSN, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open rule store: %w", err)
	}
	registry, err := rules.NewRegistry(store, logger)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return registry, func() { store.Close() }, nil
}

// applyRuleToggles applies the enabled/disabled lists from configuration.
func applyRuleToggles(cfg *config.Config, registry *rules.Registry, logger *zap.Logger) {
	for _, id := range cfg.Rules.Enabled {
		if err := registry.SetEnabled(id, true); err != nil && !errors.Is(err, rules.ErrNotFound) {
			logger.Warn("Failed to enable rule", zap.String("id", id), zap.Error(err))
		}
	}
	for _, id := range cfg.Rules.Disabled {
		if err := registry.SetEnabled(id, false); err != nil && !errors.Is(err, rules.ErrNotFound) {
			logger.Warn("Failed to disable rule", zap.String("id", id), zap.Error(err))
		}
	}
}

// loadExternalFindings reads and parses the optional reviewer payload. A
// payload that cannot be parsed degrades to zero external findings.
func loadExternalFindings(cfg *config.Config, logger *zap.Logger) ([]finding.Finding, bool) {
	if cfg.ReviewFile == "" {
		return nil, false
	}
	data, err := os.ReadFile(cfg.ReviewFile)
	if err != nil {
		logger.Warn("Failed to read review file, proceeding with rule findings alone",
			zap.String("file", cfg.ReviewFile), zap.Error(err))
		return nil, true
	}
	parsed, err := review.ParseFindings(string(data))
	if err != nil {
		logger.Warn("Failed to parse review payload, proceeding with rule findings alone",
			zap.String("file", cfg.ReviewFile), zap.Error(err))
		return nil, true
	}
	return parsed, false
}

// scanOnce walks the target, analyzes every source file with a fresh rule
// snapshot, and renders the report.
func scanOnce(cfg *config.Config, registry *rules.Registry, external []finding.Finding, externalDegraded bool, logger *zap.Logger) error {
	files, err := collectFiles(cfg, logger)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no source files found under %s", cfg.ScanPath)
	}

	eng := engine.New(logger)
	start := time.Now()
	var fileReports []reporter.FileReport

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Failed to read file", zap.String("file", path), zap.Error(err))
			continue
		}
		lang := language.Detect(path)
		unit := extractor.SourceUnit{Text: string(content), Language: lang}
		snapshot := registry.ActiveRulesFor(lang)

		report := eng.Analyze(unit, snapshot, external)
		if externalDegraded {
			report.Degraded = true
			report.Errors = append(report.Errors, "external review payload could not be parsed")
		}
		fileReports = append(fileReports, reporter.FileReport{File: path, Report: report})
	}

	logger.Info("Scan completed",
		zap.Int("files", len(fileReports)),
		zap.Duration("duration", time.Since(start)))

	return reporter.New(cfg, logger).Generate(fileReports)
}

// collectFiles resolves the scan target to the list of source files.
func collectFiles(cfg *config.Config, logger *zap.Logger) ([]string, error) {
	info, err := os.Stat(cfg.ScanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat scan path: %w", err)
	}
	if !info.IsDir() {
		return []string{cfg.ScanPath}, nil
	}

	var files []string
	err = filepath.WalkDir(cfg.ScanPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Error accessing path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			for _, excluded := range cfg.Rules.ExcludedDirs {
				if d.Name() == excluded {
					return filepath.SkipDir
				}
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		for _, allowed := range cfg.Rules.FileExtensions {
			if ext == allowed {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	return files, nil
}

// watchAndRescan re-runs the scan whenever a watched source file changes,
// debounced so a burst of writes produces one rescan.
func watchAndRescan(cfg *config.Config, run func() error, logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to init watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchRecursive(watcher, cfg); err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfg.ScanPath, err)
	}
	logger.Info("Watching for changes", zap.String("path", cfg.ScanPath))

	var timer *time.Timer
	debounce := 300 * time.Millisecond

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if language.Detect(ev.Name) == language.Unknown {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				if err := run(); err != nil {
					logger.Warn("Rescan failed", zap.Error(err))
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error", zap.Error(err))
		}
	}
}

func addWatchRecursive(watcher *fsnotify.Watcher, cfg *config.Config) error {
	info, err := os.Stat(cfg.ScanPath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(cfg.ScanPath))
	}
	return filepath.WalkDir(cfg.ScanPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		for _, excluded := range cfg.Rules.ExcludedDirs {
			if d.Name() == excluded {
				return filepath.SkipDir
			}
		}
		return watcher.Add(path)
	})
}

func initLogger() *zap.Logger {
	var logger *zap.Logger
	var err error

	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	return logger
}
