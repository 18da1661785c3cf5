package rulestore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/rules"
)

// SQLStore persists the rule set in a relational database. The sqlite3
// driver backs the default local file store; mysql is supported for shared
// setups. Rules are stored one row each with the full definition as JSON so
// schema churn stays contained.
type SQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (and if necessary creates) a rule store. For sqlite3 the DSN
// is a file path whose parent directory is created on demand.
func Open(driver, dsn string, logger *zap.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if driver == "sqlite3" {
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create store directory: %w", err)
			}
		}
		dsn = dsn + "?_fk=true&_journal_mode=WAL"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLStore{db: db, logger: logger}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates the rules table if it doesn't exist
func (s *SQLStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rules (
		id VARCHAR(128) PRIMARY KEY,
		enabled INTEGER NOT NULL,
		data TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Load returns the persisted rule set in insertion order.
func (s *SQLStore) Load() ([]rules.Rule, error) {
	rows, err := s.db.Query(`SELECT data FROM rules ORDER BY updated_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var out []rules.Rule
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan rule row: %w", err)
		}
		var rule rules.Rule
		if err := json.Unmarshal([]byte(data), &rule); err != nil {
			s.logger.Warn("Dropping undecodable rule row", zap.Error(err))
			continue
		}
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rule rows: %w", err)
	}
	return out, nil
}

// Save replaces the persisted rule set in one transaction.
func (s *SQLStore) Save(ruleSet []rules.Rule) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM rules`); err != nil {
		return fmt.Errorf("failed to clear rules: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO rules (id, enabled, data, updated_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixNano()
	for i := range ruleSet {
		data, err := json.Marshal(&ruleSet[i])
		if err != nil {
			return fmt.Errorf("failed to encode rule %q: %w", ruleSet[i].ID, err)
		}
		enabled := 0
		if ruleSet[i].Enabled {
			enabled = 1
		}
		// updated_at doubles as an ordering key so Load preserves the
		// caller's rule order.
		if _, err := stmt.Exec(ruleSet[i].ID, enabled, string(data), now+int64(i)); err != nil {
			return fmt.Errorf("failed to insert rule %q: %w", ruleSet[i].ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rule set: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
