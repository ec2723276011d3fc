package recorder

import (
	"database/sql"
	"fmt"
	"sync"

	"StockArchive/internal/model"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			provider    TEXT,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			succeeded   INTEGER,
			empty       INTEGER,
			failed      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS symbol_results (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id   TEXT NOT NULL REFERENCES runs(id),
			position INTEGER NOT NULL,
			symbol   TEXT NOT NULL,
			status   TEXT NOT NULL,
			rows     INTEGER,
			path     TEXT,
			error    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_symbol_results_symbol ON symbol_results(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the run and every symbol outcome in one transaction.
func (r *SQLiteRecorder) RecordRun(report *model.RunReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO runs
		(id, provider, started_at, finished_at, succeeded, empty, failed)
		VALUES (?,?,?,?,?,?,?)`,
		report.ID, report.Provider, report.StartedAt.Unix(), report.FinishedAt.Unix(),
		report.Count(model.StatusSucceeded), report.Count(model.StatusEmpty), report.Count(model.StatusFailed),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, res := range report.Results {
		var errText string
		if res.Err != nil {
			errText = res.Err.Error()
		}
		if _, err := tx.Exec(`INSERT INTO symbol_results
			(run_id, position, symbol, status, rows, path, error)
			VALUES (?,?,?,?,?,?,?)`,
			report.ID, i, res.Symbol, string(res.Status), res.Rows, res.Path, errText,
		); err != nil {
			return fmt.Errorf("insert result %s: %w", res.Symbol, err)
		}
	}
	return tx.Commit()
}

// LastSuccess returns the finish time (unix seconds) of the latest run in which
// symbol was written, or zero if it never was.
func (r *SQLiteRecorder) LastSuccess(symbol string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var finished sql.NullInt64
	err := r.db.QueryRow(`SELECT MAX(runs.finished_at)
		FROM symbol_results JOIN runs ON runs.id = symbol_results.run_id
		WHERE symbol_results.symbol = ? AND symbol_results.status = ?`,
		symbol, string(model.StatusSucceeded),
	).Scan(&finished)
	if err != nil {
		return 0, err
	}
	return finished.Int64, nil
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
