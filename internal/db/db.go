package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/swelljoe/alertagent/internal/stocks"
)

var errNotInitialized = errors.New("database not initialized")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at TEXT NOT NULL,
	report_path TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT '',
	delivered INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS stock_snapshots (
	session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	symbol TEXT NOT NULL,
	latest_close TEXT NOT NULL,
	previous_close TEXT NOT NULL,
	change TEXT NOT NULL,
	percent_change TEXT NOT NULL,
	alert_needed INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_stock_snapshots_session ON stock_snapshots(session_id);
`

// DB wraps the session history database
type DB struct {
	*sql.DB
}

// SessionRecord is one finished session as stored in history.
type SessionRecord struct {
	ID         int64
	StartedAt  time.Time
	ReportPath string
	Summary    string
	Delivered  bool
	Snapshots  []stocks.Snapshot
}

// Alerts counts the flagged snapshots of the session.
func (r SessionRecord) Alerts() int {
	n := 0
	for _, s := range r.Snapshots {
		if s.AlertNeeded {
			n++
		}
	}
	return n
}

// NewDB opens (creating if needed) the SQLite history at path
func NewDB(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("no history path configured")
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// RecordSession stores a session and its stock snapshots in one transaction
// and returns the new session id.
func (db *DB) RecordSession(rec SessionRecord) (int64, error) {
	if db == nil || db.DB == nil {
		return 0, errNotInitialized
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO sessions (started_at, report_path, summary, delivered) VALUES (?, ?, ?, ?)",
		rec.StartedAt.UTC().Format(time.RFC3339), rec.ReportPath, rec.Summary, boolInt(rec.Delivered),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read session id: %w", err)
	}

	if len(rec.Snapshots) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO stock_snapshots
			(session_id, symbol, latest_close, previous_close, change, percent_change, alert_needed)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, fmt.Errorf("failed to prepare snapshot insert: %w", err)
		}
		defer stmt.Close()

		for _, s := range rec.Snapshots {
			_, err := stmt.Exec(id, s.Symbol,
				s.LatestClose.String(), s.PreviousClose.String(),
				s.Change.StringFixed(2), s.PercentChange.StringFixed(2),
				boolInt(s.AlertNeeded),
			)
			if err != nil {
				return 0, fmt.Errorf("failed to insert snapshot %s: %w", s.Symbol, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit session: %w", err)
	}
	return id, nil
}

// RecentSessions lists up to limit sessions, newest first, with their
// snapshots in insertion order.
func (db *DB) RecentSessions(limit int) ([]SessionRecord, error) {
	if db == nil || db.DB == nil {
		return nil, errNotInitialized
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.Query(
		"SELECT id, started_at, report_path, summary, delivered FROM sessions ORDER BY started_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var (
			rec       SessionRecord
			startedAt string
			delivered int
		)
		if err := rows.Scan(&rec.ID, &startedAt, &rec.ReportPath, &rec.Summary, &delivered); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		rec.StartedAt, err = time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, fmt.Errorf("bad started_at %q: %w", startedAt, err)
		}
		rec.Delivered = delivered != 0
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}

	for i := range records {
		snaps, err := db.snapshots(records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Snapshots = snaps
	}
	return records, nil
}

func (db *DB) snapshots(sessionID int64) ([]stocks.Snapshot, error) {
	rows, err := db.Query(
		`SELECT symbol, latest_close, previous_close, change, percent_change, alert_needed
		FROM stock_snapshots WHERE session_id = ? ORDER BY rowid`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []stocks.Snapshot
	for rows.Next() {
		var (
			s                                    stocks.Snapshot
			latest, previous, change, percentage string
			alert                                int
		)
		if err := rows.Scan(&s.Symbol, &latest, &previous, &change, &percentage, &alert); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if s.LatestClose, err = decimal.NewFromString(latest); err != nil {
			return nil, fmt.Errorf("bad latest_close for %s: %w", s.Symbol, err)
		}
		if s.PreviousClose, err = decimal.NewFromString(previous); err != nil {
			return nil, fmt.Errorf("bad previous_close for %s: %w", s.Symbol, err)
		}
		if s.Change, err = decimal.NewFromString(change); err != nil {
			return nil, fmt.Errorf("bad change for %s: %w", s.Symbol, err)
		}
		if s.PercentChange, err = decimal.NewFromString(percentage); err != nil {
			return nil, fmt.Errorf("bad percent_change for %s: %w", s.Symbol, err)
		}
		s.AlertNeeded = alert != 0
		out = append(out, s)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
