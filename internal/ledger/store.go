package ledger

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id    TEXT PRIMARY KEY,
	started_at    TEXT NOT NULL,
	ended_at      TEXT,
	summary_json  TEXT
);

CREATE TABLE IF NOT EXISTS decisions (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	advice_id     TEXT NOT NULL,
	category      TEXT NOT NULL,
	priority      TEXT NOT NULL,
	confidence    REAL NOT NULL,
	action        TEXT NOT NULL,
	reason        TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);

CREATE TABLE IF NOT EXISTS deliveries (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	advice_id     TEXT NOT NULL,
	category      TEXT NOT NULL,
	priority      TEXT NOT NULL,
	text          TEXT NOT NULL,
	delivered     INTEGER NOT NULL,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);

CREATE TABLE IF NOT EXISTS ledger_events (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	category      TEXT NOT NULL,
	confidence    REAL NOT NULL,
	weight        REAL NOT NULL,
	outcome       TEXT NOT NULL,
	session_time  REAL NOT NULL,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);
`

// #endregion schema

// #region store

// Store persists arbitration audit rows, delivery history, and ledger
// events to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for inspection tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store

// #region sessions

// BeginSession records a session start.
func (s *Store) BeginSession(sessionID string, startedAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (session_id, started_at) VALUES (?, ?)
		 ON CONFLICT(session_id) DO NOTHING`,
		sessionID, startedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	return nil
}

// EndSession stamps the session end and stores its summary.
func (s *Store) EndSession(sessionID string, endedAt time.Time, summary Summary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	_, err = s.db.Exec(
		`UPDATE sessions SET ended_at = ?, summary_json = ? WHERE session_id = ?`,
		endedAt.UTC().Format(time.RFC3339Nano), string(summaryJSON), sessionID,
	)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// SessionSummary reads back a stored session summary.
func (s *Store) SessionSummary(sessionID string) (Summary, error) {
	var summaryJSON sql.NullString
	err := s.db.QueryRow(
		`SELECT summary_json FROM sessions WHERE session_id = ?`, sessionID,
	).Scan(&summaryJSON)
	if err != nil {
		return Summary{}, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	var sum Summary
	if summaryJSON.Valid {
		if err := json.Unmarshal([]byte(summaryJSON.String), &sum); err != nil {
			return Summary{}, fmt.Errorf("unmarshal summary: %w", err)
		}
	}
	return sum, nil
}

// #endregion sessions

// #region audit

// DecisionEntry is one arbitration audit row.
type DecisionEntry struct {
	SessionID  string
	AdviceID   string
	Category   string
	Priority   string
	Confidence float64
	Action     string
	Reason     string
	CreatedAt  time.Time
}

// LogDecision appends an arbitration decision to the audit log.
func (s *Store) LogDecision(entry DecisionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO decisions (session_id, advice_id, category, priority, confidence, action, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID, entry.AdviceID, entry.Category, entry.Priority,
		entry.Confidence, entry.Action, nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// DeliveryEntry is one outbound-message audit row. Delivered reflects the
// channel's answer, observed after the fact.
type DeliveryEntry struct {
	SessionID string
	AdviceID  string
	Category  string
	Priority  string
	Text      string
	Delivered bool
	CreatedAt time.Time
}

// LogDelivery appends a delivery attempt to the audit log.
func (s *Store) LogDelivery(entry DeliveryEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	delivered := 0
	if entry.Delivered {
		delivered = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO deliveries (session_id, advice_id, category, priority, text, delivered, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID, entry.AdviceID, entry.Category, entry.Priority,
		entry.Text, delivered, entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log delivery: %w", err)
	}
	return nil
}

// AppendEvent persists one ledger event.
func (s *Store) AppendEvent(sessionID string, e Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO ledger_events (session_id, category, confidence, weight, outcome, session_time, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, string(e.Category), e.Confidence, e.Weight, string(e.Outcome),
		e.SessionTime, e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// #endregion audit

// #region queries

// RecentDecisions returns the newest audit rows, newest first.
func (s *Store) RecentDecisions(limit int) ([]DecisionEntry, error) {
	rows, err := s.db.Query(
		`SELECT session_id, advice_id, category, priority, confidence, action, reason, created_at
		 FROM decisions ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var entries []DecisionEntry
	for rows.Next() {
		var e DecisionEntry
		var reason sql.NullString
		var createdStr string
		if err := rows.Scan(&e.SessionID, &e.AdviceID, &e.Category, &e.Priority,
			&e.Confidence, &e.Action, &reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		if reason.Valid {
			e.Reason = reason.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecentDeliveries returns the newest delivery rows, newest first.
func (s *Store) RecentDeliveries(limit int) ([]DeliveryEntry, error) {
	rows, err := s.db.Query(
		`SELECT session_id, advice_id, category, priority, text, delivered, created_at
		 FROM deliveries ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	var entries []DeliveryEntry
	for rows.Next() {
		var e DeliveryEntry
		var delivered int
		var createdStr string
		if err := rows.Scan(&e.SessionID, &e.AdviceID, &e.Category, &e.Priority,
			&e.Text, &delivered, &createdStr); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		e.Delivered = delivered != 0
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion queries

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
