// Package trace persists allocation events so binding decisions can be
// replayed and audited after a run. Sinks plug into dims.Stack.OnEvent.
package trace

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/probfold/dimstack/dims"
)

var log = commonlog.GetLogger("dimstack.trace")

// Recorder writes allocation events to a SQLite database, one row per
// event, keyed by session and sequence number.
type Recorder struct {
	db      *sql.DB
	dbPath  string
	session string
	seq     int64
	mu      sync.Mutex
}

// NewRecorder opens the event database at dbPath, creating the file and
// schema if needed. Recording resumes after the session's last stored
// sequence number, so reopening a database is safe.
func NewRecorder(dbPath, session string) (*Recorder, error) {
	r := &Recorder{dbPath: dbPath, session: session}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	r.db = db

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS events (
		session TEXT NOT NULL,
		seq INTEGER NOT NULL,
		kind INTEGER NOT NULL,
		scope TEXT NOT NULL,
		name TEXT NOT NULL,
		dim INTEGER NOT NULL,
		PRIMARY KEY (session, seq)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	var last sql.NullInt64
	if err := db.QueryRow(
		"SELECT MAX(seq) FROM events WHERE session = ?", session,
	).Scan(&last); err != nil {
		db.Close()
		return nil, fmt.Errorf("reading last sequence: %w", err)
	}
	r.seq = last.Int64

	return r, nil
}

// Close closes the database connection.
func (r *Recorder) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Session returns the session this recorder writes under.
func (r *Recorder) Session() string {
	return r.session
}

// Record stores one event. The signature matches dims.Stack.OnEvent;
// storage failures are logged, not returned, so allocation never blocks
// on the sink.
func (r *Recorder) Record(ev dims.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	if _, err := r.db.Exec(
		"INSERT INTO events (session, seq, kind, scope, name, dim) VALUES (?, ?, ?, ?, ?, ?)",
		r.session, r.seq, int(ev.Kind), ev.Scope, ev.Name, ev.Dim,
	); err != nil {
		log.Errorf("recording event: %v", err)
	}
}

// Events returns the stored events of a session in recording order.
func (r *Recorder) Events(session string) ([]dims.Event, error) {
	rows, err := r.db.Query(
		"SELECT kind, scope, name, dim FROM events WHERE session = ? ORDER BY seq", session,
	)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []dims.Event
	for rows.Next() {
		var kind int
		var ev dims.Event
		if err := rows.Scan(&kind, &ev.Scope, &ev.Name, &ev.Dim); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		ev.Kind = dims.EventKind(kind)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Counts returns the per-kind event totals of the recorder's session.
func (r *Recorder) Counts() (map[string]int, error) {
	rows, err := r.db.Query(
		"SELECT kind, COUNT(*) FROM events WHERE session = ? GROUP BY kind", r.session,
	)
	if err != nil {
		return nil, fmt.Errorf("counting events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind, n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[dims.EventKind(kind).String()] = n
	}
	return counts, rows.Err()
}

// Sessions returns every session present in the database.
func (r *Recorder) Sessions() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT session FROM events ORDER BY session")
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
