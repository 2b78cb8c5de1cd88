package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database holding the three contract records.
type Store struct {
	db *sql.DB
}

const schema = `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		sourceName TEXT NOT NULL,
		sessionStart REAL NOT NULL,
		startSource TEXT NOT NULL,
		mode TEXT NOT NULL,
		sampleRate INTEGER NOT NULL,
		channels INTEGER NOT NULL,
		bitDepth INTEGER NOT NULL,
		durationSeconds REAL NOT NULL,
		createdAt REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS timeline_segments (
		sessionId TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		segmentId TEXT NOT NULL,
		offsetMs INTEGER NOT NULL,
		durationMs INTEGER NOT NULL,
		absoluteStart REAL NOT NULL,
		absoluteEnd REAL NOT NULL,
		PRIMARY KEY (sessionId, segmentId)
	);

	CREATE TABLE IF NOT EXISTS events (
		sessionId TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		segmentId TEXT NOT NULL,
		model TEXT NOT NULL,
		absoluteStart REAL NOT NULL,
		absoluteEnd REAL NOT NULL,
		transcript TEXT NOT NULL,
		confidence REAL,
		tokens TEXT,
		PRIMARY KEY (sessionId, model, segmentId)
	);
`

// Open opens (or creates) the database with WAL and applies the schema.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSession inserts one session record.
func (s *Store) SaveSession(row SessionRow) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, sourceName, sessionStart, startSource, mode,
			sampleRate, channels, bitDepth, durationSeconds, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, row.ID, row.SourceName, timeToUnix(row.SessionStart), row.StartSource,
		row.Mode, row.SampleRate, row.Channels, row.BitDepth,
		row.DurationSeconds, timeToUnix(time.Now()))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// SaveTimeline inserts a session's segments in one transaction, so an
// aborted run persists nothing rather than a partial timeline.
func (s *Store) SaveTimeline(rows []SegmentRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, row := range rows {
		if _, err := tx.Exec(`
			INSERT INTO timeline_segments (sessionId, segmentId, offsetMs,
				durationMs, absoluteStart, absoluteEnd)
			VALUES (?, ?, ?, ?, ?, ?)
		`, row.SessionID, row.SegmentID, row.OffsetMS, row.DurationMS,
			timeToUnix(row.AbsoluteStart), timeToUnix(row.AbsoluteEnd)); err != nil {
			return fmt.Errorf("insert segment %s: %w", row.SegmentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit timeline: %w", err)
	}
	return nil
}

// SaveEvents inserts a session's aligned events in one transaction.
func (s *Store) SaveEvents(rows []EventRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, row := range rows {
		if _, err := tx.Exec(`
			INSERT INTO events (sessionId, segmentId, model, absoluteStart,
				absoluteEnd, transcript, confidence, tokens)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, row.SessionID, row.SegmentID, row.Model,
			timeToUnix(row.AbsoluteStart), timeToUnix(row.AbsoluteEnd),
			row.Transcript, row.Confidence, nullString(row.TokensJSON)); err != nil {
			return fmt.Errorf("insert event %s: %w", row.SegmentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit events: %w", err)
	}
	return nil
}

// SessionByID returns one session, or nil when absent.
func (s *Store) SessionByID(id string) (*SessionRow, error) {
	row := s.db.QueryRow(`
		SELECT id, sourceName, sessionStart, startSource, mode,
			sampleRate, channels, bitDepth, durationSeconds, createdAt
		FROM sessions
		WHERE id = ?
	`, id)

	var sess SessionRow
	var start, created float64
	if err := row.Scan(&sess.ID, &sess.SourceName, &start, &sess.StartSource,
		&sess.Mode, &sess.SampleRate, &sess.Channels, &sess.BitDepth,
		&sess.DurationSeconds, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	sess.SessionStart = timeFromUnix(start)
	sess.CreatedAt = timeFromUnix(created)
	return &sess, nil
}

// TimelineForSession returns a session's segments ordered by offset.
func (s *Store) TimelineForSession(sessionID string) ([]SegmentRow, error) {
	rows, err := s.db.Query(`
		SELECT sessionId, segmentId, offsetMs, durationMs, absoluteStart, absoluteEnd
		FROM timeline_segments
		WHERE sessionId = ?
		ORDER BY offsetMs ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query timeline: %w", err)
	}
	defer rows.Close()

	var segs []SegmentRow
	for rows.Next() {
		var seg SegmentRow
		var start, end float64
		if err := rows.Scan(&seg.SessionID, &seg.SegmentID, &seg.OffsetMS,
			&seg.DurationMS, &start, &end); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		seg.AbsoluteStart = timeFromUnix(start)
		seg.AbsoluteEnd = timeFromUnix(end)
		segs = append(segs, seg)
	}
	return segs, rows.Err()
}

// EventsInRange returns a session's events whose absolute start falls in
// [start, end), ordered chronologically.
func (s *Store) EventsInRange(sessionID, model string, start, end time.Time) ([]EventRow, error) {
	rows, err := s.db.Query(`
		SELECT sessionId, segmentId, model, absoluteStart, absoluteEnd,
			transcript, confidence, tokens
		FROM events
		WHERE sessionId = ? AND model = ? AND absoluteStart >= ? AND absoluteStart < ?
		ORDER BY absoluteStart ASC
	`, sessionID, model, timeToUnix(start), timeToUnix(end))
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []EventRow
	for rows.Next() {
		var ev EventRow
		var evStart, evEnd float64
		var confidence sql.NullFloat64
		var tokens sql.NullString
		if err := rows.Scan(&ev.SessionID, &ev.SegmentID, &ev.Model,
			&evStart, &evEnd, &ev.Transcript, &confidence, &tokens); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.AbsoluteStart = timeFromUnix(evStart)
		ev.AbsoluteEnd = timeFromUnix(evEnd)
		if confidence.Valid {
			c := confidence.Float64
			ev.Confidence = &c
		}
		if tokens.Valid {
			ev.TokensJSON = tokens.String
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func timeToUnix(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
