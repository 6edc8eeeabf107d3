package trace

import (
	"database/sql"
	"fmt"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// SQLiteWriter writes resumption records to a SQLite database, one row per
// resumption, in batched transactions.
type SQLiteWriter struct {
	*sql.DB
	statement *sql.Stmt

	path      string
	runID     string
	records   []ResumeRecord
	batchSize int
	closed    bool
}

// NewSQLiteWriter creates a SQLiteWriter. An empty path picks a unique file
// name in the working directory.
func NewSQLiteWriter(path, runID string) *SQLiteWriter {
	if path == "" {
		path = "portsim_trace_" + xid.New().String() + ".sqlite3"
	}
	return &SQLiteWriter{
		path:      path,
		runID:     runID,
		batchSize: 10000,
	}
}

// Path returns the database file path.
func (t *SQLiteWriter) Path() string {
	return t.path
}

// Init opens the database, creates the table and prepares the insert.
func (t *SQLiteWriter) Init() error {
	db, err := sql.Open("sqlite3", t.path)
	if err != nil {
		return fmt.Errorf("open trace database: %w", err)
	}
	t.DB = db

	_, err = t.Exec(`CREATE TABLE IF NOT EXISTS resumptions (
		run_id  TEXT,
		seq     INTEGER,
		time    REAL,
		pid     INTEGER,
		process TEXT,
		kind    TEXT
	)`)
	if err != nil {
		return fmt.Errorf("create resumptions table: %w", err)
	}

	t.statement, err = t.Prepare(`INSERT INTO resumptions
		(run_id, seq, time, pid, process, kind) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}

	atexit.Register(func() {
		_ = t.Close()
	})
	return nil
}

// Write buffers a record, flushing once the batch is full.
func (t *SQLiteWriter) Write(record ResumeRecord) {
	t.records = append(t.records, record)
	if len(t.records) >= t.batchSize {
		if err := t.Flush(); err != nil {
			panic(err)
		}
	}
}

// Flush writes all the buffered records in one transaction.
func (t *SQLiteWriter) Flush() error {
	if len(t.records) == 0 || t.DB == nil {
		return nil
	}

	tx, err := t.Begin()
	if err != nil {
		return err
	}
	stmt := tx.Stmt(t.statement)
	for _, r := range t.records {
		if _, err := stmt.Exec(t.runID, r.Seq, r.Time, r.PID, r.Process, r.Kind); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert resumption %d: %w", r.Seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	t.records = nil
	return nil
}

// Close flushes and closes the database. Later calls are no-ops.
func (t *SQLiteWriter) Close() error {
	if t.closed || t.DB == nil {
		return nil
	}
	t.closed = true
	if err := t.Flush(); err != nil {
		_ = t.DB.Close()
		return err
	}
	if err := t.statement.Close(); err != nil {
		_ = t.DB.Close()
		return err
	}
	return t.DB.Close()
}
