package trace

import (
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriter_WritesHeaderAndRecords(t *testing.T) {
	// GIVEN a CSV writer in a temp dir
	path := filepath.Join(t.TempDir(), "trace.csv")
	w := NewCSVWriter(path)
	require.NoError(t, w.Init())

	// WHEN two records are written and the writer is closed
	w.Write(ResumeRecord{Seq: 1, Time: 0, PID: 1, Process: "gen", Kind: "Start"})
	w.Write(ResumeRecord{Seq: 2, Time: 1.5, PID: 1, Process: "gen", Kind: "Timeout"})
	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "second close is a no-op")

	// THEN the file holds a header plus both rows
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"seq", "time", "pid", "process", "kind"}, rows[0])
	assert.Equal(t, []string{"2", "1.500000", "1", "gen", "Timeout"}, rows[2])
}

func TestNewCSVWriter_DefaultPathIsUnique(t *testing.T) {
	a := NewCSVWriter("")
	b := NewCSVWriter("")
	assert.NotEqual(t, a.Path(), b.Path())
	assert.True(t, strings.HasSuffix(a.Path(), ".csv"))
}

func TestSQLiteWriter_PersistsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.sqlite3")
	w := NewSQLiteWriter(path, "run-1")
	if err := w.Init(); err != nil {
		if strings.Contains(err.Error(), "CGO_ENABLED") {
			t.Skip("sqlite3 driver requires cgo")
		}
		require.NoError(t, err)
	}

	w.Write(ResumeRecord{Seq: 1, Time: 0, PID: 1, Process: "gen", Kind: "Start"})
	w.Write(ResumeRecord{Seq: 2, Time: 3, PID: 2, Process: "vessel_1", Kind: "Start"})
	require.NoError(t, w.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM resumptions WHERE run_id = ?", "run-1").Scan(&count))
	assert.Equal(t, 2, count)

	var process string
	require.NoError(t, db.QueryRow("SELECT process FROM resumptions WHERE seq = 2").Scan(&process))
	assert.Equal(t, "vessel_1", process)
}
