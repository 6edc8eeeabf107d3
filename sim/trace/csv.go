package trace

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// CSVWriter buffers resumption records and writes them to a CSV file.
type CSVWriter struct {
	path string
	file *os.File
	w    *csv.Writer

	records    []ResumeRecord
	bufferSize int
	closed     bool
}

// NewCSVWriter creates a CSVWriter. An empty path picks a unique file name
// in the working directory.
func NewCSVWriter(path string) *CSVWriter {
	if path == "" {
		path = "portsim_trace_" + xid.New().String() + ".csv"
	}
	return &CSVWriter{
		path:       path,
		bufferSize: 1000,
	}
}

// Path returns the output file path.
func (t *CSVWriter) Path() string {
	return t.path
}

// Init creates the csv file and writes the header. An existing file is
// overwritten. Buffered records are flushed when the program exits through
// atexit.
func (t *CSVWriter) Init() error {
	file, err := os.Create(t.path)
	if err != nil {
		return fmt.Errorf("create trace file: %w", err)
	}
	t.file = file
	t.w = csv.NewWriter(file)
	if err := t.w.Write([]string{"seq", "time", "pid", "process", "kind"}); err != nil {
		return err
	}

	atexit.Register(func() {
		_ = t.Close()
	})
	return nil
}

// Write buffers a record, flushing once the buffer is full.
func (t *CSVWriter) Write(record ResumeRecord) {
	t.records = append(t.records, record)
	if len(t.records) >= t.bufferSize {
		if err := t.Flush(); err != nil {
			panic(err)
		}
	}
}

// Flush writes the buffered records to the file.
func (t *CSVWriter) Flush() error {
	if t.w == nil {
		return nil
	}
	for _, r := range t.records {
		err := t.w.Write([]string{
			strconv.FormatUint(r.Seq, 10),
			strconv.FormatFloat(r.Time, 'f', 6, 64),
			strconv.FormatUint(r.PID, 10),
			r.Process,
			r.Kind,
		})
		if err != nil {
			return err
		}
	}
	t.records = nil
	t.w.Flush()
	return t.w.Error()
}

// Close flushes and closes the file. Later calls are no-ops.
func (t *CSVWriter) Close() error {
	if t.closed || t.file == nil {
		return nil
	}
	t.closed = true
	if err := t.Flush(); err != nil {
		_ = t.file.Close()
		return err
	}
	return t.file.Close()
}
