package tracing

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// CSVTraceWriter stores the records into a CSV file.
type CSVTraceWriter struct {
	path string
	file *os.File
	w    *csv.Writer

	lock       sync.Mutex
	records    []Record
	bufferSize int
	closed     bool
}

// NewCSVTraceWriter creates a new CSVTraceWriter. The ".csv" extension is
// added if the path does not have it. An empty path generates a unique file
// name.
func NewCSVTraceWriter(path string) *CSVTraceWriter {
	return &CSVTraceWriter{
		path:       path,
		bufferSize: 1000,
	}
}

// Path returns the name of the file written.
func (t *CSVTraceWriter) Path() string {
	return t.path
}

// Init creates the csv file. It refuses to overwrite an existing file.
func (t *CSVTraceWriter) Init() error {
	if t.path == "" {
		t.path = "arqsim_trace_" + xid.New().String()
	}

	if !strings.HasSuffix(t.path, ".csv") {
		t.path += ".csv"
	}

	_, err := os.Stat(t.path)
	if err == nil {
		return fmt.Errorf("file %s already exists", t.path)
	}

	file, err := os.Create(t.path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", t.path)
	}

	t.file = file
	t.w = csv.NewWriter(file)

	err = t.w.Write([]string{"time", "entity", "action", "seq_num", "window"})
	if err != nil {
		return err
	}

	atexit.Register(func() { _ = t.Close() })

	return nil
}

// Write buffers a record.
func (t *CSVTraceWriter) Write(rec Record) {
	t.lock.Lock()
	t.records = append(t.records, rec)
	full := len(t.records) >= t.bufferSize
	t.lock.Unlock()

	if full {
		t.Flush()
	}
}

// Flush writes the buffered records into the file.
func (t *CSVTraceWriter) Flush() {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.closed {
		return
	}

	for _, rec := range t.records {
		err := t.w.Write([]string{
			strconv.FormatFloat(float64(rec.Time), 'f', -1, 64),
			string(rec.Entity),
			rec.Action,
			strconv.Itoa(rec.SeqNum),
			rec.Window,
		})
		if err != nil {
			panic(err)
		}
	}

	t.records = nil

	t.w.Flush()
	if err := t.w.Error(); err != nil {
		panic(err)
	}
}

// Close flushes the records and closes the file. Closing twice is a no-op.
func (t *CSVTraceWriter) Close() error {
	t.Flush()

	t.lock.Lock()
	defer t.lock.Unlock()

	if t.closed {
		return nil
	}

	t.closed = true

	return t.file.Close()
}
