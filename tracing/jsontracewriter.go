package tracing

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// JSONTraceWriter stores the records as JSON lines, one record per line.
type JSONTraceWriter struct {
	path string
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder

	lock   sync.Mutex
	closed bool
}

// NewJSONTraceWriter creates a JSONTraceWriter. The ".jsonl" extension is added
// unless the path already ends with ".json" or ".jsonl".
func NewJSONTraceWriter(path string) *JSONTraceWriter {
	return &JSONTraceWriter{path: path}
}

// Path returns the name of the file written.
func (t *JSONTraceWriter) Path() string {
	return t.path
}

// Init creates the file. It refuses to overwrite an existing file.
func (t *JSONTraceWriter) Init() error {
	if t.path == "" {
		t.path = "arqsim_trace_" + xid.New().String()
	}

	if !strings.HasSuffix(t.path, ".json") && !strings.HasSuffix(t.path, ".jsonl") {
		t.path += ".jsonl"
	}

	if _, err := os.Stat(t.path); err == nil {
		return fmt.Errorf("file %s already exists", t.path)
	}

	file, err := os.Create(t.path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", t.path)
	}

	t.file = file
	t.buf = bufio.NewWriter(file)
	t.enc = json.NewEncoder(t.buf)

	atexit.Register(func() { _ = t.Close() })

	return nil
}

// Write encodes a record into the buffer.
func (t *JSONTraceWriter) Write(rec Record) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.closed {
		return
	}

	if err := t.enc.Encode(rec); err != nil {
		panic(err)
	}
}

// Flush writes the buffer into the file.
func (t *JSONTraceWriter) Flush() {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.closed {
		return
	}

	if err := t.buf.Flush(); err != nil {
		panic(err)
	}
}

// Close flushes and closes the file.
func (t *JSONTraceWriter) Close() error {
	t.Flush()

	t.lock.Lock()
	defer t.lock.Unlock()

	if t.closed {
		return nil
	}

	t.closed = true

	return t.file.Close()
}
