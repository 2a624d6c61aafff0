package tracing

import "sync"

// A Sink receives the records in the order they are produced.
type Sink interface {
	Append(rec Record)
}

// A Trace keeps all the records of a run in memory and forwards them to the
// attached writers.
type Trace struct {
	lock    sync.RWMutex
	records []Record
	writers []TraceWriter
}

// NewTrace creates an empty trace.
func NewTrace() *Trace {
	return &Trace{}
}

// AddWriter attaches a writer. The writer must already be initialized.
func (t *Trace) AddWriter(w TraceWriter) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.writers = append(t.writers, w)
}

// Append adds a record to the end of the trace.
func (t *Trace) Append(rec Record) {
	t.lock.Lock()
	t.records = append(t.records, rec)
	writers := t.writers
	t.lock.Unlock()

	for _, w := range writers {
		w.Write(rec)
	}
}

// Records returns a copy of all the records.
func (t *Trace) Records() []Record {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return append([]Record(nil), t.records...)
}

// Len returns the number of records.
func (t *Trace) Len() int {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return len(t.records)
}

// Slice returns at most limit records starting from offset. A non-positive
// limit returns everything after offset.
func (t *Trace) Slice(offset, limit int) []Record {
	t.lock.RLock()
	defer t.lock.RUnlock()

	if offset < 0 {
		offset = 0
	}

	if offset >= len(t.records) {
		return []Record{}
	}

	end := len(t.records)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return append([]Record(nil), t.records[offset:end]...)
}

// Flush flushes all the writers.
func (t *Trace) Flush() {
	t.lock.RLock()
	writers := t.writers
	t.lock.RUnlock()

	for _, w := range writers {
		w.Flush()
	}
}
