package tracing

import (
	"context"
	"sync"

	"github.com/sarchlab/arqsim/datarecording"
	"github.com/sarchlab/arqsim/sim"
)

// TraceTableName is the table that holds the records in a database.
const TraceTableName = "trace"

type traceEntry struct {
	Time   float64
	Entity string
	Action string
	SeqNum int
	Window string
}

func entryFromRecord(rec Record) traceEntry {
	return traceEntry{
		Time:   float64(rec.Time),
		Entity: string(rec.Entity),
		Action: rec.Action,
		SeqNum: rec.SeqNum,
		Window: rec.Window,
	}
}

func (e traceEntry) record() Record {
	return Record{
		Time:   sim.VTimeInSec(e.Time),
		Entity: Entity(e.Entity),
		Action: e.Action,
		SeqNum: e.SeqNum,
		Window: e.Window,
	}
}

// DBTraceWriter stores the records into a data recorder.
type DBTraceWriter struct {
	lock     sync.Mutex
	recorder datarecording.DataRecorder
	inited   bool
}

// NewDBTraceWriter creates a writer that stores the records in the given
// recorder.
func NewDBTraceWriter(recorder datarecording.DataRecorder) *DBTraceWriter {
	return &DBTraceWriter{recorder: recorder}
}

// Init creates the trace table.
func (t *DBTraceWriter) Init() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.inited {
		return nil
	}

	t.recorder.CreateTable(TraceTableName, traceEntry{})
	t.inited = true

	return nil
}

// Write buffers a record in the recorder.
func (t *DBTraceWriter) Write(rec Record) {
	t.recorder.InsertData(TraceTableName, entryFromRecord(rec))
}

// Flush flushes the recorder.
func (t *DBTraceWriter) Flush() {
	t.recorder.Flush()
}

// DBTraceReader reads the records stored by a DBTraceWriter.
type DBTraceReader struct {
	reader datarecording.DataReader
}

// NewDBTraceReader creates a DBTraceReader on top of a data reader.
func NewDBTraceReader(reader datarecording.DataReader) *DBTraceReader {
	reader.MapTable(TraceTableName, traceEntry{})

	return &DBTraceReader{reader: reader}
}

// ListRecords returns at most limit records starting at offset, in the order
// they were written, together with the total number of records. A
// non-positive limit returns all the records after offset.
func (r *DBTraceReader) ListRecords(
	ctx context.Context,
	offset, limit int,
) ([]Record, int, error) {
	params := datarecording.QueryParams{
		OrderBy: "rowid",
		Offset:  offset,
		Limit:   limit,
	}

	results, total, err := r.reader.Query(ctx, TraceTableName, params)
	if err != nil {
		return nil, 0, err
	}

	records := make([]Record, 0, len(results))
	for _, res := range results {
		records = append(records, res.(*traceEntry).record())
	}

	return records, total, nil
}
