package tracing

// A TraceWriter stores records somewhere outside of the memory.
type TraceWriter interface {
	// Init prepares the destination. It fails if the destination cannot be
	// created.
	Init() error

	// Write buffers a record.
	Write(rec Record)

	// Flush writes all the buffered records.
	Flush()
}
