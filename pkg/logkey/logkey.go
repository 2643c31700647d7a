package logkey

const (
	TraceID = "Trace ID"
	ERROR   = "ERROR"
)
