package trails

import (
	"io"
	"log"
	"sync/atomic"
)

// LogWriters routes each log stream to a writer. A nil writer silences the
// stream.
type LogWriters struct {
	Ops   io.Writer // lifecycle events, host-environment failures
	Diag  io.Writer // dwell detections, ignored operations
	Trace io.Writer // per-tick sampling telemetry
}

type stream int

const (
	opsStream stream = iota
	diagStream
	traceStream
	numStreams
)

var streamNames = [numStreams]string{"ops", "diag", "trace"}

var streams [numStreams]atomic.Pointer[log.Logger]

// SetLogWriters replaces all three streams. Each line carries its stream
// name after the timestamp, e.g. "[trails/diag] ".
func SetLogWriters(w LogWriters) {
	for s, out := range [numStreams]io.Writer{w.Ops, w.Diag, w.Trace} {
		var l *log.Logger
		if out != nil {
			l = log.New(out, "[trails/"+streamNames[s]+"] ", log.LstdFlags|log.Lmicroseconds|log.Lmsgprefix)
		}
		streams[s].Store(l)
	}
}

func (s stream) logf(format string, args ...any) {
	if l := streams[s].Load(); l != nil {
		l.Printf(format, args...)
	}
}

// TraceEnabled reports whether the trace stream has a writer.
func TraceEnabled() bool {
	return streams[traceStream].Load() != nil
}

// Opsf logs to the ops stream.
func Opsf(format string, args ...any) { opsStream.logf(format, args...) }

// Diagf logs to the diag stream.
func Diagf(format string, args ...any) { diagStream.logf(format, args...) }

// Tracef logs to the trace stream.
func Tracef(format string, args ...any) { traceStream.logf(format, args...) }
