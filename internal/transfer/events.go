package transfer

import (
	"log/slog"
	"time"
)

// EventKind identifies a diagnostic event emitted by the Receiver.
type EventKind int

const (
	// EventBegin marks an accepted file_begin.
	EventBegin EventKind = iota
	// EventProgress fires on every 100th accepted chunk.
	EventProgress
	// EventSaved marks a completed transfer written to disk.
	EventSaved
	// EventEndWithoutBegin marks a file_end dropped for lack of an
	// active session.
	EventEndWithoutBegin
	// EventAbortedEmpty marks a file_end that arrived with zero bytes
	// accumulated; nothing is written.
	EventAbortedEmpty
	// EventSaveFailed marks a storage write failure. The session is
	// reset; the transfer is lost.
	EventSaveFailed
)

// Event is a diagnostic record. Only the fields relevant to Kind are set.
type Event struct {
	Kind    EventKind
	Name    string        // sanitized filename
	Size    int64         // declared size (EventBegin)
	Path    string        // output path (EventSaved)
	Bytes   int           // accumulated payload bytes
	Chunks  int           // accepted chunk count
	Elapsed time.Duration // time between file_begin and finalize
	Err     error         // storage failure (EventSaveFailed)
}

// Sink consumes diagnostic events. Emit is always called from the
// Receiver's processing goroutine, one event at a time.
type Sink interface {
	Emit(Event)
}

// SlogSink logs events through slog, mirroring the wire protocol's
// operator-facing output.
type SlogSink struct {
	log *slog.Logger
}

// NewSlogSink returns a Sink that logs to the given logger.
func NewSlogSink(log *slog.Logger) *SlogSink {
	return &SlogSink{log: log}
}

func (s *SlogSink) Emit(ev Event) {
	switch ev.Kind {
	case EventBegin:
		s.log.Info("[FILE] begin", "name", ev.Name, "declared_size", ev.Size)
	case EventProgress:
		s.log.Info("[FILE] progress", "chunks", ev.Chunks, "bytes", ev.Bytes)
	case EventSaved:
		s.log.Info("[FILE] saved", "path", ev.Path, "bytes", ev.Bytes,
			"chunks", ev.Chunks, "elapsed_ms", ev.Elapsed.Milliseconds())
	case EventEndWithoutBegin:
		s.log.Warn("[FILE] file_end ignored, no active transfer")
	case EventAbortedEmpty:
		s.log.Warn("[FILE] nothing received between begin and end, aborting", "name", ev.Name)
	case EventSaveFailed:
		s.log.Error("[FILE] save failed", "name", ev.Name, "error", ev.Err)
	}
}
