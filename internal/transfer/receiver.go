package transfer

import (
	"bytes"
	"log/slog"
	"sync"
	"time"
)

// progressInterval is the chunk cadence for progress diagnostics.
const progressInterval = 100

// session is the state of the single in-flight transfer. buf and name are
// non-nil/non-empty exactly while active is true.
type session struct {
	active    bool
	name      string
	declared  int64
	buf       *bytes.Buffer
	chunks    int
	startedAt time.Time
}

// Receiver owns the transfer state machine. All inbound writes, operator
// toggles, and diagnostic queries funnel through a single-consumer queue,
// so the session is only ever touched by the processing goroutine — the
// BLE transport may deliver callbacks from any thread.
//
// At most one transfer is in flight. A file_begin while a session is
// active silently starts a fresh session, discarding the old buffer. An
// abandoned session persists until the next file_begin or file_end; there
// is deliberately no timeout.
type Receiver struct {
	store Store
	sink  Sink

	cmds    chan command
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once

	// Owned by the run goroutine.
	enabled       bool
	session       session
	lastSavedPath string
}

type commandKind int

const (
	cmdWrite commandKind = iota
	cmdSetEnabled
	cmdQuery
)

type command struct {
	kind  commandKind
	data  []byte
	gate  bool
	reply chan snapshot
}

type snapshot struct {
	enabled       bool
	lastSavedPath string
}

// NewReceiver creates a Receiver writing completed files through store and
// reporting diagnostics to sink. enabled sets the initial operator gate.
// Call Start before delivering writes.
func NewReceiver(store Store, sink Sink, enabled bool) *Receiver {
	return &Receiver{
		store:   store,
		sink:    sink,
		cmds:    make(chan command, 256),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		enabled: enabled,
	}
}

// Start launches the processing goroutine.
func (r *Receiver) Start() {
	go r.run()
}

// Stop shuts the processing goroutine down and waits for it to exit.
// Pending queued writes are dropped. Safe to call multiple times.
func (r *Receiver) Stop() {
	r.once.Do(func() { close(r.done) })
	<-r.stopped
}

// HandleWrite delivers one inbound GATT write to the state machine. The
// buffer is copied; the transport may reuse it after this returns.
func (r *Receiver) HandleWrite(data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)
	r.send(command{kind: cmdWrite, data: buf})
}

// SetEnabled sets the operator gate. While false, all control and data
// messages are ignored.
func (r *Receiver) SetEnabled(enabled bool) {
	r.send(command{kind: cmdSetEnabled, gate: enabled})
}

// Enabled reports the current operator gate.
func (r *Receiver) Enabled() bool {
	return r.query().enabled
}

// LastSavedPath returns the output path of the most recently completed
// transfer, or "" if none. It persists across sessions.
func (r *Receiver) LastSavedPath() string {
	return r.query().lastSavedPath
}

func (r *Receiver) send(cmd command) {
	select {
	case r.cmds <- cmd:
	case <-r.done:
	}
}

func (r *Receiver) query() snapshot {
	reply := make(chan snapshot, 1)
	r.send(command{kind: cmdQuery, reply: reply})
	select {
	case snap := <-reply:
		return snap
	case <-r.done:
		return snapshot{}
	}
}

func (r *Receiver) run() {
	defer close(r.stopped)
	for {
		select {
		case <-r.done:
			return
		case cmd := <-r.cmds:
			switch cmd.kind {
			case cmdWrite:
				r.handleWrite(cmd.data)
			case cmdSetEnabled:
				r.enabled = cmd.gate
			case cmdQuery:
				cmd.reply <- snapshot{enabled: r.enabled, lastSavedPath: r.lastSavedPath}
			}
		}
	}
}

func (r *Receiver) handleWrite(data []byte) {
	switch msg := Classify(data).(type) {
	case Control:
		switch msg.Op {
		case OpFileBegin:
			r.handleBegin(msg)
		case OpFileEnd:
			r.handleEnd()
		}
	case Chunk:
		r.handleChunk(msg.Data)
	}
}

// handleBegin starts a fresh session, unconditionally discarding any
// unfinished one. No resume, no merge.
func (r *Receiver) handleBegin(ctl Control) {
	if !r.enabled {
		return
	}
	name := ctl.Name
	if name == "" {
		name = FallbackName
	}
	r.session = session{
		active:    true,
		name:      SanitizeFilename(name),
		declared:  ctl.Size,
		buf:       &bytes.Buffer{},
		startedAt: time.Now(),
	}
	r.sink.Emit(Event{Kind: EventBegin, Name: r.session.name, Size: ctl.Size})
}

// handleEnd finalizes the session: the accumulated buffer is written out
// as one file, or the transfer is aborted if nothing arrived. The declared
// size is never enforced. The session is reset to idle on every path,
// including storage failure.
func (r *Receiver) handleEnd() {
	if !r.enabled || !r.session.active || r.session.buf == nil {
		r.sink.Emit(Event{Kind: EventEndWithoutBegin})
		return
	}

	name := r.session.name
	if r.session.buf.Len() == 0 {
		r.session = session{}
		r.sink.Emit(Event{Kind: EventAbortedEmpty, Name: name})
		return
	}

	elapsed := time.Since(r.session.startedAt)
	chunks := r.session.chunks
	data := r.session.buf.Bytes()
	r.session = session{}

	path, err := r.store.Write(name, data)
	if err != nil {
		r.sink.Emit(Event{Kind: EventSaveFailed, Name: name, Err: err})
		return
	}

	r.lastSavedPath = path
	r.sink.Emit(Event{
		Kind:    EventSaved,
		Name:    name,
		Path:    path,
		Bytes:   len(data),
		Chunks:  chunks,
		Elapsed: elapsed,
	})
}

// handleChunk appends payload in arrival order. Data outside a transfer
// window is expected (stray writes) and dropped without escalation.
func (r *Receiver) handleChunk(data []byte) {
	if !r.session.active || r.session.buf == nil {
		slog.Debug("[FILE] data outside transfer window, dropping", "len", len(data))
		return
	}
	if len(data) == 0 {
		return
	}
	r.session.buf.Write(data)
	r.session.chunks++
	if r.session.chunks%progressInterval == 0 {
		r.sink.Emit(Event{Kind: EventProgress, Chunks: r.session.chunks, Bytes: r.session.buf.Len()})
	}
}
