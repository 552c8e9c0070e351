// Package transfer implements the file-drop protocol: classifying inbound
// GATT writes into control messages or raw payload, and driving the
// single-transfer state machine that produces a file on disk.
package transfer

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// Recognized control operations.
const (
	OpFileBegin = "file_begin"
	OpFileEnd   = "file_end"
)

// Message is either a Control message or a Chunk of file payload.
type Message interface {
	message()
}

// Control is a decoded protocol control message.
type Control struct {
	Op   string // lowercased operation name
	Name string // declared filename (file_begin only, may be empty)
	Size int64  // declared size in bytes (file_begin only, informative)
}

// Chunk wraps a raw binary payload buffer, unmodified.
type Chunk struct {
	Data []byte
}

func (Control) message() {}
func (Chunk) message()   {}

// Classify decides whether an inbound write is a control message or file
// payload. The wire has no framing: a buffer is a control message iff it is
// valid UTF-8, parses as a single JSON object, and carries a recognized "op"
// value (matched case-insensitively). Everything else is payload.
//
// A payload chunk that happens to be JSON text with a matching "op" is
// misclassified. That is inherent to the unframed wire format and accepted
// as a protocol limitation; senders must not embed such text as raw data.
func Classify(buf []byte) Message {
	if !utf8.Valid(buf) {
		return Chunk{Data: buf}
	}

	var obj map[string]any
	if err := json.Unmarshal(buf, &obj); err != nil {
		return Chunk{Data: buf}
	}

	op, _ := obj["op"].(string)
	switch strings.ToLower(op) {
	case OpFileBegin, OpFileEnd:
	default:
		return Chunk{Data: buf}
	}

	ctl := Control{Op: strings.ToLower(op)}
	if name, ok := obj["name"].(string); ok {
		ctl.Name = name
	}
	if size, ok := obj["size"].(float64); ok {
		ctl.Size = int64(size)
	}
	return ctl
}
