package transfer

import (
	"path/filepath"
	"strings"
)

// FallbackName is used when the declared filename is absent or sanitizes
// to nothing.
const FallbackName = "arquivo.bin"

// SanitizeFilename maps a declared filename to a safe on-disk name: the
// final path segment only, with surrounding whitespace trimmed and all
// space and NUL characters removed. Spaces are deleted, not replaced —
// senders rely on this exact behavior.
//
// This is deliberately minimal: no extension filtering and no character-set
// validation. It only prevents the declared name from escaping the
// download directory.
func SanitizeFilename(raw string) string {
	name := filepath.Base(strings.TrimSpace(raw))
	name = strings.ReplaceAll(name, " ", "")
	name = strings.ReplaceAll(name, "\x00", "")
	switch name {
	case "", ".", "..", string(filepath.Separator):
		return FallbackName
	}
	return name
}
