package message

import (
	_ "crypto/sha256"
	"log/slog"

	"github.com/opencontainers/go-digest"
)

// Raw frame bytes logged as their content digest.
//
// The digest is computed only when a handler resolves the value, so frames
// passed to a disabled log level are never hashed. The bytes must not change
// before the logging call returns.
type Digest []byte

// Implements [slog.LogValuer].
func (d Digest) LogValue() slog.Value {
	return slog.StringValue(digest.FromBytes(d).String())
}
