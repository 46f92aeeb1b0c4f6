package cache

import (
	"bytes"
	"io"
	"time"

	"github.com/klauspost/compress/flate"
)

// CompressingStore wraps a Store, DEFLATE-compressing values on write
// and inflating them on read, per spec.md §4.2's "compress the payload
// (DEFLATE)" requirement.
type CompressingStore struct {
	Inner Store
}

// WithCompression wraps inner with DEFLATE compression.
func WithCompression(inner Store) *CompressingStore {
	return &CompressingStore{Inner: inner}
}

func (c *CompressingStore) Get(key string) ([]byte, bool) {
	raw, ok := c.Inner.Get(key)
	if !ok {
		return nil, false
	}
	r := flate.NewReader(bytes.NewReader(raw))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, false
	}
	return out, true
}

func (c *CompressingStore) Set(key string, value []byte, expiresAt time.Time) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return
	}
	if _, err := w.Write(value); err != nil {
		return
	}
	if err := w.Close(); err != nil {
		return
	}
	c.Inner.Set(key, buf.Bytes(), expiresAt)
}
