package rehydrate

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Handle is a transient, viewable binary document. The caller owns it and
// must call Release once the document is no longer displayed.
type Handle struct {
	ID        uuid.UUID
	Filename  string
	MediaType string
	Verified  bool

	mu   sync.Mutex
	data []byte
}

func newHandle(filename, mediaType string, verified bool, data []byte) *Handle {
	return &Handle{
		ID:        uuid.New(),
		Filename:  filename,
		MediaType: mediaType,
		Verified:  verified,
		data:      data,
	}
}

// Bytes returns the document content, or nil after Release.
func (h *Handle) Bytes() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.data
}

// Size returns the document length, or 0 after Release.
func (h *Handle) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.data)
}

// Reader returns a reader over the document content.
func (h *Handle) Reader() io.Reader {
	return bytes.NewReader(h.Bytes())
}

// Released reports whether Release has been called.
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.data == nil
}

// WriteFile writes the document into dir under its Filename and returns the path.
func (h *Handle) WriteFile(dir string) (string, error) {
	data := h.Bytes()
	if data == nil {
		return "", fmt.Errorf("handle %s has been released", h.ID)
	}
	return WriteDocument(dir, h.Filename, data)
}

// WriteDocument writes data to dir/filename, creating dir if needed.
func WriteDocument(dir, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Release drops the document content. It is safe to call more than once.
func (h *Handle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.data = nil
}
