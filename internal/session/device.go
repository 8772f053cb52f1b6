package session

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	apperr "github.com/oskarkuder/lesson-notes-ai/internal/errors"
)

// CaptureDevice is the capture-device boundary: acquired at the start of a
// recording, fed chunks while it runs, and drained into one blob on stop.
// Release must be idempotent; it is called on every exit path.
type CaptureDevice interface {
	Acquire(ctx context.Context) error
	Write(chunk []byte) error
	// Bytes returns the aggregated audio and its MIME type.
	Bytes() ([]byte, string)
	Release()
}

// bufferDevice aggregates chunks uploaded over HTTP during a recording.
type bufferDevice struct {
	mu   sync.Mutex
	open bool
	mime string
	buf  bytes.Buffer
}

// NewBufferDevice returns a device that buffers uploaded chunks of the given
// MIME type.
func NewBufferDevice(mimeType string) CaptureDevice {
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	return &bufferDevice{mime: mimeType}
}

func (d *bufferDevice) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrDeviceAccess, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		return fmt.Errorf("%w: already in use", apperr.ErrDeviceAccess)
	}
	d.open = true
	d.buf.Reset()
	return nil
}

func (d *bufferDevice) Write(chunk []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return fmt.Errorf("%w: not acquired", apperr.ErrDeviceAccess)
	}
	_, err := d.buf.Write(chunk)
	return err
}

func (d *bufferDevice) Bytes() ([]byte, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data := make([]byte, d.buf.Len())
	copy(data, d.buf.Bytes())
	return data, d.mime
}

func (d *bufferDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
}
