package memvfs

import (
	"sync"

	"github.com/FocuswithJustin/JuniperVFS/core/vfs"
)

// device is the growable byte store backing one file identity. Content is
// keyed by identity inside the Backend and survives close/reopen, so a
// database written through one handle is visible to later opens.
//
// Writes past the current size extend the buffer, zero-filling the gap.
// The lock table gates concurrent access on the data path, but snapshots
// may read concurrently, so the buffer carries its own mutex.
type device struct {
	mu   sync.RWMutex
	data []byte
}

func (d *device) size() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return int64(len(d.data))
}

// readAt copies bytes at off into p. When the range runs past end-of-file
// the remainder of p is zero-filled and the count of available bytes is
// returned with vfs.ErrShortRead.
func (d *device) readAt(p []byte, off int64) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if off < 0 {
		return 0, &vfs.IOError{Op: "read", Err: vfs.ErrIO}
	}
	if off >= int64(len(d.data)) {
		clear(p)
		return 0, vfs.ErrShortRead
	}

	n := copy(p, d.data[off:])
	if n < len(p) {
		clear(p[n:])
		return n, vfs.ErrShortRead
	}
	return n, nil
}

// writeAt copies p into the buffer at off, growing it as needed.
func (d *device) writeAt(p []byte, off int64) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if off < 0 {
		return 0, &vfs.IOError{Op: "write", Err: vfs.ErrIO}
	}

	if end := off + int64(len(p)); end > int64(len(d.data)) {
		grown := make([]byte, end)
		copy(grown, d.data)
		d.data = grown
	}

	return copy(d.data[off:], p), nil
}

// truncate sets the buffer size. Growing exposes zero bytes.
func (d *device) truncate(size int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case size < 0:
		return &vfs.IOError{Op: "truncate", Err: vfs.ErrIO}
	case size < int64(len(d.data)):
		d.data = d.data[:size]
	case size > int64(len(d.data)):
		grown := make([]byte, size)
		copy(grown, d.data)
		d.data = grown
	}
	return nil
}

// bytes returns a copy of the current content.
func (d *device) bytes() []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]byte, len(d.data))
	copy(out, d.data)
	return out
}

// setBytes replaces the content wholesale. Used by RestoreFrom.
func (d *device) setBytes(p []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.data = p
}
