// Package memvfs implements an in-memory storage backend satisfying the
// vfs.Backend capability contract. Every file is a growable byte buffer;
// the engine's locking protocol is reproduced by a vfs.LockTable shared by
// all handles on the same file identity.
//
// Content persists inside the Backend across open/close cycles, so a
// database created through one connection can be reopened by another.
// Files opened with vfs.OpenDeleteOnClose (journals, transient files) are
// removed when their handle closes.
package memvfs

import (
	"sync"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/JuniperVFS/core/vfs"
	"github.com/FocuswithJustin/JuniperVFS/internal/logging"
)

// Backend is an in-memory vfs.Backend. The zero value is not usable; call
// New.
type Backend struct {
	mu    sync.Mutex
	files map[string]*device
	locks *vfs.LockTable
}

// New creates an empty in-memory backend.
func New() *Backend {
	return &Backend{
		files: make(map[string]*device),
		locks: vfs.NewLockTable(),
	}
}

// Open opens or creates the named file. An empty name allocates a transient
// file with a unique identity that is deleted on close.
func (b *Backend) Open(name string, flags vfs.OpenFlag) (vfs.File, error) {
	deleteOnClose := flags.Has(vfs.OpenDeleteOnClose)
	if name == "" {
		name = "temp-" + uuid.New().String()
		deleteOnClose = true
		flags |= vfs.OpenCreate
	}

	id := b.FullPath(name)

	b.mu.Lock()
	defer b.mu.Unlock()

	dev, exists := b.files[id]
	switch {
	case exists && flags.Has(vfs.OpenCreate|vfs.OpenExclusive):
		return nil, &vfs.IOError{Op: "open", Name: name, Err: vfs.ErrAlreadyExists}
	case !exists && !flags.Has(vfs.OpenCreate):
		return nil, &vfs.NotFoundError{Resource: "file", Name: name}
	case !exists:
		dev = &device{}
		b.files[id] = dev
	}

	logging.IOEvent("open", id, "flags", int(flags))

	return &fileHandle{
		backend:       b,
		name:          id,
		flags:         flags,
		dev:           dev,
		lock:          b.locks.Handle(id),
		deleteOnClose: deleteOnClose,
	}, nil
}

// Delete removes the named file. Missing files report ErrNotFound.
func (b *Backend) Delete(name string) error {
	id := b.FullPath(name)

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.files[id]; !ok {
		return &vfs.NotFoundError{Resource: "file", Name: name}
	}
	delete(b.files, id)
	logging.IOEvent("delete", id)
	return nil
}

// Exists reports whether the named file exists.
func (b *Backend) Exists(name string) (bool, error) {
	id := b.FullPath(name)

	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.files[id]
	return ok, nil
}

// FullPath returns the canonical identity for name. The in-memory namespace
// is flat, so the name itself is the identity.
func (b *Backend) FullPath(name string) string {
	return name
}

// fileHandle is one open handle: it owns a lock state machine joined to the
// file identity and a reference to the backing device.
type fileHandle struct {
	backend       *Backend
	name          string
	flags         vfs.OpenFlag
	dev           *device
	lock          *vfs.FileLock
	deleteOnClose bool
	closed        bool
}

func (f *fileHandle) ReadAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, vfs.ErrClosed
	}
	n, err := f.dev.readAt(p, off)
	if ioErr, ok := err.(*vfs.IOError); ok {
		ioErr.Name = f.name
	}
	return n, err
}

func (f *fileHandle) WriteAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, vfs.ErrClosed
	}
	if !f.flags.Has(vfs.OpenReadWrite) {
		return 0, &vfs.IOError{Op: "write", Name: f.name}
	}
	n, err := f.dev.writeAt(p, off)
	if ioErr, ok := err.(*vfs.IOError); ok {
		ioErr.Name = f.name
	}
	return n, err
}

// Truncate sets the file size. Lock-state preconditions are the caller's
// contract; the engine only truncates under a write lock.
func (f *fileHandle) Truncate(size int64) error {
	if f.closed {
		return vfs.ErrClosed
	}
	logging.IOEvent("truncate", f.name, "size", size)
	err := f.dev.truncate(size)
	if ioErr, ok := err.(*vfs.IOError); ok {
		ioErr.Name = f.name
	}
	return err
}

// Sync is a no-op: writes to the device are immediately visible to every
// subsequent read in this process.
func (f *fileHandle) Sync() error {
	if f.closed {
		return vfs.ErrClosed
	}
	return nil
}

func (f *fileHandle) Size() (int64, error) {
	if f.closed {
		return 0, vfs.ErrClosed
	}
	return f.dev.size(), nil
}

func (f *fileHandle) Lock(level vfs.LockLevel) error {
	if f.closed {
		return vfs.ErrClosed
	}
	return f.lock.Acquire(level)
}

func (f *fileHandle) Unlock(level vfs.LockLevel) error {
	if f.closed {
		return vfs.ErrClosed
	}
	return f.lock.Release(level)
}

func (f *fileHandle) CheckReservedLock() (bool, error) {
	if f.closed {
		return false, vfs.ErrClosed
	}
	return f.lock.CheckReserved(), nil
}

// Close drives the lock state to NONE, detaches from the lock table, and
// drops the device reference. Closing twice reports ErrClosed.
func (f *fileHandle) Close() error {
	if f.closed {
		return vfs.ErrClosed
	}
	f.closed = true

	if err := f.lock.Release(vfs.LockNone); err != nil {
		return err
	}
	f.lock.Close()
	f.dev = nil

	logging.IOEvent("close", f.name)

	if f.deleteOnClose {
		// Transient files and journals vanish with their handle.
		if err := f.backend.Delete(f.name); err != nil {
			return err
		}
	}
	return nil
}
