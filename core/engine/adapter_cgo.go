//go:build cgo_sqlite

package engine

import (
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/psanford/sqlite3vfs"

	"github.com/FocuswithJustin/JuniperVFS/core/vfs"
)

// RegisterBackend registers backend in the vfs.Default registry and with
// the host engine, so databases opened with OpenBackend (or a ?vfs=name
// DSN) dispatch to it. Duplicate names fail with a DuplicateNameError.
//
// The host engine keeps no unregister hook, so a name stays claimed at the
// engine level for the life of the process even after vfs.Unregister.
func RegisterBackend(name string, backend vfs.Backend) error {
	if err := vfs.Register(name, backend); err != nil {
		return err
	}
	if err := sqlite3vfs.RegisterVFS(name, &hostVFS{backend: backend}); err != nil {
		vfs.Unregister(name)
		return fmt.Errorf("host engine registration for %s: %w", name, err)
	}
	return nil
}

func openBackend(path, backendName string) (*sql.DB, error) {
	return Open(fmt.Sprintf("file:%s?vfs=%s", path, backendName))
}

// hostVFS adapts a vfs.Backend to the host engine's VFS surface. It is the
// only code in this module that handles host engine wire constants.
type hostVFS struct {
	backend vfs.Backend
}

func (h *hostVFS) Open(name string, flags sqlite3vfs.OpenFlag) (sqlite3vfs.File, sqlite3vfs.OpenFlag, error) {
	f, err := h.backend.Open(name, translateOpenFlags(flags))
	if err != nil {
		switch {
		case errors.Is(err, vfs.ErrNotFound), errors.Is(err, vfs.ErrAlreadyExists):
			return nil, flags, sqlite3vfs.CantOpenError
		default:
			return nil, flags, sqlite3vfs.IOError
		}
	}
	return &hostFile{f: f}, flags, nil
}

func (h *hostVFS) Delete(name string, dirSync bool) error {
	err := h.backend.Delete(name)
	if err != nil && !errors.Is(err, vfs.ErrNotFound) {
		return sqlite3vfs.IOError
	}
	return nil
}

func (h *hostVFS) Access(name string, flags sqlite3vfs.AccessFlag) (bool, error) {
	ok, err := h.backend.Exists(name)
	if err != nil {
		return false, sqlite3vfs.IOError
	}
	return ok, nil
}

func (h *hostVFS) FullPathname(name string) string {
	return h.backend.FullPath(name)
}

// translateOpenFlags reduces the host engine's open-flag bitset to the
// enumerated set backends understand, decoupling backend implementers from
// engine wire constants.
func translateOpenFlags(flags sqlite3vfs.OpenFlag) vfs.OpenFlag {
	var out vfs.OpenFlag
	if flags&sqlite3vfs.OpenReadOnly != 0 {
		out |= vfs.OpenReadOnly
	}
	if flags&sqlite3vfs.OpenReadWrite != 0 {
		out |= vfs.OpenReadWrite
	}
	if flags&sqlite3vfs.OpenCreate != 0 {
		out |= vfs.OpenCreate
	}
	if flags&sqlite3vfs.OpenDeleteOnClose != 0 {
		out |= vfs.OpenDeleteOnClose
	}
	if flags&sqlite3vfs.OpenExclusive != 0 {
		out |= vfs.OpenExclusive
	}
	return out
}

// hostFile adapts a vfs.File to the host engine's file surface.
type hostFile struct {
	f vfs.File
}

func (hf *hostFile) Close() error {
	if err := hf.f.Close(); err != nil {
		return sqlite3vfs.IOError
	}
	return nil
}

// ReadAt translates a short read into the host engine's convention: the
// tail of p is already zero-filled by the backend, and io.EOF makes the
// bridge report SQLITE_IOERR_SHORT_READ rather than a hard I/O failure.
func (hf *hostFile) ReadAt(p []byte, off int64) (int, error) {
	n, err := hf.f.ReadAt(p, off)
	if err != nil {
		if errors.Is(err, vfs.ErrShortRead) {
			return n, io.EOF
		}
		return n, sqlite3vfs.IOError
	}
	return n, nil
}

func (hf *hostFile) WriteAt(p []byte, off int64) (int, error) {
	n, err := hf.f.WriteAt(p, off)
	if err != nil {
		return n, sqlite3vfs.IOError
	}
	return n, nil
}

func (hf *hostFile) Truncate(size int64) error {
	if err := hf.f.Truncate(size); err != nil {
		return sqlite3vfs.IOError
	}
	return nil
}

func (hf *hostFile) Sync(flag sqlite3vfs.SyncType) error {
	if err := hf.f.Sync(); err != nil {
		return sqlite3vfs.IOError
	}
	return nil
}

func (hf *hostFile) FileSize() (int64, error) {
	size, err := hf.f.Size()
	if err != nil {
		return 0, sqlite3vfs.IOError
	}
	return size, nil
}

func (hf *hostFile) Lock(elock sqlite3vfs.LockType) error {
	err := hf.f.Lock(vfs.LockLevel(elock))
	if err != nil {
		if errors.Is(err, vfs.ErrBusy) {
			return sqlite3vfs.BusyError
		}
		return sqlite3vfs.IOError
	}
	return nil
}

func (hf *hostFile) Unlock(elock sqlite3vfs.LockType) error {
	if err := hf.f.Unlock(vfs.LockLevel(elock)); err != nil {
		return sqlite3vfs.IOError
	}
	return nil
}

func (hf *hostFile) CheckReservedLock() (bool, error) {
	reserved, err := hf.f.CheckReservedLock()
	if err != nil {
		return false, sqlite3vfs.IOError
	}
	return reserved, nil
}

func (hf *hostFile) SectorSize() int64 {
	return 512
}

func (hf *hostFile) DeviceCharacteristics() sqlite3vfs.DeviceCharacteristic {
	return 0
}
