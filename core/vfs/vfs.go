// Package vfs defines the capability contract a storage backend must satisfy
// to carry SQLite database files, and the process-wide registry that maps
// backend names to implementations.
//
// A backend supplies byte-addressable storage plus the engine's cooperative
// locking protocol. The engine serializes all calls per connection, so
// implementations may assume single-threaded access per File unless they
// document otherwise; cross-handle lock coordination is handled by LockTable.
package vfs

// OpenFlag is a bitset communicating open intent to a backend.
// The values match SQLite's SQLITE_OPEN_* constants so the host engine
// adapter can translate with a mask.
type OpenFlag int

const (
	// OpenReadOnly opens an existing file for reading only.
	OpenReadOnly OpenFlag = 0x00000001

	// OpenReadWrite opens a file for reading and writing.
	OpenReadWrite OpenFlag = 0x00000002

	// OpenCreate creates the file if it does not exist.
	OpenCreate OpenFlag = 0x00000004

	// OpenDeleteOnClose removes the file when its last handle closes.
	// The engine uses this for journals and transient files.
	OpenDeleteOnClose OpenFlag = 0x00000008

	// OpenExclusive, combined with OpenCreate, requires that the file
	// does not already exist.
	OpenExclusive OpenFlag = 0x00000010
)

// Has reports whether all bits of mask are set.
func (f OpenFlag) Has(mask OpenFlag) bool {
	return f&mask == mask
}

// Backend is the capability interface a storage backend implements.
// One Backend instance serves all files opened through its registered name.
type Backend interface {
	// Open opens or creates the named file per flags. An empty name
	// requests a transient file; the backend chooses the identity and
	// must delete it on close.
	Open(name string, flags OpenFlag) (File, error)

	// Delete removes the named file. Deleting a missing file is an error
	// reported with ErrNotFound.
	Delete(name string) error

	// Exists reports whether the named file exists.
	Exists(name string) (bool, error)

	// FullPath returns the canonical identity for name. Handles opened
	// under names with equal FullPath share one lock coordination point.
	FullPath(name string) string
}

// File is one open handle on a backend file. It owns a Device (the byte
// store) and a lock state machine joined to the file's identity.
type File interface {
	// ReadAt reads len(p) bytes at offset off. When the range extends past
	// end-of-file it zero-fills the remainder of p, returns the count of
	// bytes actually available, and reports ErrShortRead so the caller can
	// distinguish EOF from an I/O failure.
	ReadAt(p []byte, off int64) (n int, err error)

	// WriteAt writes len(p) bytes at offset off, extending the file and
	// zero-filling any gap between the old size and off.
	WriteAt(p []byte, off int64) (n int, err error)

	// Truncate sets the file size. Growing exposes zero bytes; shrinking
	// discards the tail. Negative sizes are a contract violation.
	Truncate(size int64) error

	// Sync is the durability hook. In-memory backends succeed trivially.
	Sync() error

	// Size returns the current file size. It never blocks.
	Size() (int64, error)

	// Lock upgrades the handle to the given level. Requests at or below
	// the current level succeed as release operations. Contended upgrades
	// return ErrBusy immediately; retry policy belongs to the engine's
	// busy handler.
	Lock(level LockLevel) error

	// Unlock downgrades the handle to level, which must be LockNone or
	// LockShared. Unlocking at or below the current level is a no-op.
	Unlock(level LockLevel) error

	// CheckReservedLock reports whether any handle on the same identity
	// holds LockReserved or stronger. It never blocks and never mutates
	// lock state.
	CheckReservedLock() (bool, error)

	// Close releases the handle. The lock state is driven to LockNone
	// before the device reference is dropped.
	Close() error
}
