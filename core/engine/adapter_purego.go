//go:build !cgo_sqlite

package engine

import (
	"database/sql"

	"github.com/FocuswithJustin/JuniperVFS/core/vfs"
)

// RegisterBackend registers backend in the vfs.Default registry. The pure
// Go driver exposes no VFS extension point, so the backend is visible to
// Lookup and to direct callers but databases cannot be opened through it;
// OpenBackend reports ErrCGORequired.
func RegisterBackend(name string, backend vfs.Backend) error {
	return vfs.Register(name, backend)
}

func openBackend(path, backendName string) (*sql.DB, error) {
	return nil, ErrCGORequired
}
