// Package engine is the glue between the host SQLite engine and registered
// storage backends. It supports both the pure Go driver (modernc.org/sqlite)
// and the CGO driver (mattn/go-sqlite3).
//
// Build modes:
//   - Default (CGO_ENABLED=0): Uses pure Go modernc.org/sqlite
//   - CGO mode (CGO_ENABLED=1 -tags cgo_sqlite): Uses mattn/go-sqlite3 via contrib/sqlite-external
//
// Custom backends reach the host engine through its VFS extension point,
// which only the CGO driver exposes; see RegisterBackend and OpenBackend.
// Everything else in this module is driver-independent.
//
// Use Open() instead of sql.Open() to ensure the correct driver is used.
package engine

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/FocuswithJustin/JuniperVFS/core/vfs"
)

// ErrCGORequired indicates an operation that needs the CGO driver was
// attempted on a pure Go build.
var ErrCGORequired = errors.New("custom backends require the cgo driver (build with -tags cgo_sqlite)")

// DriverName returns the SQL driver name to use.
func DriverName() string {
	return driverName
}

// DriverType returns a string identifying the underlying implementation.
// Returns "cgo" for mattn/go-sqlite3, "purego" for modernc.org/sqlite.
func DriverType() string {
	return driverType
}

// IsCGO returns true if the CGO implementation is being used.
func IsCGO() bool {
	return driverType == "cgo"
}

// Open opens a SQLite database using the appropriate driver.
// This is the preferred way to open SQLite databases.
func Open(dataSourceName string) (*sql.DB, error) {
	return sql.Open(driverName, dataSourceName)
}

// OpenReadOnly opens a SQLite database in read-only mode.
func OpenReadOnly(path string) (*sql.DB, error) {
	dsn := path + "?mode=ro"
	return Open(dsn)
}

// MustOpen opens a SQLite database and panics on error.
// This is intended for use in tests or initialization code where
// database access failure is unrecoverable.
func MustOpen(dataSourceName string) *sql.DB {
	db, err := Open(dataSourceName)
	if err != nil {
		panic(fmt.Sprintf("engine: failed to open %s: %v", dataSourceName, err))
	}
	return db
}

// OpenBackend opens path through the backend registered under backendName
// in the vfs.Default registry. An unregistered name surfaces as an open
// failure, per the host engine's open-time selection contract.
func OpenBackend(path, backendName string) (*sql.DB, error) {
	if _, err := vfs.Lookup(backendName); err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	return openBackend(path, backendName)
}

// Info contains information about the SQLite driver configuration.
type Info struct {
	DriverName string   `json:"driver_name"`
	DriverType string   `json:"driver_type"`
	IsCGO      bool     `json:"is_cgo"`
	Package    string   `json:"package"`
	Backends   []string `json:"backends"`
}

// GetInfo returns information about the current driver configuration and
// the backends registered in the default registry.
func GetInfo() Info {
	return Info{
		DriverName: driverName,
		DriverType: driverType,
		IsCGO:      IsCGO(),
		Package:    driverPackage,
		Backends:   vfs.Default.Names(),
	}
}
