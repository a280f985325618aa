// Package sqliteexternal provides optional external SQLite drivers.
//
// This package is part of the main github.com/FocuswithJustin/JuniperVFS module
// and provides the CGO-based SQLite driver needed for custom storage backends.
//
// # CGO SQLite Driver
//
// To use the CGO driver (github.com/mattn/go-sqlite3):
//
//	import _ "github.com/FocuswithJustin/JuniperVFS/contrib/sqlite-external"
//
// Build with:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite
//
// # Default Pure Go Driver
//
// By default, JuniperVFS uses a pure Go SQLite implementation that requires
// no CGO. See github.com/FocuswithJustin/JuniperVFS/core/engine for details.
//
// # When to Use
//
// Use this package when:
//   - You open databases through a registered storage backend (the host
//     engine's VFS extension point is only reachable through the C library)
//   - Performance is critical
//   - You already have CGO in your build pipeline
//
// Use the default pure Go driver when:
//   - You only need the backend capability layer itself (registry, lock
//     table, in-memory devices), not engine-driven opens
//   - Cross-compilation or single-binary deployment matters
package sqliteexternal
