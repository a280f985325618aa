// Command vfsctl is the CLI tool for JuniperVFS.
// It provides commands for inspecting the driver configuration, running SQL
// against databases on registered backends, and archiving in-memory devices.
package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/JuniperVFS/core/engine"
	"github.com/FocuswithJustin/JuniperVFS/core/memvfs"
	"github.com/FocuswithJustin/JuniperVFS/core/vfs"
	"github.com/FocuswithJustin/JuniperVFS/internal/logging"
)

const version = "0.1.0"

// memBackendName is the backend vfsctl registers for its own operations.
const memBackendName = "vfsctl-mem"

// CLI defines the command-line interface for vfsctl.
var CLI struct {
	// Global flags
	Verbose bool `help:"Enable debug logging" short:"v"`

	Info     InfoCmd     `cmd:"" help:"Print driver and backend configuration"`
	Exec     ExecCmd     `cmd:"" help:"Execute SQL against a database"`
	Snapshot SnapshotCmd `cmd:"" help:"Archive a database file as a verifiable snapshot"`
	Restore  RestoreCmd  `cmd:"" help:"Restore a database file from a snapshot"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// InfoCmd prints the driver configuration as JSON.
type InfoCmd struct{}

func (c *InfoCmd) Run() error {
	info := engine.GetInfo()
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// ExecCmd executes SQL statements against a database, optionally through a
// registered in-memory backend (cgo builds only).
type ExecCmd struct {
	Database string `arg:"" help:"Database path" type:"path"`
	SQL      string `arg:"" help:"SQL to execute (semicolon-separated statements; the last statement's rows are printed)"`
	Memory   bool   `help:"Open through an in-memory backend instead of the filesystem"`
}

func (c *ExecCmd) Run() error {
	var db *sql.DB
	var err error

	if c.Memory {
		if err := engine.RegisterBackend(memBackendName, memvfs.New()); err != nil {
			return fmt.Errorf("failed to register backend: %w", err)
		}
		db, err = engine.OpenBackend(c.Database, memBackendName)
	} else {
		db, err = engine.Open(c.Database)
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var stmts []string
	for _, stmt := range strings.Split(c.SQL, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}

	// All statements but the last are executed; the last is queried so its
	// rows can be printed.
	for i, stmt := range stmts {
		if i == len(stmts)-1 {
			return printQuery(db, stmt)
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec failed: %w", err)
		}
	}
	return nil
}

func printQuery(db *sql.DB, stmt string) error {
	rows, err := db.Query(stmt)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	fmt.Println(strings.Join(cols, "|"))

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		fields := make([]string, len(values))
		for i, v := range values {
			switch val := v.(type) {
			case nil:
				fields[i] = ""
			case []byte:
				fields[i] = string(val)
			default:
				fields[i] = fmt.Sprint(val)
			}
		}
		fmt.Println(strings.Join(fields, "|"))
	}
	return rows.Err()
}

// SnapshotCmd loads a database file into an in-memory device and writes it
// out as a compressed, digest-verified archive.
type SnapshotCmd struct {
	Database string `arg:"" help:"Database file to archive" type:"existingfile"`
	Out      string `required:"" help:"Output snapshot path" type:"path"`
}

func (c *SnapshotCmd) Run() error {
	content, err := os.ReadFile(c.Database)
	if err != nil {
		return fmt.Errorf("failed to read database: %w", err)
	}

	backend := memvfs.New()
	f, err := backend.Open(c.Database, vfs.OpenReadWrite|vfs.OpenCreate)
	if err != nil {
		return err
	}
	if _, err := f.WriteAt(content, 0); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	out, err := os.Create(c.Out)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer out.Close()

	if err := backend.SnapshotTo(out, c.Database); err != nil {
		return fmt.Errorf("failed to snapshot: %w", err)
	}

	fmt.Printf("Archived: %s\n", c.Database)
	fmt.Printf("  Size: %d bytes\n", len(content))
	fmt.Printf("  Snapshot: %s\n", c.Out)
	return nil
}

// RestoreCmd unpacks a snapshot archive back into a database file.
type RestoreCmd struct {
	Snapshot string `arg:"" help:"Snapshot file" type:"existingfile"`
	Out      string `required:"" help:"Output database path" type:"path"`
}

func (c *RestoreCmd) Run() error {
	in, err := os.Open(c.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer in.Close()

	backend := memvfs.New()
	if err := backend.RestoreFrom(in, c.Out); err != nil {
		return fmt.Errorf("failed to restore: %w", err)
	}

	f, err := backend.Open(c.Out, vfs.OpenReadOnly)
	if err != nil {
		return err
	}
	defer f.Close()

	size, err := f.Size()
	if err != nil {
		return err
	}
	content := make([]byte, size)
	if _, err := f.ReadAt(content, 0); err != nil && size > 0 {
		return err
	}

	if err := os.WriteFile(c.Out, content, 0644); err != nil {
		return fmt.Errorf("failed to write database: %w", err)
	}

	fmt.Printf("Restored: %s\n", c.Out)
	fmt.Printf("  Size: %d bytes\n", size)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("vfsctl %s (%s driver)\n", version, engine.DriverType())
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("vfsctl"),
		kong.Description("JuniperVFS - pluggable storage backends for SQLite"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if CLI.Verbose {
		logging.InitLogger(logging.LevelDebug, logging.FormatText)
	}
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
