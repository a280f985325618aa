//go:build !cgo_sqlite

package engine

import (
	"errors"
	"testing"

	"github.com/FocuswithJustin/JuniperVFS/core/memvfs"
	"github.com/FocuswithJustin/JuniperVFS/core/vfs"
)

func TestOpenBackendRequiresCGO(t *testing.T) {
	if err := RegisterBackend("purego-test-mem", memvfs.New()); err != nil {
		t.Fatalf("RegisterBackend() = %v", err)
	}
	defer vfs.Unregister("purego-test-mem")

	_, err := OpenBackend("test.db", "purego-test-mem")
	if !errors.Is(err, ErrCGORequired) {
		t.Errorf("OpenBackend() = %v, want ErrCGORequired", err)
	}
}
