package memvfs

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/FocuswithJustin/JuniperVFS/core/vfs"
)

func mustOpen(t *testing.T, b *Backend, name string, flags vfs.OpenFlag) vfs.File {
	t.Helper()
	f, err := b.Open(name, flags)
	if err != nil {
		t.Fatalf("Open(%q) = %v", name, err)
	}
	return f
}

func TestOpenFlags(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		b := New()
		f := mustOpen(t, b, "test.db", vfs.OpenReadWrite|vfs.OpenCreate)
		defer f.Close()

		ok, err := b.Exists("test.db")
		if err != nil || !ok {
			t.Errorf("Exists() = %v, %v; want true, nil", ok, err)
		}
	})

	t.Run("missing without create", func(t *testing.T) {
		b := New()
		_, err := b.Open("missing.db", vfs.OpenReadWrite)
		if !errors.Is(err, vfs.ErrNotFound) {
			t.Errorf("Open() = %v, want ErrNotFound", err)
		}
	})

	t.Run("exclusive create on existing", func(t *testing.T) {
		b := New()
		f := mustOpen(t, b, "test.db", vfs.OpenReadWrite|vfs.OpenCreate)
		defer f.Close()

		_, err := b.Open("test.db", vfs.OpenReadWrite|vfs.OpenCreate|vfs.OpenExclusive)
		if !errors.Is(err, vfs.ErrAlreadyExists) {
			t.Errorf("Open() = %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("empty name allocates transient file", func(t *testing.T) {
		b := New()
		f := mustOpen(t, b, "", vfs.OpenReadWrite)

		if _, err := f.WriteAt([]byte("scratch"), 0); err != nil {
			t.Fatalf("WriteAt() = %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close() = %v", err)
		}

		// The transient file is gone with its handle.
		b.mu.Lock()
		remaining := len(b.files)
		b.mu.Unlock()
		if remaining != 0 {
			t.Errorf("%d files remain after transient close, want 0", remaining)
		}
	})

	t.Run("delete on close", func(t *testing.T) {
		b := New()
		f := mustOpen(t, b, "test.db-journal", vfs.OpenReadWrite|vfs.OpenCreate|vfs.OpenDeleteOnClose)
		if err := f.Close(); err != nil {
			t.Fatalf("Close() = %v", err)
		}

		ok, _ := b.Exists("test.db-journal")
		if ok {
			t.Error("file still exists after delete-on-close")
		}
	})
}

func TestReadWriteRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		offset int64
	}{
		{"at start", 0},
		{"mid file", 100},
		{"far past end of file", 1 << 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			f := mustOpen(t, b, "test.db", vfs.OpenReadWrite|vfs.OpenCreate)
			defer f.Close()

			payload := []byte("the quick brown fox")
			n, err := f.WriteAt(payload, tt.offset)
			if err != nil || n != len(payload) {
				t.Fatalf("WriteAt() = %d, %v", n, err)
			}

			got := make([]byte, len(payload))
			n, err = f.ReadAt(got, tt.offset)
			if err != nil || n != len(payload) {
				t.Fatalf("ReadAt() = %d, %v", n, err)
			}
			if !bytes.Equal(got, payload) {
				t.Errorf("ReadAt() = %q, want %q", got, payload)
			}

			size, err := f.Size()
			if err != nil {
				t.Fatalf("Size() = %v", err)
			}
			if want := tt.offset + int64(len(payload)); size != want {
				t.Errorf("Size() = %d, want %d", size, want)
			}
		})
	}
}

func TestWriteGapReadsBackZero(t *testing.T) {
	b := New()
	f := mustOpen(t, b, "test.db", vfs.OpenReadWrite|vfs.OpenCreate)
	defer f.Close()

	if _, err := f.WriteAt([]byte("head"), 0); err != nil {
		t.Fatalf("WriteAt() = %v", err)
	}
	if _, err := f.WriteAt([]byte("tail"), 1000); err != nil {
		t.Fatalf("WriteAt() = %v", err)
	}

	gap := make([]byte, 996)
	n, err := f.ReadAt(gap, 4)
	if err != nil || n != len(gap) {
		t.Fatalf("ReadAt(gap) = %d, %v", n, err)
	}
	for i, c := range gap {
		if c != 0 {
			t.Fatalf("gap byte %d = %d, want 0", i, c)
		}
	}
}

func TestShortRead(t *testing.T) {
	b := New()
	f := mustOpen(t, b, "test.db", vfs.OpenReadWrite|vfs.OpenCreate)
	defer f.Close()

	if _, err := f.WriteAt([]byte("0123456789"), 0); err != nil {
		t.Fatalf("WriteAt() = %v", err)
	}

	t.Run("range straddles end of file", func(t *testing.T) {
		p := []byte("xxxxxxxx")
		n, err := f.ReadAt(p, 6)
		if !errors.Is(err, vfs.ErrShortRead) {
			t.Fatalf("ReadAt() err = %v, want ErrShortRead", err)
		}
		if n != 4 {
			t.Errorf("ReadAt() n = %d, want 4", n)
		}
		// Available bytes are returned, the rest is zero-filled.
		if !bytes.Equal(p, []byte{'6', '7', '8', '9', 0, 0, 0, 0}) {
			t.Errorf("buffer = %q", p)
		}
	})

	t.Run("range entirely past end of file", func(t *testing.T) {
		p := []byte("xxxx")
		n, err := f.ReadAt(p, 100)
		if !errors.Is(err, vfs.ErrShortRead) {
			t.Fatalf("ReadAt() err = %v, want ErrShortRead", err)
		}
		if n != 0 {
			t.Errorf("ReadAt() n = %d, want 0", n)
		}
		if !bytes.Equal(p, make([]byte, 4)) {
			t.Errorf("buffer not zero-filled: %q", p)
		}
	})

	t.Run("short read is not an io failure", func(t *testing.T) {
		_, err := f.ReadAt(make([]byte, 4), 100)
		if errors.Is(err, vfs.ErrIO) {
			t.Error("short read reported as ErrIO")
		}
	})
}

func TestTruncate(t *testing.T) {
	b := New()
	f := mustOpen(t, b, "test.db", vfs.OpenReadWrite|vfs.OpenCreate)
	defer f.Close()

	if _, err := f.WriteAt([]byte("0123456789"), 0); err != nil {
		t.Fatalf("WriteAt() = %v", err)
	}

	t.Run("shrink", func(t *testing.T) {
		if err := f.Truncate(4); err != nil {
			t.Fatalf("Truncate(4) = %v", err)
		}
		size, _ := f.Size()
		if size != 4 {
			t.Errorf("Size() = %d, want 4", size)
		}

		// Bytes past the new end behave as a short, zeroed read.
		p := make([]byte, 6)
		n, err := f.ReadAt(p, 2)
		if !errors.Is(err, vfs.ErrShortRead) {
			t.Fatalf("ReadAt() err = %v, want ErrShortRead", err)
		}
		if n != 2 || !bytes.Equal(p, []byte{'2', '3', 0, 0, 0, 0}) {
			t.Errorf("ReadAt() = %d, %q", n, p)
		}
	})

	t.Run("grow exposes zeros", func(t *testing.T) {
		if err := f.Truncate(8); err != nil {
			t.Fatalf("Truncate(8) = %v", err)
		}
		size, _ := f.Size()
		if size != 8 {
			t.Errorf("Size() = %d, want 8", size)
		}

		p := make([]byte, 8)
		if _, err := f.ReadAt(p, 0); err != nil {
			t.Fatalf("ReadAt() = %v", err)
		}
		if !bytes.Equal(p, []byte{'0', '1', '2', '3', 0, 0, 0, 0}) {
			t.Errorf("content = %q", p)
		}
	})

	t.Run("negative size is misuse", func(t *testing.T) {
		if err := f.Truncate(-1); err == nil {
			t.Error("Truncate(-1) = nil, want error")
		}
	})
}

func TestContentPersistsAcrossOpens(t *testing.T) {
	b := New()

	f := mustOpen(t, b, "test.db", vfs.OpenReadWrite|vfs.OpenCreate)
	if _, err := f.WriteAt([]byte("durable"), 0); err != nil {
		t.Fatalf("WriteAt() = %v", err)
	}
	if err := f.Sync(); err != nil {
		t.Fatalf("Sync() = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	// A later open under the same name sees the same device content.
	f = mustOpen(t, b, "test.db", vfs.OpenReadWrite)
	defer f.Close()

	got := make([]byte, 7)
	if _, err := f.ReadAt(got, 0); err != nil {
		t.Fatalf("ReadAt() = %v", err)
	}
	if string(got) != "durable" {
		t.Errorf("content after reopen = %q, want %q", got, "durable")
	}
}

func TestLockingAcrossHandles(t *testing.T) {
	b := New()
	w := mustOpen(t, b, "test.db", vfs.OpenReadWrite|vfs.OpenCreate)
	r := mustOpen(t, b, "test.db", vfs.OpenReadWrite)
	defer w.Close()
	defer r.Close()

	if err := w.Lock(vfs.LockShared); err != nil {
		t.Fatalf("Lock(SHARED) = %v", err)
	}
	if err := w.Lock(vfs.LockReserved); err != nil {
		t.Fatalf("Lock(RESERVED) = %v", err)
	}

	// The second handle shares the coordination point: it may read but
	// not stage a write.
	if err := r.Lock(vfs.LockShared); err != nil {
		t.Errorf("reader Lock(SHARED) = %v", err)
	}
	if err := r.Lock(vfs.LockReserved); !errors.Is(err, vfs.ErrBusy) {
		t.Errorf("reader Lock(RESERVED) = %v, want ErrBusy", err)
	}

	reserved, err := r.CheckReservedLock()
	if err != nil || !reserved {
		t.Errorf("CheckReservedLock() = %v, %v; want true, nil", reserved, err)
	}

	if err := w.Unlock(vfs.LockNone); err != nil {
		t.Fatalf("Unlock(NONE) = %v", err)
	}
	reserved, err = r.CheckReservedLock()
	if err != nil || reserved {
		t.Errorf("CheckReservedLock() after unlock = %v, %v; want false, nil", reserved, err)
	}
}

func TestCloseDrivesLockToNone(t *testing.T) {
	b := New()
	w := mustOpen(t, b, "test.db", vfs.OpenReadWrite|vfs.OpenCreate)
	r := mustOpen(t, b, "test.db", vfs.OpenReadWrite)
	defer r.Close()

	if err := w.Lock(vfs.LockShared); err != nil {
		t.Fatalf("Lock(SHARED) = %v", err)
	}
	if err := w.Lock(vfs.LockReserved); err != nil {
		t.Fatalf("Lock(RESERVED) = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	// The closed handle's locks are gone; another handle observes no
	// reservation and may take the write path.
	reserved, err := r.CheckReservedLock()
	if err != nil || reserved {
		t.Fatalf("CheckReservedLock() = %v, %v; want false, nil", reserved, err)
	}
	if err := r.Lock(vfs.LockShared); err != nil {
		t.Errorf("Lock(SHARED) = %v", err)
	}
	if err := r.Lock(vfs.LockReserved); err != nil {
		t.Errorf("Lock(RESERVED) = %v", err)
	}
}

func TestClosedHandle(t *testing.T) {
	b := New()
	f := mustOpen(t, b, "test.db", vfs.OpenReadWrite|vfs.OpenCreate)
	if err := f.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	if err := f.Close(); !errors.Is(err, vfs.ErrClosed) {
		t.Errorf("second Close() = %v, want ErrClosed", err)
	}
	if _, err := f.ReadAt(make([]byte, 1), 0); !errors.Is(err, vfs.ErrClosed) {
		t.Errorf("ReadAt() = %v, want ErrClosed", err)
	}
	if _, err := f.WriteAt([]byte("x"), 0); !errors.Is(err, vfs.ErrClosed) {
		t.Errorf("WriteAt() = %v, want ErrClosed", err)
	}
	if err := f.Lock(vfs.LockShared); !errors.Is(err, vfs.ErrClosed) {
		t.Errorf("Lock() = %v, want ErrClosed", err)
	}
}

func TestDelete(t *testing.T) {
	b := New()
	f := mustOpen(t, b, "test.db", vfs.OpenReadWrite|vfs.OpenCreate)
	if err := f.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	if err := b.Delete("test.db"); err != nil {
		t.Fatalf("Delete() = %v", err)
	}
	if err := b.Delete("test.db"); !errors.Is(err, vfs.ErrNotFound) {
		t.Errorf("Delete() of missing file = %v, want ErrNotFound", err)
	}
}

func TestReadOnlyHandleRejectsWrites(t *testing.T) {
	b := New()
	f := mustOpen(t, b, "test.db", vfs.OpenReadWrite|vfs.OpenCreate)
	if err := f.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	ro := mustOpen(t, b, "test.db", vfs.OpenReadOnly)
	defer ro.Close()

	if _, err := ro.WriteAt([]byte("x"), 0); !errors.Is(err, vfs.ErrIO) {
		t.Errorf("WriteAt() on read-only handle = %v, want ErrIO", err)
	}
}

func TestFullPath(t *testing.T) {
	b := New()
	if got := b.FullPath("test.db"); got != "test.db" {
		t.Errorf("FullPath() = %q, want %q", got, "test.db")
	}
	if got := b.FullPath("a/b/test.db"); !strings.Contains(got, "test.db") {
		t.Errorf("FullPath() = %q", got)
	}
}
