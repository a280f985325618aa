package vfs

import (
	"fmt"
	"sync"

	"github.com/FocuswithJustin/JuniperVFS/internal/logging"
)

// LockLevel is one of the five states of the engine's cooperative locking
// protocol. The numeric values match SQLite's lock constants.
type LockLevel int

const (
	// LockNone holds no lock. Any number of handles may be at LockNone.
	LockNone LockLevel = 0

	// LockShared is a read lock. Any number of handles may hold it
	// simultaneously; a handle must hold at least LockShared to read.
	LockShared LockLevel = 1

	// LockReserved announces intent to write. At most one handle may hold
	// it; shared readers continue reading the pre-transaction snapshot.
	LockReserved LockLevel = 2

	// LockPending is the non-starving path to LockExclusive: the holder
	// waits for shared readers to drain while no new shared locks may be
	// taken. At most one handle may hold it.
	LockPending LockLevel = 3

	// LockExclusive is full ownership, required before writing. No other
	// handle may hold any lock.
	LockExclusive LockLevel = 4
)

func (l LockLevel) String() string {
	switch l {
	case LockNone:
		return "NONE"
	case LockShared:
		return "SHARED"
	case LockReserved:
		return "RESERVED"
	case LockPending:
		return "PENDING"
	case LockExclusive:
		return "EXCLUSIVE"
	default:
		return fmt.Sprintf("UNKNOWN<%d>", int(l))
	}
}

// LockTable coordinates lock state across all handles that share a file
// identity. Backends that are not real OS files use it in place of
// advisory file locks.
type LockTable struct {
	mu    sync.Mutex
	files map[string]*lockState
}

// lockState is the shared coordination point for one file identity.
// All transition decisions for the identity are made under mu, so the
// "read other handles, then decide" step is indivisible.
type lockState struct {
	mu sync.Mutex

	// nShared counts handles at LockShared or stronger.
	nShared int

	// At most one handle may occupy each of these roles.
	reservedBy  *FileLock
	pendingBy   *FileLock
	exclusiveBy *FileLock

	refs int
}

// NewLockTable creates an empty LockTable.
func NewLockTable() *LockTable {
	return &LockTable{
		files: make(map[string]*lockState),
	}
}

// Handle joins the identity id and returns a FileLock starting at LockNone.
// Callers must Close the FileLock when the owning file handle closes.
func (t *LockTable) Handle(id string) *FileLock {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.files[id]
	if !ok {
		state = &lockState{}
		t.files[id] = state
	}
	state.refs++

	return &FileLock{table: t, state: state, id: id}
}

// CheckReserved reports whether any handle on id holds LockReserved or
// stronger, without joining the identity.
func (t *LockTable) CheckReserved(id string) bool {
	t.mu.Lock()
	state, ok := t.files[id]
	t.mu.Unlock()
	if !ok {
		return false
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	return state.reservedBy != nil || state.pendingBy != nil || state.exclusiveBy != nil
}

func (t *LockTable) drop(id string, state *lockState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state.refs--
	if state.refs == 0 {
		delete(t.files, id)
	}
}

// FileLock is the per-handle view of one file identity's lock state.
// It is driven by exactly one file handle; the shared state behind it is
// what coordinates with other handles on the same identity.
type FileLock struct {
	table *LockTable
	state *lockState
	id    string
	level LockLevel
}

// Level returns the level this handle currently holds.
func (l *FileLock) Level() LockLevel {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	return l.level
}

// Acquire transitions the handle to the requested level. A request at or
// below the current level is a release operation and always succeeds.
// An upgrade that another handle's state forbids fails immediately with a
// LockError wrapping ErrBusy; this call never blocks and never retries.
//
// The legal upward path is NONE -> SHARED -> RESERVED -> PENDING ->
// EXCLUSIVE. Requesting EXCLUSIVE from SHARED or RESERVED passes through
// PENDING: if shared readers still hold the file the handle is left at
// PENDING (so no new readers can start) and ErrBusy is returned.
func (l *FileLock) Acquire(to LockLevel) error {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()

	if to <= l.level {
		l.downgrade(to)
		return nil
	}

	switch to {
	case LockShared:
		return l.acquireShared()
	case LockReserved:
		return l.acquireReserved()
	case LockPending:
		return l.acquirePending()
	case LockExclusive:
		return l.acquireExclusive()
	default:
		return &LockError{Name: l.id, From: l.level, To: to, Err: ErrLockProtocol}
	}
}

// Release downgrades the handle to the given level, which must be LockNone
// or LockShared. Releasing at or below the current level is a no-op.
func (l *FileLock) Release(to LockLevel) error {
	if to != LockNone && to != LockShared {
		return &LockError{Name: l.id, From: l.Level(), To: to, Err: ErrLockProtocol}
	}

	l.state.mu.Lock()
	defer l.state.mu.Unlock()

	l.downgrade(to)
	return nil
}

// CheckReserved reports whether any handle on this identity, including
// this one, holds LockReserved or stronger. Read-only, never blocks.
func (l *FileLock) CheckReserved() bool {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()

	return l.state.reservedBy != nil || l.state.pendingBy != nil || l.state.exclusiveBy != nil
}

// Close releases any held lock and detaches from the identity. The
// FileLock must not be used afterward.
func (l *FileLock) Close() {
	l.state.mu.Lock()
	l.downgrade(LockNone)
	l.state.mu.Unlock()

	l.table.drop(l.id, l.state)
}

// acquireShared takes a read lock. Blocked while another handle holds
// PENDING or EXCLUSIVE, which is what makes PENDING non-starving.
func (l *FileLock) acquireShared() error {
	s := l.state
	if (s.pendingBy != nil && s.pendingBy != l) || (s.exclusiveBy != nil && s.exclusiveBy != l) {
		return l.busy(LockShared)
	}

	s.nShared++
	l.setLevel(LockShared)
	return nil
}

// acquireReserved stages a write. Only reachable from SHARED, and only one
// handle may hold RESERVED, PENDING, or EXCLUSIVE at a time.
func (l *FileLock) acquireReserved() error {
	s := l.state
	if l.level != LockShared {
		return l.protocol(LockReserved)
	}
	if s.reservedBy != nil || s.pendingBy != nil || s.exclusiveBy != nil {
		return l.busy(LockReserved)
	}

	s.reservedBy = l
	l.setLevel(LockReserved)
	return nil
}

// acquirePending blocks new readers while existing ones drain.
func (l *FileLock) acquirePending() error {
	s := l.state
	if l.level < LockShared {
		return l.protocol(LockPending)
	}
	if (s.pendingBy != nil && s.pendingBy != l) || (s.exclusiveBy != nil && s.exclusiveBy != l) {
		return l.busy(LockPending)
	}

	s.pendingBy = l
	l.setLevel(LockPending)
	return nil
}

// acquireExclusive takes full ownership. The PENDING intermediate is taken
// first so a reader-contended request leaves the handle at PENDING.
func (l *FileLock) acquireExclusive() error {
	s := l.state
	if l.level < LockShared {
		return l.protocol(LockExclusive)
	}
	if (s.pendingBy != nil && s.pendingBy != l) || (s.exclusiveBy != nil && s.exclusiveBy != l) {
		return l.busy(LockExclusive)
	}
	if s.reservedBy != nil && s.reservedBy != l {
		return l.busy(LockExclusive)
	}

	// Claim PENDING before checking readers so a contended request still
	// shuts out new shared locks.
	if l.level < LockPending {
		s.pendingBy = l
		l.setLevel(LockPending)
	}

	othersShared := s.nShared - 1 // self is counted in nShared
	if othersShared > 0 {
		return l.busy(LockExclusive)
	}

	s.exclusiveBy = l
	l.setLevel(LockExclusive)
	return nil
}

// downgrade lowers the handle to the given level, vacating any roles the
// old level occupied. Callers hold state.mu.
func (l *FileLock) downgrade(to LockLevel) {
	if to >= l.level {
		return
	}

	s := l.state
	if s.exclusiveBy == l {
		s.exclusiveBy = nil
	}
	if s.pendingBy == l && to < LockPending {
		s.pendingBy = nil
	}
	if s.reservedBy == l && to < LockReserved {
		s.reservedBy = nil
	}
	if l.level >= LockShared && to < LockShared {
		s.nShared--
	}

	l.setLevel(to)
}

func (l *FileLock) setLevel(to LockLevel) {
	logging.LockEvent(l.id, l.level.String(), to.String())
	l.level = to
}

func (l *FileLock) busy(to LockLevel) error {
	return &LockError{Name: l.id, From: l.level, To: to, Err: ErrBusy}
}

func (l *FileLock) protocol(to LockLevel) error {
	return &LockError{Name: l.id, From: l.level, To: to, Err: ErrLockProtocol}
}
