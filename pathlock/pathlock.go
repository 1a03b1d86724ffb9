// Package pathlock offers a simple helper for locking a path
// on a Windows drive and performing sharing checks over it.
//
// Lock keys are canonicalized through the wslpath package, so
// both spellings of the same file, say "C:\foo\test.txt" and
// "/mnt/c/foo/test.txt", contend on the same entry. Normally
// there might be multiple readers, writers and access checkers
// while just single remover or renamer.
package pathlock

import (
	"path"
	"runtime"
	"sync"

	"github.com/pkg/errors"

	wslpath "github.com/aegistudio/go-wslpath"
)

// PathLocker is the locker center of a drive's path namespace.
//
// The callers lock the path with reader lock when reading,
// writing and access checking a file, while they lock the path
// with writer lock when removing or renaming the file. Taking
// a lock also takes reader locks on every ancestor up to the
// drive root, so an ancestor can never be removed under a held
// descendant.
//
// The locking process is nonblocking, it returns nil
// immediately when it fails to lock the path.
type PathLocker struct {
	mu   sync.Mutex
	held map[string]int
}

// tryReadLock takes one shared reference on the key, failing
// when a writer currently owns it.
func (l *PathLocker) tryReadLock(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = make(map[string]int)
	}
	if l.held[key] < 0 {
		return false
	}
	l.held[key]++
	return true
}

func (l *PathLocker) readUnlock(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held[key]--
	if l.held[key] <= 0 {
		delete(l.held, key)
	}
}

// tryWriteLock takes the exclusive reference on the key,
// failing when any reader or writer currently owns it.
func (l *PathLocker) tryWriteLock(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = make(map[string]int)
	}
	if _, busy := l.held[key]; busy {
		return false
	}
	l.held[key] = -1
	return true
}

func (l *PathLocker) writeUnlock(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
}

// writerDowngrade turns the exclusive reference into a single
// shared one. Only the writer owning the key may call it.
func (l *PathLocker) writerDowngrade(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held[key] = 1
}

// aboveDriveRoot tells whether the key sits above the drive
// roots, where no lock entry is ever kept.
func aboveDriveRoot(key string) bool {
	return key == "/mnt" || key == "/" || key == "."
}

func (l *PathLocker) readUnlockRecursive(key string) {
	if aboveDriveRoot(key) {
		return
	}
	l.readUnlock(key)
	l.readUnlockRecursive(path.Dir(key))
}

func (l *PathLocker) readLockRecursive(key string) bool {
	if aboveDriveRoot(key) {
		return true
	}
	parent := path.Dir(key)
	if !l.readLockRecursive(parent) {
		return false
	}
	if !l.tryReadLock(key) {
		l.readUnlockRecursive(parent)
		return false
	}
	return true
}

// Lock is the reference object held to release the lock.
type Lock struct {
	locker *PathLocker
	path   *wslpath.Path
	key    string
	write  bool
	free   sync.Once
}

func (l *PathLocker) newLock(p *wslpath.Path, write bool) *Lock {
	result := &Lock{
		locker: l,
		path:   p,
		key:    p.WSL(),
		write:  write,
	}
	runtime.SetFinalizer(result, func(l *Lock) {
		l.Unlock()
	})
	return result
}

// Path returns the locked path, usable in either spelling.
func (l *Lock) Path() *wslpath.Path {
	return l.path
}

// MountPath returns the mount spelling of the locked path,
// which is also its lock key.
func (l *Lock) MountPath() string {
	return l.key
}

// FilePath returns the drive-letter spelling of the locked
// path.
func (l *Lock) FilePath() string {
	return l.path.Windows()
}

func (l *Lock) IsWrite() bool {
	return l.write
}

// Downgrade turns a writer lock into a reader lock in place.
func (l *Lock) Downgrade() {
	if !l.write {
		return
	}
	l.locker.writerDowngrade(l.key)
	l.write = false
}

func (l *Lock) Unlock() {
	runtime.SetFinalizer(l, nil)
	l.free.Do(func() {
		if l.write {
			l.locker.writeUnlock(l.key)
			l.locker.readUnlockRecursive(path.Dir(l.key))
		} else {
			l.locker.readUnlockRecursive(l.key)
		}
	})
}

// RLock attempts to perform the reader lock on the path,
// returning nil when the path is writer locked.
func (l *PathLocker) RLock(p *wslpath.Path) *Lock {
	if l.readLockRecursive(p.WSL()) {
		return l.newLock(p, false)
	}
	return nil
}

// Lock attempts to perform the writer lock on the path,
// returning nil when the path is locked in any way. The drive
// root itself may not be writer locked.
func (l *PathLocker) Lock(p *wslpath.Path) *Lock {
	key := p.WSL()
	parent := path.Dir(key)
	if aboveDriveRoot(parent) {
		// You may not write lock the drive root.
		return nil
	}
	if !l.readLockRecursive(parent) {
		return nil
	}
	if !l.tryWriteLock(key) {
		l.readUnlockRecursive(parent)
		return nil
	}
	return l.newLock(p, true)
}

// RLockString classifies input in either spelling and performs
// the reader lock on it.
func (l *PathLocker) RLockString(input string) (*Lock, error) {
	p, err := wslpath.New(input)
	if err != nil {
		return nil, errors.Wrap(err, "reader lock")
	}
	return l.RLock(p), nil
}

// LockString classifies input in either spelling and performs
// the writer lock on it.
func (l *PathLocker) LockString(input string) (*Lock, error) {
	p, err := wslpath.New(input)
	if err != nil {
		return nil, errors.Wrap(err, "writer lock")
	}
	return l.Lock(p), nil
}
