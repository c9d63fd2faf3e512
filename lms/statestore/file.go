package statestore

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/nightlyone/lockfile"

	"github.com/go-lms/lms/lms/common"
)

// fileCounterMagic tags the first 8 bytes of a counter file so a reader
// can tell a genuine counter file from garbage at the same path.
const fileCounterMagic = "6c6d7363746c3332"

// FileCounterStore is a CounterStore backed by the filesystem. Each
// context's counter lives in its own file at <dir>/<ctxID>.q, guarded by an
// advisory lock file at <dir>/<ctxID>.q.lock, and is written with a
// write-temp-file / fsync / rename / fsync-parent-directory sequence so a
// crash between steps never leaves a reader observing a value older than
// the last fully-completed Persist.
//
// This is the exact durability sequence bwesterb/go-xmssmt's fsContainer
// uses for its own "sequence number must never regress" requirement
// (container.go, writeKeyFile), narrowed here to a bare uint32 counter.
type FileCounterStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]lockfile.Lockfile
}

// NewFileCounterStore returns a FileCounterStore that persists counters
// under dir. dir must already exist.
func NewFileCounterStore(dir string) (*FileCounterStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, common.WrapErrorf(common.StateIOError, err, "NewFileCounterStore(): failed to resolve %s", dir)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return nil, common.Errorf(common.StateIOError, "NewFileCounterStore(): %s is not an existing directory", abs)
	}
	return &FileCounterStore{dir: abs, locks: make(map[string]lockfile.Lockfile)}, nil
}

func (s *FileCounterStore) counterPath(ctxID string) string {
	return filepath.Join(s.dir, ctxID+".q")
}

func (s *FileCounterStore) lockPath(ctxID string) string {
	return filepath.Join(s.dir, ctxID+".q.lock")
}

// acquireLock takes an exclusive, non-blocking advisory lock on ctxID's
// counter file, caching it so repeated calls from this process don't race
// each other; the process-level mutex serializes our own callers while the
// lock file keeps other processes out.
func (s *FileCounterStore) acquireLock(ctxID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.locks[ctxID]; ok {
		return nil
	}

	lock, err := lockfile.New(s.lockPath(ctxID))
	if err != nil {
		return common.WrapErrorf(common.StateIOError, err, "failed to create lockfile for %s", ctxID)
	}
	if err := lock.TryLock(); err != nil {
		return common.WrapErrorf(common.StateIOError, err, "counter for %s is locked by another process", ctxID)
	}
	s.locks[ctxID] = lock
	return nil
}

// Load returns the last persisted counter for ctxID, or 0 if none exists yet.
func (s *FileCounterStore) Load(ctxID string) (uint32, error) {
	if err := s.acquireLock(ctxID); err != nil {
		return 0, err
	}

	f, err := os.Open(s.counterPath(ctxID))
	if os.IsNotExist(err) {
		return 0, nil
	} else if err != nil {
		return 0, common.WrapErrorf(common.StateIOError, err, "failed to open counter file for %s", ctxID)
	}
	defer f.Close()

	var buf [12]byte // 8 bytes magic + 4 bytes counter
	if _, err := io.ReadFull(f, buf[:]); err != nil {
		return 0, common.WrapErrorf(common.StateIOError, err, "failed to read counter file for %s", ctxID)
	}
	if hex.EncodeToString(buf[:8]) != fileCounterMagic {
		return 0, common.Errorf(common.StateIOError, "counter file for %s has invalid magic", ctxID)
	}

	return binary.BigEndian.Uint32(buf[8:12]), nil
}

// Persist durably records q as the counter value for ctxID, using a
// write-temp / fsync / rename / fsync-directory sequence so a crash never
// leaves the counter file holding a value older than the last call that
// returned nil.
func (s *FileCounterStore) Persist(ctxID string, q uint32) error {
	if err := s.acquireLock(ctxID); err != nil {
		return err
	}

	path := s.counterPath(ctxID)
	tmpPath := path + ".tmp"

	tmpFile, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return common.WrapErrorf(common.StateIOError, err, "failed to create temporary counter file for %s", ctxID)
	}

	var buf [12]byte
	magic, _ := hex.DecodeString(fileCounterMagic)
	copy(buf[:8], magic)
	binary.BigEndian.PutUint32(buf[8:12], q)

	if _, err := tmpFile.Write(buf[:]); err != nil {
		tmpFile.Close()
		return common.WrapErrorf(common.StateIOError, err, "failed to write temporary counter file for %s", ctxID)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return common.WrapErrorf(common.StateIOError, err, "failed to sync temporary counter file for %s", ctxID)
	}
	if err := tmpFile.Close(); err != nil {
		return common.WrapErrorf(common.StateIOError, err, "failed to close temporary counter file for %s", ctxID)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return common.WrapErrorf(common.StateIOError, err, "failed to replace counter file for %s", ctxID)
	}

	dirFd, err := syscall.Open(s.dir, syscall.O_DIRECTORY, 0)
	if err != nil {
		return common.WrapErrorf(common.StateIOError, err, "failed to sync counter directory for %s", ctxID)
	}
	syncErr := syscall.Fsync(dirFd)
	closeErr := syscall.Close(dirFd)
	if syncErr != nil {
		return common.WrapErrorf(common.StateIOError, syncErr, "failed to fsync counter directory for %s", ctxID)
	}
	if closeErr != nil {
		return common.WrapErrorf(common.StateIOError, closeErr, "failed to close counter directory fd for %s", ctxID)
	}

	return nil
}

// Close releases every lock this store has acquired.
func (s *FileCounterStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result error
	for ctxID, lock := range s.locks {
		if err := lock.Unlock(); err != nil {
			result = multierror.Append(result, common.WrapErrorf(common.StateIOError, err, "failed to release lock for %s", ctxID))
		}
	}
	s.locks = make(map[string]lockfile.Lockfile)
	return result
}
