package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/natefinch/atomic"
)

const filePerms = 0o600

// FileStore persists the token as session.json in a state directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the session file path.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, "session.json")
}

func (s *FileStore) lockPath() string {
	return filepath.Join(s.dir, "session.lock")
}

// Load reads the persisted token. A missing file is a logged-out session.
func (s *FileStore) Load() (Token, error) {
	data, err := os.ReadFile(s.Path())
	if os.IsNotExist(err) {
		return Token{}, nil
	}
	if err != nil {
		return Token{}, fmt.Errorf("read session file: %w", err)
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return Token{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return token, nil
}

// Save writes the token atomically.
func (s *FileStore) Save(token Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.withLock(func() error {
		if err := atomic.WriteFile(s.Path(), bytes.NewReader(data)); err != nil {
			return fmt.Errorf("write session file: %w", err)
		}
		// atomic.WriteFile does not set permissions on new files.
		if err := os.Chmod(s.Path(), filePerms); err != nil {
			return fmt.Errorf("chmod session file: %w", err)
		}
		return nil
	})
}

// Clear removes the persisted token.
func (s *FileStore) Clear() error {
	return s.withLock(func() error {
		err := os.Remove(s.Path())
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove session file: %w", err)
		}
		return nil
	})
}

func (s *FileStore) withLock(fn func() error) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	lockFile, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, filePerms)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer lockFile.Close()

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)

	return fn()
}
