package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the widget's per-install identity: generated once, cached on
// disk, and reused for every exchange until the file is removed. It is the
// CLI counterpart of the browser's persisted storage entry.
type Session struct {
	path string
	once sync.Once
	id   string
}

// NewSession places the session file under the user's config directory. When
// no config directory is available the identifier still works, it just won't
// survive the process.
func NewSession() *Session {
	dir, err := os.UserConfigDir()
	if err != nil {
		return &Session{}
	}
	return &Session{path: filepath.Join(dir, "resumeai", "session")}
}

// NewSessionAt uses an explicit session file path.
func NewSessionAt(path string) *Session {
	return &Session{path: path}
}

// ID returns the persisted identifier, creating it on first use.
func (s *Session) ID() string {
	s.once.Do(s.load)
	return s.id
}

func (s *Session) load() {
	if s.path != "" {
		if data, err := os.ReadFile(s.path); err == nil {
			if id := strings.TrimSpace(string(data)); id != "" {
				s.id = id
				return
			}
		}
	}

	s.id = newSessionID()

	if s.path != "" {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err == nil {
			_ = os.WriteFile(s.path, []byte(s.id), 0o644)
		}
	}
}

// newSessionID prefers a random UUID, falling back to a timestamp when the
// random source fails.
func newSessionID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	return fmt.Sprintf("sess_%d", time.Now().UnixNano())
}
