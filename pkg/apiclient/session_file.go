package apiclient

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
)

// SessionFile persists the signed-in session between CLI runs.
type SessionFile struct {
	Path string
	Now  func() time.Time
}

// DefaultSessionPath returns the session file under the user config dir.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("apiclient: resolve config dir: %w", err)
	}
	return filepath.Join(dir, "organizeit", "session.json"), nil
}

func (f SessionFile) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// Save writes the session blob with owner-only permissions.
func (f SessionFile) Save(session dashboard.Session) error {
	blob, err := dashboard.EncodeSession(session)
	if err != nil {
		return fmt.Errorf("apiclient: encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("apiclient: create session dir: %w", err)
	}
	if err := os.WriteFile(f.Path, blob, 0o600); err != nil {
		return fmt.Errorf("apiclient: write session: %w", err)
	}
	return nil
}

// Load restores the stored session. A missing file returns
// dashboard.ErrUnauthorized; an expired or malformed one is removed and its
// restore error returned.
func (f SessionFile) Load() (dashboard.Session, error) {
	blob, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return dashboard.Session{}, dashboard.ErrUnauthorized
		}
		return dashboard.Session{}, fmt.Errorf("apiclient: read session: %w", err)
	}
	session, err := dashboard.RestoreSession(blob, f.now())
	if err != nil {
		_ = f.Clear()
		return dashboard.Session{}, err
	}
	return session, nil
}

// Clear deletes the session file if present.
func (f SessionFile) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("apiclient: remove session: %w", err)
	}
	return nil
}
