package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/terraconstructs/postboard/pkg/sdk"
)

const (
	tokenFile = "token"
	userFile  = "user.json"
)

// FileStore implements Store with two files, one per key, inside a directory
// scoped to the API origin. Sessions for different servers never mix.
type FileStore struct {
	dir    string
	logger *slog.Logger
	mu     sync.Mutex
}

// Ensure FileStore implements Store at compile time.
var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore under root for the origin of apiURL.
func NewFileStore(root, apiURL string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	key, err := OriginKey(apiURL)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(root, key)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Dir returns the directory holding this origin's session files.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save drops the old token, then writes the user and finally the new token.
// A failure at any step leaves at most a user without a token, which the
// manager resolves to logged out. An old token is never paired with a new user.
func (s *FileStore) Save(session sdk.Session) error {
	if !session.Complete() {
		return errors.New("refusing to persist a partial session")
	}

	data, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(filepath.Join(s.dir, tokenFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove previous token: %w", err)
	}
	if err := writeFile(filepath.Join(s.dir, userFile), data); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	if err := writeFile(filepath.Join(s.dir, tokenFile), []byte(session.Token)); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Load reads both keys independently.
func (s *FileStore) Load() sdk.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	var session sdk.Session

	token, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	switch {
	case err == nil:
		session.Token = strings.TrimSpace(string(token))
	case !errors.Is(err, fs.ErrNotExist):
		s.logger.Warn("ignoring unreadable session token", "dir", s.dir, "error", err)
	}

	raw, err := os.ReadFile(filepath.Join(s.dir, userFile))
	switch {
	case err == nil:
		var user *sdk.UserSummary
		switch err := json.Unmarshal(raw, &user); {
		case err != nil:
			s.logger.Warn("ignoring malformed session user", "dir", s.dir, "error", err)
		case user == nil || user.ID == 0:
			s.logger.Warn("ignoring empty session user", "dir", s.dir)
		default:
			session.User = user
		}
	case !errors.Is(err, fs.ErrNotExist):
		s.logger.Warn("ignoring unreadable session user", "dir", s.dir, "error", err)
	}

	return session
}

// Clear removes the token first so no request can carry it once Clear starts.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range []string{tokenFile, userFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return nil
}

// OriginKey turns an API URL into a directory name unique to its scheme,
// host and port.
func OriginKey(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("invalid API URL %q: %w", apiURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid API URL %q: scheme and host are required", apiURL)
	}

	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}
	host := strings.ToLower(u.Hostname())
	host = strings.NewReplacer(":", "_", "[", "", "]", "").Replace(host)
	return fmt.Sprintf("%s_%s_%s", strings.ToLower(u.Scheme), host, port), nil
}

// writeFile is swapped in tests to simulate disk failures.
var writeFile = writeFileAtomic

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
