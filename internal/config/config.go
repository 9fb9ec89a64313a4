package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configFileName = "config.json"

	keyAccessToken  = "tokens.access"
	keyIDToken      = "tokens.id"
	keyRefreshToken = "tokens.refresh"
	keyUserName     = "user.name"
)

// ErrNotLoggedIn is returned when no stored session tokens exist.
var ErrNotLoggedIn = errors.New("not logged in, run 'nodectl login' first")

// Tokens is the persisted session credential set.
type Tokens struct {
	Access  string
	ID      string
	Refresh string
}

// Store is the persistent configuration under the nodectl home directory.
// It owns session persistence; the workflow layers never touch the disk.
type Store struct {
	v   *viper.Viper
	dir string
}

// NewStore opens (or initializes) the config store. The directory defaults
// to ~/.nodectl and can be overridden with NODECTL_HOME.
func NewStore() (*Store, error) {
	dir := os.Getenv("NODECTL_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate home directory: %w", err)
		}
		dir = filepath.Join(home, ".nodectl")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, configFileName))
	v.SetConfigType("json")
	v.SetEnvPrefix("NODECTL")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine on first run.
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) && !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return &Store{v: v, dir: dir}, nil
}

// Dir returns the config directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Tokens returns the stored session tokens, or ErrNotLoggedIn.
func (s *Store) Tokens() (Tokens, error) {
	t := Tokens{
		Access:  s.v.GetString(keyAccessToken),
		ID:      s.v.GetString(keyIDToken),
		Refresh: s.v.GetString(keyRefreshToken),
	}
	if t.Access == "" {
		return Tokens{}, ErrNotLoggedIn
	}
	return t, nil
}

// SaveTokens persists the session tokens and user name.
func (s *Store) SaveTokens(userName string, t Tokens) error {
	s.v.Set(keyAccessToken, t.Access)
	s.v.Set(keyIDToken, t.ID)
	s.v.Set(keyRefreshToken, t.Refresh)
	s.v.Set(keyUserName, userName)
	return s.write()
}

// ClearTokens removes any stored session.
func (s *Store) ClearTokens() error {
	s.v.Set(keyAccessToken, "")
	s.v.Set(keyIDToken, "")
	s.v.Set(keyRefreshToken, "")
	s.v.Set(keyUserName, "")
	return s.write()
}

// UserName returns the logged-in user name, if any.
func (s *Store) UserName() string {
	return s.v.GetString(keyUserName)
}

func (s *Store) write() error {
	if err := s.v.WriteConfigAs(s.v.ConfigFileUsed()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return os.Chmod(s.v.ConfigFileUsed(), 0o600)
}
