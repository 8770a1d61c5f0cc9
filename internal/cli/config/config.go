package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultURL = "http://localhost:8080"
	RoleAdmin  = "admin"

	envPath   = "SHIFTCTL_CONFIG"
	dirName   = "hospoda"
	fileName  = "shiftctl.json"
	dirPerms  = 0700
	filePerms = 0600
)

// Config is what shiftctl remembers between runs: the pub's server and who
// is signed in there.
type Config struct {
	ServerURL string   `json:"server_url"`
	Session   *Session `json:"session,omitempty"`
}

// Session is the cached sign-in. Role mirrors the profile at login and is
// refreshed by whoami; the server still enforces it on every request.
type Session struct {
	Token       string    `json:"token"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	Role        string    `json:"role"`
	SignedInAt  time.Time `json:"signed_in_at"`
}

func (c *Config) HasToken() bool {
	return c.Session != nil && c.Session.Token != ""
}

func (c *Config) Token() string {
	if c.Session == nil {
		return ""
	}
	return c.Session.Token
}

func (c *Config) Email() string {
	if c.Session == nil {
		return ""
	}
	return c.Session.Email
}

func (c *Config) Role() string {
	if c.Session == nil {
		return ""
	}
	return c.Session.Role
}

// IsAdmin reports whether the cached session belongs to a manager.
func (c *Config) IsAdmin() bool {
	return c.HasToken() && c.Session.Role == RoleAdmin
}

func (c *Config) SignOut() {
	c.Session = nil
}

// Store reads and writes the config file at a fixed path.
type Store struct {
	path string
}

// Open resolves the config location. SHIFTCTL_CONFIG wins over the user
// config directory.
func Open() (*Store, error) {
	if p := os.Getenv(envPath); p != "" {
		return &Store{path: p}, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("locating config dir: %w", err)
	}
	return &Store{path: filepath.Join(dir, dirName, fileName)}, nil
}

func (s *Store) Path() string { return s.path }

// Load returns the stored config. A missing file means a fresh install and
// yields the default server with no session.
func (s *Store) Load() (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", s.path, err)
		}
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultURL
	}
	return cfg, nil
}

// Save writes a temp file next to the config and renames it into place.
func (s *Store) Save(cfg *Config) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".shiftctl-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(filePerms); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Remove deletes the config file. Removing a missing file is not an error.
func (s *Store) Remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
