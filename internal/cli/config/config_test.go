package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", fileName)
	t.Setenv(envPath, path)
	store, err := Open()
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	if store.Path() != path {
		t.Fatalf("expected %s, got %s", path, store.Path())
	}
	return store
}

func TestOpenDefaultsToUserConfigDir(t *testing.T) {
	t.Setenv(envPath, "")
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}
	store, err := Open()
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	if store.Path() != filepath.Join(userConfigDir, dirName, fileName) {
		t.Errorf("unexpected path %s", store.Path())
	}
}

func TestStoreLoad(t *testing.T) {
	t.Run("fresh install has no session", func(t *testing.T) {
		store := openTempStore(t)
		cfg, err := store.Load()
		if err != nil {
			t.Fatalf("Load() returned error: %v", err)
		}
		if cfg.ServerURL != DefaultURL {
			t.Errorf("expected ServerURL %s, got %s", DefaultURL, cfg.ServerURL)
		}
		if cfg.HasToken() || cfg.IsAdmin() || cfg.Token() != "" {
			t.Errorf("expected no session, got %+v", cfg.Session)
		}
	})

	t.Run("fills in missing server url", func(t *testing.T) {
		store := openTempStore(t)
		if err := os.MkdirAll(filepath.Dir(store.Path()), dirPerms); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		body := `{"session":{"token":"abc","email":"jana@hospoda.cz","role":"employee"}}`
		if err := os.WriteFile(store.Path(), []byte(body), filePerms); err != nil {
			t.Fatalf("write: %v", err)
		}
		cfg, err := store.Load()
		if err != nil {
			t.Fatalf("Load() returned error: %v", err)
		}
		if cfg.ServerURL != DefaultURL || cfg.Token() != "abc" || cfg.Role() != "employee" {
			t.Errorf("unexpected config %+v", cfg)
		}
	})

	t.Run("rejects malformed file", func(t *testing.T) {
		store := openTempStore(t)
		_ = os.MkdirAll(filepath.Dir(store.Path()), dirPerms)
		_ = os.WriteFile(store.Path(), []byte("{"), filePerms)
		if _, err := store.Load(); err == nil {
			t.Fatal("expected decode error")
		}
	})
}

func TestStoreRoundTripsSessionRole(t *testing.T) {
	store := openTempStore(t)

	signedIn := time.Date(2025, 3, 20, 9, 30, 0, 0, time.UTC)
	cfg := &Config{
		ServerURL: "https://smeny.hospoda.cz",
		Session: &Session{
			Token:       "tok",
			Email:       "pavel@hospoda.cz",
			DisplayName: "Pavel",
			Role:        RoleAdmin,
			SignedInAt:  signedIn,
		},
	}
	if err := store.Save(cfg); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != filePerms {
		t.Errorf("expected perms %o, got %o", filePerms, info.Mode().Perm())
	}
	entries, _ := os.ReadDir(filepath.Dir(store.Path()))
	if len(entries) != 1 {
		t.Errorf("expected only the config file, got %d entries", len(entries))
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if !loaded.IsAdmin() || loaded.Email() != "pavel@hospoda.cz" {
		t.Errorf("unexpected session %+v", loaded.Session)
	}
	if !loaded.Session.SignedInAt.Equal(signedIn) {
		t.Errorf("expected sign-in time %v, got %v", signedIn, loaded.Session.SignedInAt)
	}

	loaded.SignOut()
	if loaded.HasToken() || loaded.IsAdmin() {
		t.Error("expected SignOut to drop the session")
	}

	if err := store.Remove(); err != nil {
		t.Fatalf("Remove() returned error: %v", err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Errorf("expected config to be removed, got %v", err)
	}
	if err := store.Remove(); err != nil {
		t.Errorf("second Remove() should be a no-op, got %v", err)
	}
}

func TestIsAdminNeedsToken(t *testing.T) {
	cfg := &Config{Session: &Session{Role: RoleAdmin}}
	if cfg.IsAdmin() {
		t.Error("a role without a token must not count as admin")
	}
}
