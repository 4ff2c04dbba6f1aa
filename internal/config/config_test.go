package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheBase_XDGSet(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/custom/cache")
	got := cacheBase()
	want := filepath.Join("/custom/cache", "ruggle")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCacheBase_HomeDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	got := cacheBase()
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}
	want := filepath.Join(home, ".cache", "ruggle")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCacheBase_TmpFallback(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "")
	got := cacheBase()
	if !strings.Contains(got, "ruggle") {
		t.Errorf("expected ruggle in path, got %q", got)
	}
}

func TestIndexDirUnderCacheBase(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/custom/cache")
	got := IndexDir()
	want := filepath.Join("/custom/cache", "ruggle", "index")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSocketPathUsesXDGRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	got := SocketPath()
	want := filepath.Join("/run/user/1000", "ruggle", "daemon.sock")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("RUGGLE_INDEX_DEFAULT_THRESHOLD", "")
	t.Setenv("RUGGLE_SERVER_BIND_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Index.DefaultThreshold != 0.6 {
		t.Errorf("expected default threshold 0.6, got %v", cfg.Index.DefaultThreshold)
	}
	if cfg.Index.DefaultLimit != 20 {
		t.Errorf("expected default limit 20, got %v", cfg.Index.DefaultLimit)
	}
	if cfg.Server.BindAddr != "127.0.0.1:7887" {
		t.Errorf("expected default bind addr, got %q", cfg.Server.BindAddr)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("RUGGLE_SERVER_BIND_ADDR", "0.0.0.0:9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.BindAddr != "0.0.0.0:9000" {
		t.Errorf("expected env override to apply, got %q", cfg.Server.BindAddr)
	}
}
