package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.RedisAddr != DefaultRedisAddr {
		t.Errorf("RedisAddr = %s, want %s", s.RedisAddr, DefaultRedisAddr)
	}
	if s.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %s, want %s", s.LogLevel, DefaultLogLevel)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swss.yaml")
	content := "redis_addr: 127.0.0.1:6400\nrouter_mac: 02:42:ac:11:00:02\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.RedisAddr != "127.0.0.1:6400" {
		t.Errorf("RedisAddr = %s", s.RedisAddr)
	}
	if s.RouterMAC != "02:42:ac:11:00:02" {
		t.Errorf("RouterMAC = %s", s.RouterMAC)
	}
	if s.LogLevel != "debug" {
		t.Errorf("LogLevel = %s", s.LogLevel)
	}
	// Unset fields still get defaults.
	if s.MetricsAddr != DefaultMetricsAddr {
		t.Errorf("MetricsAddr = %s, want %s", s.MetricsAddr, DefaultMetricsAddr)
	}
}

func TestLoadRejectsBadMAC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swss.yaml")
	if err := os.WriteFile(path, []byte("router_mac: not-a-mac\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted invalid router_mac")
	}
}

func TestEnvOverridesRedisAddr(t *testing.T) {
	t.Setenv("SWSS_REDIS_ADDR", "10.9.9.9:6379")
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.RedisAddr != "10.9.9.9:6379" {
		t.Errorf("RedisAddr = %s, want env override", s.RedisAddr)
	}
}
