package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/Adembc/lazysrv/internal/core/domain"
)

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String(FlagStore, "", "")
	fs.Bool(FlagDebug, false, "")
	fs.Bool(FlagNoProbe, false, "")
	return fs
}

func TestResolve_BaseOnly(t *testing.T) {
	base := domain.DefaultConfig("/home/u/.lazysrv")

	got, err := Resolve(base, testFlags())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != base {
		t.Fatalf("Resolve() = %+v, want %+v", got, base)
	}
}

func TestResolve_EnvOverridesBase(t *testing.T) {
	t.Setenv("LAZYSRV_PROBE_TIMEOUT_SECONDS", "3")
	t.Setenv("LAZYSRV_BACKUP_COUNT", "0")
	t.Setenv("LAZYSRV_PROBE_ENABLED", "false")

	got, err := Resolve(domain.DefaultConfig("/tmp/x"), testFlags())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Probe.TimeoutSeconds != 3 {
		t.Errorf("TimeoutSeconds = %d, want 3", got.Probe.TimeoutSeconds)
	}
	if got.BackupCount != 0 {
		t.Errorf("BackupCount = %d, want 0", got.BackupCount)
	}
	if got.Probe.Enabled {
		t.Errorf("probe should be disabled by env")
	}
}

func TestResolve_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("LAZYSRV_STORE_PATH", "/from/env.xml")

	fs := testFlags()
	if err := fs.Parse([]string{"--store", "/from/flag.xml", "--debug", "--no-probe"}); err != nil {
		t.Fatal(err)
	}

	got, err := Resolve(domain.DefaultConfig("/tmp/x"), fs)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.StorePath != "/from/flag.xml" {
		t.Errorf("StorePath = %q", got.StorePath)
	}
	if !got.Debug {
		t.Errorf("debug flag not applied")
	}
	if got.Probe.Enabled {
		t.Errorf("--no-probe not applied")
	}
}

func TestResolve_UnsetFlagKeepsEnv(t *testing.T) {
	t.Setenv("LAZYSRV_STORE_PATH", "/from/env.xml")

	got, err := Resolve(domain.DefaultConfig("/tmp/x"), testFlags())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.StorePath != "/from/env.xml" {
		t.Errorf("StorePath = %q, want env value", got.StorePath)
	}
}

func TestOSConfigPaths(t *testing.T) {
	c := &OSConfig{homeDir: "/home/u"}
	if got, want := c.ConfigPath("Servers.xml"), filepath.Join("/home/u", ".lazysrv", "Servers.xml"); got != want {
		t.Errorf("ConfigPath() = %q, want %q", got, want)
	}
	if got, want := c.LogPath("lazysrv.log"), filepath.Join("/home/u", ".lazysrv", "logs", "lazysrv.log"); got != want {
		t.Errorf("LogPath() = %q, want %q", got, want)
	}
}

func TestExpandHome(t *testing.T) {
	tests := map[string]string{
		"~":            "/home/u",
		"~/data/s.xml": "/home/u/data/s.xml",
		"/abs/s.xml":   "/abs/s.xml",
		"rel/s.xml":    "rel/s.xml",
		"~other/s.xml": "~other/s.xml",
	}
	for in, want := range tests {
		if got := ExpandHome("/home/u", in); got != want {
			t.Errorf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}
