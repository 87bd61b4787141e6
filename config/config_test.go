package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hhcho/sharecore/ring"
)

func TestLoadGlobalAndLocal(t *testing.T) {
	dir := t.TempDir()
	global := `
field_bits = 32
offline_random = true
shared_keys_path = ""

[servers]
  [servers.party0]
  ipaddr = "127.0.0.1"
  port = "7320"
`
	local := `
local_num_threads = 4
`
	if err := os.WriteFile(filepath.Join(dir, "configGlobal.toml"), []byte(global), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "configLocal.Party1.toml"), []byte(local), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir, 1)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PartyID != 1 || cfg.LocalNumThreads != 4 {
		t.Errorf("local overlay not applied: %+v", cfg)
	}
	f, err := cfg.Field()
	if err != nil {
		t.Fatal(err)
	}
	if f != ring.F32 {
		t.Errorf("Field() = %v, want F32", f)
	}
	if cfg.Servers["party0"].Port != "7320" {
		t.Errorf("servers block not decoded: %+v", cfg.Servers)
	}
}

func TestLoadRejectsBadFieldWidth(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "configGlobal.toml"), []byte("field_bits = 24\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir, -1); err == nil {
		t.Error("expected an error for field_bits = 24")
	}
}
