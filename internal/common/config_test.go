package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.DSN != "cabinet.db" {
		t.Errorf("DSN = %q", cfg.Database.DSN)
	}
	if cfg.Ingest.Collection != "base" || cfg.Ingest.DefaultType != "invoice" {
		t.Errorf("inbox defaults = %s/%s", cfg.Ingest.Collection, cfg.Ingest.DefaultType)
	}
	if cfg.Server.GRPCAddr != ":8080" {
		t.Errorf("gRPC addr = %q", cfg.Server.GRPCAddr)
	}
	if cfg.Fetch.Timeout != 60*time.Second {
		t.Errorf("fetch timeout = %v", cfg.Fetch.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestLoadConfigYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cabinet.yaml")
	if err := os.WriteFile(path, []byte(`
database:
  dsn: postgres://file-dsn/cabinet
fetch:
  timeout: 10s
ingest:
  collection: bills
credentials:
  webbill:
    login: u
    password: p
`), 0o644); err != nil {
		t.Fatal(err)
	}

	// The environment wins over the file.
	t.Setenv("CABINET_DB", "postgres://env-dsn/cabinet")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.DSN != "postgres://env-dsn/cabinet" {
		t.Errorf("DSN = %q, want the environment's value", cfg.Database.DSN)
	}
	if cfg.Fetch.Timeout != 10*time.Second {
		t.Errorf("fetch timeout = %v, want the file's value", cfg.Fetch.Timeout)
	}
	if cfg.Ingest.Collection != "bills" {
		t.Errorf("inbox collection = %q", cfg.Ingest.Collection)
	}
	if cfg.Credentials["webbill"]["login"] != "u" {
		t.Errorf("credentials = %v", cfg.Credentials)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}
