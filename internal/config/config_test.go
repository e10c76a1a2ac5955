package config

import (
	"path/filepath"
	"testing"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.Addr != ":5000" {
		t.Errorf("default addr should be :5000, got %q", cfg.Addr)
	}
	if cfg.PreferredTab != "redact-image" {
		t.Errorf("default preferred tab should be redact-image, got %q", cfg.PreferredTab)
	}
	if cfg.Store.Driver != StoreSQLite || cfg.Store.Path == "" {
		t.Errorf("default store should be sqlite with a path, got %+v", cfg.Store)
	}
	if cfg.Store.Database != "app_usage_db" || cfg.Store.Collection != "usage_logs" {
		t.Errorf("default mongo names unexpected: %+v", cfg.Store)
	}
	if cfg.Sink.Driver != SinkLocal || cfg.Sink.Dir != "uploads" {
		t.Errorf("default sink should be local uploads, got %+v", cfg.Sink)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".usagelog.json")

	cfg := NewConfig()
	cfg.Addr = "127.0.0.1:9000"
	cfg.Store = StoreConfig{Driver: StorePostgres, DSN: "postgres://localhost/usage"}
	cfg.Sink = SinkConfig{Driver: SinkS3, Bucket: "uploads", Region: "eu-west-1"}

	if err := Save(cfg, configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if loaded.Addr != cfg.Addr {
		t.Errorf("addr mismatch: got %q, want %q", loaded.Addr, cfg.Addr)
	}
	if loaded.Store.Driver != StorePostgres || loaded.Store.DSN != cfg.Store.DSN {
		t.Errorf("store mismatch: got %+v, want %+v", loaded.Store, cfg.Store)
	}
	if loaded.Sink.Driver != SinkS3 || loaded.Sink.Bucket != "uploads" || loaded.Sink.Region != "eu-west-1" {
		t.Errorf("sink mismatch: got %+v, want %+v", loaded.Sink, cfg.Sink)
	}
}
