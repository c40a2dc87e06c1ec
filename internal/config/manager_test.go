package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFirstRunWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".volkeep", "config.toml")

	cm, err := NewConfigManagerAt(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file was not created: %v", err)
	}

	cfg := cm.GetConfig()
	if cfg.Backup.RetentionDays != DefaultRetentionDays {
		t.Fatalf("retention = %d, want %d", cfg.Backup.RetentionDays, DefaultRetentionDays)
	}
	if cfg.Backup.HelperImage != DefaultHelperImage {
		t.Fatalf("helper image = %q, want %q", cfg.Backup.HelperImage, DefaultHelperImage)
	}
	if cfg.Store.Dir != filepath.Join(filepath.Dir(path), "archives") {
		t.Fatalf("store dir = %q", cfg.Store.Dir)
	}

	// the written file must load back to the same config
	again, err := NewConfigManagerAt(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.GetConfig().Backup.RetentionDays != DefaultRetentionDays {
		t.Fatalf("reloaded retention = %d", again.GetConfig().Backup.RetentionDays)
	}
}

func TestExplicitZeroRetentionDisablesIt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[backup]\nretention_days = 0\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cm, err := NewConfigManagerAt(path)
	if err != nil {
		t.Fatal(err)
	}

	cfg := cm.GetConfig()
	if cfg.Backup.RetentionDays != 0 {
		t.Fatalf("retention = %d, want 0 (disabled)", cfg.Backup.RetentionDays)
	}
	// untouched keys still get their defaults
	if cfg.Backup.HelperImage != DefaultHelperImage {
		t.Fatalf("helper image = %q, want %q", cfg.Backup.HelperImage, DefaultHelperImage)
	}
}

func TestAbsentRetentionKeepsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[backup]\nhelper_image = \"busybox:stable\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cm, err := NewConfigManagerAt(path)
	if err != nil {
		t.Fatal(err)
	}

	cfg := cm.GetConfig()
	if cfg.Backup.RetentionDays != DefaultRetentionDays {
		t.Fatalf("retention = %d, want %d", cfg.Backup.RetentionDays, DefaultRetentionDays)
	}
	if cfg.Backup.HelperImage != "busybox:stable" {
		t.Fatalf("helper image = %q", cfg.Backup.HelperImage)
	}
}
