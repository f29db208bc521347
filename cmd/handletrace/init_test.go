package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// TestNewInitCmd tests the init command.
func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates configuration file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".handletrace")
		cmd := NewInitCmd()
		if err := cmd.Flags().Set("output", path); err != nil {
			t.Fatal(err)
		}

		if err := runInitCmd(cmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading generated config: %v", err)
		}
		if !strings.Contains(string(data), "platforms:") {
			t.Error("expected generated config to mention platforms")
		}
		if !strings.Contains(string(data), "credentials:") {
			t.Error("expected generated config to mention credentials")
		}

		// Generated template must be valid YAML.
		var parsed map[string]any
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			t.Errorf("generated config is not valid YAML: %v", err)
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".handletrace")
		if err := os.WriteFile(path, []byte("existing"), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewInitCmd()
		if err := cmd.Flags().Set("output", path); err != nil {
			t.Fatal(err)
		}
		if err := runInitCmd(cmd, nil); err == nil {
			t.Fatal("expected an error for existing file")
		}
	})

	t.Run("overwrites with force", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".handletrace")
		if err := os.WriteFile(path, []byte("existing"), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewInitCmd()
		if err := cmd.Flags().Set("output", path); err != nil {
			t.Fatal(err)
		}
		if err := cmd.Flags().Set("force", "true"); err != nil {
			t.Fatal(err)
		}
		if err := runInitCmd(cmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) == "existing" {
			t.Error("expected file to be overwritten")
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")
		cmd := NewInitCmd()
		if err := cmd.Flags().Set("output", path); err != nil {
			t.Fatal(err)
		}
		if err := runInitCmd(cmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected file to exist: %v", err)
		}
	})
}
