package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewPlatformsCmd tests the platforms command.
func TestNewPlatformsCmd(t *testing.T) {
	t.Parallel()

	t.Run("lists built-in platforms", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cmd := NewPlatformsCmd()
		cmd.SetOut(&buf)

		if err := runPlatformsCmd(cmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"NAME", "github", "reddit", "mastodon"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("hides disabled platforms by default", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "platforms:\n  github:\n    disabled: true\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		var hidden bytes.Buffer
		cmd := NewPlatformsCmd()
		cmd.SetOut(&hidden)
		if err := cmd.Flags().Set("config", path); err != nil {
			t.Fatal(err)
		}
		if err := runPlatformsCmd(cmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(hidden.String(), "github") {
			t.Error("expected disabled platform to be hidden")
		}

		var shown bytes.Buffer
		cmd = NewPlatformsCmd()
		cmd.SetOut(&shown)
		if err := cmd.Flags().Set("config", path); err != nil {
			t.Fatal(err)
		}
		if err := cmd.Flags().Set("all", "true"); err != nil {
			t.Fatal(err)
		}
		if err := runPlatformsCmd(cmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(shown.String(), "disabled") {
			t.Error("expected disabled platform with --all")
		}
	})
}
