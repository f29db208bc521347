package variant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/nao1215/handletrace/internal/model"
)

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("respects maxVariants and has no duplicates", func(t *testing.T) {
		t.Parallel()
		g := NewGenerator(silentLogger())
		for _, seed := range []string{"alice", "alice_dev", "a.b-c", "x9", "longhandlewithmanycharacters"} {
			got := g.Generate(context.Background(), seed, 20)
			if len(got) > 20 {
				t.Errorf("seed %q: %d candidates, want <= 20", seed, len(got))
			}
			seen := make(map[string]struct{})
			for _, c := range got {
				if !Valid(c.Handle) {
					t.Errorf("seed %q: invalid candidate %q", seed, c.Handle)
				}
				if _, dup := seen[c.Handle]; dup {
					t.Errorf("seed %q: duplicate candidate %q", seed, c.Handle)
				}
				seen[c.Handle] = struct{}{}
				if c.SeedHandle != seed {
					t.Errorf("candidate %q has SeedHandle %q", c.Handle, c.SeedHandle)
				}
			}
		}
	})

	t.Run("seed itself comes first", func(t *testing.T) {
		t.Parallel()
		g := NewGenerator(silentLogger())
		got := g.Generate(context.Background(), "alice", 20)
		if len(got) == 0 || got[0].Handle != "alice" || got[0].Method != model.MethodSeed {
			t.Fatalf("first candidate = %+v, want the seed", got[0])
		}
	})

	t.Run("covers the generation methods", func(t *testing.T) {
		t.Parallel()
		g := NewGenerator(silentLogger())
		got := g.Generate(context.Background(), "alice_dev", 50)

		methods := make(map[model.GenerationMethod]bool)
		handles := make(map[string]bool)
		for _, c := range got {
			methods[c.Method] = true
			handles[c.Handle] = true
		}
		for _, want := range []model.GenerationMethod{model.MethodSeed, model.MethodCase, model.MethodSeparator, model.MethodNumeric, model.MethodRoleWord} {
			if !methods[want] {
				t.Errorf("method %q produced no candidates", want)
			}
		}
		if !handles["alicedev"] {
			t.Error("separator removal variant alicedev missing")
		}
		if !handles["alice.dev"] {
			t.Error("separator swap variant alice.dev missing")
		}
	})

	t.Run("truncation keeps earlier strategies", func(t *testing.T) {
		t.Parallel()
		g := NewGenerator(silentLogger())
		got := g.Generate(context.Background(), "alice", 3)
		if len(got) != 3 {
			t.Fatalf("len = %d, want 3", len(got))
		}
		if got[0].Method != model.MethodSeed {
			t.Errorf("got[0].Method = %v, want seed", got[0].Method)
		}
	})

	t.Run("invalid seed yields nothing", func(t *testing.T) {
		t.Parallel()
		g := NewGenerator(silentLogger())
		for _, seed := range []string{"", "a", "...", strings.Repeat("x", 51)} {
			if got := g.Generate(context.Background(), seed, 20); len(got) != 0 {
				t.Errorf("seed %q: got %d candidates, want 0", seed, len(got))
			}
		}
	})
}

func TestValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		handle string
		want   bool
	}{
		{"alice", true},
		{"al", true},
		{"a", false},
		{"", false},
		{strings.Repeat("x", 50), true},
		{strings.Repeat("x", 51), false},
		{"___", false},                // no alphanumeric
		{"a_-.b", false},              // 3 of 5 special
		{"ab_cd", true},               // 1 of 5 special
		{"alice.dev-99_x", true},      // 3 of 14 special
		{"日本語ハンドル", true},             // unicode letters count as alphanumeric
	}
	for _, tt := range tests {
		if got := Valid(tt.handle); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.handle, got, tt.want)
		}
	}
}

// lineSuggester is a deterministic Suggester for tests.
type lineSuggester struct {
	lines []string
	err   error
}

func (s *lineSuggester) Suggest(context.Context, string, int) ([]string, error) {
	return s.lines, s.err
}

func TestGenerateWithSuggester(t *testing.T) {
	t.Parallel()

	t.Run("valid suggestions are appended", func(t *testing.T) {
		t.Parallel()
		g := NewGenerator(silentLogger(), WithSuggester(&lineSuggester{
			lines: []string{"wonderalice", "a", "alice"},
		}))
		got := g.Generate(context.Background(), "alice", 50)

		found := false
		for _, c := range got {
			if c.Handle == "wonderalice" {
				if c.Method != model.MethodSuggested {
					t.Errorf("Method = %v, want suggested", c.Method)
				}
				found = true
			}
			if c.Handle == "a" {
				t.Error("invalid suggestion passed the filter")
			}
		}
		if !found {
			t.Error("suggested variant missing")
		}
	})

	t.Run("suggester failure only reduces recall", func(t *testing.T) {
		t.Parallel()
		g := NewGenerator(silentLogger(), WithSuggester(&lineSuggester{err: errors.New("quota exceeded")}))
		got := g.Generate(context.Background(), "alice", 20)
		if len(got) == 0 {
			t.Error("generation must survive a failing suggester")
		}
	})
}
