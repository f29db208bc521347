package probe

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/handletrace/internal/cache"
	"github.com/nao1215/handletrace/internal/config"
	"github.com/nao1215/handletrace/internal/model"
	"github.com/nao1215/handletrace/internal/transport"
)

// fakeFetcher counts calls and delegates to a handler.
type fakeFetcher struct {
	mu      sync.Mutex
	calls   int
	handler func(req transport.Request) (*transport.Response, error)
}

func (f *fakeFetcher) Fetch(_ context.Context, req transport.Request) (*transport.Response, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.handler(req)
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func okResponse(body string) *transport.Response {
	return &transport.Response{StatusCode: http.StatusOK, Body: []byte(body)}
}

// fakeSource returns a fixed evidence item, or behaves unavailable.
type fakeSource struct {
	sourceName  string
	evidence    *model.Evidence
	unavailable bool
	err         error
}

func (f *fakeSource) name() string { return f.sourceName }

func (f *fakeSource) collect(context.Context, model.Platform, string) (*model.Evidence, error) {
	if f.unavailable {
		return nil, ErrSourceUnavailable
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.evidence, nil
}

func evidenceOf(t model.SignalType, source string) *model.Evidence {
	ev := model.NewEvidence(t, source, t.Weight(), "test signal")
	return &ev
}

func testConfig(stealth int) *config.Config {
	cfg := config.NewConfig()
	cfg.StealthLevel = stealth
	cfg.MinInterval = time.Millisecond
	cfg.JitterFraction = 0
	cfg.BurstProbability = 0
	return cfg
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func forgePlatform() model.Platform {
	return model.Platform{
		Name:               "forge",
		ProfileURLTemplate: "https://forge.example/%s",
		ExistenceMarkers:   []string{"member since"},
		NotFoundMarkers:    []string{"no such user"},
	}
}

func TestProberDirect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		response       *transport.Response
		wantExists     bool
		wantConfidence float64
	}{
		{
			name:           "hard 404 is a strong negative",
			response:       &transport.Response{StatusCode: http.StatusNotFound},
			wantExists:     false,
			wantConfidence: 0.9,
		},
		{
			name:           "existence marker match",
			response:       okResponse("<html>alice, member since 2019</html>"),
			wantExists:     true,
			wantConfidence: 0.8,
		},
		{
			name:           "soft 404 wins over markers",
			response:       okResponse("no such user, but member since appears in the footer"),
			wantExists:     false,
			wantConfidence: 0.8,
		},
		{
			name:           "no markers is a weak negative",
			response:       okResponse("<html>generic landing page</html>"),
			wantExists:     false,
			wantConfidence: 0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fetcher := &fakeFetcher{handler: func(transport.Request) (*transport.Response, error) {
				return tt.response, nil
			}}
			p := New(testConfig(config.StealthBasic), fetcher, cache.NewMemory(), silentLogger())

			got := p.Probe(context.Background(), forgePlatform(), "alice")
			if got.Exists != tt.wantExists {
				t.Errorf("Exists = %v, want %v", got.Exists, tt.wantExists)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
			if got.Method != model.ProbeDirectTimed {
				t.Errorf("Method = %v, want %v", got.Method, model.ProbeDirectTimed)
			}
		})
	}
}

func TestProberCaching(t *testing.T) {
	t.Parallel()

	t.Run("repeat probe hits cache", func(t *testing.T) {
		t.Parallel()
		fetcher := &fakeFetcher{handler: func(transport.Request) (*transport.Response, error) {
			return &transport.Response{StatusCode: http.StatusNotFound}, nil
		}}
		p := New(testConfig(config.StealthBasic), fetcher, cache.NewMemory(), silentLogger())

		p.Probe(context.Background(), forgePlatform(), "alice")
		p.Probe(context.Background(), forgePlatform(), "alice")

		if got := fetcher.callCount(); got != 1 {
			t.Errorf("fetch count = %d, want 1 (second probe should hit cache)", got)
		}
	})

	t.Run("expired entry triggers a fresh call", func(t *testing.T) {
		t.Parallel()
		fetcher := &fakeFetcher{handler: func(transport.Request) (*transport.Response, error) {
			return &transport.Response{StatusCode: http.StatusNotFound}, nil
		}}
		cfg := testConfig(config.StealthBasic)
		cfg.CacheTTL = 30 * time.Millisecond
		p := New(cfg, fetcher, cache.NewMemory(), silentLogger())

		p.Probe(context.Background(), forgePlatform(), "alice")
		time.Sleep(50 * time.Millisecond)
		p.Probe(context.Background(), forgePlatform(), "alice")

		if got := fetcher.callCount(); got != 2 {
			t.Errorf("fetch count = %d, want 2 (expired entry must not be served)", got)
		}
	})

	t.Run("inconclusive verdicts are not cached", func(t *testing.T) {
		t.Parallel()
		fetcher := &fakeFetcher{handler: func(transport.Request) (*transport.Response, error) {
			return nil, context.DeadlineExceeded
		}}
		p := New(testConfig(config.StealthBasic), fetcher, cache.NewMemory(), silentLogger())

		first := p.Probe(context.Background(), forgePlatform(), "alice")
		if !first.Inconclusive() {
			t.Fatalf("expected inconclusive result, got %+v", first)
		}
		before := fetcher.callCount()

		p.Probe(context.Background(), forgePlatform(), "alice")
		if got := fetcher.callCount(); got <= before {
			t.Error("second probe after an inconclusive verdict did not refetch")
		}
	})
}

func TestProberPassive(t *testing.T) {
	t.Parallel()

	t.Run("aggregates signal weights with count bonus", func(t *testing.T) {
		t.Parallel()
		fetcher := &fakeFetcher{handler: func(transport.Request) (*transport.Response, error) {
			t.Error("passive probe issued a direct request")
			return nil, nil
		}}
		p := New(testConfig(config.StealthMaximum), fetcher, cache.NewMemory(), silentLogger(),
			WithSources(
				&fakeSource{sourceName: "archive", evidence: evidenceOf(model.SignalArchive, "archive")},
				&fakeSource{sourceName: "indirect", evidence: evidenceOf(model.SignalIndirectAPI, "indirect")},
			))

		got := p.Probe(context.Background(), forgePlatform(), "alice")
		if !got.Exists {
			t.Error("two strong passive signals should confirm existence")
		}
		// Weighted mean (0.9*0.9 + 0.8*0.8)/1.7 plus one 0.1 count bonus.
		want := (0.9*0.9+0.8*0.8)/1.7 + 0.1
		if diff := got.Confidence - want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("Confidence = %v, want %v", got.Confidence, want)
		}
		if got.Method != model.ProbePassive {
			t.Errorf("Method = %v, want %v", got.Method, model.ProbePassive)
		}
		if len(got.Evidence) != 2 {
			t.Errorf("len(Evidence) = %d, want 2", len(got.Evidence))
		}
	})

	t.Run("count bonus is capped", func(t *testing.T) {
		t.Parallel()
		sources := make([]signalSource, 6)
		for i := range sources {
			sources[i] = &fakeSource{sourceName: "s", evidence: evidenceOf(model.SignalAPIValidation, "api")}
		}
		p := New(testConfig(config.StealthMaximum), &fakeFetcher{}, cache.NewMemory(), silentLogger(),
			WithSources(sources...))

		got := p.Probe(context.Background(), forgePlatform(), "alice")
		if got.Confidence != 1.0 {
			t.Errorf("Confidence = %v, want clamp at 1.0", got.Confidence)
		}
	})

	t.Run("no signals from working sources is a weak negative", func(t *testing.T) {
		t.Parallel()
		p := New(testConfig(config.StealthMaximum), &fakeFetcher{}, cache.NewMemory(), silentLogger(),
			WithSources(
				&fakeSource{sourceName: "archive"},
				&fakeSource{sourceName: "indirect"},
			))

		got := p.Probe(context.Background(), forgePlatform(), "alice")
		if got.Exists {
			t.Error("no signals must not confirm existence")
		}
		if got.Confidence != 0.5 {
			t.Errorf("Confidence = %v, want 0.5", got.Confidence)
		}
	})

	t.Run("all sources unavailable is inconclusive", func(t *testing.T) {
		t.Parallel()
		p := New(testConfig(config.StealthMaximum), &fakeFetcher{}, cache.NewMemory(), silentLogger(),
			WithSources(
				&fakeSource{sourceName: "breach", unavailable: true},
				&fakeSource{sourceName: "search", unavailable: true},
			))

		got := p.Probe(context.Background(), forgePlatform(), "alice")
		if !got.Inconclusive() {
			t.Errorf("expected inconclusive result, got %+v", got)
		}
	})
}

func TestProberModerate(t *testing.T) {
	t.Parallel()

	t.Run("signal quorum skips the direct request", func(t *testing.T) {
		t.Parallel()
		fetcher := &fakeFetcher{handler: func(transport.Request) (*transport.Response, error) {
			return okResponse("member since"), nil
		}}
		p := New(testConfig(config.StealthModerate), fetcher, cache.NewMemory(), silentLogger(),
			WithSources(
				&fakeSource{sourceName: "archive", evidence: evidenceOf(model.SignalArchive, "archive")},
				&fakeSource{sourceName: "indirect", evidence: evidenceOf(model.SignalIndirectAPI, "indirect")},
			))

		got := p.Probe(context.Background(), forgePlatform(), "alice")
		if fetcher.callCount() != 0 {
			t.Error("quorum of passive signals should avoid the direct request")
		}
		if got.Method != model.ProbePassive {
			t.Errorf("Method = %v, want %v", got.Method, model.ProbePassive)
		}
	})

	t.Run("thin passive evidence falls back to mimicked direct", func(t *testing.T) {
		t.Parallel()
		var gotHeaders map[string]string
		fetcher := &fakeFetcher{handler: func(req transport.Request) (*transport.Response, error) {
			gotHeaders = req.Headers
			return okResponse("alice, member since 2019"), nil
		}}
		p := New(testConfig(config.StealthModerate), fetcher, cache.NewMemory(), silentLogger(),
			WithSources(
				&fakeSource{sourceName: "archive", evidence: evidenceOf(model.SignalArchive, "archive")},
			))

		got := p.Probe(context.Background(), forgePlatform(), "alice")
		if fetcher.callCount() != 1 {
			t.Fatalf("fetch count = %d, want 1", fetcher.callCount())
		}
		if got.Method != model.ProbeDirectMimicked {
			t.Errorf("Method = %v, want %v", got.Method, model.ProbeDirectMimicked)
		}
		if gotHeaders["User-Agent"] == "" || gotHeaders["Referer"] == "" {
			t.Errorf("mimicked request missing browser headers: %v", gotHeaders)
		}
		// The passive signal stays attached alongside the page evidence.
		if len(got.Evidence) < 2 {
			t.Errorf("len(Evidence) = %d, want passive evidence retained", len(got.Evidence))
		}
	})
}

func TestProberRetry(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	fetcher.handler = func(transport.Request) (*transport.Response, error) {
		if fetcher.callCount() == 1 {
			return &transport.Response{StatusCode: http.StatusBadGateway}, nil
		}
		return okResponse("member since"), nil
	}
	p := New(testConfig(config.StealthBasic), fetcher, cache.NewMemory(), silentLogger())

	got := p.Probe(context.Background(), forgePlatform(), "alice")
	if !got.Exists {
		t.Errorf("probe after retried 502 should succeed, got %+v", got)
	}
	if fetcher.callCount() != 2 {
		t.Errorf("fetch count = %d, want 2", fetcher.callCount())
	}
}
