package harvest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/handletrace/internal/model"
	"github.com/nao1215/handletrace/internal/transport"
)

type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]*transport.Response
	failAll bool
	calls   []string
}

func (f *fakeFetcher) Fetch(_ context.Context, req transport.Request) (*transport.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.URL)
	f.mu.Unlock()
	if f.failAll {
		return nil, errors.New("connection refused")
	}
	if resp, ok := f.pages[req.URL]; ok {
		return resp, nil
	}
	return &transport.Response{StatusCode: http.StatusNotFound}, nil
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func forgePlatform() model.Platform {
	return model.Platform{
		Name:               "forge",
		ProfileURLTemplate: "https://forge.example/%s",
	}
}

const profilePage = `<!DOCTYPE html>
<html>
<head>
  <title>alice</title>
  <meta name="description" content="Systems tinkerer">
  <meta name="generator" content="ForgeCMS 2.1">
</head>
<body>
  <div>1,204 followers · 310 following · 4,500 likes</div>
  <article>Spent the weekend rewriting my dotfiles manager in a compiled language, and honestly it was worth it.</article>
  <p>Short.</p>
  <p>Does anyone have a recommendation for a decent mechanical keyboard under a hundred euros?</p>
  <div class="comment-thread">
    <p>Replying here because the original thread is locked, but the fix in the parent post worked for me.</p>
  </div>
  <p>posted from ForgeMobile for Android</p>
  <time datetime="2025-03-01T08:30:00Z">March 1</time>
  <time datetime="2025-03-02T21:15:00Z">March 2</time>
  <time datetime="not-a-date">??</time>
  <img src="/media/avatar.jpg">
  <img src="/media/header.jpg">
</body>
</html>`

func TestHTTPHarvester(t *testing.T) {
	t.Parallel()

	t.Run("extracts text timestamps counters and hints", func(t *testing.T) {
		t.Parallel()
		fetcher := &fakeFetcher{pages: map[string]*transport.Response{
			"https://forge.example/alice":            {StatusCode: 200, Body: []byte(profilePage)},
			"https://forge.example/media/avatar.jpg": {StatusCode: 200, Body: []byte{0xFF, 0xD8, 0xFF}},
		}}
		h := NewHTTPHarvester(fetcher, silentLogger())

		got, err := h.Harvest(context.Background(), forgePlatform(), "alice")
		if err != nil {
			t.Fatalf("Harvest() error = %v", err)
		}

		// Two long posts plus the "posted from" line; "Short." is dropped.
		if len(got.Posts) != 3 {
			t.Errorf("len(Posts) = %d, want 3: %q", len(got.Posts), got.Posts)
		}
		if len(got.Comments) != 1 {
			t.Errorf("len(Comments) = %d, want 1: %q", len(got.Comments), got.Comments)
		}
		if len(got.Timestamps) != 2 {
			t.Errorf("len(Timestamps) = %d, want 2", len(got.Timestamps))
		}
		if !got.Timestamps[0].Equal(time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)) {
			t.Errorf("Timestamps[0] = %v", got.Timestamps[0])
		}
		if got.Counters.Followers != 1204 || got.Counters.Following != 310 || got.Counters.Likes != 4500 {
			t.Errorf("Counters = %+v", got.Counters)
		}
		if got.Metadata["description"] != "Systems tinkerer" {
			t.Errorf("Metadata = %v", got.Metadata)
		}

		foundHint := false
		for _, hint := range got.DeviceHints {
			if strings.Contains(hint, "ForgeMobile") || strings.Contains(hint, "ForgeCMS") {
				foundHint = true
			}
		}
		if !foundHint {
			t.Errorf("DeviceHints = %v, want client attribution", got.DeviceHints)
		}
	})

	t.Run("downloads images up to the limit", func(t *testing.T) {
		t.Parallel()
		fetcher := &fakeFetcher{pages: map[string]*transport.Response{
			"https://forge.example/alice":            {StatusCode: 200, Body: []byte(profilePage)},
			"https://forge.example/media/avatar.jpg": {StatusCode: 200, Body: []byte{1}},
			"https://forge.example/media/header.jpg": {StatusCode: 200, Body: []byte{2}},
		}}
		h := NewHTTPHarvester(fetcher, silentLogger(), WithMaxImages(1))

		got, err := h.Harvest(context.Background(), forgePlatform(), "alice")
		if err != nil {
			t.Fatalf("Harvest() error = %v", err)
		}
		if len(got.Images) != 1 {
			t.Errorf("len(Images) = %d, want 1", len(got.Images))
		}
	})

	t.Run("failed image download is skipped silently", func(t *testing.T) {
		t.Parallel()
		fetcher := &fakeFetcher{pages: map[string]*transport.Response{
			"https://forge.example/alice": {StatusCode: 200, Body: []byte(profilePage)},
			// Image URLs intentionally absent: the fake returns 404.
		}}
		h := NewHTTPHarvester(fetcher, silentLogger())

		got, err := h.Harvest(context.Background(), forgePlatform(), "alice")
		if err != nil {
			t.Fatalf("Harvest() error = %v", err)
		}
		if len(got.Images) != 0 {
			t.Errorf("len(Images) = %d, want 0", len(got.Images))
		}
	})

	t.Run("transport failure returns an error", func(t *testing.T) {
		t.Parallel()
		h := NewHTTPHarvester(&fakeFetcher{failAll: true}, silentLogger())
		if _, err := h.Harvest(context.Background(), forgePlatform(), "alice"); err == nil {
			t.Error("expected error for failing transport")
		}
	})

	t.Run("non-200 profile page returns an error", func(t *testing.T) {
		t.Parallel()
		h := NewHTTPHarvester(&fakeFetcher{}, silentLogger())
		if _, err := h.Harvest(context.Background(), forgePlatform(), "ghost"); err == nil {
			t.Error("expected error for missing profile page")
		}
	})
}
