package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nao1215/handletrace/internal/model"
	"github.com/nao1215/handletrace/internal/transport"
)

// DefaultMaxImages bounds how many profile media files are downloaded per
// account for EXIF mining.
const DefaultMaxImages = 3

// Harvester collects observable content for one confirmed account.
// Implementations must be safe for concurrent use. A nil result with a
// nil error means the account is reachable but has nothing harvestable.
type Harvester interface {
	// Harvest returns the account's observable content. Errors describe
	// transport or parse failures; callers degrade to empty content.
	Harvest(ctx context.Context, platform model.Platform, handle string) (*model.HarvestedContent, error)
}

// HTTPHarvester harvests the public profile page through a Fetcher.
type HTTPHarvester struct {
	fetcher   transport.Fetcher
	logger    *slog.Logger
	maxImages int
}

// HTTPOption configures an HTTPHarvester.
type HTTPOption func(*HTTPHarvester)

// WithMaxImages bounds per-account image downloads. Zero disables image
// harvesting entirely.
func WithMaxImages(n int) HTTPOption {
	return func(h *HTTPHarvester) {
		h.maxImages = n
	}
}

// NewHTTPHarvester creates a profile page harvester.
func NewHTTPHarvester(fetcher transport.Fetcher, logger *slog.Logger, opts ...HTTPOption) *HTTPHarvester {
	if logger == nil {
		logger = slog.Default()
	}
	h := &HTTPHarvester{
		fetcher:   fetcher,
		logger:    logger,
		maxImages: DefaultMaxImages,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Harvest fetches and mines the profile page. Image downloads are
// best-effort: a failed image is skipped, never an error.
func (h *HTTPHarvester) Harvest(ctx context.Context, platform model.Platform, handle string) (*model.HarvestedContent, error) {
	profileURL := platform.ProfileURL(handle)
	if profileURL == "" {
		return nil, fmt.Errorf("platform %q has no profile URL template", platform.Name)
	}

	resp, err := h.fetcher.Fetch(ctx, transport.Request{URL: profileURL})
	if err != nil {
		return nil, fmt.Errorf("harvest fetch failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("harvest fetch returned HTTP %d", resp.StatusCode)
	}

	parser, err := newProfileParser(profileURL)
	if err != nil {
		return nil, fmt.Errorf("invalid profile URL %q: %w", profileURL, err)
	}
	page, err := parser.parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("harvest parse failed: %w", err)
	}

	content := &model.HarvestedContent{
		Posts:       page.posts,
		Comments:    page.comments,
		Timestamps:  page.timestamps,
		Counters:    page.counters,
		Metadata:    page.metadata,
		DeviceHints: page.hints,
		SharedLinks: page.linkPosts,
	}
	h.fetchImages(ctx, page.imageURLs, content)

	h.logger.Debug("harvest complete",
		"platform", platform.Name,
		"handle", handle,
		"posts", len(content.Posts),
		"comments", len(content.Comments),
		"timestamps", len(content.Timestamps),
		"images", len(content.Images))
	return content, nil
}

// fetchImages downloads up to maxImages profile media files for EXIF
// mining. Every failure is logged and skipped.
func (h *HTTPHarvester) fetchImages(ctx context.Context, urls []string, content *model.HarvestedContent) {
	for _, imageURL := range urls {
		if len(content.Images) >= h.maxImages {
			return
		}
		if ctx.Err() != nil {
			return
		}
		resp, err := h.fetcher.Fetch(ctx, transport.Request{URL: imageURL})
		if err != nil || resp.StatusCode != http.StatusOK || len(resp.Body) == 0 {
			h.logger.Debug("image harvest skipped", "url", imageURL, "error", err)
			continue
		}
		content.Images = append(content.Images, resp.Body)
	}
}
