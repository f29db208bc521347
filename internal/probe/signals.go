package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/nao1215/handletrace/internal/model"
	"github.com/nao1215/handletrace/internal/transport"
)

// signalSource is one passive existence signal. Sources never contact the
// target profile page; they consult third parties or platform side
// channels. A (nil, nil) return means the source worked but found no
// signal; ErrSourceUnavailable means the source cannot run at all (for
// example a missing credential) and should be skipped silently.
type signalSource interface {
	name() string
	collect(ctx context.Context, platform model.Platform, handle string) (*model.Evidence, error)
}

// caller is the shared outbound path for signal sources: pacing keyed by
// the remote host plus the standard retry policy.
type caller struct {
	fetcher transport.Fetcher
	pacer   *Pacer
}

// get fetches one URL with pacing and retries. The pacing key is the URL
// host so independent services do not share an interval.
func (c *caller) get(ctx context.Context, rawURL string, headers map[string]string) (*transport.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid source url %q: %w", rawURL, err)
	}
	if err := c.pacer.Acquire(ctx, u.Host); err != nil {
		return nil, err
	}
	return fetchRetry(ctx, c.fetcher, transport.Request{URL: rawURL, Headers: headers})
}

// archiveSource checks the Wayback Machine availability API for an
// archived snapshot of the profile page. A snapshot proves the account
// existed at capture time.
type archiveSource struct {
	caller *caller
}

func (s *archiveSource) name() string { return "wayback_machine" }

func (s *archiveSource) collect(ctx context.Context, platform model.Platform, handle string) (*model.Evidence, error) {
	profileURL := platform.ProfileURL(handle)
	if profileURL == "" {
		return nil, ErrSourceUnavailable
	}

	resp, err := s.caller.get(ctx, "https://archive.org/wayback/available?url="+url.QueryEscape(profileURL), nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, nil
	}

	var payload struct {
		ArchivedSnapshots struct {
			Closest struct {
				Available bool   `json:"available"`
				Timestamp string `json:"timestamp"`
			} `json:"closest"`
		} `json:"archived_snapshots"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("malformed wayback response: %w", err)
	}
	if !payload.ArchivedSnapshots.Closest.Available {
		return nil, nil
	}

	ev := model.NewEvidence(model.SignalArchive, s.name(), model.SignalArchive.Weight(),
		fmt.Sprintf("archived snapshot of %s exists (capture %s)", profileURL, payload.ArchivedSnapshots.Closest.Timestamp))
	return &ev, nil
}

// breachSource checks a public breach registry for the handle. Membership
// proves an account with this identifier existed somewhere, which is a
// strong signal when the handle is distinctive.
type breachSource struct {
	caller *caller
	apiKey string
}

func (s *breachSource) name() string { return "breach_registry" }

func (s *breachSource) collect(ctx context.Context, _ model.Platform, handle string) (*model.Evidence, error) {
	if s.apiKey == "" {
		return nil, ErrSourceUnavailable
	}

	headers := map[string]string{"hibp-api-key": s.apiKey}
	resp, err := s.caller.get(ctx, "https://haveibeenpwned.com/api/v3/breachedaccount/"+url.PathEscape(handle), headers)
	if err != nil {
		return nil, err
	}
	switch resp.StatusCode {
	case 200:
		ev := model.NewEvidence(model.SignalBreachRegistry, s.name(), model.SignalBreachRegistry.Weight(),
			fmt.Sprintf("handle %q appears in breach registry", handle))
		return &ev, nil
	case 404:
		return nil, nil
	default:
		return nil, nil
	}
}

// aggregatorSource checks a public handle aggregator. Presence there is a
// weak signal: it shows the handle is in use by someone, not that it is
// in use on this platform.
type aggregatorSource struct {
	caller *caller
}

func (s *aggregatorSource) name() string { return "gravatar" }

func (s *aggregatorSource) collect(ctx context.Context, _ model.Platform, handle string) (*model.Evidence, error) {
	resp, err := s.caller.get(ctx, "https://gravatar.com/"+url.PathEscape(handle)+".json", nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, nil
	}

	ev := model.NewEvidence(model.SignalAggregator, s.name(), model.SignalAggregator.Weight(),
		fmt.Sprintf("handle %q has a public aggregator profile", handle))
	return &ev, nil
}

// searchSource counts search engine results for the quoted handle scoped
// to the platform's host.
type searchSource struct {
	caller *caller
	apiKey string
}

func (s *searchSource) name() string { return "search_results" }

func (s *searchSource) collect(ctx context.Context, platform model.Platform, handle string) (*model.Evidence, error) {
	if s.apiKey == "" {
		return nil, ErrSourceUnavailable
	}
	host := platformHost(platform)
	if host == "" {
		return nil, ErrSourceUnavailable
	}

	query := url.Values{}
	query.Set("engine", "google")
	query.Set("q", fmt.Sprintf("%q site:%s", handle, host))
	query.Set("api_key", s.apiKey)

	resp, err := s.caller.get(ctx, "https://serpapi.com/search.json?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, nil
	}

	var payload struct {
		SearchInformation struct {
			TotalResults int64 `json:"total_results"`
		} `json:"search_information"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("malformed search response: %w", err)
	}
	if payload.SearchInformation.TotalResults == 0 {
		return nil, nil
	}

	ev := model.NewEvidence(model.SignalSearchResult, s.name(), model.SignalSearchResult.Weight(),
		fmt.Sprintf("%d search results for %q on %s", payload.SearchInformation.TotalResults, handle, host))
	return &ev, nil
}

// indirectSource queries the platform's own side-channel endpoint, such
// as a repository-ownership search on code forges. It touches the
// platform but not the profile page.
type indirectSource struct {
	caller *caller
}

func (s *indirectSource) name() string { return "indirect_api" }

func (s *indirectSource) collect(ctx context.Context, platform model.Platform, handle string) (*model.Evidence, error) {
	endpoint := platform.IndirectSearchURL(handle)
	if endpoint == "" {
		return nil, ErrSourceUnavailable
	}

	resp, err := s.caller.get(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, nil
	}
	if !strings.Contains(strings.ToLower(string(resp.Body)), strings.ToLower(handle)) {
		return nil, nil
	}

	ev := model.NewEvidence(model.SignalIndirectAPI, s.name(), model.SignalIndirectAPI.Weight(),
		fmt.Sprintf("%s side channel confirms %q", platform.Title(), handle))
	return &ev, nil
}

// platformHost extracts the host of the platform's profile URL space.
func platformHost(platform model.Platform) string {
	profileURL := platform.ProfileURL("probe")
	u, err := url.Parse(profileURL)
	if err != nil {
		return ""
	}
	return u.Host
}
