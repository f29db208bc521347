package model

import (
	"fmt"
	"strings"
	"time"
)

// Platform describes one remote service that can host accounts.
// The engine never hardcodes platform behavior elsewhere; everything a
// prober or harvester needs to know about a service lives here.
//
// Design decision: We use a data-driven descriptor rather than one type per
// platform because platforms differ only in URLs, markers, and pacing.
// New platforms can be added from the YAML config file without code changes.
type Platform struct {
	// Name is the canonical lowercase identifier (e.g. "github").
	Name string `json:"name" yaml:"name"`

	// DisplayName is the human-readable name for reports.
	// If empty, a title-cased Name is used.
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty"`

	// ProfileURLTemplate builds a profile URL from a handle.
	// It must contain exactly one %s verb (e.g. "https://github.com/%s").
	ProfileURLTemplate string `json:"profile_url_template" yaml:"profile_url_template"`

	// ExistenceMarkers are substrings whose presence in a profile page body
	// indicates the account exists (structural match, not a 200 check,
	// because many platforms return 200 with a soft "not found" page).
	ExistenceMarkers []string `json:"existence_markers,omitempty" yaml:"existence_markers,omitempty"`

	// NotFoundMarkers are substrings indicating a soft 404 page.
	NotFoundMarkers []string `json:"not_found_markers,omitempty" yaml:"not_found_markers,omitempty"`

	// IndirectSearchTemplate is an optional API endpoint that reveals
	// account existence without touching the profile page, such as a
	// repository-ownership search on code forges. One %s verb for the handle.
	IndirectSearchTemplate string `json:"indirect_search_template,omitempty" yaml:"indirect_search_template,omitempty"`

	// MinInterval is the minimum spacing between requests to this platform.
	// Zero means the global default applies.
	MinInterval time.Duration `json:"min_interval,omitempty" yaml:"min_interval,omitempty"`

	// Disabled excludes the platform from investigations.
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// ProfileURL returns the profile URL for the given handle.
func (p Platform) ProfileURL(handle string) string {
	if p.ProfileURLTemplate == "" {
		return ""
	}
	return fmt.Sprintf(p.ProfileURLTemplate, handle)
}

// IndirectSearchURL returns the indirect API URL for the given handle,
// or an empty string if the platform has no indirect endpoint.
func (p Platform) IndirectSearchURL(handle string) string {
	if p.IndirectSearchTemplate == "" {
		return ""
	}
	return fmt.Sprintf(p.IndirectSearchTemplate, handle)
}

// Title returns the display name, falling back to a capitalized Name.
func (p Platform) Title() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if p.Name == "" {
		return "Unknown"
	}
	return strings.ToUpper(p.Name[:1]) + p.Name[1:]
}

// BuiltinPlatforms returns the default platform registry.
// These cover services whose profile pages are publicly reachable and have
// stable existence markers. The YAML config file can override or extend
// this set per run.
func BuiltinPlatforms() []Platform {
	return []Platform{
		{
			Name:                   "github",
			DisplayName:            "GitHub",
			ProfileURLTemplate:     "https://github.com/%s",
			ExistenceMarkers:       []string{`itemprop="additionalName"`, "contributions"},
			NotFoundMarkers:        []string{"Not Found", "404"},
			IndirectSearchTemplate: "https://api.github.com/search/repositories?q=user:%s",
			MinInterval:            2 * time.Second,
		},
		{
			Name:               "gitlab",
			DisplayName:        "GitLab",
			ProfileURLTemplate: "https://gitlab.com/%s",
			ExistenceMarkers:   []string{"user-profile", "@"},
			NotFoundMarkers:    []string{"Page Not Found"},
			MinInterval:        2 * time.Second,
		},
		{
			Name:               "reddit",
			DisplayName:        "Reddit",
			ProfileURLTemplate: "https://www.reddit.com/user/%s/about.json",
			ExistenceMarkers:   []string{`"kind": "t2"`, `"name"`},
			NotFoundMarkers:    []string{"Sorry, nobody on Reddit goes by that name"},
			MinInterval:        3 * time.Second,
		},
		{
			Name:               "mastodon",
			DisplayName:        "Mastodon (mastodon.social)",
			ProfileURLTemplate: "https://mastodon.social/@%s",
			ExistenceMarkers:   []string{`property="og:type"`, "profile"},
			NotFoundMarkers:    []string{"The page you are looking for isn't here"},
			MinInterval:        2 * time.Second,
		},
		{
			Name:                   "hackernews",
			DisplayName:            "Hacker News",
			ProfileURLTemplate:     "https://news.ycombinator.com/user?id=%s",
			ExistenceMarkers:       []string{"created:", "karma:"},
			NotFoundMarkers:        []string{"No such user."},
			IndirectSearchTemplate: "https://hn.algolia.com/api/v1/search?tags=author_%s",
			MinInterval:            time.Second,
		},
		{
			Name:               "keybase",
			DisplayName:        "Keybase",
			ProfileURLTemplate: "https://keybase.io/%s",
			ExistenceMarkers:   []string{"profile-heading", "keybase.io/"},
			NotFoundMarkers:    []string{"Sorry, this person couldn't be found"},
			MinInterval:        2 * time.Second,
		},
	}
}
