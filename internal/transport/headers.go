package transport

import (
	"math/rand"
	"net/url"
	"sync"
)

// HeaderProfile is one realistic browser header set. Profiles are sent
// whole: mixing a Chrome User-Agent with Firefox Accept headers is itself
// an automation fingerprint.
type HeaderProfile struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
}

// headerProfiles are current mainstream browser profiles. The exact
// versions matter less than internal consistency and rotation.
var headerProfiles = []HeaderProfile{
	{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.9",
	},
	{
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.8",
	},
	{
		UserAgent:      "Mozilla/5.0 (X11; Linux x86_64; rv:127.0) Gecko/20100101 Firefox/127.0",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.5",
	},
	{
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (Version/17.5 Safari/605.1.15)",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.9",
	},
}

// referrerSources are plausible navigation origins for mimicked requests.
// A profile visit arriving from a search engine is the single most common
// real-world pattern.
var referrerSources = []string{
	"https://www.google.com/",
	"https://duckduckgo.com/",
	"https://www.bing.com/",
}

// profilePicker serializes access to the shared RNG. Probe workers pick
// profiles concurrently.
var profilePicker = struct {
	sync.Mutex
	rng *rand.Rand
}{rng: rand.New(rand.NewSource(rand.Int63()))} //nolint:gosec // header variation needs no crypto randomness

// RandomProfile returns one of the browser header profiles.
func RandomProfile() HeaderProfile {
	profilePicker.Lock()
	defer profilePicker.Unlock()
	return headerProfiles[profilePicker.rng.Intn(len(headerProfiles))]
}

// MimicHeaders builds a full mimicked header set for targetURL: a random
// coherent browser profile plus a plausible referer. The referer is either
// a search engine or the target site's own origin, matching how real
// visitors arrive at profile pages.
func MimicHeaders(targetURL string) map[string]string {
	profile := RandomProfile()
	// Accept-Encoding is deliberately left to net/http: setting it by hand
	// disables the transparent gzip handling the body readers rely on.
	headers := map[string]string{
		"User-Agent":      profile.UserAgent,
		"Accept":          profile.Accept,
		"Accept-Language": profile.AcceptLanguage,
	}

	profilePicker.Lock()
	n := profilePicker.rng.Intn(len(referrerSources) + 1)
	profilePicker.Unlock()

	if n < len(referrerSources) {
		headers["Referer"] = referrerSources[n]
	} else if u, err := url.Parse(targetURL); err == nil && u.Host != "" {
		headers["Referer"] = u.Scheme + "://" + u.Host + "/"
	}
	return headers
}
