package model

import "time"

// InteractionCounters holds coarse activity counters harvested from a
// profile. Missing counters stay zero; extractors treat zero denominators
// as "no data", never as an error.
type InteractionCounters struct {
	// Likes is the number of likes/upvotes given or received.
	Likes int `json:"likes"`

	// Comments is the number of comments/replies authored.
	Comments int `json:"comments"`

	// Shares is the number of shares/reposts.
	Shares int `json:"shares"`

	// Followers and Following describe the account's social graph size.
	Followers int `json:"followers"`
	Following int `json:"following"`

	// ThreadsStarted counts conversations the account initiated.
	ThreadsStarted int `json:"threads_started"`

	// ThreadsJoined counts conversations the account participated in
	// without starting them.
	ThreadsJoined int `json:"threads_joined"`
}

// HarvestedContent is everything a harvester could collect for one account.
// Every field is optional: the signature extractor degrades per missing
// field rather than failing, so a partially filled struct is normal.
type HarvestedContent struct {
	// Posts are the account's own post texts.
	Posts []string `json:"posts,omitempty"`

	// Comments are reply texts authored by the account.
	Comments []string `json:"comments,omitempty"`

	// Timestamps are posting times, in no particular order.
	Timestamps []time.Time `json:"timestamps,omitempty"`

	// Counters are coarse interaction counters.
	Counters InteractionCounters `json:"counters"`

	// Metadata carries free-form harvested key/value pairs such as
	// client names, location strings, or bio fragments.
	Metadata map[string]string `json:"metadata,omitempty"`

	// DeviceHints are raw device/browser indicator strings found in
	// harvested content (user agents, "via Android" markers, client tags).
	DeviceHints []string `json:"device_hints,omitempty"`

	// SharedLinks counts link-only or repost entries among Posts.
	SharedLinks int `json:"shared_links"`

	// Images holds raw bytes of a few harvested profile media files.
	// The technical extractor mines them for EXIF device indicators.
	Images [][]byte `json:"-"`
}

// Texts returns all harvested text bodies, posts first.
func (h *HarvestedContent) Texts() []string {
	out := make([]string, 0, len(h.Posts)+len(h.Comments))
	out = append(out, h.Posts...)
	out = append(out, h.Comments...)
	return out
}

// SampleSize is the number of harvested content items that carry signal.
func (h *HarvestedContent) SampleSize() int {
	n := len(h.Posts) + len(h.Comments)
	if len(h.Timestamps) > n {
		n = len(h.Timestamps)
	}
	return n
}

// Empty reports whether nothing usable was harvested.
func (h *HarvestedContent) Empty() bool {
	return h == nil || (len(h.Posts) == 0 && len(h.Comments) == 0 &&
		len(h.Timestamps) == 0 && len(h.Metadata) == 0 && len(h.DeviceHints) == 0)
}
