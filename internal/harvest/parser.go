package harvest

import (
	"bytes"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nao1215/handletrace/internal/model"
)

// minTextBlockLen filters out navigation crumbs and button labels when
// collecting text blocks.
const minTextBlockLen = 20

// counterPatterns map profile-page phrasings to interaction counters.
// The value setter receives the parsed number.
var counterPatterns = []struct {
	re  *regexp.Regexp
	set func(c *model.InteractionCounters, n int)
}{
	{regexp.MustCompile(`(?i)([\d,]+)\s+followers?`), func(c *model.InteractionCounters, n int) { c.Followers = n }},
	{regexp.MustCompile(`(?i)([\d,]+)\s+following`), func(c *model.InteractionCounters, n int) { c.Following = n }},
	{regexp.MustCompile(`(?i)([\d,]+)\s+(?:likes?|upvotes?|stars?)`), func(c *model.InteractionCounters, n int) { c.Likes = n }},
	{regexp.MustCompile(`(?i)([\d,]+)\s+(?:comments?|repl(?:y|ies))`), func(c *model.InteractionCounters, n int) { c.Comments = n }},
	{regexp.MustCompile(`(?i)([\d,]+)\s+(?:shares?|reposts?|boosts?)`), func(c *model.InteractionCounters, n int) { c.Shares = n }},
}

// deviceHintPattern matches client attribution strings such as
// "via Android App" or "posted from Tweetbot".
var deviceHintPattern = regexp.MustCompile(`(?i)(?:via|posted from|sent from)\s+([A-Za-z][A-Za-z0-9 .]{2,30})`)

// profileParser extracts harvestable content from one profile page.
//
// Design decision: We use golang.org/x/net/html rather than regex over the
// raw page because profile pages are routinely malformed and a tolerant
// DOM walk keeps the extraction rules readable.
type profileParser struct {
	// baseURL resolves relative image links.
	baseURL *url.URL
}

// newProfileParser creates a parser for a page served from pageURL.
func newProfileParser(pageURL string) (*profileParser, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	return &profileParser{baseURL: u}, nil
}

// parsedPage is the raw material extracted in one DOM pass. The harvester
// turns it into model.HarvestedContent.
type parsedPage struct {
	posts      []string
	comments   []string
	timestamps []time.Time
	counters   model.InteractionCounters
	metadata   map[string]string
	hints      []string
	imageURLs  []string
	linkPosts  int
}

// parse walks the document once, in the same pass collecting text blocks,
// machine-readable timestamps, meta tags, and image references.
func (p *profileParser) parse(body []byte) (*parsedPage, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	page := &parsedPage{metadata: make(map[string]string)}
	var fullText strings.Builder

	var walk func(n *html.Node, inComment bool)
	walk = func(n *html.Node, inComment bool) {
		if n.Type == html.ElementNode {
			inComment = inComment || isCommentContainer(n)
			p.processElement(n, page, inComment)
			// Text blocks are captured whole; feed their text to the
			// counter scan here and stop descending.
			if isTextBlock(n.Data) {
				fullText.WriteString(collectText(n))
				fullText.WriteString(" ")
				return
			}
		}
		if n.Type == html.TextNode {
			fullText.WriteString(n.Data)
			fullText.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inComment)
		}
	}
	walk(doc, false)

	text := fullText.String()
	for _, pat := range counterPatterns {
		if m := pat.re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
				pat.set(&page.counters, n)
			}
		}
	}
	for _, m := range deviceHintPattern.FindAllStringSubmatch(text, -1) {
		page.hints = append(page.hints, strings.TrimSpace(m[1]))
	}
	return page, nil
}

// processElement handles one element node.
func (p *profileParser) processElement(n *html.Node, page *parsedPage, inComment bool) {
	switch n.Data {
	case "p", "article", "blockquote", "li":
		text := strings.TrimSpace(collectText(n))
		if len(text) < minTextBlockLen {
			return
		}
		if inComment || isCommentContainer(n) {
			page.comments = append(page.comments, text)
			return
		}
		page.posts = append(page.posts, text)
		if looksLikeShare(n, text) {
			page.linkPosts++
		}

	case "time":
		if dt := getAttr(n, "datetime"); dt != "" {
			if ts, ok := parseTimestamp(dt); ok {
				page.timestamps = append(page.timestamps, ts)
			}
		}

	case "img":
		if src := getAttr(n, "src"); src != "" {
			if resolved := p.resolveURL(src); resolved != "" {
				page.imageURLs = append(page.imageURLs, resolved)
			}
		}

	case "meta":
		name := getAttr(n, "name")
		if name == "" {
			name = getAttr(n, "property") // OpenGraph uses property
		}
		content := getAttr(n, "content")
		if name == "" || content == "" {
			return
		}
		page.metadata[name] = content
		if name == "generator" {
			page.hints = append(page.hints, content)
		}
	}
}

// resolveURL resolves a possibly relative URL against the page URL.
func (p *profileParser) resolveURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	resolved := p.baseURL.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// isTextBlock reports whether the element carries harvestable prose.
func isTextBlock(tag string) bool {
	switch tag {
	case "p", "article", "blockquote", "li":
		return true
	}
	return false
}

// isCommentContainer checks class and id attributes for reply/comment
// markers. Platforms disagree on markup, so this stays substring-loose.
func isCommentContainer(n *html.Node) bool {
	marker := strings.ToLower(getAttr(n, "class") + " " + getAttr(n, "id"))
	return strings.Contains(marker, "comment") || strings.Contains(marker, "reply")
}

// looksLikeShare reports whether a text block is an outbound link rather
// than original prose: a block dominated by one anchor.
func looksLikeShare(n *html.Node, text string) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "a" {
			anchorText := strings.TrimSpace(collectText(c))
			if anchorText != "" && len(anchorText)*2 >= len(text) {
				return true
			}
		}
	}
	return strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://")
}

// collectText concatenates all text nodes beneath n.
func collectText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// parseTimestamp accepts the datetime formats seen in the wild on
// profile pages.
func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// getAttr returns the value of the named attribute, or "".
func getAttr(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}
