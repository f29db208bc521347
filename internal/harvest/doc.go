// Package harvest collects observable account content for signature
// extraction.
//
// A Harvester is an optional capability: when none is configured, or when
// a harvest fails, the investigation proceeds with empty content and the
// signature extractor degrades gracefully. The default implementation
// fetches the public profile page and mines it for text blocks,
// timestamps, interaction counters, and device hints.
package harvest
