// Package variant generates candidate handles from a seed handle.
//
// Generation is deterministic and offline: case variants, separator
// insertion and removal, numeric prefixes and suffixes, and role-word
// combinations. An optional Suggester adds externally proposed variants;
// its absence only reduces recall, never correctness. Every emitted
// candidate passes handle validation, and the set is deduplicated and
// truncated to the configured maximum.
package variant
