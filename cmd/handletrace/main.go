// Package main provides the entry point for the handletrace CLI.
//
// handletrace correlates online identities across platforms starting from
// a single seed handle. It generates candidate handle variants, probes
// platforms for matching accounts, fingerprints their behavior, and
// clusters accounts that likely share an owner.
//
// Usage:
//
//	handletrace trace <seed-handle>
//	handletrace platforms
//
// See --help for all available options.
package main

// main is the entry point for handletrace.
func main() {
	Execute()
}
