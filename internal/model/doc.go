// Package model defines the core data types for identity correlation:
// candidates, probe results, evidence, behavioral signatures, correlation
// edges, identity clusters, and the Investigation aggregate that owns them
// all for a single run.
//
// The package has no dependencies on other internal packages so that every
// component (prober, extractor, correlator, orchestrator, reports) can share
// these types without import cycles.
package model
