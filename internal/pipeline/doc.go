// Package pipeline orchestrates one investigation run.
//
// A run walks the state machine Created → Discovering → Fingerprinting →
// Correlating → Finalized. Discovering fans probe tasks out over a
// bounded worker pool; Fingerprinting harvests and extracts behavioral
// signatures for every confirmed account; Correlating scores all account
// pairs and clusters them. Failed is reached only when a stage that had
// input produced no usable data at all; individual platform failures
// degrade to notes on the investigation.
//
// The Engine exposes investigations by handle: runs execute
// asynchronously and GetInvestigation returns a consistent snapshot at
// any point, including mid-run.
package pipeline
