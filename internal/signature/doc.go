// Package signature turns harvested account content into behavioral
// signatures.
//
// A signature has five dimensions: linguistic (writing style), temporal
// (posting rhythm), interaction (engagement shape), content (topics and
// post types), and technical (device and client indicators). Each
// dimension projects to a fixed-order numeric vector so two accounts'
// signatures can be compared position by position.
//
// Extraction never fails on missing data: a dimension with nothing to
// measure comes out all-zero, and the overall confidence reflects how
// much material was actually available.
package signature
