// Package config holds runtime configuration for handletrace.
//
// Configuration is assembled from three layers: compiled-in defaults,
// an optional YAML file (.handletrace) with platform overrides and
// credentials, and CLI flags. The resulting Config struct is passed by
// dependency injection; there is no global configuration state.
package config
