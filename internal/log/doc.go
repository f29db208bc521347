// Package log provides structured logging helpers built on log/slog.
//
// The central piece is SecureHandler, a handler wrapper that redacts
// credentials before they reach any log sink. An identity investigation
// touches aggregator API keys, breach-registry tokens, and harvested
// session material; none of it may leak into log files.
package log
