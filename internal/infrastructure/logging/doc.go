// Package logging provides structured logging for Tillfold Core.
//
// It wraps log/slog with the configuration plumbing the rest of the
// application expects: level and format from config.yaml, and default
// service/version fields on every record.
package logging
