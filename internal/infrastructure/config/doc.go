// Package config loads and validates Tillfold Core configuration.
//
// Configuration is sourced in three layers, each overriding the last:
// hardcoded defaults, a YAML file, and TILLFOLD_* environment variables.
// A single Config value is loaded at startup and passed explicitly to the
// components that need it; nothing reads configuration ambiently.
package config
