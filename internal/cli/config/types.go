// Package config provides configuration management for the squint CLI.
//
// Configuration is layered: defaults, then an optional squint.yaml file,
// then SQUINT_-prefixed environment variables, then explicit CLI flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	StatePath      string `koanf:"state_path"`
	History        bool   `koanf:"history"`
	StrictOverlays bool   `koanf:"strict_overlays"`
	Simulate       bool   `koanf:"simulate"`
	Seed           int64  `koanf:"seed"`
	LogFormat      string `koanf:"log_format"`
	Verbose        bool   `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultStateFile = ".squint/runs.db"
	DefaultLogFormat = "json"
	DefaultSeed      = 1337
)
