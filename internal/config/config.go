// Package config loads optional on-disk defaults that CLI flags then
// override.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape consulted for defaults before flags apply.
type File struct {
	Search        string  `yaml:"search"`
	Region        string  `yaml:"region"`
	ListenSeconds int     `yaml:"listen_seconds"`
	Bars          int     `yaml:"bars"`
	BeatsPerBar   int     `yaml:"beats_per_bar"`
	FixedBPM      float64 `yaml:"fixed_bpm"`
	MinBPM        float64 `yaml:"min_bpm"`
	MaxBPM        float64 `yaml:"max_bpm"`
	RateLimitMs   int     `yaml:"rate_limit_ms"`
	CacheDir      string  `yaml:"cache_dir"`
	Verbose       bool    `yaml:"verbose"`
}

// Defaults returns the built-in fallback configuration.
func Defaults() File {
	return File{
		ListenSeconds: 20,
		Bars:          4,
		BeatsPerBar:   4,
		MinBPM:        70,
		MaxBPM:        170,
		RateLimitMs:   200,
	}
}

// Load reads a YAML config file, falling back to Defaults() if path is empty
// or the file does not exist.
func Load(path string) (File, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
