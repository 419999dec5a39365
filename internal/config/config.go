// File: internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"
)

// Getenv returns the environment variable key, or def if unset or
// empty.
func Getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetenvInt parses key as an int, falling back to def on absence or
// parse failure.
func GetenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// GetenvBool parses key as a bool, falling back to def on absence or
// parse failure.
func GetenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// GetenvDuration parses key with time.ParseDuration, falling back to
// def on absence or parse failure.
func GetenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
