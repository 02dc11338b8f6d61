// Package env reads process environment variables with fallbacks, for
// the few knobs that live outside the envconfig-loaded configuration.
package env

import "os"

// Get returns the variable's value, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
