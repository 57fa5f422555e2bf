// Package config handles diffgate configuration loading and merging.
//
// Configuration is resolved in precedence order: built-in defaults,
// then the JSON config file in the platform config directory, then
// DIFFGATE_* environment variables, then CLI flag overrides.
package config
