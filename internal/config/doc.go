// Package config loads Gatehound configuration from local and global YAML
// files with precedence rules. It is internal; CLI code maps flags and files
// into orchestrator configuration.
package config
