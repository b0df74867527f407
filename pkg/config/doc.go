// Package config loads gatehouse configuration from GATEHOUSE_-prefixed
// environment variables and validates it before the server starts.
package config
