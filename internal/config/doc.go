// Package config provides application configuration loaded from defaults,
// an optional YAML file, and POWER_* environment variables, in that
// precedence order. Environment variables use the envconfig naming scheme,
// e.g. POWER_PIPELINE_RESAMPLE_FREQ or POWER_LOGGING_LEVEL.
package config
