// Package config provides configuration structures and utilities for jsonsweep.
// It defines the rule settings for the site filter and the URL rewriter, the
// repository coordinate that drives URL rewriting, and report/history
// preferences. Settings come from CLI flags, the environment (optionally
// seeded from a .env file) and the .jsonsweep YAML file, in that order.
package config
