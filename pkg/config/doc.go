// Package config loads typed configuration from environment variables.
//
// Structs describe their variables with caarlos0/env tags. A .env file in the
// working directory is read once, before the first Load, and never overrides
// variables already present in the process environment.
//
//	var cfg apiclient.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
package config
