// Package config loads typed configuration structs from the process
// environment.
//
// Fields are described with `env` and `envDefault` tags understood by
// github.com/caarlos0/env/v11. A local .env file, when present, is read once
// through github.com/joho/godotenv before the first struct is parsed.
//
// Parsed values are cached per Go type, so every component may call Load for
// its own Config without re-reading the environment:
//
//	var cfg optimizer.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Reset drops the cache and is intended for tests that change the environment
// between cases.
package config
