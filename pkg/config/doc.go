// Package config loads typed configuration structs from environment
// variables using caarlos0/env struct tags, with optional .env file support
// via godotenv.
//
// Every tunable in this repository is an env knob with a sane default, so a
// bare `go run ./cmd/scheduler` works in development while production deploys
// override through the environment.
package config
