package config

import "errors"

var (
	// ErrInvalidConfig wraps every Validate failure.
	ErrInvalidConfig = errors.New("invalid tracker config")
	// ErrLoadConfig wraps failures reading .env, the YAML file or the environment.
	ErrLoadConfig = errors.New("loading tracker config")
)
