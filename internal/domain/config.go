package domain

import "time"

// Config is the runtime configuration handed to services and handlers.
type Config struct {
	FQDN         string        `yaml:"fqdn"`
	JWTSecret    string        `yaml:"jwtSecret"`
	TokenExpiry  time.Duration `yaml:"tokenExpiry"`
	MediaBaseURL string        `yaml:"mediaBaseURL"`
}
