package server

import "slices"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// Environment is the environment this process runs in (test, staging, prod).
	Environment string `mapstructure:"environment" default:"test"`
	// ReadTimeoutSeconds bounds reading a request.
	ReadTimeoutSeconds int `mapstructure:"read_timeout_seconds" default:"30"`
}

const (
	EnvironmentTest    = "test"
	EnvironmentStaging = "staging"
	EnvironmentProd    = "prod"
)

// DefaultEnvironments are the environments every deployment knows about.
var DefaultEnvironments = []string{EnvironmentTest, EnvironmentStaging, EnvironmentProd}

// IsValidEnvironment checks the configured environment against the known names.
// With no names the default environments are used.
func (c Config) IsValidEnvironment(names ...string) bool {
	if len(names) == 0 {
		names = DefaultEnvironments
	}
	return c.Environment != "" && slices.Contains(names, c.Environment)
}

// Address returns the listen address.
func (c Config) Address() string {
	return ":" + c.Port
}
