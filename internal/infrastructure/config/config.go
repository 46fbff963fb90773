package config

import "github.com/kelseyhightower/envconfig"

// Database holds Turso database configuration. The auth token is optional
// so local file and in-memory databases work without one.
type Database struct {
	URL       string `envconfig:"EXPERIMENTS_DATABASE_URL" required:"true"`
	AuthToken string `envconfig:"EXPERIMENTS_AUTH_TOKEN"`
}

// CLI holds configuration for the experiments command-line tool.
type CLI struct {
	Database Database
	Debug    bool `envconfig:"EXPERIMENTS_DEBUG" default:"false"`
}

// LoadCLI loads CLI configuration from environment variables.
func LoadCLI() (*CLI, error) {
	var cfg CLI
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
