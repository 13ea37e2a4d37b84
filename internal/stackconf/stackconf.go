// Package stackconf loads the stack configuration file used by the CLI to
// drive previews against the mock backend.
package stackconf

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file name looked up in the working directory.
const DefaultFile = "stack.yaml"

// Config selects the stack to run and the mock environment it runs against.
type Config struct {
	// Stack is the stack name. The literal "bootstrap" selects the
	// state-storage stack; anything else selects the application stack.
	Stack string `yaml:"stack"`

	// AccountID is the AWS account the mock backend reports.
	AccountID string `yaml:"accountId"`

	// Region is the AWS region the mock backend reports.
	Region string `yaml:"region"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Stack:     "dev",
		AccountID: "123456789012",
		Region:    "us-west-2",
	}
}

// Load reads a config file, filling unset fields with defaults. A missing
// file is not an error: the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cfg.Stack == "" {
		cfg.Stack = Default().Stack
	}
	if cfg.AccountID == "" {
		cfg.AccountID = Default().AccountID
	}
	if cfg.Region == "" {
		cfg.Region = Default().Region
	}

	return cfg, nil
}
