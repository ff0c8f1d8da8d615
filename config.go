package mobsquid

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultConfig returns a ClientConfig with every default filled in.
func DefaultConfig() ClientConfig {
	var config ClientConfig
	config.applyDefaults()
	return config
}

// LoadConfig reads a YAML file on top of DefaultConfig. Durations use Go
// syntax ("30s", "1m").
func LoadConfig(path string) (ClientConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(ErrConfiguration, "parse %s: %v", path, err)
	}
	config.applyDefaults()
	return config, nil
}
