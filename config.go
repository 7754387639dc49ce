package clesh

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// Config holds the host settings read before the machine is built: the
// memory size, the backend window dimensions, and the program entry address.
type Config struct {
	Memory  int `yaml:"memory"`
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	Program int `yaml:"program"`
}

// configKeys are the properties a config file must define.
var configKeys = []string{"memory", "width", "height", "program"}

// LoadConfig reads a YAML config file of integer properties. Every key is
// required; a missing key is a host error.
func LoadConfig(name string) (*Config, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("Could not read config %s: %w", name, err)
	}
	properties := make(map[string]int)
	if err := yaml.Unmarshal(data, &properties); err != nil {
		return nil, fmt.Errorf("Could not parse config %s: %w", name, err)
	}
	for _, key := range configKeys {
		if _, ok := properties[key]; !ok {
			return nil, fmt.Errorf("Missing config property %s.", key)
		}
	}
	return &Config{
		Memory:  properties["memory"],
		Width:   properties["width"],
		Height:  properties["height"],
		Program: properties["program"],
	}, nil
}
