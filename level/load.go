package level

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

type definitionFile struct {
	Levels []Definition `yaml:"levels"`
}

// LoadDefinitions parses extension level definitions from YAML:
//
//	levels:
//	  - name: notice
//	    id: 75
//	  - name: verbose
//	    id: 55
//	    disabled: true
func LoadDefinitions(data []byte) ([]Definition, error) {
	var f definitionFile

	err := yaml.Unmarshal(data, &f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}

	return f.Levels, nil
}

// LoadDefinitionsFile reads a file and parses it with [LoadDefinitions].
func LoadDefinitionsFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path from CLI flag is expected.
	if err != nil {
		return nil, fmt.Errorf("read level definitions: %w", err)
	}

	return LoadDefinitions(data)
}
