// Package devseed loads documents used to prime the in-memory store in mock
// mode and in the sandbox server.
package devseed

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Load reads a seed document from path and returns it as JSON. Files ending
// in .yaml or .yml are parsed as YAML; anything else must already be JSON.
func Load(fs afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("devseed: read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlToJSON(data)
	default:
		if !json.Valid(data) {
			return nil, fmt.Errorf("devseed: %s is not valid JSON", path)
		}
		return data, nil
	}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("devseed: parse YAML: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("devseed: convert YAML to JSON: %w", err)
	}
	return out, nil
}
