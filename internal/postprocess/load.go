package postprocess

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadTables reads a locale table set from a YAML file.
func LoadTables(path string) (*Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("postprocess: open tables %q: %w", path, err)
	}
	defer f.Close()

	t, err := LoadTablesFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("postprocess: parse tables %q: %w", path, err)
	}
	return t, nil
}

// LoadTablesFromReader decodes and validates a YAML table set. Unknown keys
// are rejected so that typos do not silently drop rules.
func LoadTablesFromReader(r io.Reader) (*Tables, error) {
	t := &Tables{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(t); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
