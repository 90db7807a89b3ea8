package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Compile-time interface check.
var _ Source = (*File)(nil)

type fileDoc struct {
	Pools map[string]struct {
		Keys []string `yaml:"keys"`
	} `yaml:"pools"`
}

// File is a Source backed by a YAML document of the form
//
//	pools:
//	  openai:
//	    keys: [sk-1, sk-2]
//
// Pool names in the document are matched case-insensitively. The file is read
// on every call to Keys, so edits are picked up by newly created pools.
type File struct {
	path string
}

// NewFile returns a Source that reads keys from the YAML file at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Keys returns the pool's keys in document order.
func (f *File) Keys(_ context.Context, pool string) ([]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("keycycle/source: read %s: %w", f.path, err)
	}
	return ParseFile(data, pool)
}

// ParseFile extracts a pool's keys from YAML bytes in the File format.
func ParseFile(data []byte, pool string) ([]string, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("keycycle/source: parse yaml: %w", err)
	}
	if p, ok := doc.Pools[pool]; ok {
		return p.Keys, nil
	}
	for name, p := range doc.Pools {
		if strings.EqualFold(strings.TrimSpace(name), pool) {
			return p.Keys, nil
		}
	}
	return nil, nil
}
