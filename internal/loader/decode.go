package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects a dataset encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Decode reads and validates a dataset.
func Decode(r io.Reader, format Format) (*Dataset, error) {
	var ds Dataset
	switch format {
	case FormatJSON, "":
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&ds); err != nil {
			return nil, fmt.Errorf("%w: decode json: %v", ErrInvalidDataset, err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&ds); err != nil {
			return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidDataset, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidDataset, format)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// LoadFile decodes the dataset stored at path.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Decode(f, FormatFromPath(path))
}
