package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a raw record file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from a file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// DecodeRecord decodes a single raw record. JSON numbers are kept as
// json.Number and carried into models.Value as written, so large integers
// are not rounded. YAML integers decode to int and are exact up to the int64
// and uint64 range.
func DecodeRecord(data []byte, format Format) (map[string]any, error) {
	var raw map[string]any
	if err := unmarshal(data, format, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("record is empty")
	}
	return raw, nil
}

// DecodeRecords decodes a list of raw records. A single top-level record is
// accepted as a list of one.
func DecodeRecords(data []byte, format Format) ([]map[string]any, error) {
	var doc any
	if err := unmarshal(data, format, &doc); err != nil {
		return nil, err
	}

	switch v := doc.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case []any:
		out := make([]map[string]any, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("record %d is not an object", i)
			}
			out = append(out, m)
		}
		return out, nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("expected a record or a list of records, got %T", doc)
}

func unmarshal(data []byte, format Format, out any) error {
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("error parsing YAML: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(out); err != nil {
			return fmt.Errorf("error parsing JSON: %w", err)
		}
	}
	return nil
}
