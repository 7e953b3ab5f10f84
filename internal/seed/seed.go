// Package seed converts between human-editable record lists (TOML, YAML,
// JSON) and mdb records.
//
// A TOML seed looks like:
//
//	[[records]]
//	name = "alice"
//	message = "likes cats"
package seed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	gotoml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"mdbgw/internal/mdb"
)

// Format names accepted by Decode and Encode.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// File is the document shape shared by all formats.
type File struct {
	Records []mdb.Record `json:"records" toml:"records" yaml:"records"`
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported seed file extension %q", filepath.Ext(path))
	}
}

// ReadFile decodes the seed file at path.
func ReadFile(path string) ([]mdb.Record, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Decode(data, format)
}

// Decode parses data in the given format. Fields longer than their slot are
// truncated the same way the database file would truncate them.
func Decode(data []byte, format string) ([]mdb.Record, error) {
	var doc File
	var err error
	switch format {
	case FormatTOML:
		_, err = toml.Decode(string(data), &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	default:
		return nil, fmt.Errorf("unsupported seed format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s seed: %w", format, err)
	}

	records := make([]mdb.Record, len(doc.Records))
	for i, r := range doc.Records {
		records[i] = mdb.NewRecord(r.Name, r.Message)
	}
	return records, nil
}

// Encode writes records to w in the given format.
func Encode(w io.Writer, records []mdb.Record, format string) error {
	doc := File{Records: records}
	if doc.Records == nil {
		doc.Records = []mdb.Record{}
	}

	switch format {
	case FormatTOML:
		return gotoml.NewEncoder(w).Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unsupported seed format %q", format)
	}
}
