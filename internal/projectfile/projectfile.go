// Package projectfile reads and writes activity networks as JSON, YAML, TOML,
// HCL or CSV files.
package projectfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/aristath/miniplan/internal/scheduler"
)

// ErrUnknownFormat is returned for unsupported file formats.
var ErrUnknownFormat = errors.New("unknown project file format")

// Format names a project file encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
	HCL  Format = "hcl"
	CSV  Format = "csv"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{JSON, YAML, TOML, HCL, CSV}
}

// ParseFormat resolves a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case JSON, YAML, TOML, HCL, CSV:
		return f, nil
	case "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// Decode reads activities from r. Unknown fields are rejected. Every record
// goes through scheduler.NewActivity and IDs must be unique.
func Decode(r io.Reader, f Format) ([]*scheduler.Activity, error) {
	var (
		recs []record
		err  error
	)
	switch f {
	case JSON:
		var doc document
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err = dec.Decode(&doc); err == nil || errors.Is(err, io.EOF) {
			recs, err = doc.Activities, nil
		}
	case YAML:
		var doc document
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err = dec.Decode(&doc); err == nil || errors.Is(err, io.EOF) {
			recs, err = doc.Activities, nil
		}
	case TOML:
		var doc document
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err = dec.Decode(&doc); err == nil {
			recs = doc.Activities
		}
	case HCL:
		recs, err = decodeHCL(r)
	case CSV:
		recs, err = decodeCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", f, err)
	}

	return toActivities(recs)
}

// Encode writes acts to w in the given format.
func Encode(w io.Writer, f Format, acts []*scheduler.Activity) error {
	doc := document{Activities: make([]record, 0, len(acts))}
	for _, a := range acts {
		doc.Activities = append(doc.Activities, fromActivity(a))
	}

	var err error
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(doc)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(doc); err == nil {
			err = enc.Close()
		}
	case TOML:
		err = toml.NewEncoder(w).Encode(doc)
	case HCL:
		err = encodeHCL(w, doc.Activities)
	case CSV:
		err = encodeCSV(w, doc.Activities)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", f, err)
	}
	return nil
}

// ReadFile decodes the file at path using its extension.
func ReadFile(path string) ([]*scheduler.Activity, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	acts, err := Decode(bytes.NewReader(data), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return acts, nil
}

// WriteFile encodes acts to path using its extension.
// Creates parent directories if they don't exist.
func WriteFile(path string, acts []*scheduler.Activity) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, f, acts); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
