// Package report persists batch results as JSON, YAML or TOML files.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jlrickert/ekr/pkg/alias"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Format is a report encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Report is the persisted form of one batch run.
type Report struct {
	GeneratedAt time.Time         `json:"generated_at" yaml:"generated_at" toml:"generated_at"`
	Vault       string            `json:"vault" yaml:"vault" toml:"vault"`
	Scope       string            `json:"scope" yaml:"scope" toml:"scope"`
	Result      alias.BatchResult `json:"result" yaml:"result" toml:"result"`
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unknown report format for %q: use .json, .yaml or .toml", path)
}

// Marshal encodes r in format.
func Marshal(r Report, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling report: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return nil, fmt.Errorf("marshaling report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("marshaling report: %w", err)
		}
		return buf.Bytes(), nil
	case FormatTOML:
		data, err := toml.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("marshaling report: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("unknown report format %q", format)
}

// Unmarshal decodes data written by Marshal.
func Unmarshal(data []byte, format Format) (Report, error) {
	var r Report
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &r)
	case FormatYAML:
		err = yaml.Unmarshal(data, &r)
	case FormatTOML:
		err = toml.Unmarshal(data, &r)
	default:
		return r, fmt.Errorf("unknown report format %q", format)
	}
	if err != nil {
		return r, fmt.Errorf("parsing report: %w", err)
	}
	return r, nil
}

// WriteFile writes r to path, choosing the format from its extension. The
// file is written to a temporary name first and renamed into place.
func WriteFile(fsys afero.Fs, path string, r Report) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(r, format)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(fsys, tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp report file: %w", err)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("renaming report file: %w", err)
	}
	return nil
}

// ReadFile loads a report written by WriteFile.
func ReadFile(fsys afero.Fs, path string) (Report, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Report{}, err
	}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return Report{}, fmt.Errorf("reading report: %w", err)
	}
	return Unmarshal(data, format)
}
