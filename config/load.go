package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a configuration document.
type Format int

// Supported configuration formats.
const (
	FormatJSON Format = iota
	FormatTOML
	FormatYAML
)

// FormatFromPath picks the format from the file extension. Unknown extensions
// are read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads, decodes and validates the configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, resource(
				fmt.Sprintf("the file %s was not found", path),
				errors.WithStack(err))
		}

		return Config{}, resource(
			fmt.Sprintf("config load failed (%s)", path),
			errors.Wrap(err, "read"))
	}

	c, err := Parse(data, FormatFromPath(path))
	if err != nil {
		var cfgErr *Error
		if errors.As(err, &cfgErr) && cfgErr.Kind == ErrResource {
			cfgErr.Msg = fmt.Sprintf("error reading file %s", path)
		}

		return Config{}, err
	}

	return c, nil
}

// Parse decodes and validates a configuration document.
func Parse(data []byte, format Format) (Config, error) {
	raw, err := decode(data, format)
	if err != nil {
		return Config{}, resource("error decoding configuration", err)
	}

	return FromMap(raw)
}

func decode(data []byte, format Format) (map[string]any, error) {
	raw := make(map[string]any)

	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, errors.Wrap(err, "toml")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrap(err, "yaml")
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()

		if err := dec.Decode(&raw); err != nil {
			return nil, errors.Wrap(err, "json")
		}
	}

	return raw, nil
}
