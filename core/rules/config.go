package rules

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads Rules from a JSON or YAML file. Fields absent from the
// file keep their production defaults.
func LoadFile(path string) (Rules, error) {
	f, err := os.Open(path)
	if err != nil {
		return Rules{}, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return Decode(f, ext)
}

// Decode reads Rules from r in the given format ("yaml", "yml" or "json").
func Decode(r io.Reader, format string) (Rules, error) {
	var cfg Rules
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
			return Rules{}, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return Rules{}, err
		}
	default:
		return Rules{}, fmt.Errorf("unsupported format: %s", format)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Rules{}, err
	}
	return cfg, nil
}
