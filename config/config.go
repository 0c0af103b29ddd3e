// Package config loads extraction overrides from YAML or TOML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/viking"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by Load. Both hold comma separated lists.
const (
	EnvExtraExtensions = "VIKING_EXTRA_EXTENSIONS"
	EnvQuality         = "VIKING_QUALITY"
)

// file mirrors viking.Config with validation rules for user input.
type file struct {
	Sources    []source `yaml:"extra_source_patterns" toml:"extra_source_patterns" validate:"dive"`
	Extensions []string `yaml:"extra_media_extensions" toml:"extra_media_extensions" validate:"dive,required,alphanum"`
	Quality    []string `yaml:"quality_vocabulary" toml:"quality_vocabulary" validate:"dive,required"`
}

type source struct {
	Pattern string `yaml:"pattern" toml:"pattern" validate:"required"`
	Label   string `yaml:"label" toml:"label" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the config at path and applies environment overrides read
// through getenv. An empty path yields the built-in defaults. A nil getenv
// disables overrides.
//
// Extensions from EnvExtraExtensions are added to those in the file.
// EnvQuality replaces the quality vocabulary of the file.
func Load(path string, getenv func(string) string) (*viking.Config, error) {
	var f file
	if path != "" {
		if err := decode(path, &f); err != nil {
			return nil, err
		}
	}

	if getenv != nil {
		if v := getenv(EnvExtraExtensions); v != "" {
			f.Extensions = append(f.Extensions, splitList(v)...)
		}
		if v := getenv(EnvQuality); v != "" {
			f.Quality = splitList(v)
		}
	}

	for i, ext := range f.Extensions {
		f.Extensions[i] = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	}

	if err := validate.Struct(&f); err != nil {
		return nil, validationError(err)
	}

	cfg := &viking.Config{
		ExtraMediaExtensions: f.Extensions,
		QualityVocabulary:    f.Quality,
	}
	for _, s := range f.Sources {
		cfg.ExtraSourcePatterns = append(cfg.ExtraSourcePatterns, viking.HostPattern{
			Pattern: s.Pattern,
			Label:   s.Label,
		})
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, f *file) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return viking.Errorf(viking.ENOTFOUND, "config file %s not found", path)
	} else if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
			return viking.Errorf(viking.EINVALID, "config %s: %v", path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(f); err != nil {
			return viking.Errorf(viking.EINVALID, "config %s: %v", path, err)
		}
	default:
		return viking.Errorf(viking.EINVALID, "config %s: unsupported format %q", path, ext)
	}
	return nil
}

// validationError reports the first failed rule by its config key.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return viking.Errorf(viking.EINVALID, "config: %v", err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "alphanum":
		return viking.Errorf(viking.EINVALID, "config: media extension %q must be alphanumeric", fe.Value())
	case "required":
		return viking.Errorf(viking.EINVALID, "config: %s is required", keyPath(fe.Namespace()))
	}
	return viking.Errorf(viking.EINVALID, "config: %s failed %s", keyPath(fe.Namespace()), fe.Tag())
}

var keyNames = strings.NewReplacer(
	"file.", "",
	"Sources", "extra_source_patterns",
	"Extensions", "extra_media_extensions",
	"Quality", "quality_vocabulary",
	"Pattern", "pattern",
	"Label", "label",
)

func keyPath(ns string) string {
	return keyNames.Replace(ns)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
