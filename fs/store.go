// Package fs provides file-based storage for extraction results.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fwojciec/viking"
)

// Ensure ResultStore implements viking.ResultStore at compile time.
var _ viking.ResultStore = (*ResultStore)(nil)

// ResultStore reads and writes results as indented JSON files.
// Writes go to a temporary file in the target directory which is then
// renamed, so readers never see a partially written result.
type ResultStore struct{}

// NewResultStore creates a new ResultStore.
func NewResultStore() *ResultStore {
	return &ResultStore{}
}

// Save writes result to path, creating parent directories as needed.
func (s *ResultStore) Save(ctx context.Context, path string, result *viking.ExtractionResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := result.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// Load reads the result stored at path.
// Returns ENOTFOUND if the file does not exist and EMALFORMED if it does not
// hold a valid result.
func (s *ResultStore) Load(ctx context.Context, path string) (*viking.ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, viking.Errorf(viking.ENOTFOUND, "result file not found: %s", path)
	} else if err != nil {
		return nil, err
	}

	var result viking.ExtractionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, viking.Errorf(viking.EMALFORMED, "invalid result file %s: %v", path, err)
	}
	if err := result.Validate(); err != nil {
		return nil, viking.Errorf(viking.EMALFORMED, "invalid result file %s: %s", path, viking.ErrorMessage(err))
	}
	if result.DownloadLinks == nil {
		result.DownloadLinks = []viking.DownloadLink{}
	}

	return &result, nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ResultPath returns the file path for a result saved under dir.
// The file is named after the file ID, or after the page host and path when
// the page URL has no ID.
// Example: https://vikingfile.com/f/AbC123 → dir/AbC123.json
func ResultPath(dir string, result *viking.ExtractionResult) string {
	name := result.FileID
	if name == "" {
		name = "index"
		if u, err := url.Parse(result.PageURL); err == nil && u.Host != "" {
			name = u.Host + strings.TrimRight(u.Path, "/")
		}
	}
	name = strings.Trim(unsafeName.ReplaceAllString(name, "_"), "_.")
	if name == "" {
		name = "index"
	}
	return filepath.Join(dir, name+".json")
}
