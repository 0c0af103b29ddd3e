package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fwojciec/viking"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	html, err := deps.Fetcher.Fetch(deps.Ctx, c.URL)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", c.URL, err)
	}

	result, err := deps.Extractor.Extract(html, c.URL)
	if err != nil {
		return err
	}

	if c.Store {
		rec := &viking.Record{HTML: html, Result: result}
		if err := deps.Records.CreateRecord(deps.Ctx, rec); viking.ErrorCode(err) == viking.ECONFLICT {
			fmt.Fprintln(deps.Stderr, "Page unchanged since the last stored result; not recorded.")
		} else if err != nil {
			return err
		} else {
			fmt.Fprintf(deps.Stderr, "Stored record %s\n", rec.ID)
		}
	}

	return output(deps, c.Format, c.Save, result)
}

// Run executes the parse command.
func (c *ParseCmd) Run(deps *Dependencies) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}

	result, err := deps.Extractor.Extract(string(data), c.BaseURL)
	if err != nil {
		return err
	}

	return output(deps, c.Format, c.Save, result)
}

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	if isResultFile(c.Ref) {
		result, err := deps.Results.Load(deps.Ctx, c.Ref)
		if err != nil {
			return err
		}
		return render(deps.Stdout, c.Format, result)
	}

	rec, err := deps.Records.FindRecordByID(deps.Ctx, c.Ref)
	if err != nil {
		return err
	}
	return renderRecord(deps.Stdout, c.Format, rec)
}

// output optionally saves result to a JSON file, then renders it.
func output(deps *Dependencies, format, save string, result *viking.ExtractionResult) error {
	if save != "" {
		if err := deps.Results.Save(deps.Ctx, save, result); err != nil {
			return err
		}
	}
	return render(deps.Stdout, format, result)
}

// isResultFile reports whether ref names a saved result file rather than a
// record ID.
func isResultFile(ref string) bool {
	return strings.HasSuffix(strings.ToLower(ref), ".json")
}
