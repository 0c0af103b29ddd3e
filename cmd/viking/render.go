package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fwojciec/viking"
	"gopkg.in/yaml.v3"
)

// render writes result to w in the named format.
func render(w io.Writer, format string, result *viking.ExtractionResult) error {
	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		_, err := io.WriteString(w, viking.FormatResult(result))
		return err
	}
	return viking.Errorf(viking.EINVALID, "unknown format %q", format)
}

// renderRecord writes a stored record, prefixed by its history details in
// text format.
func renderRecord(w io.Writer, format string, rec *viking.Record) error {
	if format == "text" {
		fmt.Fprintf(w, "Record:      %s\n", rec.ID)
		fmt.Fprintf(w, "Extracted:   %s\n", rec.ExtractedAt.Format("2006-01-02 15:04:05"))
	}
	return render(w, format, rec.Result)
}
