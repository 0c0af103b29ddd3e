package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/viking"
	"github.com/fwojciec/viking/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Extractor viking.Extractor
	Fetcher   viking.Fetcher
	Results   viking.ResultStore
	Records   viking.RecordService
	Crawler   *crawl.Crawler
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB      string `help:"Result history database path (default: VIKING_DB or ~/.viking/viking.db)"`
	Config  string `short:"C" type:"path" help:"YAML or TOML file with extra source patterns, media extensions and quality markers"`
	Verbose bool   `short:"v" help:"Log every fetch, extraction and stored record"`

	Extract ExtractCmd `cmd:"" help:"Fetch a file page and extract its download links"`
	Parse   ParseCmd   `cmd:"" help:"Extract download links from a saved HTML page"`
	Show    ShowCmd    `cmd:"" help:"Render a saved result file or stored record"`
	Batch   BatchCmd   `cmd:"" help:"Extract many file pages into the result history"`
	List    ListCmd    `cmd:"" help:"List stored results, newest first"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a stored result"`
	Stats   StatsCmd   `cmd:"" help:"Show link statistics per source"`
}

// FetchFlags select how pages are retrieved.
type FetchFlags struct {
	Browser bool          `short:"b" help:"Render pages in headless Chrome"`
	Timeout time.Duration `short:"t" default:"10s" help:"Fetch timeout per page"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URL    string `arg:"" help:"File page URL"`
	Format string `short:"f" enum:"json,yaml,text" default:"json" help:"Output format (json, yaml, text)"`
	Save   string `short:"o" type:"path" help:"Also write the result as JSON to this file"`
	Store  bool   `short:"s" help:"Record the result in the history"`

	FetchFlags `embed:""`
}

// ParseCmd is the "parse" subcommand.
type ParseCmd struct {
	File    string `arg:"" type:"existingfile" help:"HTML file"`
	BaseURL string `required:"" name:"base-url" help:"URL the page was served from"`
	Format  string `short:"f" enum:"json,yaml,text" default:"json" help:"Output format (json, yaml, text)"`
	Save    string `short:"o" type:"path" help:"Also write the result as JSON to this file"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	Ref    string `arg:"" help:"Result file (*.json) or stored record ID"`
	Format string `short:"f" enum:"json,yaml,text" default:"text" help:"Output format (json, yaml, text)"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	URLs        []string `arg:"" optional:"" name:"urls" help:"File page URLs"`
	Sitemap     string   `help:"Site or sitemap URL to discover file pages from"`
	Include     []string `short:"I" help:"Only discover URLs matching this regex (repeatable, default: file pages)"`
	Exclude     []string `short:"X" help:"Skip discovered URLs matching this regex (repeatable)"`
	Concurrency int      `short:"c" default:"3" help:"Concurrent fetch limit"`
	Rate        float64  `default:"1" help:"Requests per second per host"`
	Out         string   `short:"o" type:"path" help:"Also write each new result as JSON into this directory"`

	FetchFlags `embed:""`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Source string `help:"Only results with a link from this source"`
	Page   string `help:"Only results for this page URL"`
	Limit  int    `short:"n" default:"20" help:"Maximum number of results"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Record ID"`
	Force bool   `help:"Confirm deletion"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct {
	Source string `default:"viking" help:"Source whose share of results is reported"`
}
