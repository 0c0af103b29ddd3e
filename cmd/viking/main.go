package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/viking"
	"github.com/fwojciec/viking/config"
	"github.com/fwojciec/viking/crawl"
	"github.com/fwojciec/viking/extract"
	"github.com/fwojciec/viking/fs"
	"github.com/fwojciec/viking/goquery"
	vikinghttp "github.com/fwojciec/viking/http"
	"github.com/fwojciec/viking/rod"
	vikingslog "github.com/fwojciec/viking/slog"
	"github.com/fwojciec/viking/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", errorMessage(err))
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// Getenv reads config overrides from the environment.
	Getenv func(string) string

	// SQLite database used by the result history.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
		Getenv: os.Getenv,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("viking"),
		kong.Description("Extract download links from viking file pages"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'viking --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(cli.Config, m.Getenv)
	if err != nil {
		return err
	}
	engine, err := extract.NewEngine(goquery.NewParser(), *cfg)
	if err != nil {
		return err
	}
	deps.Extractor = vikingslog.NewLoggingExtractor(engine, deps.Logger)
	deps.Results = fs.NewResultStore()

	command := strings.Fields(kongCtx.Command())[0]

	if needsDB(command, cli) {
		if cli.DB != "" {
			m.DBPath = cli.DB
		}
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintln(stderr, "Hint: Set VIKING_DB or --db to use a different database path")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		defer m.Close()

		deps.Records = vikingslog.NewLoggingRecordService(sqlite.NewRecordService(m.DB), deps.Logger)
	}

	switch command {
	case "extract":
		fetcher, err := newFetcher(cli.Extract.FetchFlags, stderr)
		if err != nil {
			return err
		}
		defer fetcher.Close()
		deps.Fetcher = vikingslog.NewLoggingFetcher(fetcher, deps.Logger)

	case "batch":
		fetcher, err := newFetcher(cli.Batch.FetchFlags, stderr)
		if err != nil {
			return err
		}
		defer fetcher.Close()
		deps.Fetcher = vikingslog.NewLoggingFetcher(fetcher, deps.Logger)

		deps.Crawler = &crawl.Crawler{
			Sitemaps:    vikingslog.NewLoggingSitemapService(vikinghttp.NewSitemapService(nil), deps.Logger),
			Fetcher:     deps.Fetcher,
			Extractor:   deps.Extractor,
			Records:     deps.Records,
			RateLimiter: crawl.NewDomainLimiter(cli.Batch.Rate),
			Concurrency: cli.Batch.Concurrency,
			OnRetry: func(format string, args ...any) {
				deps.Logger.Warn(fmt.Sprintf(format, args...))
			},
		}
	}

	return kongCtx.Run(deps)
}

// needsDB reports whether the parsed command reads or writes the result history.
func needsDB(command string, cli *CLI) bool {
	switch command {
	case "extract":
		return cli.Extract.Store
	case "show":
		return !isResultFile(cli.Show.Ref)
	case "batch", "list", "stats", "delete":
		return true
	}
	return false
}

// newFetcher returns the browser fetcher when requested and the plain HTTP
// fetcher otherwise.
func newFetcher(flags FetchFlags, stderr io.Writer) (viking.Fetcher, error) {
	if flags.Browser {
		f, err := rod.NewFetcher(rod.WithFetchTimeout(flags.Timeout))
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		return f, nil
	}
	return vikinghttp.NewFetcher(vikinghttp.WithTimeout(flags.Timeout)), nil
}

func defaultDBPath() string {
	if path := os.Getenv("VIKING_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "viking.db"
	}
	dir := filepath.Join(home, ".viking")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "viking.db")
}

// errorMessage returns the user-facing message for err. Infrastructure
// errors carry no application message, so their text is shown instead.
func errorMessage(err error) string {
	if viking.ErrorCode(err) == viking.EINTERNAL {
		return err.Error()
	}
	return viking.ErrorMessage(err)
}
