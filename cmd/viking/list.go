package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fwojciec/viking"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := viking.RecordFilter{Limit: c.Limit}
	if c.Source != "" {
		filter.Source = &c.Source
	}
	if c.Page != "" {
		filter.PageURL = &c.Page
	}

	records, err := deps.Records.FindRecords(deps.Ctx, filter)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(deps.Stdout, "No results found. Use 'viking extract --store' or 'viking batch' to record some.")
		return nil
	}

	for _, rec := range records {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %d links\n",
			rec.ID,
			humanize.Time(rec.ExtractedAt),
			rec.Result.PageURL,
			len(rec.Result.DownloadLinks),
		)
	}

	return nil
}

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		return viking.Errorf(viking.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Records.DeleteRecord(deps.Ctx, c.ID); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted record %s\n", c.ID)
	return nil
}

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	stats, err := deps.Records.SourceStats(deps.Ctx)
	if err != nil {
		return err
	}

	if stats.Records == 0 {
		fmt.Fprintln(deps.Stdout, "No results found. Use 'viking extract --store' or 'viking batch' to record some.")
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Pages:       %d\n", stats.Records)
	fmt.Fprintf(deps.Stdout, "With %s: %.1f%%\n\n", c.Source, stats.Share(c.Source))

	fmt.Fprintf(deps.Stdout, "%-16s %8s %8s %10s\n", "SOURCE", "PAGES", "LINKS", "SIZE")
	for _, s := range stats.Sources {
		size := "-"
		if s.Bytes > 0 {
			size = humanize.Bytes(s.Bytes)
		}
		fmt.Fprintf(deps.Stdout, "%-16s %8d %8d %10s\n", s.Source, s.Records, s.Links, size)
	}

	return nil
}
