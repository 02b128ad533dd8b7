package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/backyonatan-alt/coronastats/internal/cache"
	"github.com/backyonatan-alt/coronastats/internal/config"
	"github.com/backyonatan-alt/coronastats/internal/fetcher"
	"github.com/backyonatan-alt/coronastats/internal/pipeline"
)

var (
	scrapeJSON  bool
	scrapeLimit int
)

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeJSON, "json", false, "Print the snapshot as JSON instead of tables.")
	scrapeCmd.Flags().IntVar(&scrapeLimit, "limit", 0, "Only print the first n countries (0 prints all).")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--json] [--limit <n>]",
	Short: "Fetches the page once and prints what was extracted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return scrape(cmd.Context(), cfg, os.Stdout, scrapeJSON, scrapeLimit)
	},
}

// scrape runs both refresh cycles once and renders the result to w. It
// fails only when neither cycle produced anything.
func scrape(ctx context.Context, cfg *config.Config, w io.Writer, asJSON bool, limit int) error {
	c := cache.New()
	p := pipeline.New(c, fetcher.New(cfg))

	runErr := p.RunAll(ctx)
	snap := c.Snapshot()
	if runErr != nil {
		if snap.GlobalSnapshot.Empty() && len(snap.Countries) == 0 {
			return runErr
		}
		slog.Warn("scrape finished with errors", "error", runErr)
	}

	if limit > 0 && len(snap.Countries) > limit {
		snap.Countries = snap.Countries[:limit]
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	global := table.NewWriter()
	global.SetOutputMirror(w)
	global.AppendHeader(table.Row{"Cases", "Deaths", "Recovered"})
	global.AppendRow(table.Row{count(snap.Cases), count(snap.Deaths), count(snap.Recovered)})
	global.SetStyle(table.StyleRounded)
	global.Render()

	countries := table.NewWriter()
	countries.SetOutputMirror(w)
	countries.AppendHeader(table.Row{"#", "Country", "Cases", "Today", "Deaths", "Today", "Recovered", "Critical"})
	for i, r := range snap.Countries {
		countries.AppendRow(table.Row{
			i + 1, r.Country, r.Cases, r.TodayCases, r.Deaths, r.TodayDeaths, r.Recovered, r.Critical,
		})
	}
	countries.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})
	countries.SetStyle(table.StyleRounded)
	countries.Render()
	return nil
}

func count(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}
