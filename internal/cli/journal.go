package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tinyhttpd/pkg/journal"
)

var (
	journalPath  string
	journalLimit int
)

// journalCmd inspects the request journal of a stopped server
var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show the most recent entries of the request journal",
	Long: `Opens the pebble request journal read-only and prints the newest
entries first. The server holding the journal must be stopped.`,
	Args: cobra.NoArgs,
	RunE: runJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().StringVar(&journalPath, "path", "", "journal directory (default: journal.path from config)")
	journalCmd.Flags().IntVar(&journalLimit, "limit", 20, "number of entries to show")
}

func runJournal(cmd *cobra.Command, _ []string) error {
	path := journalPath
	if path == "" {
		eff, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		path = eff.Config.Journal.Path
	}
	if journalLimit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}

	j, err := journal.OpenReadOnly(path)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.Recent(journalLimit)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	total, err := j.Count()
	if err != nil {
		return fmt.Errorf("count journal: %w", err)
	}
	return printEntries(cmd.OutOrStdout(), entries, total, time.Now())
}

func printEntries(w io.Writer, entries []journal.Entry, total int, now time.Time) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "journal is empty")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tSTATUS\tSIZE\tTOOK\tREMOTE\tREQUEST")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			humanize.RelTime(e.Time, now, "ago", "from now"),
			e.Status,
			humanize.Bytes(uint64(e.Bytes)),
			e.Duration.Round(time.Microsecond),
			e.Remote,
			e.RequestLine,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "showing %d of %s entries\n", len(entries), humanize.Comma(int64(total)))
	return err
}
