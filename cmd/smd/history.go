package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"smd/pkg/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history [n]",
	Short: "Show recent download history",
	Long:  `Show the most recent entries from the download history log.`,
	Example: `  # Last 20 entries
  smd history

  # Last 5 entries
  smd history 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	a := current

	n := 20
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 1 {
			return fmt.Errorf("invalid entry count: %s", args[0])
		}
		n = parsed
	}

	entries, err := a.hist.Tail(n)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		ui.PrintInfo("No download history yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSTATUS\tURL")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Timestamp, e.Status, e.URL)
	}
	return w.Flush()
}
