// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/hatebu-clipper/internal/config"
	"github.com/pdiddy/hatebu-clipper/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently clipped bookmarks",
	Long: `History prints the most recent entries of the SQLite ledger written by
run when --history-db (or history_db in the config file) is set. Each entry
shows when the bookmark was processed, its outcome, and the saved path or
error.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("history-db", "", "SQLite history file")
	historyCmd.Flags().Int("limit", history.DefaultListLimit, "maximum entries to show")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd.Flags(), map[string]string{config.KeyHistoryDB: "history-db"}); err != nil {
		return err
	}
	path := viper.GetString(config.KeyHistoryDB)
	if path == "" {
		return fmt.Errorf("no history database configured: set --history-db or history_db")
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHistory(cmd.OutOrStdout(), entries, jsonOutput)
}

func formatHistory(w io.Writer, entries []history.Entry, jsonOutput bool) error {
	if jsonOutput {
		if entries == nil {
			entries = []history.Entry{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No history entries.")
		return nil
	}

	fmt.Fprintf(w, "%-20s  %-9s  %-40s  %s\n", "Processed", "Status", "Title", "Path / Error")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, e := range entries {
		detail := e.Path
		if e.Error != "" {
			detail = e.Error
		}
		fmt.Fprintf(w, "%-20s  %-9s  %-40s  %s\n",
			e.ProcessedAt.Local().Format("2006-01-02 15:04:05"), e.Status, truncate(e.Title, 40), detail)
	}
	fmt.Fprintf(w, "\n%d entries\n", len(entries))
	return nil
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
