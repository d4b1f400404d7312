package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/jonathan/hireflow/internal/observability"
	"github.com/jonathan/hireflow/internal/types"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and reopen previously generated documents",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List history entries, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyOpenCmd = &cobra.Command{
	Use:   "open <id>",
	Short: "Rehydrate a history entry and write its PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryOpen,
}

var historyVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every history entry still decodes",
	Args:  cobra.NoArgs,
	RunE:  runHistoryVerify,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every history entry",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

var (
	historyJSON   bool
	historyOutput string
	historyYes    bool
)

func init() {
	historyListCmd.Flags().BoolVar(&historyJSON, "json", false, "Print entries as JSON")
	historyVerifyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print outcomes as JSON")
	historyOpenCmd.Flags().StringVarP(&historyOutput, "out", "o", ".", "Output directory for the PDF")

	historyClearCmd.Flags().BoolVar(&historyYes, "yes", false, "Confirm deleting the whole history")

	historyCmd.AddCommand(historyListCmd, historyOpenCmd, historyVerifyCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	entries := a.store.List(cmd.Context())
	out := cmd.OutOrStdout()

	if historyJSON {
		summaries := make([]types.HistorySummary, 0, len(entries))
		for _, e := range entries {
			summaries = append(summaries, e.Summary())
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	if verbose {
		observability.NewPrinter(out).PrintHistory(entries, a.cfg.HistoryCapacity)
	}

	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, "No documents in history")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTITLE\tCOMPANY\tCREATED")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Title, e.Counterpart, e.CreatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func runHistoryOpen(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	entry, err := a.store.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	handle, err := a.rehydrator.Reopen(entry)
	if err != nil {
		return describeFailure(err)
	}
	defer handle.Release()

	path, err := handle.WriteFile(historyOutput)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Saved %s (%d bytes)\n", path, handle.Size())
	if !handle.Verified {
		_, _ = fmt.Fprintln(out, "Warning: document does not start with a PDF signature")
	}
	return nil
}

func runHistoryVerify(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	outcomes, err := a.rehydrator.VerifyAll(cmd.Context(), a.store.List(cmd.Context()))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if historyJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(outcomes)
	}

	failed := 0
	for _, o := range outcomes {
		switch {
		case !o.OK():
			failed++
			_, _ = fmt.Fprintf(out, "FAIL  %s  %s\n", o.ID, o.Reason)
		case !o.Verified:
			_, _ = fmt.Fprintf(out, "WARN  %s  unverified (%d bytes)\n", o.ID, o.Size)
		default:
			_, _ = fmt.Fprintf(out, "OK    %s  %d bytes\n", o.ID, o.Size)
		}
	}
	_, _ = fmt.Fprintf(out, "%d checked, %d failed\n", len(outcomes), failed)

	if failed > 0 {
		return fmt.Errorf("%d history entries could not be reopened", failed)
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	if !historyYes {
		return fmt.Errorf("refusing to clear history without --yes")
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	count := len(a.store.List(cmd.Context()))
	if err := a.store.Clear(cmd.Context()); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d history entries\n", count)
	return nil
}
