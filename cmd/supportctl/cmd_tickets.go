package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var ticketsFlags struct {
	limit int
}

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Inspect stored support tickets",
}

var ticketsRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the most recent tickets",
	RunE:  runTicketsRecent,
}

var ticketsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show ticket counts by status and category",
	RunE:  runTicketsStats,
}

func init() {
	ticketsRecentCmd.Flags().IntVar(&ticketsFlags.limit, "limit", 10, "Maximum tickets to list")
	ticketsCmd.AddCommand(ticketsRecentCmd)
	ticketsCmd.AddCommand(ticketsStatsCmd)
}

func runTicketsRecent(cmd *cobra.Command, _ []string) error {
	engine, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer engine.Close()

	tickets, err := engine.Store.RecentTickets(cmd.Context(), ticketsFlags.limit)
	if err != nil {
		return fmt.Errorf("recent tickets: %w", err)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSTATUS\tPRIORITY\tCATEGORY\tSUBJECT")
	for _, t := range tickets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.TicketID, t.CreatedAt.Format("2006-01-02 15:04"), t.Status, t.Priority, t.Category, t.Subject)
	}
	return tw.Flush()
}

func runTicketsStats(cmd *cobra.Command, _ []string) error {
	engine, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer engine.Close()

	st, err := engine.Store.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("ticket stats: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total: %d\n", st.Total)
	printCounts(cmd, "By status", st.ByStatus)
	printCounts(cmd, "By category", st.ByCategory)
	return nil
}

func printCounts(cmd *cobra.Command, title string, counts map[string]int) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s:\n", title)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-14s %d\n", k, counts[k])
	}
}
