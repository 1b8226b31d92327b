package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"supportflow/internal/gateway/repository/ticketstore"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Manage knowledge base articles",
}

var kbIndexCmd = &cobra.Command{
	Use:   "index <articles.yaml>",
	Short: "Load knowledge base articles into the search backend",
	Args:  cobra.ExactArgs(1),
	RunE:  runKBIndex,
}

func init() {
	kbCmd.AddCommand(kbIndexCmd)
}

func runKBIndex(cmd *cobra.Command, args []string) error {
	seed, err := ticketstore.LoadSeedFile(args[0])
	if err != nil {
		return fmt.Errorf("load articles: %w", err)
	}
	if len(seed.Articles) == 0 {
		return fmt.Errorf("%s: no articles found", args[0])
	}

	engine, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer engine.Close()

	n, err := engine.Indexer.Index(cmd.Context(), seed.Articles)
	if err != nil {
		return fmt.Errorf("index articles: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d of %d article(s)\n", n, len(seed.Articles))
	return nil
}
