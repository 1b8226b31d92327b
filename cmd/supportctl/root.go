// supportctl runs tickets through the triage workflow and inspects the
// ticket store from the command line.
//
// Usage:
//
//	supportctl process --subject=<s> --description=<d> [--email=<e>] [--reservation=<id>]
//	supportctl tickets recent [--limit=N]
//	supportctl tickets stats
//	supportctl kb index <articles.yaml>
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	provider   string
	logLevel   string
}

var rootCmd = &cobra.Command{
	Use:           "supportctl",
	Short:         "Customer-support ticket triage",
	Long:          "supportctl classifies support tickets, gathers account and knowledge base\ncontext, answers or escalates them, and inspects stored tickets.",
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configPath, "config", "", "Path to supportflow.yaml")
	f.StringVar(&rootFlags.provider, "provider", "", "LLM provider override (gemini, groq, fake)")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "Log level override")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(ticketsCmd)
	rootCmd.AddCommand(kbCmd)
	rootCmd.Version = version
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
