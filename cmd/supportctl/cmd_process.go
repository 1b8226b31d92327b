package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"supportflow/internal/types"
)

var processFlags struct {
	id          string
	subject     string
	description string
	email       string
	reservation string
	asJSON      bool
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run one ticket through the workflow and print the outcome",
	RunE:  runProcess,
}

func init() {
	f := processCmd.Flags()
	f.StringVar(&processFlags.id, "id", "", "Ticket ID (generated when empty)")
	f.StringVar(&processFlags.subject, "subject", "", "Ticket subject")
	f.StringVar(&processFlags.description, "description", "", "Ticket description")
	f.StringVar(&processFlags.email, "email", "", "Caller email")
	f.StringVar(&processFlags.reservation, "reservation", "", "Reservation ID")
	f.BoolVar(&processFlags.asJSON, "json", false, "Print the full outcome as JSON")
}

func runProcess(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(processFlags.subject) == "" && strings.TrimSpace(processFlags.description) == "" {
		return errors.New("--subject or --description is required")
	}
	id := processFlags.id
	if id == "" {
		id = types.NewTicketID("CLI")
	}

	engine, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer engine.Close()

	ticket := types.NewTicket(id, processFlags.subject, processFlags.description, processFlags.email, processFlags.reservation)
	out := engine.Process(cmd.Context(), ticket)

	w := cmd.OutOrStdout()
	if processFlags.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "Ticket:     %s\n", out.TicketID)
	fmt.Fprintf(w, "Status:     %s\n", out.FinalStatus)
	fmt.Fprintf(w, "Class:      %s | %s | %s\n", out.Classification.Category, out.Classification.Urgency, out.Classification.Sentiment)
	fmt.Fprintf(w, "Confidence: %.1f%%\n", out.RagConfidence*100)
	if !out.TicketSaved {
		fmt.Fprintf(w, "Saved:      no (%s)\n", out.TicketSaveError)
	}
	if out.Escalation != nil {
		fmt.Fprintln(w)
		fmt.Fprint(w, out.Escalation.Render())
		return nil
	}
	fmt.Fprintf(w, "\n%s\n", out.FinalResponse)
	return nil
}
