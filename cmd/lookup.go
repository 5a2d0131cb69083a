package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
)

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <callsign>",
		Short: "Looks up a single callsign and prints the record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runLookupCommand,
	}
}

func runLookupCommand(cmd *cobra.Command, args []string) error {
	callsign := args[0]
	if err := validator.New().Var(callsign, "required,min=3,max=10"); err != nil {
		return fmt.Errorf("callsign must be between 3 and 10 characters")
	}

	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	record, err := appInstance.Service().Lookup(cmd.Context(), callsign)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", callsign, err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return nil
}
