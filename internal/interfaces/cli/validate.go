package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemRxn-Core/internal/domain/reaction"
	rxntypes "github.com/turtacn/ChemRxn-Core/pkg/types/reaction"
)

// ValidationOutput is the printable result of a validation run.
type ValidationOutput struct {
	Valid     bool     `json:"valid"`
	Label     string   `json:"label,omitempty"`
	Reactants []string `json:"reactants,omitempty"`
	Products  []string `json:"products,omitempty"`
	Reason    string   `json:"reason,omitempty"`
}

func (o ValidationOutput) String() string {
	if !o.Valid {
		return fmt.Sprintf("INVALID: %s", o.Reason)
	}
	return fmt.Sprintf("OK: %s\n  reactants: %s\n  products:  %s",
		o.Label,
		strings.Join(o.Reactants, ", "),
		strings.Join(o.Products, ", "))
}

func newValidateCmd(opts *RootOptions) *cobra.Command {
	var recordPath string

	cmd := &cobra.Command{
		Use:   "validate [label]",
		Short: "Validate a reaction label or a full reaction record",
		Long: "Validate a reaction label of the form \"A + B <=> C + D\", or, with\n" +
			"--record, a full reaction record loaded from a JSON file.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if recordPath != "" {
				return runValidateRecord(cmd, opts, recordPath)
			}
			if len(args) != 1 {
				return fmt.Errorf("a reaction label argument or --record is required")
			}
			return runValidateLabel(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&recordPath, "record", "", "path to a reaction record JSON file")

	return cmd
}

func runValidateLabel(cmd *cobra.Command, opts *RootOptions, label string) error {
	reactants, products, err := reaction.ParseLabel(label)
	if err != nil {
		return printResult(cmd, opts, ValidationOutput{
			Valid:  false,
			Label:  label,
			Reason: err.Error(),
		})
	}
	return printResult(cmd, opts, ValidationOutput{
		Valid:     true,
		Label:     reaction.ComposeLabel(reactants, products),
		Reactants: reactants,
		Products:  products,
	})
}

func runValidateRecord(cmd *cobra.Command, opts *RootOptions, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read record file: %w", err)
	}

	var rec rxntypes.ReactionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return fmt.Errorf("failed to parse record file: %w", err)
	}

	rxn, err := reaction.FromRecord(rec)
	if err != nil {
		return printResult(cmd, opts, ValidationOutput{
			Valid:  false,
			Label:  rec.Label,
			Reason: err.Error(),
		})
	}
	return printResult(cmd, opts, ValidationOutput{
		Valid:     true,
		Label:     rxn.Label(),
		Reactants: rxn.Reactants,
		Products:  rxn.Products,
	})
}
