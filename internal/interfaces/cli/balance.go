package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemRxn-Core/internal/domain/reaction"
	"github.com/turtacn/ChemRxn-Core/internal/domain/species"
	rxntypes "github.com/turtacn/ChemRxn-Core/pkg/types/reaction"
)

// BalanceOutput is the printable result of an atom-balance check.
type BalanceOutput struct {
	Label    string                        `json:"label"`
	Balanced bool                          `json:"balanced"`
	Checks   []rxntypes.BalanceCheckResult `json:"checks"`
}

func (o BalanceOutput) String() string {
	rows := make([][]string, 0, len(o.Checks))
	for _, c := range o.Checks {
		status := "skipped"
		if c.Determinable {
			if c.Balanced {
				status = "balanced"
			} else {
				status = "IMBALANCED"
			}
		}
		rows = append(rows, []string{c.Name, status})
	}

	verdict := "BALANCED"
	if !o.Balanced {
		verdict = "IMBALANCED"
	}
	return fmt.Sprintf("%s: %s\n%s", o.Label, verdict,
		strings.TrimRight(formatTable([]string{"CHECK", "RESULT"}, rows), "\n"))
}

func newBalanceCmd(opts *RootOptions) *cobra.Command {
	var (
		reactantPaths []string
		productPaths  []string
		tsPath        string
	)

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Check the atom balance of a reaction from xyz geometry files",
		Long: "Check that reactants, products, and an optional transition-state guess\n" +
			"all carry the same element composition.  Species labels are taken from\n" +
			"the xyz file names.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rSpecies, err := loadSpeciesFiles(reactantPaths)
			if err != nil {
				return err
			}
			pSpecies, err := loadSpeciesFiles(productPaths)
			if err != nil {
				return err
			}

			rxn, err := reaction.NewReaction(reaction.NewReactionInput{
				RSpecies: rSpecies,
				PSpecies: pSpecies,
			})
			if err != nil {
				return err
			}

			var altTS *species.XYZ
			if tsPath != "" {
				raw, err := os.ReadFile(tsPath)
				if err != nil {
					return fmt.Errorf("failed to read ts geometry: %w", err)
				}
				altTS, err = species.ParseXYZ(string(raw))
				if err != nil {
					return fmt.Errorf("failed to parse ts geometry: %w", err)
				}
			}

			report := rxn.AtomBalanceReport(altTS)
			return printResult(cmd, opts, BalanceOutput{
				Label:    rxn.Label(),
				Balanced: report.Balanced(),
				Checks:   report.Checks,
			})
		},
	}

	cmd.Flags().StringArrayVarP(&reactantPaths, "reactant", "r", nil, "reactant xyz file (repeatable) [REQUIRED]")
	cmd.Flags().StringArrayVarP(&productPaths, "product", "p", nil, "product xyz file (repeatable) [REQUIRED]")
	cmd.Flags().StringVar(&tsPath, "ts", "", "transition-state guess xyz file")
	_ = cmd.MarkFlagRequired("reactant")
	_ = cmd.MarkFlagRequired("product")

	return cmd
}

// loadSpeciesFiles builds singlet, neutral species from xyz files, labelling
// each after its file name.
func loadSpeciesFiles(paths []string) ([]*species.Species, error) {
	seen := make(map[string]int, len(paths))
	out := make([]*species.Species, 0, len(paths))
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read geometry: %w", err)
		}

		label := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		seen[label]++
		if n := seen[label]; n > 1 {
			label += "_" + strconv.Itoa(n)
		}

		spc, err := species.New(label, 0, 1)
		if err != nil {
			return nil, err
		}
		if err := spc.SetGeometryFromBlock(string(raw)); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, spc)
	}
	return out, nil
}
