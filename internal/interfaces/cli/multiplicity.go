package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemRxn-Core/internal/domain/reaction"
	rxntypes "github.com/turtacn/ChemRxn-Core/pkg/types/reaction"
)

// MultiplicityOutput is the printable result of a multiplicity resolution.
type MultiplicityOutput struct {
	Multiplicity int                       `json:"multiplicity"`
	Status       rxntypes.ResolutionStatus `json:"status"`
}

func (o MultiplicityOutput) String() string {
	return fmt.Sprintf("surface multiplicity: %d (%s)", o.Multiplicity, o.Status)
}

func newMultiplicityCmd(opts *RootOptions) *cobra.Command {
	var (
		reactantsRaw string
		productsRaw  string
	)

	cmd := &cobra.Command{
		Use:   "multiplicity",
		Short: "Resolve the reaction-surface spin multiplicity",
		Long: "Resolve the most probable reaction-surface spin multiplicity from the\n" +
			"spin multiplicities of the individual reactants (and, for ambiguous\n" +
			"combinations, the products).",
		RunE: func(cmd *cobra.Command, args []string) error {
			reactantMults, err := parseIntList(reactantsRaw)
			if err != nil {
				return err
			}
			productMults, err := parseIntList(productsRaw)
			if err != nil {
				return err
			}

			res, err := reaction.ResolveMultiplicity(reactantMults, productMults)
			if err != nil {
				return err
			}
			return printResult(cmd, opts, MultiplicityOutput{
				Multiplicity: res.Value,
				Status:       res.Status,
			})
		},
	}

	cmd.Flags().StringVar(&reactantsRaw, "reactants", "", "comma-separated reactant spin multiplicities, e.g. 2,2 [REQUIRED]")
	cmd.Flags().StringVar(&productsRaw, "products", "", "comma-separated product spin multiplicities")
	_ = cmd.MarkFlagRequired("reactants")

	return cmd
}
