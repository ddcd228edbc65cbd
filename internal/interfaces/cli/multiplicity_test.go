package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rxntypes "github.com/turtacn/ChemRxn-Core/pkg/types/reaction"
)

func TestMultiplicity_SingleReactant(t *testing.T) {
	out, err := execute(t, "multiplicity", "--reactants", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "surface multiplicity: 3")
	assert.Contains(t, out, "confident")
}

func TestMultiplicity_DoubletPair(t *testing.T) {
	// doublet + doublet without product info falls back to singlet, assumed.
	out, err := execute(t, "multiplicity", "--reactants", "2,2")
	require.NoError(t, err)
	assert.Contains(t, out, "surface multiplicity: 1")
	assert.Contains(t, out, "assumed")
}

func TestMultiplicity_ProductsDisambiguate(t *testing.T) {
	out, err := execute(t, "multiplicity", "-o", "json",
		"--reactants", "2,2", "--products", "3,1")
	require.NoError(t, err)

	var resp MultiplicityOutput
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 3, resp.Multiplicity)
	assert.Equal(t, rxntypes.ResolutionConfident, resp.Status)
}

func TestMultiplicity_Undetermined(t *testing.T) {
	_, err := execute(t, "multiplicity", "--reactants", "6,7")
	assert.Error(t, err)
}

func TestMultiplicity_MissingFlag(t *testing.T) {
	_, err := execute(t, "multiplicity")
	assert.Error(t, err)
}

func TestMultiplicity_BadList(t *testing.T) {
	_, err := execute(t, "multiplicity", "--reactants", "2,x")
	assert.Error(t, err)
}
