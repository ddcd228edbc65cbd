package reaction

import (
	"strings"

	"github.com/turtacn/ChemRxn-Core/pkg/errors"
)

// Arrow and Plus are the canonical reaction-label delimiters.  The spaces are
// part of the token: a bare "+" or "<=>" inside a species label is legal.
const (
	Arrow = " <=> "
	Plus  = " + "
)

// ParseLabel splits a reaction label of the form "r1 + r2 <=> p1 + p2" into
// its ordered reactant and product label lists.
//
// The label must contain exactly one arrow token.  Any "+" character must
// appear as the spaced delimiter, and no segment may be empty.
func ParseLabel(label string) (reactants, products []string, err error) {
	if !strings.Contains(label, Arrow) {
		return nil, nil, errors.New(errors.ErrCodeLabelFormat,
			"reaction label must contain a double-ended arrow with spaces on both sides").
			WithDetailf("label=%q", label)
	}
	sides := strings.SplitN(label, Arrow, 2)
	if strings.Contains(sides[1], Arrow) {
		return nil, nil, errors.New(errors.ErrCodeLabelFormat,
			"reaction label must contain a single arrow").
			WithDetailf("label=%q", label)
	}
	reactants, err = splitSide(sides[0], label)
	if err != nil {
		return nil, nil, err
	}
	products, err = splitSide(sides[1], label)
	if err != nil {
		return nil, nil, err
	}
	return reactants, products, nil
}

// splitSide splits one side of a label on the spaced plus delimiter and
// validates each resulting token.
func splitSide(side, label string) ([]string, error) {
	tokens := strings.Split(side, Plus)
	for _, tok := range tokens {
		if tok == "" || strings.TrimSpace(tok) == "" {
			return nil, errors.New(errors.ErrCodeLabelFormat,
				"reaction label contains an empty species segment").
				WithDetailf("label=%q", label)
		}
		if strings.Contains(tok, "+") {
			return nil, errors.New(errors.ErrCodeLabelFormat,
				"species in a reaction label must be separated by a plus with spaces on both sides").
				WithDetailf("label=%q segment=%q", label, tok)
		}
	}
	return tokens, nil
}

// ComposeLabel joins ordered reactant and product label lists into the
// canonical reaction label.  It is the exact inverse of ParseLabel for any
// lists whose entries are valid species labels.
func ComposeLabel(reactants, products []string) string {
	return strings.Join(reactants, Plus) + Arrow + strings.Join(products, Plus)
}

// sideSegment returns the reactant (well 0) or product (well 1) segment of a
// composed label, including any surrounding spaces around the bare arrow.
// The legacy stoichiometric counting in SpeciesCount operates on this raw
// segment, so the split is on "<=>" without the delimiter spaces.
func sideSegment(label string, well int) string {
	parts := strings.SplitN(label, "<=>", 2)
	if well == 0 {
		return parts[0]
	}
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
