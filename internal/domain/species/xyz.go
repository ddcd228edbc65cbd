package species

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/turtacn/ChemRxn-Core/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// XYZ — Cartesian geometry block
// ─────────────────────────────────────────────────────────────────────────────

// Atom is a single atom of an XYZ geometry: element symbol plus Cartesian
// coordinates in Ångström.
type Atom struct {
	Element string  `json:"element"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
}

// XYZ is an ordered Cartesian geometry.  Atom order is significant: the atom
// map correlates atoms by their index within the reactant and product wells.
type XYZ struct {
	Atoms []Atom `json:"atoms"`
}

// ParseXYZ parses a plain coordinate block, one "El x y z" line per atom.
// Blank lines are skipped.  A leading atom-count line and comment line (the
// standard .xyz file header) are tolerated and dropped.
func ParseXYZ(block string) (*XYZ, error) {
	var atoms []Atom
	sc := bufio.NewScanner(strings.NewReader(block))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		// File-style header: bare atom count, optionally followed by a comment
		// line, before any coordinates have been seen.
		if len(atoms) == 0 && lineNo <= 2 {
			if len(fields) == 1 {
				if _, err := strconv.Atoi(fields[0]); err == nil {
					continue
				}
			}
			if lineNo == 2 && len(fields) != 4 {
				continue
			}
		}
		if len(fields) != 4 {
			return nil, errors.New(errors.ErrCodeGeometryParse,
				"xyz line must be \"element x y z\"").
				WithDetailf("line %d: %q", lineNo, line)
		}
		var coords [3]float64
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errors.New(errors.ErrCodeGeometryParse,
					"xyz coordinate is not a number").
					WithDetailf("line %d: %q", lineNo, fields[i+1]).
					WithCause(err)
			}
			coords[i] = v
		}
		atoms = append(atoms, Atom{Element: fields[0], X: coords[0], Y: coords[1], Z: coords[2]})
	}
	if len(atoms) == 0 {
		return nil, errors.New(errors.ErrCodeGeometryParse, "xyz block contains no atoms")
	}
	return &XYZ{Atoms: atoms}, nil
}

// String serializes the geometry back to a coordinate block, one atom per
// line, without the file-style header.
func (x *XYZ) String() string {
	var sb strings.Builder
	for i, a := range x.Atoms {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s %12.8f %12.8f %12.8f", a.Element, a.X, a.Y, a.Z)
	}
	return sb.String()
}

// AtomCount returns the number of atoms in the geometry.
func (x *XYZ) AtomCount() int {
	if x == nil {
		return 0
	}
	return len(x.Atoms)
}

// Composition returns the per-element atom counts of the geometry.
func (x *XYZ) Composition() Composition {
	if x == nil {
		return nil
	}
	c := make(Composition, 4)
	for _, a := range x.Atoms {
		c[a.Element]++
	}
	return c
}

// Symbols returns the element symbols in atom order.
func (x *XYZ) Symbols() []string {
	if x == nil {
		return nil
	}
	out := make([]string, len(x.Atoms))
	for i, a := range x.Atoms {
		out[i] = a.Element
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Composition — per-element atom counts
// ─────────────────────────────────────────────────────────────────────────────

// Composition maps an element symbol to its atom count.
type Composition map[string]int

// Add merges other into c, scaled by count replicas.
func (c Composition) Add(other Composition, count int) {
	for el, n := range other {
		c[el] += n * count
	}
}

// Equal reports whether the two compositions have identical per-element
// counts.  Elements with a zero count are ignored on both sides.
func (c Composition) Equal(other Composition) bool {
	for el, n := range c {
		if n != 0 && other[el] != n {
			return false
		}
	}
	for el, n := range other {
		if n != 0 && c[el] != n {
			return false
		}
	}
	return true
}

// TotalAtoms returns the sum of all element counts.
func (c Composition) TotalAtoms() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// String renders the composition in deterministic element order, e.g.
// "C:1 H:4 O:1".
func (c Composition) String() string {
	if len(c) == 0 {
		return "(empty)"
	}
	elements := make([]string, 0, len(c))
	for el := range c {
		elements = append(elements, el)
	}
	sort.Strings(elements)
	parts := make([]string, 0, len(elements))
	for _, el := range elements {
		parts = append(parts, fmt.Sprintf("%s:%d", el, c[el]))
	}
	return strings.Join(parts, " ")
}
