package element

import "fmt"

// Matchups declares how one element's skill damage scales against others.
// Strong and Weak are disjoint; elements absent from both resolve to 1.0.
type Matchups struct {
	// Strong maps defender elements to multipliers > 1.0.
	Strong map[Element]float64
	// Weak maps defender elements to multipliers < 1.0.
	Weak map[Element]float64
}

// Table is the process-wide element effectiveness lookup.
// It is immutable after construction and safe for concurrent use.
//
// Invariant: every key in the table is a valid Element; every multiplier
// is > 0. The relation is asymmetric: Effectiveness(a, b) carries no
// implication about Effectiveness(b, a).
type Table struct {
	matchups map[Element]Matchups
}

// NewTable builds a Table from per-attacker matchup declarations.
//
// Precondition: matchups may be nil or partial; undeclared attackers
// resolve every defender to 1.0.
// Postcondition: Returns a Table or an error naming the first invalid
// element, overlapping declaration, or out-of-range multiplier.
func NewTable(matchups map[Element]Matchups) (*Table, error) {
	out := make(map[Element]Matchups, len(matchups))
	for att, m := range matchups {
		if !att.Valid() {
			return nil, fmt.Errorf("element table: unknown attacker element %q", att)
		}
		for def, mult := range m.Strong {
			if !def.Valid() {
				return nil, fmt.Errorf("element table: %s: unknown defender element %q", att, def)
			}
			if mult <= 1.0 {
				return nil, fmt.Errorf("element table: %s strong vs %s: multiplier must be > 1.0, got %v", att, def, mult)
			}
		}
		for def, mult := range m.Weak {
			if !def.Valid() {
				return nil, fmt.Errorf("element table: %s: unknown defender element %q", att, def)
			}
			if mult <= 0 || mult >= 1.0 {
				return nil, fmt.Errorf("element table: %s weak vs %s: multiplier must be in (0, 1.0), got %v", att, def, mult)
			}
			if _, dup := m.Strong[def]; dup {
				return nil, fmt.Errorf("element table: %s declares %s as both strong and weak", att, def)
			}
		}
		cp := Matchups{
			Strong: make(map[Element]float64, len(m.Strong)),
			Weak:   make(map[Element]float64, len(m.Weak)),
		}
		for k, v := range m.Strong {
			cp.Strong[k] = v
		}
		for k, v := range m.Weak {
			cp.Weak[k] = v
		}
		out[att] = cp
	}
	return &Table{matchups: out}, nil
}

// Effectiveness returns the damage multiplier for attacker's element skill
// against defender.
//
// Postcondition: Returns the declared strong or weak multiplier, or exactly
// 1.0 when no relation is declared for the pair.
func (t *Table) Effectiveness(attacker, defender Element) float64 {
	m, ok := t.matchups[attacker]
	if !ok {
		return 1.0
	}
	if mult, ok := m.Strong[defender]; ok {
		return mult
	}
	if mult, ok := m.Weak[defender]; ok {
		return mult
	}
	return 1.0
}
