package grammar

func step(result, rule string, t DerivationType) Step {
	return Step{Result: result, Rule: rule, Type: t}
}

// Builtin returns the three example grammars shipped with ambiscope. Each
// call returns a fresh copy.
func Builtin() *Catalog {
	return &Catalog{Grammars: []Grammar{arith(), abab(), danglingElse()}}
}

func arith() Grammar {
	return Grammar{
		Name:        "arith",
		Description: "Ambiguous Grammar: E → E + E | E * E | (E) | id",
		StartSymbol: "E",
		Productions: []string{
			"E → E + E",
			"E → E * E",
			"E → (E)",
			"E → id",
		},
		Inputs: []Input{{
			String: "id+id*id",
			Derivations: []Derivation{
				{
					Description: "Parse Tree A (+ binds first)",
					Type:        Leftmost,
					Steps: []Step{
						step("E", StartSymbolRule, Leftmost),
						step("E + E", "E → E + E", Leftmost),
						step("id + E", "E → id", Leftmost),
						step("id + E * E", "E → E * E", Leftmost),
						step("id + id * E", "E → id", Leftmost),
						step("id + id * id", "E → id", Leftmost),
					},
				},
				{
					Description: "Parse Tree B (* binds first)",
					Type:        Rightmost,
					Steps: []Step{
						step("E", StartSymbolRule, Rightmost),
						step("E * E", "E → E * E", Rightmost),
						step("E + E * E", "E → E + E", Rightmost),
						step("E + id * E", "E → id", Rightmost),
						step("E + id * id", "E → id", Rightmost),
						step("id + id * id", "E → id", Rightmost),
					},
				},
			},
		}},
	}
}

func abab() Grammar {
	return Grammar{
		Name:        "abab",
		Description: "Ambiguous Grammar: S → SS | ab | ba",
		StartSymbol: "S",
		Productions: []string{
			"S → SS",
			"S → ab",
			"S → ba",
		},
		Terminals: []string{"a", "b"},
		Inputs: []Input{{
			String: "abab",
			Derivations: []Derivation{
				{
					Description: "Parse Tree A (Leftmost)",
					Type:        Leftmost,
					Steps: []Step{
						step("S", StartSymbolRule, Leftmost),
						step("SS", "S → SS", Leftmost),
						step("abS", "S → ab", Leftmost),
						step("abab", "S → ab", Leftmost),
					},
				},
				{
					Description: "Parse Tree B (Rightmost)",
					Type:        Rightmost,
					Steps: []Step{
						step("S", StartSymbolRule, Rightmost),
						step("SS", "S → SS", Rightmost),
						step("Sab", "S → ab", Rightmost),
						step("abab", "S → ab", Rightmost),
					},
				},
			},
		}},
	}
}

func danglingElse() Grammar {
	return Grammar{
		Name:        "dangling-else",
		Description: "Ambiguous Grammar: if-then-else statements",
		StartSymbol: "S",
		Productions: []string{
			"S → if E then S",
			"S → if E then S else S",
			"S → other",
		},
		Inputs: []Input{{
			String: "if E then if E then other else other",
			Derivations: []Derivation{
				{
					Description: "Parse Tree A (else with outer if)",
					Type:        Leftmost,
					Steps: []Step{
						step("S", StartSymbolRule, Leftmost),
						step("if E then S else S", "S → if E then S else S", Leftmost),
						step("if E then if E then S else S", "S → if E then S", Leftmost),
						step("if E then if E then other else S", "S → other", Leftmost),
						step("if E then if E then other else other", "S → other", Leftmost),
					},
				},
				{
					Description: "Parse Tree B (else with inner if)",
					Type:        Rightmost,
					Steps: []Step{
						step("S", StartSymbolRule, Rightmost),
						step("if E then S", "S → if E then S", Rightmost),
						step("if E then if E then S else S", "S → if E then S else S", Rightmost),
						step("if E then if E then other else S", "S → other", Rightmost),
						step("if E then if E then other else other", "S → other", Rightmost),
					},
				},
			},
		}},
	}
}
