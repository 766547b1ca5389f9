package grammar

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Catalog is an ordered, immutable list of grammars.
type Catalog struct {
	Grammars []Grammar `json:"grammars"`
}

// Len returns the number of grammars.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Grammars)
}

// Grammar returns grammar i. i must be in range.
func (c *Catalog) Grammar(i int) *Grammar {
	return &c.Grammars[i]
}

// Lookup finds a grammar by name (case-insensitive) or by 1-based index.
// It returns the 0-based position along with the grammar.
func (c *Catalog) Lookup(ref string) (int, *Grammar, error) {
	ref = strings.TrimSpace(ref)
	for i := range c.Grammars {
		if strings.EqualFold(c.Grammars[i].Name, ref) {
			return i, &c.Grammars[i], nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(c.Grammars) {
		return n - 1, &c.Grammars[n-1], nil
	}
	return -1, nil, fmt.Errorf("%w: %q", ErrGrammarNotFound, ref)
}

// Names returns the grammar names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Grammars))
	for i := range c.Grammars {
		names[i] = c.Grammars[i].Name
	}
	return names
}

// Load decodes and validates a JSON catalog.
func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	tracer().Infof("loaded catalog with %d grammars", len(c.Grammars))
	return &c, nil
}

// LoadFile reads a catalog from a JSON file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()
	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// normalize names unnamed grammars "grammar-N" (1-based).
func (c *Catalog) normalize() {
	for i := range c.Grammars {
		if strings.TrimSpace(c.Grammars[i].Name) == "" {
			c.Grammars[i].Name = fmt.Sprintf("grammar-%d", i+1)
		}
	}
}

// Validate checks the structural rules every catalog must satisfy. All
// problems are reported at once, each prefixed with its location.
func (c *Catalog) Validate() error {
	if c.Len() == 0 {
		return ErrEmptyCatalog
	}
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	seen := make(map[string]int)
	for gi := range c.Grammars {
		g := &c.Grammars[gi]
		gloc := fmt.Sprintf("grammar[%d]", gi)
		if prev, dup := seen[strings.ToLower(g.Name)]; dup {
			bad("%s: name %q already used by grammar[%d]", gloc, g.Name, prev)
		}
		seen[strings.ToLower(g.Name)] = gi
		if g.StartSymbol == "" {
			bad("%s: missing start symbol", gloc)
		}
		if len(g.Productions) == 0 {
			bad("%s: no productions", gloc)
		}
		if _, err := g.Rules(); err != nil {
			bad("%s: %w", gloc, err)
		}
		if len(g.Inputs) == 0 {
			bad("%s: no inputs", gloc)
		}
		for ii := range g.Inputs {
			in := &g.Inputs[ii]
			iloc := fmt.Sprintf("%s.inputs[%d]", gloc, ii)
			if len(in.Derivations) == 0 {
				bad("%s: no derivations", iloc)
			}
			for di := range in.Derivations {
				d := &in.Derivations[di]
				dloc := fmt.Sprintf("%s.derivations[%d]", iloc, di)
				if !d.Type.Valid() {
					bad("%s: unknown type %q", dloc, d.Type)
				}
				if len(d.Steps) == 0 {
					bad("%s: no steps", dloc)
					continue
				}
				if !d.Steps[0].IsStart() {
					bad("%s.steps[0]: rule is %q, want %q", dloc, d.Steps[0].Rule, StartSymbolRule)
				}
				for si := 1; si < len(d.Steps); si++ {
					st := d.Steps[si]
					if g.RuleIndex(st.Rule) < 0 {
						bad("%s.steps[%d]: rule %q is not a production", dloc, si, st.Rule)
					}
					if st.Type != "" && !st.Type.Valid() {
						bad("%s.steps[%d]: unknown type %q", dloc, si, st.Type)
					}
				}
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(errs...))
	}
	return nil
}

// WriteJSON encodes the catalog as indented JSON.
func (c *Catalog) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	return nil
}
