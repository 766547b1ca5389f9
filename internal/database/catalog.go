package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Mr-Dark-debug/ambiscope/internal/grammar"
)

// SaveCatalog replaces every stored grammar with the grammars of c.
// Dependent rows go with their grammar through ON DELETE CASCADE.
func (s *DBService) SaveCatalog(c *grammar.Catalog) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("saving catalog: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning catalog transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.Exec(`DELETE FROM grammars`); err != nil {
		return fmt.Errorf("clearing grammars: %w", err)
	}

	now := time.Now().UnixNano()
	for gi := range c.Grammars {
		if err := insertGrammar(tx, gi, &c.Grammars[gi], now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing catalog: %w", err)
	}
	tracer().Infof("saved %d grammars to %s", c.Len(), s.path)
	return nil
}

func insertGrammar(tx *sql.Tx, position int, g *grammar.Grammar, now int64) error {
	terminals, err := marshalTerminals(g.Terminals)
	if err != nil {
		return fmt.Errorf("grammar %q: %w", g.Name, err)
	}
	res, err := tx.Exec(`
		INSERT INTO grammars (position, name, description, start_symbol, terminals, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, position, g.Name, g.Description, g.StartSymbol, terminals, now)
	if err != nil {
		return fmt.Errorf("inserting grammar %q: %w", g.Name, err)
	}
	grammarID, _ := res.LastInsertId()

	for pi, p := range g.Productions {
		if _, err := tx.Exec(`INSERT INTO productions (grammar_id, position, rule) VALUES (?, ?, ?)`,
			grammarID, pi, p); err != nil {
			return fmt.Errorf("inserting production %d of %q: %w", pi, g.Name, err)
		}
	}

	for ii, in := range g.Inputs {
		res, err := tx.Exec(`INSERT INTO inputs (grammar_id, position, text) VALUES (?, ?, ?)`,
			grammarID, ii, in.String)
		if err != nil {
			return fmt.Errorf("inserting input %d of %q: %w", ii, g.Name, err)
		}
		inputID, _ := res.LastInsertId()

		for di, d := range in.Derivations {
			res, err := tx.Exec(`
				INSERT INTO derivations (input_id, position, description, type)
				VALUES (?, ?, ?, ?)
			`, inputID, di, d.Description, string(d.Type))
			if err != nil {
				return fmt.Errorf("inserting derivation %d of %q: %w", di, g.Name, err)
			}
			derivationID, _ := res.LastInsertId()

			for si, st := range d.Steps {
				if _, err := tx.Exec(`
					INSERT INTO steps (derivation_id, position, result, rule, type)
					VALUES (?, ?, ?, ?, ?)
				`, derivationID, si, st.Result, st.Rule, string(st.Type)); err != nil {
					return fmt.Errorf("inserting step %d of %q: %w", si, d.Description, err)
				}
			}
		}
	}
	return nil
}

// LoadCatalog reads the stored catalog. The store keeps a single
// connection, so every table is read to completion before the next query
// and the catalog is assembled afterwards.
func (s *DBService) LoadCatalog() (*grammar.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type grammarRow struct {
		id int64
		g  grammar.Grammar
	}
	var grammars []*grammarRow
	byGrammar := make(map[int64]*grammar.Grammar)

	rows, err := s.db.Query(`
		SELECT grammar_id, name, description, start_symbol, terminals
		FROM grammars ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying grammars: %w", err)
	}
	for rows.Next() {
		gr := &grammarRow{}
		var terminals sql.NullString
		if err := rows.Scan(&gr.id, &gr.g.Name, &gr.g.Description, &gr.g.StartSymbol, &terminals); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning grammar row: %w", err)
		}
		if terminals.Valid {
			if err := json.Unmarshal([]byte(terminals.String), &gr.g.Terminals); err != nil {
				rows.Close()
				return nil, fmt.Errorf("decoding terminals of %q: %w", gr.g.Name, err)
			}
		}
		grammars = append(grammars, gr)
		byGrammar[gr.id] = &gr.g
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(`SELECT grammar_id, rule FROM productions ORDER BY grammar_id, position`)
	if err != nil {
		return nil, fmt.Errorf("querying productions: %w", err)
	}
	for rows.Next() {
		var id int64
		var rule string
		if err := rows.Scan(&id, &rule); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning production row: %w", err)
		}
		if g := byGrammar[id]; g != nil {
			g.Productions = append(g.Productions, rule)
		}
	}
	rows.Close()

	// Inputs and derivations are addressed by id until the slices are
	// final; appending would otherwise invalidate pointers.
	type inputRow struct {
		grammarID int64
		in        grammar.Input
	}
	inputs := make(map[int64]*inputRow)
	var inputOrder []int64
	rows, err = s.db.Query(`SELECT input_id, grammar_id, text FROM inputs ORDER BY grammar_id, position`)
	if err != nil {
		return nil, fmt.Errorf("querying inputs: %w", err)
	}
	for rows.Next() {
		var id int64
		ir := &inputRow{}
		if err := rows.Scan(&id, &ir.grammarID, &ir.in.String); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning input row: %w", err)
		}
		inputs[id] = ir
		inputOrder = append(inputOrder, id)
	}
	rows.Close()

	type derivationRow struct {
		inputID int64
		d       grammar.Derivation
	}
	derivations := make(map[int64]*derivationRow)
	var derivationOrder []int64
	rows, err = s.db.Query(`SELECT derivation_id, input_id, description, type FROM derivations ORDER BY input_id, position`)
	if err != nil {
		return nil, fmt.Errorf("querying derivations: %w", err)
	}
	for rows.Next() {
		var id int64
		var typ string
		dr := &derivationRow{}
		if err := rows.Scan(&id, &dr.inputID, &dr.d.Description, &typ); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning derivation row: %w", err)
		}
		dr.d.Type = grammar.DerivationType(typ)
		derivations[id] = dr
		derivationOrder = append(derivationOrder, id)
	}
	rows.Close()

	rows, err = s.db.Query(`SELECT derivation_id, result, rule, type FROM steps ORDER BY derivation_id, position`)
	if err != nil {
		return nil, fmt.Errorf("querying steps: %w", err)
	}
	for rows.Next() {
		var id int64
		var st grammar.Step
		var typ string
		if err := rows.Scan(&id, &st.Result, &st.Rule, &typ); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning step row: %w", err)
		}
		st.Type = grammar.DerivationType(typ)
		if dr := derivations[id]; dr != nil {
			dr.d.Steps = append(dr.d.Steps, st)
		}
	}
	rows.Close()

	for _, id := range derivationOrder {
		dr := derivations[id]
		if ir := inputs[dr.inputID]; ir != nil {
			ir.in.Derivations = append(ir.in.Derivations, dr.d)
		}
	}
	for _, id := range inputOrder {
		ir := inputs[id]
		if g := byGrammar[ir.grammarID]; g != nil {
			g.Inputs = append(g.Inputs, ir.in)
		}
	}

	c := &grammar.Catalog{Grammars: make([]grammar.Grammar, 0, len(grammars))}
	for _, gr := range grammars {
		c.Grammars = append(c.Grammars, gr.g)
	}
	tracer().Debugf("loaded %d grammars from %s", c.Len(), s.path)
	return c, nil
}

// EnsureCatalog loads the stored catalog. An empty store is seeded with
// seed first; seeded reports whether that happened.
func EnsureCatalog(s Store, seed *grammar.Catalog) (c *grammar.Catalog, seeded bool, err error) {
	c, err = s.LoadCatalog()
	if err != nil {
		return nil, false, fmt.Errorf("loading catalog: %w", err)
	}
	if c.Len() > 0 {
		return c, false, nil
	}
	if err := s.SaveCatalog(seed); err != nil {
		return nil, false, err
	}
	tracer().Infof("seeded %d grammars", seed.Len())
	return seed, true, nil
}
