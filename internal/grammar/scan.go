package grammar

import (
	"errors"
	"fmt"
	"strings"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// Tokenizer splits sentential forms into grammar symbols. It is a
// lexmachine DFA with one literal pattern per vocabulary symbol; the
// longest match wins, so "id" is never read as "i" "d" when both exist.
type Tokenizer struct {
	vocab   *Vocabulary
	lexer   *lexmachine.Lexer
	symbols []string // token type -> symbol
}

// NewTokenizer compiles a tokenizer for the symbols of v.
func NewTokenizer(v *Vocabulary) (*Tokenizer, error) {
	t := &Tokenizer{
		vocab:   v,
		lexer:   lexmachine.NewLexer(),
		symbols: v.Symbols(),
	}
	t.lexer.Add([]byte(`( |\t|\n|\r)+`), skip)
	for id, sym := range t.symbols {
		t.lexer.Add([]byte(literalPattern(sym)), makeToken(id))
	}
	if err := t.lexer.Compile(); err != nil {
		tracer().Errorf("error compiling DFA: %v", err)
		return nil, fmt.Errorf("compiling tokenizer: %w", err)
	}
	return t, nil
}

// TokenizerFor builds the vocabulary of g and compiles a tokenizer for it.
func TokenizerFor(g *Grammar) (*Tokenizer, error) {
	v, err := NewVocabulary(g)
	if err != nil {
		return nil, err
	}
	return NewTokenizer(v)
}

// Vocabulary returns the vocabulary the tokenizer was built from.
func (t *Tokenizer) Vocabulary() *Vocabulary {
	return t.vocab
}

// Tokenize returns the symbols of form in order. Whitespace separates
// nothing by itself; "abS" and "a b S" tokenize alike.
func (t *Tokenizer) Tokenize(form string) ([]string, error) {
	s, err := t.lexer.Scanner([]byte(form))
	if err != nil {
		return nil, fmt.Errorf("scanning %q: %w", form, err)
	}
	var out []string
	for tok, err, eof := s.Next(); !eof; tok, err, eof = s.Next() {
		if err != nil {
			var ui *machines.UnconsumedInput
			if errors.As(err, &ui) {
				return nil, fmt.Errorf("%w at offset %d of %q", ErrUnknownSymbol, ui.FailTC, form)
			}
			return nil, fmt.Errorf("scanning %q: %w", form, err)
		}
		token := tok.(*lexmachine.Token)
		out = append(out, t.symbols[token.Type])
	}
	return out, nil
}

// RHS tokenizes the right-hand side of r.
func (t *Tokenizer) RHS(r Rule) ([]string, error) {
	return t.Tokenize(r.RHS)
}

// Derived strips the nonterminals from form and concatenates the
// remaining terminals without separators.
func (t *Tokenizer) Derived(form string) (string, error) {
	syms, err := t.Tokenize(form)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, s := range syms {
		if !t.vocab.IsNonterminal(s) {
			b.WriteString(s)
		}
	}
	return b.String(), nil
}

// literalPattern escapes every ASCII character that is not a letter or
// digit, so operators like "+" and "(" match literally.
func literalPattern(sym string) string {
	var b strings.Builder
	for i := 0; i < len(sym); i++ {
		c := sym[i]
		isWord := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
		if c < 0x80 && !isWord {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func makeToken(id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}
