package effect

import (
	"fmt"
	"strings"
)

// MainName is the name of a runtime effect's entry point.
const MainName = "main"

// Param is a function parameter.
type Param struct {
	Name string
	Type string
}

// Function is a top-level function of an effect program.
type Function struct {
	Name   string
	Params []Param
	Result string // Empty if the function returns nothing.

	// Token index ranges into the program's token list.
	first     int // "fn" keyword
	bodyOpen  int // "{" opening the body
	bodyClose int // matching "}"
}

// Decl is a top-level struct or global declaration.
type Decl struct {
	Name string

	first, last int // inclusive token range, without a trailing ';'
	nameTok     int
}

// Program is the parsed form of a runtime effect's source.
//
// It records the top-level structure only: struct definitions, global
// declarations and functions. Function bodies are kept as token spans and
// rewritten during conversion.
type Program struct {
	Structs   []Decl
	Globals   []Decl
	Functions []*Function // Helper functions in source order, excluding main.
	Main      *Function

	src  string
	toks []token
}

// Source returns the program's source text.
func (p *Program) Source() string { return p.src }

// Parse parses effect source text.
func Parse(src string) (*Program, error) {
	toks, err := scan(src)
	if err != nil {
		return nil, err
	}
	p := &Program{src: src, toks: toks}
	for i := 0; i < len(toks); {
		t := toks[i]
		switch {
		case t.is(";"):
			i++
		case t.kind == tokIdent && t.text == "struct":
			i, err = p.parseStruct(i)
		case t.kind == tokIdent && t.text == "fn":
			i, err = p.parseFunction(i)
		case t.kind == tokIdent && (t.text == "const" || t.text == "var" || t.text == "override" || t.text == "alias"):
			i, err = p.parseGlobal(i)
		default:
			err = p.errorf(i, "unexpected %q at top level", t.text)
		}
		if err != nil {
			return nil, err
		}
	}
	if p.Main == nil {
		return nil, ErrNoMain
	}
	return p, nil
}

func (p *Program) errorf(i int, format string, args ...any) error {
	off := len(p.src)
	if i < len(p.toks) {
		off = p.toks[i].start
	}
	line := 1 + strings.Count(p.src[:off], "\n")
	return fmt.Errorf("%w: line %d: %s", ErrSyntax, line, fmt.Sprintf(format, args...))
}

func (p *Program) expectIdent(i int) (string, error) {
	if i >= len(p.toks) || p.toks[i].kind != tokIdent {
		return "", p.errorf(i, "expected identifier")
	}
	return p.toks[i].text, nil
}

// matching returns the index of the token closing the bracket at i.
func (p *Program) matching(i int) (int, error) {
	open := p.toks[i].text
	var close string
	switch open {
	case "(":
		close = ")"
	case "{":
		close = "}"
	case "[":
		close = "]"
	default:
		return 0, p.errorf(i, "not an opening bracket: %q", open)
	}
	depth := 0
	for j := i; j < len(p.toks); j++ {
		switch {
		case p.toks[j].is(open):
			depth++
		case p.toks[j].is(close):
			depth--
			if depth == 0 {
				return j, nil
			}
		}
	}
	return 0, p.errorf(i, "unbalanced %q", open)
}

// skipTemplate skips a "<...>" template list starting at i, if present.
func (p *Program) skipTemplate(i int) int {
	if i >= len(p.toks) || !p.toks[i].is("<") {
		return i
	}
	depth := 0
	for j := i; j < len(p.toks); j++ {
		switch {
		case p.toks[j].is("<"):
			depth++
		case p.toks[j].is(">"):
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return len(p.toks)
}

func (p *Program) parseStruct(i int) (int, error) {
	name, err := p.expectIdent(i + 1)
	if err != nil {
		return 0, err
	}
	if i+2 >= len(p.toks) || !p.toks[i+2].is("{") {
		return 0, p.errorf(i+2, "expected '{' after struct %s", name)
	}
	end, err := p.matching(i + 2)
	if err != nil {
		return 0, err
	}
	p.Structs = append(p.Structs, Decl{Name: name, first: i, last: end, nameTok: i + 1})
	return end + 1, nil
}

func (p *Program) parseGlobal(i int) (int, error) {
	j := p.skipTemplate(i + 1) // var<private>
	name, err := p.expectIdent(j)
	if err != nil {
		return 0, err
	}
	for k := j; k < len(p.toks); k++ {
		if p.toks[k].is(";") {
			p.Globals = append(p.Globals, Decl{Name: name, first: i, last: k - 1, nameTok: j})
			return k + 1, nil
		}
	}
	return 0, p.errorf(i, "missing ';' after global %s", name)
}

func (p *Program) parseFunction(i int) (int, error) {
	name, err := p.expectIdent(i + 1)
	if err != nil {
		return 0, err
	}
	if i+2 >= len(p.toks) || !p.toks[i+2].is("(") {
		return 0, p.errorf(i+2, "expected '(' after fn %s", name)
	}
	closeParen, err := p.matching(i + 2)
	if err != nil {
		return 0, err
	}
	fn := &Function{Name: name, first: i}
	if fn.Params, err = p.parseParams(i+3, closeParen); err != nil {
		return 0, err
	}

	j := closeParen + 1
	if j < len(p.toks) && p.toks[j].is("->") {
		start := j + 1
		for j = start; j < len(p.toks) && !p.toks[j].is("{"); j++ {
		}
		if j == start {
			return 0, p.errorf(j, "missing result type for fn %s", name)
		}
		fn.Result = p.text(start, j-1)
	}
	if j >= len(p.toks) || !p.toks[j].is("{") {
		return 0, p.errorf(j, "expected body for fn %s", name)
	}
	fn.bodyOpen = j
	if fn.bodyClose, err = p.matching(j); err != nil {
		return 0, err
	}

	if name == MainName {
		if p.Main != nil {
			return 0, p.errorf(i, "duplicate fn main")
		}
		if err := validateMain(fn); err != nil {
			return 0, err
		}
		p.Main = fn
	} else {
		p.Functions = append(p.Functions, fn)
	}
	return fn.bodyClose + 1, nil
}

func (p *Program) parseParams(from, to int) ([]Param, error) {
	var params []Param
	depth := 0
	start := from
	flush := func(end int) error {
		if start >= end {
			return nil
		}
		if end-start < 3 || p.toks[start].kind != tokIdent || !p.toks[start+1].is(":") {
			return p.errorf(start, "malformed parameter")
		}
		params = append(params, Param{Name: p.toks[start].text, Type: p.text(start+2, end-1)})
		return nil
	}
	for k := from; k < to; k++ {
		t := p.toks[k]
		switch {
		case t.is("<") || t.is("("):
			depth++
		case t.is(">") || t.is(")"):
			depth--
		case t.is(",") && depth == 0:
			if err := flush(k); err != nil {
				return nil, err
			}
			start = k + 1
		}
	}
	if err := flush(to); err != nil {
		return nil, err
	}
	return params, nil
}

// text returns the source text spanning tokens first..last inclusive.
func (p *Program) text(first, last int) string {
	return p.src[p.toks[first].start:p.toks[last].end]
}

func validateMain(fn *Function) error {
	if len(fn.Params) < 1 || len(fn.Params) > 3 {
		return fmt.Errorf("%w: main takes 1 to 3 parameters, got %d", ErrBadMain, len(fn.Params))
	}
	if fn.Result == "" {
		return fmt.Errorf("%w: main must return a color", ErrBadMain)
	}
	return nil
}
