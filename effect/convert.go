package effect

import (
	"strconv"
	"strings"
)

// Callbacks receives the pieces of a converted effect program.
//
// ConvertProgram never writes output itself; the host decides where each
// declaration goes and how child samples are expressed.
type Callbacks interface {
	// DeclareUniform returns the expression that refers to u in generated code.
	DeclareUniform(u *Uniform) string
	// DeclareFunction announces a helper function signature before any
	// function is defined.
	DeclareFunction(decl string)
	// DeclareGlobal receives a module-scope const/var/override/alias
	// declaration, including its trailing ';'.
	DeclareGlobal(decl string)
	// DefineStruct receives a complete struct definition.
	DefineStruct(def string)
	// DefineFunction receives a function signature and body (without the
	// enclosing braces). For the entry point decl is empty and isMain is set.
	DefineFunction(decl, body string, isMain bool)

	SampleShader(index int, coords string) string
	SampleColorFilter(index int, color string) string
	SampleBlender(index int, src, dst string) string
	ToLinearSrgb(color string) string
	FromLinearSrgb(color string) string

	// GetMangledName returns a unique name for a top-level symbol.
	GetMangledName(name string) string
}

// Entry point parameters are bound positionally.
const (
	paramCoords = iota
	paramColor
	paramDest
)

// ConvertProgram rewrites p for embedding into a larger shader and passes
// the result to cb.
//
// Top-level names are replaced with cb.GetMangledName results and uniform
// references with cb.DeclareUniform results. Inside main, the parameters
// are replaced with sampleCoords, inputColor and destColor.
func ConvertProgram(p *Program, uniforms []Uniform, sampleCoords, inputColor, destColor string, cb Callbacks) error {
	c := &converter{p: p, cb: cb, names: make(map[string]string), declTok: make(map[int]bool)}

	for i := range uniforms {
		u := uniforms[i]
		c.names[u.Name] = cb.DeclareUniform(&u)
	}
	for _, s := range p.Structs {
		c.names[s.Name] = cb.GetMangledName(s.Name)
	}
	for _, g := range p.Globals {
		c.names[g.Name] = cb.GetMangledName(g.Name)
		c.declTok[g.nameTok] = true
	}
	for _, fn := range p.Functions {
		c.names[fn.Name] = cb.GetMangledName(fn.Name)
	}

	for _, s := range p.Structs {
		def, err := c.render(s.first, s.last, c.names, false)
		if err != nil {
			return err
		}
		cb.DefineStruct(def)
	}
	for _, g := range p.Globals {
		decl, err := c.render(g.first, g.last, c.names, false)
		if err != nil {
			return err
		}
		cb.DeclareGlobal(decl + ";")
	}

	decls := make([]string, len(p.Functions))
	for i, fn := range p.Functions {
		decl, err := c.render(fn.first, fn.bodyOpen-1, c.names, false)
		if err != nil {
			return err
		}
		decls[i] = decl
		cb.DeclareFunction(decl)
	}
	for i, fn := range p.Functions {
		body, err := c.render(fn.bodyOpen+1, fn.bodyClose-1, shadow(c.names, fn.Params), true)
		if err != nil {
			return err
		}
		cb.DefineFunction(decls[i], body, false)
	}

	// Main parameters shadow top-level names.
	mainNames := make(map[string]string, len(c.names)+3)
	for k, v := range c.names {
		mainNames[k] = v
	}
	args := [...]string{paramCoords: sampleCoords, paramColor: inputColor, paramDest: destColor}
	for i, param := range p.Main.Params {
		mainNames[param.Name] = args[i]
	}
	body, err := c.render(p.Main.bodyOpen+1, p.Main.bodyClose-1, mainNames, true)
	if err != nil {
		return err
	}
	cb.DefineFunction("", body, true)
	return nil
}

// shadow returns names without the entries hidden by params.
func shadow(names map[string]string, params []Param) map[string]string {
	if len(params) == 0 {
		return names
	}
	keys := make([]string, len(params))
	for i, param := range params {
		keys[i] = param.Name
	}
	return without(names, keys)
}

type converter struct {
	p       *Program
	cb      Callbacks
	names   map[string]string
	declTok map[int]bool // tokens naming a global in its own declaration
}

// render returns the source text of tokens first..last inclusive with
// identifiers renamed through names and child-sampling intrinsics replaced
// by callback results. Whitespace and comments between tokens are kept.
//
// In a function body, a let, var or const hides the outer name it declares
// from the end of its statement to the end of the enclosing block.
func (c *converter) render(first, last int, names map[string]string, body bool) (string, error) {
	if first > last {
		return "", nil
	}
	toks := c.p.toks
	var (
		sb      strings.Builder
		scopes  []map[string]string
		pending []string
	)
	declared := -1 // token naming the local being declared
	prevEnd := toks[first].start
	for i := first; i <= last; i++ {
		t := toks[i]
		sb.WriteString(c.p.src[prevEnd:t.start])
		prevEnd = t.end

		if t.kind != tokIdent {
			if body {
				switch {
				case t.is("{"):
					scopes = append(scopes, names)
				case t.is("}") && len(scopes) > 0:
					names = scopes[len(scopes)-1]
					scopes = scopes[:len(scopes)-1]
				case t.is(";") && len(pending) > 0:
					names = without(names, pending)
					pending = pending[:0]
				}
			}
			sb.WriteString(t.text)
			continue
		}
		if i == declared {
			sb.WriteString(t.text)
			continue
		}
		if body && isLocalDecl(t.text) {
			if j, ok := c.declaredName(i+1, last); ok {
				declared = j
				pending = append(pending, toks[j].text)
			}
			sb.WriteString(t.text)
			continue
		}
		if i+1 <= last && toks[i+1].is("(") && isIntrinsic(t.text) {
			closeIdx, err := c.p.matching(i + 1)
			if err != nil {
				return "", err
			}
			if closeIdx > last {
				return "", c.p.errorf(i, "call to %s crosses its enclosing scope", t.text)
			}
			expr, err := c.intrinsic(t.text, i+2, closeIdx-1, names)
			if err != nil {
				return "", err
			}
			sb.WriteString(expr)
			i = closeIdx
			prevEnd = toks[closeIdx].end
			continue
		}
		sb.WriteString(c.rename(i, names))
	}
	return sb.String(), nil
}

func isLocalDecl(word string) bool {
	return word == "let" || word == "var" || word == "const"
}

// declaredName returns the index of the name token declared by the let,
// var or const whose keyword precedes token i, skipping a var's
// <address space> list.
func (c *converter) declaredName(i, last int) (int, bool) {
	toks := c.p.toks
	if i <= last && toks[i].is("<") {
		for i <= last && !toks[i].is(">") {
			i++
		}
		i++
	}
	if i > last || toks[i].kind != tokIdent {
		return 0, false
	}
	return i, true
}

// without returns a copy of names with the given keys removed.
func without(names map[string]string, keys []string) map[string]string {
	m := make(map[string]string, len(names))
	for k, v := range names {
		m[k] = v
	}
	for _, k := range keys {
		delete(m, k)
	}
	return m
}

// rename returns the replacement for the identifier at token i.
// Member names (after '.') and declared names (before ':') are kept.
func (c *converter) rename(i int, names map[string]string) string {
	toks := c.p.toks
	t := toks[i]
	if i > 0 && toks[i-1].is(".") {
		return t.text
	}
	if i+1 < len(toks) && toks[i+1].is(":") && !c.declTok[i] {
		return t.text
	}
	if n, ok := names[t.text]; ok {
		return n
	}
	return t.text
}

func isIntrinsic(name string) bool {
	switch name {
	case "sampleShader", "sampleColorFilter", "sampleBlender", "toLinearSrgb", "fromLinearSrgb":
		return true
	}
	return false
}

func (c *converter) intrinsic(name string, first, last int, names map[string]string) (string, error) {
	args, err := c.splitArgs(first, last, names)
	if err != nil {
		return "", err
	}
	want := map[string]int{
		"sampleShader":      2,
		"sampleColorFilter": 2,
		"sampleBlender":     3,
		"toLinearSrgb":      1,
		"fromLinearSrgb":    1,
	}[name]
	if len(args) != want {
		return "", c.p.errorf(first, "%s takes %d arguments, got %d", name, want, len(args))
	}

	switch name {
	case "toLinearSrgb":
		return c.cb.ToLinearSrgb(args[0]), nil
	case "fromLinearSrgb":
		return c.cb.FromLinearSrgb(args[0]), nil
	}

	index, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSuffix(args[0], "i"), "u"))
	if err != nil || index < 0 {
		return "", c.p.errorf(first, "%s: child index must be a non-negative integer literal, got %q", name, args[0])
	}
	switch name {
	case "sampleShader":
		return c.cb.SampleShader(index, args[1]), nil
	case "sampleColorFilter":
		return c.cb.SampleColorFilter(index, args[1]), nil
	default:
		return c.cb.SampleBlender(index, args[1], args[2]), nil
	}
}

// splitArgs renders the comma separated arguments in tokens first..last.
func (c *converter) splitArgs(first, last int, names map[string]string) ([]string, error) {
	if first > last {
		return nil, nil
	}
	var args []string
	depth := 0
	start := first
	flush := func(end int) error {
		if start > end {
			return c.p.errorf(start, "empty argument")
		}
		s, err := c.render(start, end, names, false)
		if err != nil {
			return err
		}
		args = append(args, s)
		return nil
	}
	for i := first; i <= last; i++ {
		t := c.p.toks[i]
		switch {
		case t.is("(") || t.is("["):
			depth++
		case t.is(")") || t.is("]"):
			depth--
		case t.is(",") && depth == 0:
			if err := flush(i - 1); err != nil {
				return nil, err
			}
			start = i + 1
		}
	}
	if err := flush(last); err != nil {
		return nil, err
	}
	return args, nil
}
