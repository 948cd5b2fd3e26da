package shaders

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Embedded WGSL snippet library.
// Every function a built-in snippet names as its static function lives here.
//
//go:embed wgsl/*.wgsl
var libraryFS embed.FS

// libraryFiles lists the library sources in emission order.
var libraryFiles = []string{
	"wgsl/common.wgsl",
	"wgsl/gradient.wgsl",
	"wgsl/image.wgsl",
	"wgsl/blend.wgsl",
}

// libItem is one module-scope declaration of the library.
type libItem struct {
	name  string
	text  string
	order int
	deps  []string
}

type library struct {
	items map[string]*libItem
}

var (
	libOnce sync.Once
	lib     *library
)

// snippetLibrary returns the parsed library, parsing it on first use.
func snippetLibrary() *library {
	libOnce.Do(func() {
		srcs := make([]string, len(libraryFiles))
		for i, name := range libraryFiles {
			b, err := libraryFS.ReadFile(name)
			if err != nil {
				panic(fmt.Sprintf("shaders: missing library file %s: %v", name, err))
			}
			srcs[i] = string(b)
		}
		lib = parseLibrary(srcs...)
	})
	return lib
}

// parseLibrary splits WGSL sources into top-level declarations.
//
// A declaration starts at a line beginning with "fn ", "const " or
// "struct " in column zero, together with the comment lines directly above
// it, and runs until the next declaration.
func parseLibrary(srcs ...string) *library {
	l := &library{items: make(map[string]*libItem)}
	order := 0
	for _, src := range srcs {
		lines := strings.Split(src, "\n")
		var starts []int
		for i, line := range lines {
			if libDeclName(line) == "" {
				continue
			}
			start := i
			for start > 0 && strings.HasPrefix(lines[start-1], "//") {
				start--
			}
			starts = append(starts, start)
		}
		for k, start := range starts {
			end := len(lines)
			if k+1 < len(starts) {
				end = starts[k+1]
			}
			text := strings.TrimRight(strings.Join(lines[start:end], "\n"), " \t\n")
			name := ""
			for _, line := range lines[start:end] {
				if name = libDeclName(line); name != "" {
					break
				}
			}
			if _, dup := l.items[name]; dup {
				panic("shaders: duplicate library declaration " + name)
			}
			l.items[name] = &libItem{name: name, text: text, order: order}
			order++
		}
	}

	for _, it := range l.items {
		seen := map[string]bool{it.name: true}
		for _, id := range identifiers(it.text) {
			if _, ok := l.items[id]; ok && !seen[id] {
				seen[id] = true
				it.deps = append(it.deps, id)
			}
		}
	}
	return l
}

// libDeclName returns the name declared by a top-level line, or "".
func libDeclName(line string) string {
	for _, kw := range [...]string{"fn ", "const ", "struct "} {
		if !strings.HasPrefix(line, kw) {
			continue
		}
		rest := line[len(kw):]
		end := 0
		for end < len(rest) && isIdentByte(rest[end], end > 0) {
			end++
		}
		return rest[:end]
	}
	return ""
}

func isIdentByte(c byte, notFirst bool) bool {
	switch {
	case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		return true
	case notFirst && c >= '0' && c <= '9':
		return true
	}
	return false
}

// identifiers returns the identifiers in WGSL text, skipping comments.
func identifiers(text string) []string {
	var ids []string
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			for i < len(text) && text[i] != '\n' {
				i++
			}
		case isIdentByte(c, false):
			start := i
			for i < len(text) && isIdentByte(text[i], true) {
				i++
			}
			ids = append(ids, text[start:i])
		case c >= '0' && c <= '9':
			for i < len(text) && isIdentByte(text[i], true) {
				i++
			}
		default:
			i++
		}
	}
	return ids
}

// has reports whether the library declares name.
func (l *library) has(name string) bool {
	_, ok := l.items[name]
	return ok
}

// closure returns the text of the named declarations and everything they
// depend on, each once, in library order. Unknown names are ignored.
func (l *library) closure(roots []string) []string {
	set := make(map[string]*libItem)
	var visit func(name string)
	visit = func(name string) {
		it, ok := l.items[name]
		if !ok || set[name] != nil {
			return
		}
		set[name] = it
		for _, d := range it.deps {
			visit(d)
		}
	}
	for _, r := range roots {
		visit(r)
	}

	items := make([]*libItem, 0, len(set))
	for _, it := range set {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].order < items[j].order })

	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.text
	}
	return out
}
