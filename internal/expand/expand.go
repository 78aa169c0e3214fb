// Package expand walks LaTeX inclusion directives starting from a root file
// and produces the fully expanded project as an ordered fragment sequence.
package expand

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dgallion1/texgraph/internal/texdoc"
)

var (
	importRx      = regexp.MustCompile(`\\import\s*\{([^}]+)\}\s*\{([^}]+)\}`)
	subimportRx   = regexp.MustCompile(`\\subimport\s*\{([^}]+)\}\s*\{([^}]+)\}`)
	includeRx     = regexp.MustCompile(`\\include\s*\{([^}]+)\}`)
	inputBracedRx = regexp.MustCompile(`\\input\s*\{([^}]+)\}`)
	inputSpaceRx  = regexp.MustCompile(`\\input\s+([^\s%{}\\]+)`)
	includeonlyRx = regexp.MustCompile(`\\includeonly\s*\{([^}]*)\}`)
)

type directiveKind int

const (
	dirImport directiveKind = iota
	dirSubimport
	dirInclude
	dirInputBraced
	dirInputSpace
)

type directive struct {
	kind       directiveKind
	start, end int
	args       []string
}

// Project reads the root file and expands every reachable inclusion
// directive depth-first, preserving textual order. Fragments come back
// comment-stripped with accurate starting line numbers. A missing target or
// an inclusion cycle aborts with a structured error; no partial document is
// returned.
func Project(root string) (*texdoc.Document, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	rootRaw, err := os.ReadFile(abs)
	if err != nil {
		return nil, &texdoc.Error{Kind: texdoc.ErrMissingFile, Path: abs}
	}

	r := &resolver{
		visited:     make(map[string]bool),
		onStack:     make(map[string]bool),
		includeonly: collectIncludeonly(stripComments(string(rootRaw))),
	}
	doc := &texdoc.Document{Root: abs}
	if err := r.expand(abs, filepath.Dir(abs), texdoc.Location{}, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

type resolver struct {
	visited     map[string]bool // fully expanded files, expanded at most once
	onStack     map[string]bool // in-progress files, for cycle detection
	stack       []string
	includeonly map[string]bool // nil/empty means no restriction
}

func (r *resolver) expand(path, dir string, from texdoc.Location, doc *texdoc.Document) error {
	if r.onStack[path] {
		return &texdoc.Error{
			Kind:   texdoc.ErrInclusionCycle,
			Path:   path,
			Loc:    from,
			Detail: "cycle: " + strings.Join(append(r.stack, path), " -> "),
		}
	}
	if r.visited[path] {
		return nil
	}
	r.visited[path] = true

	raw, err := os.ReadFile(path)
	if err != nil {
		return &texdoc.Error{Kind: texdoc.ErrMissingFile, Path: path, Loc: from}
	}
	text := stripComments(string(raw))

	r.onStack[path] = true
	r.stack = append(r.stack, path)
	defer func() {
		delete(r.onStack, path)
		r.stack = r.stack[:len(r.stack)-1]
	}()

	pos, line := 0, 1
	for _, d := range findDirectives(text) {
		if d.start < pos {
			continue // overlapped an earlier, longer match
		}
		if d.start > pos {
			doc.Fragments = append(doc.Fragments, texdoc.Fragment{
				File: path,
				Line: line,
				Text: text[pos:d.start],
			})
			line += strings.Count(text[pos:d.start], "\n")
		}
		loc := texdoc.Location{File: path, Line: line}

		var target, targetDir string
		skip := false
		switch d.kind {
		case dirImport, dirSubimport:
			targetDir = normJoin(dir, d.args[0])
			target = ensureTexExt(normJoin(targetDir, d.args[1]))
		case dirInclude:
			name := strings.TrimSpace(d.args[0])
			if !r.includeAllowed(name) {
				skip = true
				break
			}
			target = ensureTexExt(normJoin(dir, name))
			targetDir = filepath.Dir(target)
		case dirInputBraced, dirInputSpace:
			target = ensureTexExt(normJoin(dir, strings.TrimSpace(d.args[0])))
			targetDir = filepath.Dir(target)
		}
		if !skip {
			if err := r.expand(target, targetDir, loc, doc); err != nil {
				return err
			}
		}

		line += strings.Count(text[d.start:d.end], "\n")
		pos = d.end
	}
	if pos < len(text) {
		doc.Fragments = append(doc.Fragments, texdoc.Fragment{
			File: path,
			Line: line,
			Text: text[pos:],
		})
	}
	return nil
}

// includeAllowed applies an active \includeonly restriction. Matching is by
// target base name with the .tex extension stripped, on both sides.
func (r *resolver) includeAllowed(name string) bool {
	if len(r.includeonly) == 0 {
		return true
	}
	return r.includeonly[includeKey(name)]
}

func includeKey(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	return strings.TrimSuffix(base, ".tex")
}

func collectIncludeonly(rootText string) map[string]bool {
	var set map[string]bool
	for _, m := range includeonlyRx.FindAllStringSubmatch(rootText, -1) {
		for _, name := range strings.Split(m[1], ",") {
			if name = strings.TrimSpace(name); name != "" {
				if set == nil {
					set = make(map[string]bool)
				}
				set[includeKey(name)] = true
			}
		}
	}
	return set
}

// findDirectives locates every inclusion directive in text, sorted by
// position. When two patterns match at the same offset (braced and
// space-form \input), the braced form wins.
func findDirectives(text string) []directive {
	var out []directive
	collect := func(rx *regexp.Regexp, kind directiveKind) {
		for _, m := range rx.FindAllStringSubmatchIndex(text, -1) {
			d := directive{kind: kind, start: m[0], end: m[1]}
			for i := 2; i < len(m); i += 2 {
				d.args = append(d.args, text[m[i]:m[i+1]])
			}
			out = append(out, d)
		}
	}
	collect(importRx, dirImport)
	collect(subimportRx, dirSubimport)
	collect(includeRx, dirInclude)
	collect(inputBracedRx, dirInputBraced)
	collect(inputSpaceRx, dirInputSpace)

	sort.Slice(out, func(i, j int) bool {
		if out[i].start != out[j].start {
			return out[i].start < out[j].start
		}
		return out[i].kind < out[j].kind
	})
	return out
}

// stripComments removes % comments line by line, keeping the line count
// intact so fragment line numbers stay accurate. A percent escaped as \% is
// not a comment.
func stripComments(text string) string {
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		for j := 0; j < len(ln); j++ {
			if ln[j] == '%' && (j == 0 || ln[j-1] != '\\') {
				lines[i] = ln[:j]
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

// ensureTexExt appends .tex to extension-less targets, mirroring LaTeX's
// own resolution.
func ensureTexExt(path string) string {
	if filepath.Ext(path) == "" {
		return path + ".tex"
	}
	return path
}

func normJoin(dir, rel string) string {
	return filepath.Clean(filepath.Join(dir, strings.TrimSpace(rel)))
}
