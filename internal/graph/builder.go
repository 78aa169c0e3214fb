package graph

import (
	"strconv"

	"github.com/dgallion1/texgraph/internal/category"
	"github.com/dgallion1/texgraph/internal/scanner"
	"github.com/dgallion1/texgraph/internal/texdoc"
)

// Selection filters chapters. Entries match a chapter's 1-based ordinal (as
// a decimal string) or its exact title. Empty means everything, including
// front matter outside any chapter; a non-empty selection drops front
// matter, matching how the source slices chapter ranges.
type Selection map[string]bool

// NewSelection builds a Selection from raw identifiers.
func NewSelection(ids []string) Selection {
	if len(ids) == 0 {
		return nil
	}
	s := make(Selection, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

func (s Selection) includes(ordinal int, title string) bool {
	if len(s) == 0 {
		return true
	}
	if ordinal == 0 {
		return false
	}
	return s[strconv.Itoa(ordinal)] || s[title]
}

// BuildOptions carries the externally supplied filters.
type BuildOptions struct {
	Chapters Selection
	// Kinds is the category inclusion set; nil means all eight.
	Kinds map[category.Kind]bool
}

func (o BuildOptions) kindIncluded(k category.Kind) bool {
	return o.Kinds == nil || o.Kinds[k]
}

type useRef struct {
	label string
	loc   texdoc.Location
}

// frame is one open environment on the builder's stack.
type frame struct {
	name      string
	tracked   bool // recognized statement environment
	isProof   bool
	kind      category.Kind
	node      *Node // created statement node, nil until labeled (or never)
	labeled   bool  // statement label consumed, even if no node was created
	recent    *Node // most recent statement when a proof opened
	uses      []useRef
	proves    string
	provesLoc texdoc.Location
	loc       texdoc.Location
	included  bool // chapter filter state where the environment opened
}

// labelState tracks every statement label ever consumed, including ones the
// filters kept out of the graph, so duplicates are caught conservatively.
type labelState struct {
	node         *Node
	loc          texdoc.Location
	excludedKind bool
}

type proofRec struct {
	target *Node
	uses   []useRef
}

type builder struct {
	table *category.Table
	opts  BuildOptions

	g        *Graph
	frames   []frame
	seen     map[string]labelState
	stmtUses map[*Node][]useRef
	proofs   []proofRec
	lastStmt *Node

	chapterOrdinal int
	chapterTitle   string
	included       bool
}

// Build consumes the event stream in one forward pass and produces the
// dependency graph, enforcing the label and proof-binding invariants. The
// first violation aborts; no partial graph is returned.
func Build(events []scanner.Event, table *category.Table, opts BuildOptions) (*Graph, error) {
	b := &builder{
		table:    table,
		opts:     opts,
		g:        newGraph(),
		seen:     make(map[string]labelState),
		stmtUses: make(map[*Node][]useRef),
		included: opts.Chapters.includes(0, ""),
	}
	for _, ev := range events {
		if err := b.event(ev); err != nil {
			return nil, err
		}
	}
	if err := b.resolveEdges(); err != nil {
		return nil, err
	}
	return b.g, nil
}

func (b *builder) event(ev scanner.Event) error {
	switch ev.Type {
	case scanner.ChapterStart:
		b.chapterOrdinal++
		b.chapterTitle = ev.Name
		b.included = b.opts.Chapters.includes(b.chapterOrdinal, ev.Name)

	case scanner.EnvBegin:
		f := frame{
			name:     ev.Name,
			isProof:  b.table.IsProof(ev.Name),
			loc:      ev.Loc,
			included: b.included,
		}
		if f.isProof {
			// The binding target is fixed at entry; statements declared
			// inside the proof do not steal it.
			f.recent = b.lastStmt
		} else {
			f.kind, f.tracked = b.table.Resolve(ev.Name)
		}
		b.frames = append(b.frames, f)

	case scanner.EnvEnd:
		f := b.frames[len(b.frames)-1]
		b.frames = b.frames[:len(b.frames)-1]
		return b.closeFrame(f)

	case scanner.LabelDecl:
		return b.label(ev.Name, ev.Loc)

	case scanner.UsesDecl:
		if f := b.scope(); f != nil && f.included {
			for _, name := range ev.Names {
				f.uses = append(f.uses, useRef{label: name, loc: ev.Loc})
			}
		}

	case scanner.ProvesDecl:
		if f := b.scope(); f != nil && f.isProof && f.included && f.proves == "" {
			f.proves = ev.Name
			f.provesLoc = ev.Loc
		}
	}
	return nil
}

// scope finds the innermost open environment that is a statement or a
// proof. Unrecognized environments are transparent wrappers.
func (b *builder) scope() *frame {
	for i := len(b.frames) - 1; i >= 0; i-- {
		if f := &b.frames[i]; f.tracked || f.isProof {
			return f
		}
	}
	return nil
}

// label handles a \label declaration. The first label inside a tracked
// statement environment names the statement; everything else is an ordinary
// cross-reference label and is ignored.
func (b *builder) label(name string, loc texdoc.Location) error {
	f := b.scope()
	if f == nil || f.isProof || f.labeled {
		return nil
	}
	f.labeled = true

	if prev, dup := b.seen[name]; dup {
		return &texdoc.Error{
			Kind:   texdoc.ErrDuplicateLabel,
			Label:  name,
			Loc:    loc,
			Detail: "already declared at " + prev.loc.String(),
		}
	}

	switch {
	case !f.included:
		// Excluded chapter: the label is recorded for duplicate detection
		// only; no node exists and references to it stay unresolved.
		b.seen[name] = labelState{loc: loc}
	case !b.opts.kindIncluded(f.kind):
		// Excluded category: the label is consumed but the statement is not
		// part of the graph, and edges touching it are dropped later.
		b.seen[name] = labelState{loc: loc, excludedKind: true}
	default:
		n := &Node{
			Label:          name,
			Kind:           f.kind,
			Chapter:        b.chapterTitle,
			ChapterOrdinal: b.chapterOrdinal,
			Loc:            loc,
		}
		b.g.addNode(n)
		b.seen[name] = labelState{node: n, loc: loc}
		b.lastStmt = n
		f.node = n
	}
	return nil
}

func (b *builder) closeFrame(f frame) error {
	if f.node != nil {
		for _, u := range f.uses {
			f.node.Uses = append(f.node.Uses, u.label)
		}
		b.stmtUses[f.node] = f.uses
		return nil
	}
	if !f.isProof || !f.included {
		return nil
	}
	return b.bindProof(f)
}

// bindProof resolves which statement a closing proof establishes. An
// explicit \proves{L} must name an already created node; without it the
// proof binds to the statement that was most recent when the proof opened.
func (b *builder) bindProof(f frame) error {
	var target *Node
	if f.proves != "" {
		st, ok := b.seen[f.proves]
		switch {
		case st.node != nil:
			target = st.node
		case ok && st.excludedKind:
			return nil // proof of a filtered-out statement: dropped whole
		default:
			return &texdoc.Error{
				Kind:   texdoc.ErrUnresolvedProvesTarget,
				Label:  f.proves,
				Loc:    f.provesLoc,
				Detail: "no statement with this label precedes the proof",
			}
		}
	} else {
		if f.recent == nil {
			return &texdoc.Error{
				Kind:   texdoc.ErrOrphanProof,
				Loc:    f.loc,
				Detail: "proof has no \\proves and no preceding statement",
			}
		}
		target = f.recent
	}
	b.proofs = append(b.proofs, proofRec{target: target, uses: f.uses})
	return nil
}

// resolveEdges runs after the forward pass, once every label in the
// filtered project is known, so \uses may reference statements declared
// later in the document.
func (b *builder) resolveEdges() error {
	dedup := make(map[Edge]bool)
	add := func(e Edge) {
		if !dedup[e] {
			dedup[e] = true
			b.g.Edges = append(b.g.Edges, e)
		}
	}
	resolve := func(u useRef, to string, kind EdgeKind) error {
		st, ok := b.seen[u.label]
		switch {
		case st.node != nil:
			add(Edge{From: u.label, To: to, Kind: kind})
		case ok && st.excludedKind:
			// Target consumed by the category filter: drop, not dangle.
		default:
			return &texdoc.Error{
				Kind:  texdoc.ErrUnresolvedUsesLabel,
				Label: u.label,
				Loc:   u.loc,
			}
		}
		return nil
	}

	for _, n := range b.g.Nodes() {
		for _, u := range b.stmtUses[n] {
			if err := resolve(u, n.Label, Dashed); err != nil {
				return err
			}
		}
	}
	for _, p := range b.proofs {
		for _, u := range p.uses {
			if err := resolve(u, p.target.Label, Solid); err != nil {
				return err
			}
		}
	}
	return nil
}
