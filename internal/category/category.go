package category

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Kind is one of the eight canonical statement categories. Kinds are plain
// tagged data with per-kind styling, not a type hierarchy.
type Kind string

const (
	Definition   Kind = "definition"
	Theorem      Kind = "theorem"
	Lemma        Kind = "lemma"
	Proposition  Kind = "proposition"
	Corollary    Kind = "corollary"
	Construction Kind = "construction"
	Example      Kind = "example"
	Remark       Kind = "remark"
)

// Order is the canonical display order of the legend.
var Order = []Kind{
	Definition, Theorem, Lemma, Proposition,
	Corollary, Construction, Example, Remark,
}

// Style holds the visual attributes the serializer renders for a kind.
type Style struct {
	Shape       string `json:"shape"`
	BorderColor string `json:"border_color"`
	FillColor   string `json:"fill_color"`
}

var defaultAliases = map[Kind][]string{
	Definition:   {"definition", "defn", "def"},
	Theorem:      {"theorem", "thm", "th", "thrm"},
	Lemma:        {"lemma", "lem", "ilemma", "alemma"},
	Proposition:  {"proposition", "propn", "prop", "prp"},
	Corollary:    {"corollary", "cor", "corol", "corl"},
	Construction: {"construction", "constn", "const", "constr"},
	Example:      {"example", "examples", "iexample"},
	Remark:       {"remark", "remarks"},
}

var defaultStyles = map[Kind]Style{
	Definition:   {Shape: "box", BorderColor: "Purple", FillColor: "Lavender"},
	Theorem:      {Shape: "doublecircle", BorderColor: "Blue", FillColor: "SkyBlue"},
	Lemma:        {Shape: "ellipse", BorderColor: "Blue", FillColor: "SkyBlue"},
	Proposition:  {Shape: "diamond", BorderColor: "Blue", FillColor: "SkyBlue"},
	Corollary:    {Shape: "ellipse", BorderColor: "Blue", FillColor: "White"},
	Construction: {Shape: "diamond", BorderColor: "Purple", FillColor: "White"},
	Example:      {Shape: "ellipse", BorderColor: "DimGray", FillColor: "White"},
	Remark:       {Shape: "ellipse", BorderColor: "DimGray", FillColor: "White"},
}

// proofAliases recognize proof environments. Proofs are deliberately outside
// the eight-kind table: they open a proof scope, not a statement.
var proofAliases = map[string]bool{
	"proof": true, "pr": true, "pf": true,
	"prf": true, "pfof": true, "pfoftheorem": true,
}

// Table resolves environment names to canonical kinds and carries per-kind
// styling. Built once at startup, read-only afterwards, so concurrent runs
// may share it without synchronization.
type Table struct {
	aliases map[string]Kind
	styles  map[Kind]Style
}

// Default builds the table from the built-in legend.
func Default() *Table {
	t := &Table{
		aliases: make(map[string]Kind),
		styles:  make(map[Kind]Style, len(Order)),
	}
	for kind, names := range defaultAliases {
		for _, name := range names {
			t.aliases[name] = kind
		}
	}
	for kind, st := range defaultStyles {
		t.styles[kind] = st
	}
	return t
}

// fileOverrides is the shape of the optional TOML table file:
//
//	[kinds.lemma]
//	aliases = ["lemma", "lem", "hilfssatz"]
//	shape = "ellipse"
//	border = "Blue"
//	fill = "SkyBlue"
type fileOverrides struct {
	Kinds map[string]struct {
		Aliases []string `toml:"aliases"`
		Shape   string   `toml:"shape"`
		Border  string   `toml:"border"`
		Fill    string   `toml:"fill"`
	} `toml:"kinds"`
}

// Load builds the default table and applies overrides from a TOML file.
// Overrides may extend a kind's alias set or restyle it; new kinds cannot be
// introduced.
func Load(path string) (*Table, error) {
	t := Default()
	var ov fileOverrides
	if _, err := toml.DecodeFile(path, &ov); err != nil {
		return nil, fmt.Errorf("category table %s: %w", path, err)
	}
	for name, kc := range ov.Kinds {
		kind := Kind(strings.ToLower(name))
		st, ok := t.styles[kind]
		if !ok {
			return nil, fmt.Errorf("category table %s: unknown kind %q", path, name)
		}
		for _, alias := range kc.Aliases {
			alias = strings.ToLower(strings.TrimSpace(alias))
			if alias == "" {
				continue
			}
			if owner, taken := t.aliases[alias]; taken && owner != kind {
				return nil, fmt.Errorf("category table %s: alias %q already maps to %s", path, alias, owner)
			}
			t.aliases[alias] = kind
		}
		if kc.Shape != "" {
			st.Shape = kc.Shape
		}
		if kc.Border != "" {
			st.BorderColor = kc.Border
		}
		if kc.Fill != "" {
			st.FillColor = kc.Fill
		}
		t.styles[kind] = st
	}
	return t, nil
}

// Resolve maps an environment name to its canonical kind. The match is
// case-insensitive and exact; unknown names are not an error, the scanner
// treats those environments as transparent.
func (t *Table) Resolve(name string) (Kind, bool) {
	kind, ok := t.aliases[strings.ToLower(name)]
	return kind, ok
}

// IsProof reports whether name is a proof environment.
func (t *Table) IsProof(name string) bool {
	return proofAliases[strings.ToLower(name)]
}

// Style returns the visual attributes for a kind.
func (t *Table) Style(kind Kind) Style {
	return t.styles[kind]
}

// Aliases returns the alias set of a kind, sorted for stable output.
func (t *Table) Aliases(kind Kind) []string {
	var names []string
	for alias, k := range t.aliases {
		if k == kind {
			names = append(names, alias)
		}
	}
	sort.Strings(names)
	return names
}

// ParseKind resolves a user-supplied canonical kind name (CLI flags, API
// requests). Unlike Resolve it only accepts the canonical names.
func ParseKind(name string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := defaultStyles[kind]; !ok {
		return "", fmt.Errorf("unknown category %q", name)
	}
	return kind, nil
}
