// Package scanner performs a lexical pass over an expanded document and
// emits the events the graph builder consumes: chapter starts, environment
// boundaries, labels, and the \uses / \proves annotation commands. It is not
// a LaTeX grammar; everything else in the source is ignored.
package scanner

import (
	"regexp"
	"strings"

	"github.com/dgallion1/texgraph/internal/texdoc"
)

// Type discriminates scan events.
type Type int

const (
	ChapterStart Type = iota
	EnvBegin
	EnvEnd
	LabelDecl
	UsesDecl
	ProvesDecl
)

// Event is one recognized construct, in document order.
type Event struct {
	Type  Type
	Name  string          // env name, chapter title, label, or proves target
	Names []string        // uses targets
	Loc   texdoc.Location // where the construct begins
}

// One alternation keeps the pass strictly left-to-right. Group pairs:
// 1/2 begin, 3/4 end, 5/6 chapter, 7/8 label, 9/10 uses, 11/12 proves.
var tokenRx = regexp.MustCompile(
	`\\(?:(begin)\s*\{([^}]+)\}` +
		`|(end)\s*\{([^}]+)\}` +
		`|(chapter\*?)\s*(?:\[[^\]]*\])?\s*\{([^}]*)\}` +
		`|(label)\s*\{([^}]+)\}` +
		`|(uses)\s*\{([^}]*)\}` +
		`|(proves)\s*\{([^}]*)\})`)

type openEnv struct {
	name string
	loc  texdoc.Location
}

// Scan walks the document fragments in order and returns the event stream.
// The only structure it tracks is environment nesting, so that an \end with
// no matching \begin, a mismatched name, or an environment left open at end
// of document fails with its location.
func Scan(doc *texdoc.Document) ([]Event, error) {
	var events []Event
	var stack []openEnv

	for _, frag := range doc.Fragments {
		for _, m := range tokenRx.FindAllStringSubmatchIndex(frag.Text, -1) {
			loc := texdoc.Location{
				File: frag.File,
				Line: frag.Line + strings.Count(frag.Text[:m[0]], "\n"),
			}
			arg := func(group int) string {
				lo, hi := m[2*group], m[2*group+1]
				if lo < 0 {
					return ""
				}
				return frag.Text[lo:hi]
			}

			switch {
			case m[2] >= 0: // \begin
				name := strings.TrimSpace(arg(2))
				stack = append(stack, openEnv{name: name, loc: loc})
				events = append(events, Event{Type: EnvBegin, Name: name, Loc: loc})

			case m[6] >= 0: // \end
				name := strings.TrimSpace(arg(4))
				if len(stack) == 0 {
					return nil, &texdoc.Error{
						Kind:   texdoc.ErrMalformedEnvironment,
						Loc:    loc,
						Detail: `\end{` + name + `} without a matching \begin`,
					}
				}
				top := stack[len(stack)-1]
				if top.name != name {
					return nil, &texdoc.Error{
						Kind:   texdoc.ErrMalformedEnvironment,
						Loc:    loc,
						Detail: `\end{` + name + `} closes \begin{` + top.name + `} opened at ` + top.loc.String(),
					}
				}
				stack = stack[:len(stack)-1]
				events = append(events, Event{Type: EnvEnd, Name: name, Loc: loc})

			case m[10] >= 0: // \chapter
				events = append(events, Event{Type: ChapterStart, Name: strings.TrimSpace(arg(6)), Loc: loc})

			case m[14] >= 0: // \label
				events = append(events, Event{Type: LabelDecl, Name: strings.TrimSpace(arg(8)), Loc: loc})

			case m[18] >= 0: // \uses
				if names := splitLabels(arg(10)); len(names) > 0 {
					events = append(events, Event{Type: UsesDecl, Names: names, Loc: loc})
				}

			case m[22] >= 0: // \proves
				if target := strings.TrimSpace(arg(12)); target != "" {
					events = append(events, Event{Type: ProvesDecl, Name: target, Loc: loc})
				}
			}
		}
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return nil, &texdoc.Error{
			Kind:   texdoc.ErrMalformedEnvironment,
			Loc:    top.loc,
			Detail: `\begin{` + top.name + `} is never closed`,
		}
	}
	return events, nil
}

func splitLabels(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
