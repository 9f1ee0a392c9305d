package edges

import (
	"fmt"
	"strings"
)

// Edge is a declared directional hypothesis from one or more source columns to a target column.
// Multi is set when the sources were declared as a list, even a one-element list; such edges take
// the many-to-one analysis path.
type Edge struct {
	Sources []string
	Target  string
	Multi   bool
}

// Single builds a one-to-one edge.
func Single(source, target string) Edge {
	return Edge{Sources: []string{source}, Target: target}
}

// Many builds a many-to-one edge.
func Many(sources []string, target string) Edge {
	return Edge{Sources: append([]string(nil), sources...), Target: target, Multi: true}
}

// Source returns the first source column; for one-to-one edges it is the only one.
func (e Edge) Source() string {
	if len(e.Sources) == 0 {
		return ""
	}
	return e.Sources[0]
}

// Columns returns every referenced column, sources first.
func (e Edge) Columns() []string {
	out := make([]string, 0, len(e.Sources)+1)
	out = append(out, e.Sources...)
	return append(out, e.Target)
}

// Key identifies the edge in relation maps: "a -> b" or "[a, b] -> c".
func (e Edge) Key() string {
	return e.SourceLabel() + " -> " + e.Target
}

// SourceLabel renders the source side as written in reports.
func (e Edge) SourceLabel() string {
	if e.Multi {
		return "[" + strings.Join(e.Sources, ", ") + "]"
	}
	return e.Source()
}

func (e Edge) String() string { return e.Key() }

// Validate checks the edge shape only; column existence is checked by the analyzer.
func (e Edge) Validate() error {
	if len(e.Sources) == 0 {
		return fmt.Errorf("edge -> %s: no source columns", e.Target)
	}
	for _, s := range e.Sources {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("edge %s: empty source name", e.Key())
		}
	}
	if strings.TrimSpace(e.Target) == "" {
		return fmt.Errorf("edge %s: empty target name", e.SourceLabel())
	}
	return nil
}

// Mermaid renders the edge list as a top-down Mermaid flowchart, one arrow per source/target pair.
func Mermaid(list []Edge) string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	for _, e := range list {
		for _, s := range e.Sources {
			fmt.Fprintf(&b, "    %s --> %s\n", s, e.Target)
		}
	}
	return b.String()
}
