package edges

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoEdges is returned when an edge source holds no edges.
var ErrNoEdges = errors.New("no edges found")

// LoadFile reads an edge list from disk. .yaml/.yml/.json files are parsed as structured lists;
// anything else is treated as literal text such as `dag_edges = [("a", "b"), (["a", "c"], "d")]`.
func LoadFile(path string) ([]Edge, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read edges: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return ParseYAML(b)
	default:
		return ParseLiteral(string(b))
	}
}

// ParseYAML accepts a YAML (or JSON) document that is either a list of edges or a mapping with an
// "edges" key. Each edge is `[source, target]`, `[[s1, s2], target]`, or
// `{sources: [s1, s2], target: t}` (`source: s` for a single source).
func ParseYAML(b []byte) ([]Edge, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse edges: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, ErrNoEdges
	}
	root := doc.Content[0]
	if root.Kind == yaml.MappingNode {
		var list *yaml.Node
		for i := 0; i+1 < len(root.Content); i += 2 {
			if root.Content[i].Value == "edges" {
				list = root.Content[i+1]
			}
		}
		if list == nil {
			return nil, fmt.Errorf("parse edges: mapping has no \"edges\" key")
		}
		root = list
	}
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("parse edges: expected a list, got %s", nodeKind(root))
	}
	out := make([]Edge, 0, len(root.Content))
	for i, n := range root.Content {
		e, err := edgeFromNode(n)
		if err != nil {
			return nil, fmt.Errorf("parse edges: item %d (line %d): %w", i+1, n.Line, err)
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, ErrNoEdges
	}
	return out, nil
}

func edgeFromNode(n *yaml.Node) (Edge, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		if len(n.Content) != 2 {
			return Edge{}, fmt.Errorf("expected [source, target], got %d elements", len(n.Content))
		}
		target := n.Content[1]
		if target.Kind != yaml.ScalarNode {
			return Edge{}, fmt.Errorf("target must be a column name")
		}
		return edgeFromSource(n.Content[0], target.Value)
	case yaml.MappingNode:
		var spec struct {
			Source  string    `yaml:"source"`
			Sources yaml.Node `yaml:"sources"`
			Target  string    `yaml:"target"`
		}
		if err := n.Decode(&spec); err != nil {
			return Edge{}, err
		}
		if spec.Sources.Kind != 0 {
			return edgeFromSource(&spec.Sources, spec.Target)
		}
		e := Single(spec.Source, spec.Target)
		return e, e.Validate()
	default:
		return Edge{}, fmt.Errorf("expected a list or mapping, got %s", nodeKind(n))
	}
}

func edgeFromSource(src *yaml.Node, target string) (Edge, error) {
	var e Edge
	switch src.Kind {
	case yaml.ScalarNode:
		e = Single(src.Value, target)
	case yaml.SequenceNode:
		names := make([]string, 0, len(src.Content))
		for _, c := range src.Content {
			if c.Kind != yaml.ScalarNode {
				return Edge{}, fmt.Errorf("source list must hold column names")
			}
			names = append(names, c.Value)
		}
		e = Many(names, target)
	default:
		return Edge{}, fmt.Errorf("source must be a column name or a list of names")
	}
	return e, e.Validate()
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.SequenceNode:
		return "list"
	case yaml.MappingNode:
		return "mapping"
	default:
		return "node"
	}
}

// ParseLiteral parses the bracketed tuple form produced by edge-proposing text generators:
//
//	dag_edges = [
//	    ("dose", "outcome"),          # one-to-one
//	    (["dose", "age"], "outcome"),
//	]
//
// An optional `name =` prefix and `#` comments are ignored; tuples and lists are interchangeable.
func ParseLiteral(text string) ([]Edge, error) {
	if i := strings.Index(text, "="); i >= 0 {
		if j := strings.Index(text, "["); j < 0 || i < j {
			text = text[i+1:]
		}
	}
	p := &literalParser{src: text}
	v, err := p.value()
	if err != nil {
		return nil, fmt.Errorf("parse edges: %w", err)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("parse edges: expected a list of edges")
	}
	out := make([]Edge, 0, len(list))
	for i, item := range list {
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("parse edges: item %d: expected (source, target)", i+1)
		}
		target, ok := pair[1].(string)
		if !ok {
			return nil, fmt.Errorf("parse edges: item %d: target must be a string", i+1)
		}
		var e Edge
		switch src := pair[0].(type) {
		case string:
			e = Single(src, target)
		case []any:
			names := make([]string, 0, len(src))
			for _, s := range src {
				name, ok := s.(string)
				if !ok {
					return nil, fmt.Errorf("parse edges: item %d: source list must hold strings", i+1)
				}
				names = append(names, name)
			}
			e = Many(names, target)
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("parse edges: item %d: %w", i+1, err)
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, ErrNoEdges
	}
	return out, nil
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) skip() {
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case c == '#':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) value() (any, error) {
	p.skip()
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("unexpected end of input")
	}
	switch c := p.src[p.pos]; c {
	case '[':
		return p.sequence(']')
	case '(':
		return p.sequence(')')
	case '"', '\'':
		return p.str(c)
	default:
		return nil, fmt.Errorf("unexpected %q at offset %d", c, p.pos)
	}
}

func (p *literalParser) sequence(closer byte) ([]any, error) {
	p.pos++
	var out []any
	for {
		p.skip()
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("missing %q", closer)
		}
		if p.src[p.pos] == closer {
			p.pos++
			return out, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		p.skip()
		if p.pos < len(p.src) && p.src[p.pos] == ',' {
			p.pos++
		}
	}
}

func (p *literalParser) str(quote byte) (string, error) {
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.src):
			b.WriteByte(p.src[p.pos+1])
			p.pos += 2
		case c == quote:
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", fmt.Errorf("unterminated string")
}
