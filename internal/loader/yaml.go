package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/roach88/embody/internal/value"
)

// decodeYAML parses one YAML document through the node API so mapping
// order is kept. An anchored container decodes once; every alias to it
// yields the same *value.Map or *value.Seq, so YAML aliases become
// diamonds in the template.
func decodeYAML(data []byte) (value.Value, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return value.Null{}, nil
		}
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
		return nil, errors.New("parsing YAML: multiple documents are not supported")
	}

	d := &yamlDecoder{anchors: make(map[*yaml.Node]value.Value)}
	return d.node(&doc)
}

type yamlDecoder struct {
	anchors map[*yaml.Node]value.Value
}

func (d *yamlDecoder) node(n *yaml.Node) (value.Value, error) {
	if v, ok := d.anchors[n]; ok {
		return v, nil
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return value.Null{}, nil
		}
		return d.node(n.Content[0])

	case yaml.AliasNode:
		return d.node(n.Alias)

	case yaml.MappingNode:
		m := value.NewMap()
		d.remember(n, m)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, vn := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			if k.ShortTag() == "!!merge" {
				return nil, fmt.Errorf("line %d: merge keys are not supported", k.Line)
			}
			if m.Has(k.Value) {
				return nil, fmt.Errorf("line %d: duplicate key %q", k.Line, k.Value)
			}
			v, err := d.node(vn)
			if err != nil {
				return nil, err
			}
			m.Set(k.Value, v)
		}
		return m, nil

	case yaml.SequenceNode:
		s := value.NewSeq()
		d.remember(n, s)
		for _, item := range n.Content {
			v, err := d.node(item)
			if err != nil {
				return nil, err
			}
			s.Append(v)
		}
		return s, nil

	case yaml.ScalarNode:
		return yamlScalar(n)

	default:
		return nil, fmt.Errorf("line %d: unexpected YAML node kind %d", n.Line, n.Kind)
	}
}

func (d *yamlDecoder) remember(n *yaml.Node, v value.Value) {
	if n.Anchor != "" {
		d.anchors[n] = v
	}
}

func yamlScalar(n *yaml.Node) (value.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return value.Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return value.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, fmt.Errorf("line %d: integer %s does not fit in 64 bits", n.Line, n.Value)
		}
		return value.Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return value.Float(f), nil
	default:
		// !!str, !!timestamp, !!binary and custom tags keep their text.
		return value.String(n.Value), nil
	}
}

// encodeYAML renders v as a YAML document, keeping map order. Shared
// containers are written out in full at every path.
func encodeYAML(v value.Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(yamlNode(v)); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	return buf.Bytes(), nil
}

func yamlNode(v value.Value) *yaml.Node {
	switch x := v.(type) {
	case *value.Map:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range x.Entries() {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
				yamlNode(e.Value))
		}
		return n
	case *value.Seq:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range x.Items() {
			n.Content = append(n.Content, yamlNode(item))
		}
		return n
	case value.Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(bool(x))}
	case value.Int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(x), 10)}
	case value.Float:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: yamlFloat(float64(x))}
	case value.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(x)}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		// Keep integral floats recognisable as floats.
		s += ".0"
	}
	return s
}
