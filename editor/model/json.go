package model

import (
	"encoding/json"
	"fmt"
)

// nodeJSON - универсальное JSON-представление ноды с map для атрибутов,
// совместимое с форматом документа на стороне клиента.
type nodeJSON struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []nodeJSON     `json:"content,omitempty"`
	Marks   []markJSON     `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// markJSON - JSON-представление марки.
type markJSON struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

func nodeToJSON(n *Node) nodeJSON {
	out := nodeJSON{Type: n.Type.Name, Attrs: n.Attrs}
	if n.IsText() {
		out.Text = string(n.Text)
	}
	for _, m := range n.Marks {
		out.Marks = append(out.Marks, markJSON{Type: m.Type.Name, Attrs: m.Attrs})
	}
	for i := 0; i < n.ChildCount(); i++ {
		out.Content = append(out.Content, nodeToJSON(n.Child(i)))
	}
	return out
}

// MarshalNode сериализует ноду в JSON.
func MarshalNode(n *Node) ([]byte, error) {
	return json.Marshal(nodeToJSON(n))
}

// MarshalFragment сериализует ноды фрагмента в JSON-массив.
func MarshalFragment(f *Fragment) ([]byte, error) {
	out := make([]nodeJSON, 0, f.Count())
	for _, child := range f.Children {
		out = append(out, nodeToJSON(child))
	}
	return json.Marshal(out)
}

func nodeFromJSON(s *Schema, raw nodeJSON) (*Node, error) {
	var marks []*Mark
	for _, rm := range raw.Marks {
		mt := s.MarkType(rm.Type)
		if mt == nil {
			return nil, violation(rm.Type, "unknown mark type")
		}
		mark, err := mt.Create(normalizeAttrs(rm.Attrs))
		if err != nil {
			return nil, err
		}
		marks = mark.AddToSet(marks)
	}
	if raw.Type == "text" {
		return s.Text(raw.Text, marks...), nil
	}
	nt := s.NodeType(raw.Type)
	if nt == nil {
		return nil, violation(raw.Type, "unknown node type")
	}
	children := make([]*Node, 0, len(raw.Content))
	for _, rc := range raw.Content {
		child, err := nodeFromJSON(s, rc)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	node, err := nt.CreateChecked(normalizeAttrs(raw.Attrs), children...)
	if err != nil {
		return nil, err
	}
	node.Marks = marks
	return node, nil
}

// normalizeAttrs приводит числовые значения из encoding/json (float64)
// к int, когда они целые: атрибуты схемы используют int.
func normalizeAttrs(attrs map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		if f, ok := v.(float64); ok && f == float64(int(f)) {
			out[k] = int(f)
			continue
		}
		out[k] = v
	}
	return out
}

// UnmarshalNode восстанавливает ноду из JSON, проверяя её по схеме.
func UnmarshalNode(s *Schema, data []byte) (*Node, error) {
	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode node: %w", err)
	}
	return nodeFromJSON(s, raw)
}

// UnmarshalFragment восстанавливает фрагмент из JSON-массива нод.
func UnmarshalFragment(s *Schema, data []byte) (*Fragment, error) {
	var raw []nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode fragment: %w", err)
	}
	nodes := make([]*Node, 0, len(raw))
	for _, rn := range raw {
		node, err := nodeFromJSON(s, rn)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return FragmentFrom(nodes), nil
}
