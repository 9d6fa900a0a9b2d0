package model

import (
	"fmt"
)

// Attribute описывает атрибут ноды или марки. Атрибут без значения по
// умолчанию обязателен при создании. Validate, если задан, проверяет
// значение атрибута при создании ноды.
type Attribute struct {
	Default    any
	HasDefault bool
	Validate   func(v any) error
}

// OptionalAttr создаёт атрибут со значением по умолчанию.
func OptionalAttr(def any) *Attribute {
	return &Attribute{Default: def, HasDefault: true}
}

// RequiredAttr создаёт обязательный атрибут.
func RequiredAttr() *Attribute {
	return &Attribute{}
}

// EnumAttr создаёт атрибут, принимающий одно из перечисленных строковых
// значений, с первым значением по умолчанию.
func EnumAttr(values ...string) *Attribute {
	def := values[0]
	return &Attribute{
		Default:    def,
		HasDefault: true,
		Validate: func(v any) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("expected string, got %T", v)
			}
			for _, allowed := range values {
				if s == allowed {
					return nil
				}
			}
			return fmt.Errorf("value %q is not one of %v", s, values)
		},
	}
}

// NodeSpec описывает тип ноды при объявлении схемы.
type NodeSpec struct {
	Name string
	// Content - content-выражение для дочерних нод: последовательность имён
	// типов или групп с суффиксами "?", "*", "+". Пустая строка означает
	// ноду без содержимого.
	Content string
	// Group - имена групп через пробел, к которым относится тип.
	Group  string
	Inline bool
	Atom   bool
	Attrs  map[string]*Attribute
}

// MarkSpec описывает тип марки при объявлении схемы.
type MarkSpec struct {
	Name string
	// Inclusive определяет, расширяется ли марка при вводе на её границе.
	Inclusive bool
	Attrs     map[string]*Attribute
}

// SchemaSpec - полное объявление схемы документа.
type SchemaSpec struct {
	Nodes []*NodeSpec
	Marks []*MarkSpec
}

// NodeType представляет тип ноды внутри конкретной схемы.
type NodeType struct {
	Name   string
	Schema *Schema
	Spec   *NodeSpec
	Attrs  map[string]*Attribute
	Inline bool
	Atom   bool

	groups  []string
	content []contentTerm
}

// IsLeaf сообщает, что ноды этого типа не имеют содержимого.
func (t *NodeType) IsLeaf() bool { return len(t.content) == 0 }

// InlineContent сообщает, что содержимое нод этого типа - инлайн.
func (t *NodeType) InlineContent() bool {
	for _, term := range t.content {
		if term.name == "inline" || term.name == "text" {
			return true
		}
	}
	return false
}

// isInGroup сообщает, относится ли тип к группе.
func (t *NodeType) isInGroup(group string) bool {
	for _, g := range t.groups {
		if g == group {
			return true
		}
	}
	return false
}

// matches сообщает, подходит ли тип под имя типа или группы из
// content-выражения.
func (t *NodeType) matches(term string) bool {
	return t.Name == term || t.isInGroup(term)
}

// computeAttrs дополняет атрибуты значениями по умолчанию и проверяет их.
func computeAttrs(typeName string, specs map[string]*Attribute, given map[string]any) (map[string]any, error) {
	attrs := map[string]any{}
	for name, spec := range specs {
		value, ok := given[name]
		if !ok {
			if !spec.HasDefault {
				return nil, violation(typeName, "missing required attribute %q", name)
			}
			value = spec.Default
		}
		if spec.Validate != nil {
			if err := spec.Validate(value); err != nil {
				return nil, violation(typeName, "invalid attribute %q: %v", name, err)
			}
		}
		attrs[name] = value
	}
	for name := range given {
		if _, ok := specs[name]; !ok {
			return nil, violation(typeName, "unknown attribute %q", name)
		}
	}
	return attrs, nil
}

// Create создаёт ноду этого типа, дополняя атрибуты значениями по умолчанию.
// Нарушение схемы приводит к панике; используется для статически корректных
// нод. Для пользовательского ввода предназначен CreateChecked.
func (t *NodeType) Create(attrs map[string]any, content ...*Node) *Node {
	node, err := t.CreateChecked(attrs, content...)
	if err != nil {
		panic(err)
	}
	return node
}

// CreateChecked создаёт ноду этого типа, проверяя атрибуты и содержимое
// по схеме.
func (t *NodeType) CreateChecked(attrs map[string]any, content ...*Node) (*Node, error) {
	computed, err := computeAttrs(t.Name, t.Attrs, attrs)
	if err != nil {
		return nil, err
	}
	fragment := FragmentFrom(content)
	if err := t.CheckContent(fragment); err != nil {
		return nil, err
	}
	return &Node{Type: t, Attrs: computed, Content: fragment}, nil
}

// CheckAttrs проверяет атрибуты по схеме типа, не создавая ноду и не
// требуя содержимого.
func (t *NodeType) CheckAttrs(attrs map[string]any) error {
	_, err := computeAttrs(t.Name, t.Attrs, attrs)
	return err
}

// CheckContent проверяет, что фрагмент удовлетворяет content-выражению типа.
func (t *NodeType) CheckContent(fragment *Fragment) error {
	if len(t.content) == 0 {
		if fragment.Count() > 0 {
			return violation(t.Name, "node type does not allow content")
		}
		return nil
	}
	i := 0
	for _, term := range t.content {
		matched := 0
		for i < fragment.Count() && (term.max < 0 || matched < term.max) && fragment.Child(i).Type.matches(term.name) {
			i++
			matched++
		}
		if matched < term.min {
			return violation(t.Name, "content does not match %q", t.Spec.Content)
		}
	}
	if i < fragment.Count() {
		return violation(t.Name, "unexpected child node %q", fragment.Child(i).Type.Name)
	}
	return nil
}

// ValidContent сообщает, удовлетворяет ли фрагмент content-выражению типа.
func (t *NodeType) ValidContent(fragment *Fragment) bool {
	return t.CheckContent(fragment) == nil
}

// MarkType представляет тип марки внутри конкретной схемы.
type MarkType struct {
	Name      string
	Schema    *Schema
	Spec      *MarkSpec
	Attrs     map[string]*Attribute
	Inclusive bool

	// rank - позиция в объявлении схемы; задаёт канонический порядок
	// марок в наборе.
	rank int
}

// Create создаёт марку этого типа.
func (t *MarkType) Create(attrs map[string]any) (*Mark, error) {
	computed, err := computeAttrs(t.Name, t.Attrs, attrs)
	if err != nil {
		return nil, err
	}
	return &Mark{Type: t, Attrs: computed}, nil
}

// IsInSet возвращает марку этого типа из набора, если она там есть.
func (t *MarkType) IsInSet(set []*Mark) *Mark {
	for _, m := range set {
		if m.Type == t {
			return m
		}
	}
	return nil
}

// contentTerm - один терм скомпилированного content-выражения.
type contentTerm struct {
	name string
	min  int
	max  int // -1 - без ограничения
}

// compileContent разбирает content-выражение в последовательность термов.
func compileContent(typeName, expr string) ([]contentTerm, error) {
	var terms []contentTerm
	for field := range splitFields(expr) {
		term := contentTerm{min: 1, max: 1}
		switch field[len(field)-1] {
		case '?':
			term.min, term.max = 0, 1
			field = field[:len(field)-1]
		case '*':
			term.min, term.max = 0, -1
			field = field[:len(field)-1]
		case '+':
			term.min, term.max = 1, -1
			field = field[:len(field)-1]
		}
		if field == "" {
			return nil, violation(typeName, "malformed content expression %q", expr)
		}
		term.name = field
		terms = append(terms, term)
	}
	return terms, nil
}

// splitFields перебирает слова выражения, разделённые пробелами.
func splitFields(expr string) func(func(string) bool) {
	return func(yield func(string) bool) {
		start := -1
		for i := 0; i <= len(expr); i++ {
			if i == len(expr) || expr[i] == ' ' {
				if start >= 0 && !yield(expr[start:i]) {
					return
				}
				start = -1
			} else if start < 0 {
				start = i
			}
		}
	}
}

// Schema объявляет набор типов нод и марок, допустимых в документе.
type Schema struct {
	Spec  *SchemaSpec
	Nodes map[string]*NodeType
	Marks map[string]*MarkType

	topType  *NodeType
	textType *NodeType
}

// NewSchema компилирует объявление схемы. Первая нода объявления считается
// корневым типом документа. Некорректное объявление (дубликаты, ссылки на
// неизвестные типы) возвращает ошибку.
func NewSchema(spec *SchemaSpec) (*Schema, error) {
	if len(spec.Nodes) == 0 {
		return nil, violation("schema", "no node types declared")
	}
	s := &Schema{Spec: spec, Nodes: map[string]*NodeType{}, Marks: map[string]*MarkType{}}
	groups := map[string]bool{}
	for _, ns := range spec.Nodes {
		if _, ok := s.Nodes[ns.Name]; ok {
			return nil, violation(ns.Name, "duplicate node type")
		}
		t := &NodeType{
			Name:   ns.Name,
			Schema: s,
			Spec:   ns,
			Attrs:  ns.Attrs,
			Inline: ns.Inline || ns.Name == "text",
			Atom:   ns.Atom,
		}
		if t.Attrs == nil {
			t.Attrs = map[string]*Attribute{}
		}
		if ns.Group != "" {
			for g := range splitFields(ns.Group) {
				t.groups = append(t.groups, g)
				groups[g] = true
			}
		}
		s.Nodes[ns.Name] = t
	}
	for _, ns := range spec.Nodes {
		t := s.Nodes[ns.Name]
		content, err := compileContent(ns.Name, ns.Content)
		if err != nil {
			return nil, err
		}
		for _, term := range content {
			if _, ok := s.Nodes[term.name]; !ok && !groups[term.name] && term.name != "inline" {
				return nil, violation(ns.Name, "content expression references unknown type %q", term.name)
			}
		}
		t.content = content
	}
	for i, ms := range spec.Marks {
		if _, ok := s.Marks[ms.Name]; ok {
			return nil, violation(ms.Name, "duplicate mark type")
		}
		attrs := ms.Attrs
		if attrs == nil {
			attrs = map[string]*Attribute{}
		}
		s.Marks[ms.Name] = &MarkType{Name: ms.Name, Schema: s, Spec: ms, Attrs: attrs, Inclusive: ms.Inclusive, rank: i}
	}
	s.topType = s.Nodes[spec.Nodes[0].Name]
	s.textType = s.Nodes["text"]
	if s.textType == nil {
		return nil, violation("schema", "schema must declare a text type")
	}
	return s, nil
}

// TopType возвращает корневой тип документа.
func (s *Schema) TopType() *NodeType { return s.topType }

// NodeType возвращает тип ноды по имени, nil если тип не объявлен.
func (s *Schema) NodeType(name string) *NodeType { return s.Nodes[name] }

// MarkType возвращает тип марки по имени, nil если тип не объявлен.
func (s *Schema) MarkType(name string) *MarkType { return s.Marks[name] }

// Text создаёт текстовую ноду с марками. Набор марок приводится к
// каноническому порядку схемы.
func (s *Schema) Text(text string, marks ...*Mark) *Node {
	var set []*Mark
	for _, m := range marks {
		set = m.AddToSet(set)
	}
	return &Node{Type: s.textType, Marks: set, Text: []rune(text)}
}
