package action

import (
	"context"
	"fmt"

	"github.com/aisa-it/aipress/editor/model"
	"github.com/aisa-it/aipress/editor/state"
)

// SetHeading переключает блоки выделения между заголовком данного
// уровня и параграфом.
type SetHeading struct {
	heading   *model.NodeType
	paragraph *model.NodeType
	level     int
}

// NewSetHeading создаёт команду для уровня 1-6.
func NewSetHeading(schema *model.Schema, level int) (*SetHeading, error) {
	if level < 1 || level > 6 {
		return nil, fmt.Errorf("heading level %d out of range", level)
	}
	heading := schema.NodeType("heading")
	if heading == nil {
		return nil, fmt.Errorf("schema has no node type %q", "heading")
	}
	return &SetHeading{
		heading:   heading,
		paragraph: schema.NodeType("paragraph"),
		level:     level,
	}, nil
}

func (a *SetHeading) Execute(ctx context.Context, st *state.EditorState, params Params) (*state.Transaction, error) {
	from, to, err := blockRange(st.Doc, st.Selection)
	if err != nil {
		return nil, err
	}
	tr := st.Tr()
	if a.IsActive(st) {
		err = tr.SetBlockType(from, to, a.paragraph, nil)
	} else {
		err = tr.SetBlockType(from, to, a.heading, map[string]any{"level": a.level})
	}
	if err != nil {
		return nil, err
	}
	return tr, nil
}

func (a *SetHeading) IsActive(st *state.EditorState) bool {
	r, err := st.Doc.Resolve(st.Selection.From())
	if err != nil {
		return false
	}
	parent := r.Parent()
	return parent.Type == a.heading && parent.Attrs["level"] == a.level
}

func (a *SetHeading) IsApplicable(st *state.EditorState) bool {
	return textblockParent(st.Doc, st.Selection.From())
}

func (a *SetHeading) DefaultKeyCombo() string { return "" }

// SetAlignment выставляет выравнивание параграфов выделения. Команда
// никогда не активна: выравнивание - атрибут, а не переключатель.
type SetAlignment struct {
	paragraph *model.NodeType
	align     string
}

// NewSetAlignment создаёт команду для одного из значений align.
func NewSetAlignment(schema *model.Schema, align string) (*SetAlignment, error) {
	paragraph := schema.NodeType("paragraph")
	if paragraph == nil {
		return nil, fmt.Errorf("schema has no node type %q", "paragraph")
	}
	if err := paragraph.CheckAttrs(map[string]any{"align": align}); err != nil {
		return nil, err
	}
	return &SetAlignment{paragraph: paragraph, align: align}, nil
}

func (a *SetAlignment) Execute(ctx context.Context, st *state.EditorState, params Params) (*state.Transaction, error) {
	from, to, err := blockRange(st.Doc, st.Selection)
	if err != nil {
		return nil, err
	}
	targets := findNodes(st.Doc, from, to, a.paragraph)
	if len(targets) == 0 {
		return nil, nil
	}
	tr := st.Tr()
	for _, t := range targets {
		if err := tr.SetNodeAttribute(t.pos, "align", a.align); err != nil {
			return nil, err
		}
	}
	return tr, nil
}

func (a *SetAlignment) IsActive(st *state.EditorState) bool { return false }

func (a *SetAlignment) IsApplicable(st *state.EditorState) bool {
	from, to, err := blockRange(st.Doc, st.Selection)
	if err != nil {
		return false
	}
	return len(findNodes(st.Doc, from, to, a.paragraph)) > 0
}

func (a *SetAlignment) DefaultKeyCombo() string { return "" }

// InsertCodeBlock переключает блоки выделения между блоком кода и
// параграфом. Инлайн-разметка при входе в блок кода теряется.
type InsertCodeBlock struct {
	codeBlock *model.NodeType
	paragraph *model.NodeType
}

// NewInsertCodeBlock создаёт команду.
func NewInsertCodeBlock(schema *model.Schema) (*InsertCodeBlock, error) {
	codeBlock := schema.NodeType("code_block")
	if codeBlock == nil {
		return nil, fmt.Errorf("schema has no node type %q", "code_block")
	}
	return &InsertCodeBlock{
		codeBlock: codeBlock,
		paragraph: schema.NodeType("paragraph"),
	}, nil
}

func (a *InsertCodeBlock) Execute(ctx context.Context, st *state.EditorState, params Params) (*state.Transaction, error) {
	from, to, err := blockRange(st.Doc, st.Selection)
	if err != nil {
		return nil, err
	}
	tr := st.Tr()
	if a.IsActive(st) {
		err = tr.SetBlockType(from, to, a.paragraph, nil)
	} else {
		var attrs map[string]any
		if lang := params.String("language"); lang != "" {
			attrs = map[string]any{"language": lang}
		}
		err = tr.SetBlockType(from, to, a.codeBlock, attrs)
	}
	if err != nil {
		return nil, err
	}
	return tr, nil
}

func (a *InsertCodeBlock) IsActive(st *state.EditorState) bool {
	r, err := st.Doc.Resolve(st.Selection.From())
	if err != nil {
		return false
	}
	return r.Parent().Type == a.codeBlock
}

func (a *InsertCodeBlock) IsApplicable(st *state.EditorState) bool {
	return textblockParent(st.Doc, st.Selection.From())
}

func (a *InsertCodeBlock) DefaultKeyCombo() string { return "" }

// InsertHorizontalRule вставляет горизонтальную линию после блока с
// курсором.
type InsertHorizontalRule struct {
	rule *model.NodeType
}

// NewInsertHorizontalRule создаёт команду.
func NewInsertHorizontalRule(schema *model.Schema) (*InsertHorizontalRule, error) {
	rule := schema.NodeType("horizontal_rule")
	if rule == nil {
		return nil, fmt.Errorf("schema has no node type %q", "horizontal_rule")
	}
	return &InsertHorizontalRule{rule: rule}, nil
}

func (a *InsertHorizontalRule) Execute(ctx context.Context, st *state.EditorState, params Params) (*state.Transaction, error) {
	r, err := st.Doc.Resolve(st.Selection.From())
	if err != nil {
		return nil, err
	}
	pos := st.Selection.From()
	if r.Depth() >= 1 {
		pos = r.After(1)
	}
	tr := st.Tr()
	if err := tr.Replace(pos, pos, model.NewFragment(a.rule.Create(nil))); err != nil {
		return nil, err
	}
	return tr, nil
}

func (a *InsertHorizontalRule) IsActive(st *state.EditorState) bool { return false }

func (a *InsertHorizontalRule) IsApplicable(st *state.EditorState) bool { return true }

func (a *InsertHorizontalRule) DefaultKeyCombo() string { return "" }
