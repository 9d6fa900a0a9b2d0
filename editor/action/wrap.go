package action

import (
	"context"
	"fmt"

	"github.com/aisa-it/aipress/editor/model"
	"github.com/aisa-it/aipress/editor/state"
)

// ToggleWrap оборачивает блоки выделения в контейнер или поднимает их
// из него, если выделение уже внутри. Используется для цитат.
type ToggleWrap struct {
	typ      *model.NodeType
	keyCombo string
}

// NewToggleWrap создаёт команду для контейнерного типа.
func NewToggleWrap(schema *model.Schema, typeName, keyCombo string) (*ToggleWrap, error) {
	typ := schema.NodeType(typeName)
	if typ == nil {
		return nil, fmt.Errorf("schema has no node type %q", typeName)
	}
	return &ToggleWrap{typ: typ, keyCombo: keyCombo}, nil
}

func (a *ToggleWrap) Execute(ctx context.Context, st *state.EditorState, params Params) (*state.Transaction, error) {
	tr := st.Tr()
	if _, _, ok := enclosingNode(st, a.typ); ok {
		from, to, err := blockRange(st.Doc, st.Selection)
		if err != nil {
			return nil, err
		}
		if err := tr.Lift(from, to); err != nil {
			return nil, err
		}
		return tr, nil
	}
	from, to, err := blockRange(st.Doc, st.Selection)
	if err != nil {
		return nil, err
	}
	if err := tr.Wrap(from, to, a.typ, nil); err != nil {
		return nil, err
	}
	return tr, nil
}

func (a *ToggleWrap) IsActive(st *state.EditorState) bool {
	_, _, ok := enclosingNode(st, a.typ)
	return ok
}

func (a *ToggleWrap) IsApplicable(st *state.EditorState) bool {
	return textblockParent(st.Doc, st.Selection.From())
}

func (a *ToggleWrap) DefaultKeyCombo() string { return a.keyCombo }

// InsertAlert переключает блок-заметку трёхходово: внутри заметки того
// же типа - снимает обёртку, внутри заметки другого типа - меняет
// только атрибут типа, вне заметки - оборачивает блоки выделения.
type InsertAlert struct {
	alert     *model.NodeType
	alertType string
}

// NewInsertAlert создаёт команду для одного из типов заметки.
func NewInsertAlert(schema *model.Schema, alertType string) (*InsertAlert, error) {
	alert := schema.NodeType("alert")
	if alert == nil {
		return nil, fmt.Errorf("schema has no node type %q", "alert")
	}
	if err := alert.CheckAttrs(map[string]any{"type": alertType}); err != nil {
		return nil, err
	}
	return &InsertAlert{alert: alert, alertType: alertType}, nil
}

func (a *InsertAlert) Execute(ctx context.Context, st *state.EditorState, params Params) (*state.Transaction, error) {
	tr := st.Tr()
	if enclosing, pos, ok := enclosingNode(st, a.alert); ok {
		if enclosing.Attrs["type"] == a.alertType {
			from, to, err := blockRange(st.Doc, st.Selection)
			if err != nil {
				return nil, err
			}
			if err := tr.Lift(from, to); err != nil {
				return nil, err
			}
			return tr, nil
		}
		if err := tr.SetNodeAttribute(pos, "type", a.alertType); err != nil {
			return nil, err
		}
		return tr, nil
	}
	from, to, err := blockRange(st.Doc, st.Selection)
	if err != nil {
		return nil, err
	}
	if err := tr.Wrap(from, to, a.alert, map[string]any{"type": a.alertType}); err != nil {
		return nil, err
	}
	return tr, nil
}

func (a *InsertAlert) IsActive(st *state.EditorState) bool {
	enclosing, _, ok := enclosingNode(st, a.alert)
	return ok && enclosing.Attrs["type"] == a.alertType
}

func (a *InsertAlert) IsApplicable(st *state.EditorState) bool {
	return textblockParent(st.Doc, st.Selection.From())
}

func (a *InsertAlert) DefaultKeyCombo() string { return "" }

// ToggleList переключает список: вне списка оборачивает блоки
// выделения в список данного типа, внутри списка того же типа
// разворачивает его содержимое обратно в блоки, внутри списка другого
// типа меняет тип списка с сохранением элементов.
type ToggleList struct {
	list     *model.NodeType
	other    *model.NodeType
	item     *model.NodeType
	keyCombo string
}

// NewToggleList создаёт команду для bullet_list или ordered_list.
func NewToggleList(schema *model.Schema, typeName, keyCombo string) (*ToggleList, error) {
	list := schema.NodeType(typeName)
	item := schema.NodeType("list_item")
	if list == nil || item == nil {
		return nil, fmt.Errorf("schema has no list types for %q", typeName)
	}
	otherName := "ordered_list"
	if typeName == "ordered_list" {
		otherName = "bullet_list"
	}
	return &ToggleList{
		list:     list,
		other:    schema.NodeType(otherName),
		item:     item,
		keyCombo: keyCombo,
	}, nil
}

func (a *ToggleList) Execute(ctx context.Context, st *state.EditorState, params Params) (*state.Transaction, error) {
	tr := st.Tr()
	if listNode, pos, ok := enclosingNode(st, a.list); ok {
		return a.unwrap(tr, listNode, pos)
	}
	if a.other != nil {
		if listNode, pos, ok := enclosingNode(st, a.other); ok {
			return a.switchType(tr, listNode, pos)
		}
	}
	return a.wrap(tr, st)
}

// unwrap заменяет список содержимым его элементов.
func (a *ToggleList) unwrap(tr *state.Transaction, listNode *model.Node, pos int) (*state.Transaction, error) {
	var blocks []*model.Node
	for i := 0; i < listNode.ChildCount(); i++ {
		item := listNode.Child(i)
		for j := 0; j < item.ChildCount(); j++ {
			blocks = append(blocks, item.Child(j))
		}
	}
	end := pos + listNode.NodeSize()
	if err := tr.Replace(pos, end, model.FragmentFrom(blocks)); err != nil {
		return nil, err
	}
	return tr, nil
}

// switchType заменяет список списком другого типа с теми же элементами.
func (a *ToggleList) switchType(tr *state.Transaction, listNode *model.Node, pos int) (*state.Transaction, error) {
	items := make([]*model.Node, listNode.ChildCount())
	for i := 0; i < listNode.ChildCount(); i++ {
		items[i] = listNode.Child(i)
	}
	replacement, err := a.list.CreateChecked(nil, items...)
	if err != nil {
		return nil, err
	}
	end := pos + listNode.NodeSize()
	if err := tr.Replace(pos, end, model.NewFragment(replacement)); err != nil {
		return nil, err
	}
	return tr, nil
}

// wrap собирает блоки выделения в новый список по одному элементу на
// блок.
func (a *ToggleList) wrap(tr *state.Transaction, st *state.EditorState) (*state.Transaction, error) {
	from, to, err := blockRange(st.Doc, st.Selection)
	if err != nil {
		return nil, err
	}
	_, blocks, err := childBlocks(st.Doc, from, to)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, nil
	}
	schema := a.list.Schema
	items := make([]*model.Node, 0, len(blocks))
	for _, block := range blocks {
		var item *model.Node
		item, err = a.item.CreateChecked(nil, block)
		if err != nil {
			// блок не годится в элемент списка, оставляем его текст
			var inline []*model.Node
			if text := block.TextContent(); text != "" {
				inline = append(inline, schema.Text(text))
			}
			para := schema.NodeType("paragraph").Create(nil, inline...)
			item, err = a.item.CreateChecked(nil, para)
			if err != nil {
				return nil, err
			}
		}
		items = append(items, item)
	}
	listNode, err := a.list.CreateChecked(nil, items...)
	if err != nil {
		return nil, err
	}
	if err := tr.Replace(from, to, model.NewFragment(listNode)); err != nil {
		return nil, err
	}
	return tr, nil
}

func (a *ToggleList) IsActive(st *state.EditorState) bool {
	_, _, ok := enclosingNode(st, a.list)
	return ok
}

func (a *ToggleList) IsApplicable(st *state.EditorState) bool {
	return textblockParent(st.Doc, st.Selection.From())
}

func (a *ToggleList) DefaultKeyCombo() string { return a.keyCombo }
