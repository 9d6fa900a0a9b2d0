package action

import (
	"context"
	"fmt"

	"github.com/aisa-it/aipress/editor/model"
	"github.com/aisa-it/aipress/editor/state"
)

// ToggleMark переключает марку на выделении. Пустое выделение
// переключает отложенную марку курсора: она применится к следующему
// вводу.
type ToggleMark struct {
	typ      *model.MarkType
	keyCombo string
}

// NewToggleMark создаёт команду переключения марки. Возвращает ошибку,
// если схема марку не объявляет.
func NewToggleMark(schema *model.Schema, markName, keyCombo string) (*ToggleMark, error) {
	typ := schema.MarkType(markName)
	if typ == nil {
		return nil, fmt.Errorf("schema has no mark type %q", markName)
	}
	return &ToggleMark{typ: typ, keyCombo: keyCombo}, nil
}

func (a *ToggleMark) Execute(ctx context.Context, st *state.EditorState, params Params) (*state.Transaction, error) {
	tr := st.Tr()
	sel := st.Selection
	active := isMarkActive(st, a.typ)
	if sel.Empty() {
		if active {
			tr.RemoveStoredMark(a.typ)
		} else {
			m, err := a.typ.Create(nil)
			if err != nil {
				return nil, err
			}
			tr.AddStoredMark(m)
		}
		return tr, nil
	}
	if active {
		m, err := a.typ.Create(nil)
		if err != nil {
			return nil, err
		}
		if err := tr.RemoveMark(sel.From(), sel.To(), m); err != nil {
			return nil, err
		}
		return tr, nil
	}
	m, err := a.typ.Create(nil)
	if err != nil {
		return nil, err
	}
	if err := tr.AddMark(sel.From(), sel.To(), m); err != nil {
		return nil, err
	}
	return tr, nil
}

func (a *ToggleMark) IsActive(st *state.EditorState) bool {
	return isMarkActive(st, a.typ)
}

func (a *ToggleMark) IsApplicable(st *state.EditorState) bool {
	return textblockParent(st.Doc, st.Selection.From())
}

func (a *ToggleMark) DefaultKeyCombo() string { return a.keyCombo }

// ToggleWordMark переключает марку с атрибутами, расширяя пустое
// выделение до слова под курсором. Используется для ссылок.
type ToggleWordMark struct {
	typ      *model.MarkType
	keyCombo string
}

// NewToggleWordMark создаёт команду. Возвращает ошибку, если схема
// марку не объявляет.
func NewToggleWordMark(schema *model.Schema, markName, keyCombo string) (*ToggleWordMark, error) {
	typ := schema.MarkType(markName)
	if typ == nil {
		return nil, fmt.Errorf("schema has no mark type %q", markName)
	}
	return &ToggleWordMark{typ: typ, keyCombo: keyCombo}, nil
}

func (a *ToggleWordMark) Execute(ctx context.Context, st *state.EditorState, params Params) (*state.Transaction, error) {
	from, to := selectWord(st)
	if from == to {
		return nil, nil
	}
	tr := st.Tr()
	if st.Doc.RangeHasMark(from, to, a.typ) {
		if err := tr.RemoveMark(from, to, &model.Mark{Type: a.typ}); err != nil {
			return nil, err
		}
		return tr, nil
	}
	m, err := a.typ.Create(copyAttrs(params))
	if err != nil {
		return nil, err
	}
	if err := tr.AddMark(from, to, m); err != nil {
		return nil, err
	}
	return tr, nil
}

func (a *ToggleWordMark) IsActive(st *state.EditorState) bool {
	return isMarkActive(st, a.typ)
}

func (a *ToggleWordMark) IsApplicable(st *state.EditorState) bool {
	from, to := selectWord(st)
	return from < to
}

func (a *ToggleWordMark) DefaultKeyCombo() string { return a.keyCombo }

func copyAttrs(params Params) map[string]any {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
