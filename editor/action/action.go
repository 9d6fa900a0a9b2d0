// Пакет action реализует команды редактирования документа. Каждая
// команда - небольшой объект без изменяемого состояния: по снимку
// документа и выделения она сообщает применимость и активность и
// строит транзакцию.
//
// Основные возможности:
//   - Переключение марок: strong, em, underline, code, link.
//   - Смена типа блока: заголовки, блок кода, выравнивание.
//   - Вставка нод: линия, изображение, embed, сноска, текст.
//   - Обёртки: цитата, блок-заметка с трёхходовым переключением,
//     списки.
//   - Буфер обмена и история через внедряемые интерфейсы.
package action

import (
	"context"

	"github.com/aisa-it/aipress/editor/model"
	"github.com/aisa-it/aipress/editor/state"
)

// Params - параметры выполнения команды: адрес ссылки, атрибуты
// изображения и подобное.
type Params map[string]any

// String возвращает строковый параметр или пустую строку.
func (p Params) String(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// Int возвращает целочисленный параметр или ноль.
func (p Params) Int(key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// Action - команда редактирования. Execute возвращает nil транзакцию,
// когда команде нечего делать на данном снимке.
type Action interface {
	Execute(ctx context.Context, st *state.EditorState, params Params) (*state.Transaction, error)
	// IsActive сообщает, действует ли команда в текущем выделении:
	// марка включена, курсор внутри соответствующего блока.
	IsActive(st *state.EditorState) bool
	// IsApplicable сообщает, имеет ли команда смысл на данном снимке.
	IsApplicable(st *state.EditorState) bool
	// DefaultKeyCombo возвращает сочетание клавиш по умолчанию или
	// пустую строку.
	DefaultKeyCombo() string
}

// isMarkActive сообщает, действует ли марка в выделении. Для пустого
// выделения учитываются отложенные марки курсора.
func isMarkActive(st *state.EditorState, typ *model.MarkType) bool {
	sel := st.Selection
	if sel.Empty() {
		return typ.IsInSet(st.MarksAt()) != nil
	}
	return st.Doc.RangeHasMark(sel.From(), sel.To(), typ)
}

// findNodes возвращает ноды типа typ, пересекающие диапазон, вместе с
// их позициями.
func findNodes(doc *model.Node, from, to int, typ *model.NodeType) []foundNode {
	var out []foundNode
	doc.NodesBetween(from, to, func(n *model.Node, pos int) bool {
		if n.Type == typ {
			out = append(out, foundNode{node: n, pos: pos})
		}
		return true
	})
	return out
}

type foundNode struct {
	node *model.Node
	pos  int
}

// enclosingNode ищет ближайшего предка данного типа вокруг выделения.
func enclosingNode(st *state.EditorState, typ *model.NodeType) (*model.Node, int, bool) {
	r, err := st.Doc.Resolve(st.Selection.From())
	if err != nil {
		return nil, 0, false
	}
	for d := r.Depth(); d >= 1; d-- {
		if n := r.Node(d); n.Type == typ {
			return n, r.Before(d), true
		}
	}
	return nil, 0, false
}

// blockRange расширяет выделение до границ блоков, лежащих сразу под
// общим предком обоих концов.
func blockRange(doc *model.Node, sel state.Selection) (int, int, error) {
	rFrom, err := doc.Resolve(sel.From())
	if err != nil {
		return 0, 0, err
	}
	rTo, err := doc.Resolve(sel.To())
	if err != nil {
		return 0, 0, err
	}
	depth := rFrom.SharedDepth(rTo)
	if rFrom.Depth() > depth && rTo.Depth() > depth {
		depth++
	}
	if depth < 1 {
		depth = 1
	}
	from, to := sel.From(), sel.To()
	if rFrom.Depth() >= depth {
		from = rFrom.Before(depth)
	}
	if rTo.Depth() >= depth {
		to = rTo.After(depth)
	}
	return from, to, nil
}

// childBlocks возвращает контейнер и его дочерние блоки, покрытые
// диапазоном. Диапазон должен начинаться на границе блока.
func childBlocks(doc *model.Node, from, to int) (*model.Node, []*model.Node, error) {
	r, err := doc.Resolve(from)
	if err != nil {
		return nil, nil, err
	}
	parent := r.Parent()
	idx := r.Index(r.Depth())
	var blocks []*model.Node
	pos := from
	for i := idx; i < parent.ChildCount() && pos < to; i++ {
		child := parent.Child(i)
		blocks = append(blocks, child)
		pos += child.NodeSize()
	}
	return parent, blocks, nil
}

// textblockParent сообщает, находится ли позиция внутри текстового
// блока.
func textblockParent(doc *model.Node, pos int) bool {
	r, err := doc.Resolve(pos)
	if err != nil {
		return false
	}
	return r.Parent().IsTextblock()
}

// selectWord расширяет пустое выделение до границ слова вокруг курсора.
// Непустое выделение возвращается как есть.
func selectWord(st *state.EditorState) (int, int) {
	sel := st.Selection
	if !sel.Empty() {
		return sel.From(), sel.To()
	}
	r, err := st.Doc.Resolve(sel.From())
	if err != nil {
		return sel.From(), sel.To()
	}
	parent := r.Parent()
	if !parent.IsTextblock() {
		return sel.From(), sel.To()
	}
	// runes[i] - руна на смещении i содержимого блока; нетекстовая
	// инлайн-нода занимает смещение без руны и обрывает слово.
	runes := make([]rune, parent.Content.Size())
	childOffset := 0
	for i := 0; i < parent.ChildCount(); i++ {
		child := parent.Child(i)
		if child.IsText() {
			copy(runes[childOffset:], child.Text)
		}
		childOffset += child.NodeSize()
	}
	offset := r.ParentOffset
	start, end := offset, offset
	for start > 0 && isWordRune(runes[start-1]) {
		start--
	}
	for end < len(runes) && isWordRune(runes[end]) {
		end++
	}
	base := sel.From() - offset
	return base + start, base + end
}

// isWordRune: нулевая руна - заполнитель нетекстовой инлайн-ноды.
func isWordRune(r rune) bool {
	return r != 0 && r != ' ' && r != '\t' && r != '\n'
}
