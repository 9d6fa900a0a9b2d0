// Пакет model реализует неизменяемую древовидную модель документа редактора.
// Документ состоит из нод (параграфы, заголовки, списки и т.д.) с атрибутами
// и инлайн-содержимым, размеченным марками (bold, link и т.д.). Схема
// документа задаёт допустимые типы нод и ограничения на их содержимое.
//
// Основные возможности:
//   - Построение неизменяемых деревьев документа со структурным разделением
//     неизменённых поддеревьев между версиями.
//   - Декларативная схема: типы нод с атрибутами, значениями по умолчанию и
//     content-выражениями ("paragraph+", "inline*" и т.д.).
//   - Валидация при создании нод: нарушение схемы возвращает SchemaViolationError.
//   - Плоская адресация позиций в документе и их разрешение в путь по дереву.
//   - Марки инлайн-форматирования с дедупликацией по типу.
//   - Сериализация нод в JSON и обратно для обмена через буфер обмена.
package model

import (
	"fmt"
	"strings"
)

// SchemaViolationError возвращается при попытке создать ноду, нарушающую
// схему: неизвестный тип, недопустимые атрибуты или содержимое.
type SchemaViolationError struct {
	Type   string
	Reason string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation in %q: %s", e.Type, e.Reason)
}

func violation(typeName, format string, args ...any) error {
	return &SchemaViolationError{Type: typeName, Reason: fmt.Sprintf(format, args...)}
}

// Node представляет ноду дерева документа. Ноды неизменяемы: любое
// редактирование создаёт новую ноду, разделяя неизменённые поддеревья со
// старой версией. Текстовые ноды хранят текст и марки, контейнерные - Content.
type Node struct {
	Type    *NodeType
	Attrs   map[string]any
	Content *Fragment
	Marks   []*Mark
	Text    []rune
}

// IsText сообщает, является ли нода текстовой.
func (n *Node) IsText() bool { return n.Type != nil && n.Type.Name == "text" }

// IsInline сообщает, относится ли нода к инлайн-содержимому.
func (n *Node) IsInline() bool { return n.IsText() || n.Type.Inline }

// IsBlock сообщает, является ли нода блочной.
func (n *Node) IsBlock() bool { return !n.IsInline() }

// IsLeaf сообщает, что нода не может иметь дочерних нод.
func (n *Node) IsLeaf() bool { return n.IsText() || n.Type.IsLeaf() }

// IsTextblock сообщает, что нода является блоком с инлайн-содержимым.
func (n *Node) IsTextblock() bool { return !n.IsInline() && n.Type.InlineContent() }

// IsAtom сообщает, что нода отображается как единое целое без содержимого.
func (n *Node) IsAtom() bool { return n.Type.Atom || n.IsLeaf() && !n.IsText() }

// NodeSize возвращает размер ноды в плоской адресации документа: текст
// занимает по позиции на символ, атомарные ноды - одну позицию, контейнеры -
// размер содержимого плюс открывающий и закрывающий токены.
func (n *Node) NodeSize() int {
	if n.IsText() {
		return len(n.Text)
	}
	if n.IsLeaf() {
		return 1
	}
	return 2 + n.Content.Size()
}

// ChildCount возвращает число дочерних нод.
func (n *Node) ChildCount() int {
	if n.Content == nil {
		return 0
	}
	return len(n.Content.Children)
}

// Child возвращает дочернюю ноду по индексу.
func (n *Node) Child(i int) *Node { return n.Content.Children[i] }

// TextString возвращает текст текстовой ноды.
func (n *Node) TextString() string { return string(n.Text) }

// TextContent возвращает конкатенацию всего текста в поддереве.
func (n *Node) TextContent() string {
	if n.IsText() {
		return string(n.Text)
	}
	var sb strings.Builder
	for i := 0; i < n.ChildCount(); i++ {
		sb.WriteString(n.Child(i).TextContent())
	}
	return sb.String()
}

// Copy возвращает ноду тех же типа и атрибутов с другим содержимым.
func (n *Node) Copy(content *Fragment) *Node {
	return &Node{Type: n.Type, Attrs: n.Attrs, Content: content, Marks: n.Marks}
}

// WithAttrs возвращает копию ноды с заменёнными атрибутами.
func (n *Node) WithAttrs(attrs map[string]any) *Node {
	return &Node{Type: n.Type, Attrs: attrs, Content: n.Content, Marks: n.Marks, Text: n.Text}
}

// WithMarks возвращает копию текстовой ноды с другим набором марок.
func (n *Node) WithMarks(marks []*Mark) *Node {
	if SameMarkSet(n.Marks, marks) {
		return n
	}
	return &Node{Type: n.Type, Attrs: n.Attrs, Content: n.Content, Marks: marks, Text: n.Text}
}

// CutText возвращает текстовую ноду с подстрокой [from, to) исходного текста.
func (n *Node) CutText(from, to int) *Node {
	if from == 0 && to == len(n.Text) {
		return n
	}
	return &Node{Type: n.Type, Marks: n.Marks, Text: n.Text[from:to]}
}

// Cut возвращает копию ноды, содержащую только диапазон [from, to)
// её содержимого.
func (n *Node) Cut(from, to int) *Node {
	if n.IsText() {
		return n.CutText(from, to)
	}
	if from == 0 && to == n.Content.Size() {
		return n
	}
	return n.Copy(n.Content.Cut(from, to))
}

// HasMarkup сообщает, имеет ли нода данный тип и атрибуты. Переданные
// атрибуты сравниваются по вхождению: атрибуты ноды, не указанные в attrs,
// не учитываются.
func (n *Node) HasMarkup(typ *NodeType, attrs map[string]any) bool {
	if n.Type != typ {
		return false
	}
	for k, v := range attrs {
		if n.Attrs[k] != v {
			return false
		}
	}
	return true
}

// Eq сравнивает две ноды на структурное равенство.
func (n *Node) Eq(other *Node) bool {
	if n == other {
		return true
	}
	if n.Type != other.Type || !SameMarkSet(n.Marks, other.Marks) {
		return false
	}
	if string(n.Text) != string(other.Text) {
		return false
	}
	if !sameAttrs(n.Attrs, other.Attrs, n.Type) {
		return false
	}
	if n.ChildCount() != other.ChildCount() {
		return false
	}
	for i := 0; i < n.ChildCount(); i++ {
		if !n.Child(i).Eq(other.Child(i)) {
			return false
		}
	}
	return true
}

// sameAttrs сравнивает атрибуты с учётом значений по умолчанию типа.
func sameAttrs(a, b map[string]any, typ *NodeType) bool {
	for name, attr := range typ.Attrs {
		av, aok := a[name]
		if !aok {
			av = attr.Default
		}
		bv, bok := b[name]
		if !bok {
			bv = attr.Default
		}
		if av != bv {
			return false
		}
	}
	return true
}

// NodesBetween вызывает f для каждой ноды, пересекающей диапазон [from, to),
// в порядке документа. pos - позиция перед нодой. Возврат false из f
// останавливает спуск в дочерние ноды (но не обход соседей).
func (n *Node) NodesBetween(from, to int, f func(node *Node, pos int) bool) {
	n.nodesBetween(from, to, f, 0)
}

func (n *Node) nodesBetween(from, to int, f func(node *Node, pos int) bool, pos int) {
	offset := 0
	for i := 0; i < n.ChildCount(); i++ {
		child := n.Child(i)
		end := offset + child.NodeSize()
		if end > from && offset < to {
			descend := f(child, pos+offset)
			if descend && !child.IsLeaf() && !child.IsText() {
				start := pos + offset + 1
				child.nodesBetween(max(from-offset-1, 0), min(to-offset-1, child.Content.Size()), f, start)
			}
		}
		offset = end
	}
}

// TextBetween возвращает текст диапазона [from, to), разделяя блоки blockSep.
func (n *Node) TextBetween(from, to int, blockSep string) string {
	var sb strings.Builder
	separated := true
	n.NodesBetween(from, to, func(node *Node, pos int) bool {
		if node.IsText() {
			start := max(from-pos, 0)
			end := min(to-pos, len(node.Text))
			sb.WriteString(string(node.Text[start:end]))
			separated = false
		} else if node.IsTextblock() && !separated {
			sb.WriteString(blockSep)
			separated = true
		}
		return true
	})
	return sb.String()
}

// RangeHasMark сообщает, есть ли в диапазоне [from, to) марка данного типа.
func (n *Node) RangeHasMark(from, to int, typ *MarkType) bool {
	found := false
	if to > from {
		n.NodesBetween(from, to, func(node *Node, _ int) bool {
			if node.IsText() && typ.IsInSet(node.Marks) != nil {
				found = true
			}
			return !found
		})
	}
	return found
}
