package model

import "fmt"

// pathStep - один уровень пути разрешённой позиции.
type pathStep struct {
	node  *Node
	index int
	start int
}

// ResolvedPos - позиция документа, разрешённая в путь по дереву.
// Глубина 0 соответствует корню документа.
type ResolvedPos struct {
	Pos          int
	ParentOffset int

	path []pathStep
}

// Resolve разрешает плоскую позицию в путь по дереву документа.
func (n *Node) Resolve(pos int) (*ResolvedPos, error) {
	if pos < 0 || pos > n.Content.Size() {
		return nil, fmt.Errorf("position %d outside of document (size %d)", pos, n.Content.Size())
	}
	r := &ResolvedPos{Pos: pos}
	start := 0
	node := n
	parentOffset := pos
	for {
		index, offset := node.Content.findIndex(parentOffset)
		rem := parentOffset - offset
		r.path = append(r.path, pathStep{node: node, index: index, start: start + offset})
		if rem == 0 {
			break
		}
		node = node.Child(index)
		if node.IsText() {
			break
		}
		parentOffset = rem - 1
		start += offset + 1
	}
	r.ParentOffset = parentOffset
	return r, nil
}

// Depth возвращает глубину позиции: число контейнеров над ней.
func (r *ResolvedPos) Depth() int { return len(r.path) - 1 }

// Node возвращает ноду-предка на данной глубине.
func (r *ResolvedPos) Node(depth int) *Node { return r.path[depth].node }

// Parent возвращает непосредственного родителя позиции.
func (r *ResolvedPos) Parent() *Node { return r.path[len(r.path)-1].node }

// Index возвращает индекс позиции среди детей предка данной глубины.
func (r *ResolvedPos) Index(depth int) int { return r.path[depth].index }

// Start возвращает позицию начала содержимого предка данной глубины.
func (r *ResolvedPos) Start(depth int) int {
	if depth == 0 {
		return 0
	}
	return r.path[depth-1].start + 1
}

// End возвращает позицию конца содержимого предка данной глубины.
func (r *ResolvedPos) End(depth int) int {
	return r.Start(depth) + r.Node(depth).Content.Size()
}

// Before возвращает позицию непосредственно перед предком данной глубины.
func (r *ResolvedPos) Before(depth int) int {
	return r.path[depth-1].start
}

// After возвращает позицию непосредственно после предка данной глубины.
func (r *ResolvedPos) After(depth int) int {
	return r.path[depth-1].start + r.Node(depth).NodeSize()
}

// NodeAfter возвращает ноду сразу после позиции, если позиция стоит на
// границе дочерних нод родителя.
func (r *ResolvedPos) NodeAfter() *Node {
	parent := r.Parent()
	index := r.Index(r.Depth())
	if index == parent.ChildCount() {
		return nil
	}
	child := parent.Child(index)
	if child.IsText() {
		offset := r.startOfChild(index)
		if r.ParentOffset > offset {
			return child.CutText(r.ParentOffset-offset, len(child.Text))
		}
	}
	return child
}

// NodeBefore возвращает ноду сразу перед позицией.
func (r *ResolvedPos) NodeBefore() *Node {
	parent := r.Parent()
	index := r.Index(r.Depth())
	if index < parent.ChildCount() {
		child := parent.Child(index)
		offset := r.startOfChild(index)
		if child.IsText() && r.ParentOffset > offset {
			return child.CutText(0, r.ParentOffset-offset)
		}
	}
	if index == 0 {
		return nil
	}
	return parent.Child(index - 1)
}

// startOfChild возвращает смещение начала дочерней ноды в содержимом родителя.
func (r *ResolvedPos) startOfChild(index int) int {
	offset := 0
	for i := 0; i < index; i++ {
		offset += r.Parent().Child(i).NodeSize()
	}
	return offset
}

// Marks возвращает марки, действующие в позиции: марки текста перед
// ней, либо, если его нет, текста после. Неинклюзивная марка на границе
// своего отрезка отбрасывается: она действует, только когда текст по
// обе стороны позиции её несёт.
func (r *ResolvedPos) Marks() []*Mark {
	before := r.NodeBefore()
	after := r.NodeAfter()
	main, other := before, after
	if main == nil || !main.IsText() {
		main, other = after, before
	}
	if main == nil || !main.IsText() {
		return nil
	}
	var result []*Mark
	for _, m := range main.Marks {
		if m.Type.Inclusive {
			result = append(result, m)
			continue
		}
		if other != nil && other.IsText() && m.Type.IsInSet(other.Marks) != nil {
			result = append(result, m)
		}
	}
	return result
}

// SharedDepth возвращает наибольшую глубину, предок которой содержит обе
// позиции.
func (r *ResolvedPos) SharedDepth(other *ResolvedPos) int {
	depth := min(r.Depth(), other.Depth())
	for depth > 0 {
		if r.Start(depth) == other.Start(depth) {
			break
		}
		depth--
	}
	return depth
}
