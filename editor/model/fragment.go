package model

// Fragment представляет упорядоченную последовательность дочерних нод.
// Как и ноды, фрагменты неизменяемы.
type Fragment struct {
	Children []*Node

	size int
}

// EmptyFragment - пустой фрагмент, используемый для нод без содержимого.
var EmptyFragment = &Fragment{}

// NewFragment создаёт фрагмент из набора нод.
func NewFragment(children ...*Node) *Fragment {
	f := &Fragment{Children: children}
	for _, c := range children {
		f.size += c.NodeSize()
	}
	return f
}

// FragmentFrom создаёт фрагмент из среза нод, объединяя соседние текстовые
// ноды с одинаковыми марками.
func FragmentFrom(nodes []*Node) *Fragment {
	var merged []*Node
	for _, node := range nodes {
		last := len(merged) - 1
		if node.IsText() && last >= 0 && merged[last].IsText() && SameMarkSet(node.Marks, merged[last].Marks) {
			join := append(append([]rune{}, merged[last].Text...), node.Text...)
			merged[last] = &Node{Type: node.Type, Marks: node.Marks, Text: join}
			continue
		}
		merged = append(merged, node)
	}
	return NewFragment(merged...)
}

// Size возвращает суммарный размер всех дочерних нод.
func (f *Fragment) Size() int {
	if f == nil {
		return 0
	}
	return f.size
}

// Count возвращает число дочерних нод.
func (f *Fragment) Count() int {
	if f == nil {
		return 0
	}
	return len(f.Children)
}

// Child возвращает ноду по индексу.
func (f *Fragment) Child(i int) *Node { return f.Children[i] }

// findIndex возвращает индекс дочерней ноды, содержащей позицию pos, и
// смещение начала этой ноды. Если pos попадает на границу между нодами,
// возвращается индекс следующей ноды.
func (f *Fragment) findIndex(pos int) (index, offset int) {
	if pos == 0 {
		return 0, 0
	}
	if pos == f.Size() {
		return f.Count(), f.Size()
	}
	cur := 0
	for i, child := range f.Children {
		end := cur + child.NodeSize()
		if pos < end {
			return i, cur
		}
		cur = end
	}
	return f.Count(), f.Size()
}

// Cut возвращает фрагмент с содержимым диапазона [from, to). Ноды,
// пересекающие границы, обрезаются.
func (f *Fragment) Cut(from, to int) *Fragment {
	if from == 0 && to == f.Size() {
		return f
	}
	var result []*Node
	if to > from {
		pos := 0
		for _, child := range f.Children {
			if pos >= to {
				break
			}
			end := pos + child.NodeSize()
			if end > from {
				cut := child
				if pos < from || end > to {
					if child.IsText() {
						cut = child.CutText(max(0, from-pos), min(len(child.Text), to-pos))
					} else {
						cut = child.Cut(max(0, from-pos-1), min(child.Content.Size(), to-pos-1))
					}
				}
				result = append(result, cut)
			}
			pos = end
		}
	}
	return NewFragment(result...)
}

// Append возвращает фрагмент с нодами обоих фрагментов, объединяя
// стыкующиеся текстовые ноды с одинаковыми марками.
func (f *Fragment) Append(other *Fragment) *Fragment {
	if other.Count() == 0 {
		return f
	}
	if f.Count() == 0 {
		return other
	}
	nodes := append(append([]*Node{}, f.Children...), other.Children...)
	return FragmentFrom(nodes)
}

// ReplaceChild возвращает фрагмент с заменённой нодой по индексу.
func (f *Fragment) ReplaceChild(i int, node *Node) *Fragment {
	children := append([]*Node{}, f.Children...)
	children[i] = node
	return NewFragment(children...)
}

// Splice возвращает фрагмент, в котором дочерние ноды [fromIndex, toIndex)
// заменены нодами replacement.
func (f *Fragment) Splice(fromIndex, toIndex int, replacement *Fragment) *Fragment {
	children := append([]*Node{}, f.Children[:fromIndex]...)
	children = append(children, replacement.Children...)
	children = append(children, f.Children[toIndex:]...)
	return NewFragment(children...)
}
