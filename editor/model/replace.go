package model

import "fmt"

// Функции редактирования дерева. Каждая возвращает новый документ,
// разделяя неизменённые поддеревья со старым.

// replaceAtPath возвращает документ, в котором нода, достижимая по пути
// индексов path, заменена заново собранным содержимым.
func replaceAtPath(doc *Node, path []int, rebuilt *Node) *Node {
	if len(path) == 0 {
		return rebuilt
	}
	child := doc.Child(path[0])
	return doc.Copy(doc.Content.ReplaceChild(path[0], replaceAtPath(child, path[1:], rebuilt)))
}

// pathTo возвращает индексы пути от корня к предку позиции данной глубины.
func pathTo(r *ResolvedPos, depth int) []int {
	path := make([]int, depth)
	for i := 0; i < depth; i++ {
		path[i] = r.Index(i)
	}
	return path
}

// Replace заменяет диапазон [from, to) документа содержимым фрагмента.
// Поддерживаются инлайн-замены внутри текстовых блоков (включая диапазоны,
// охватывающие несколько соседних блоков - их края сливаются) и блочные
// замены по границам нод. Иные конфигурации диапазона возвращают ошибку.
func (n *Node) Replace(from, to int, content *Fragment) (*Node, error) {
	rFrom, err := n.Resolve(from)
	if err != nil {
		return nil, err
	}
	rTo, err := n.Resolve(to)
	if err != nil {
		return nil, err
	}

	inline := content.Count() > 0
	for _, child := range content.Children {
		if !child.IsInline() {
			inline = false
			break
		}
	}

	if rFrom.Parent().IsTextblock() && rTo.Parent().IsTextblock() && (inline || content.Count() == 0) {
		return n.replaceInline(rFrom, rTo, content)
	}
	return n.replaceBlocks(rFrom, rTo, content)
}

// replaceInline обрабатывает замену с инлайн-содержимым между позициями
// внутри текстовых блоков.
func (n *Node) replaceInline(rFrom, rTo *ResolvedPos, content *Fragment) (*Node, error) {
	fromBlock := rFrom.Parent()
	toBlock := rTo.Parent()
	fromDepth := rFrom.Depth()
	toDepth := rTo.Depth()

	if fromDepth == toDepth && rFrom.Start(fromDepth) == rTo.Start(toDepth) {
		// Диапазон внутри одного текстового блока.
		merged := fromBlock.Content.Cut(0, rFrom.ParentOffset).
			Append(content).
			Append(fromBlock.Content.Cut(rTo.ParentOffset, fromBlock.Content.Size()))
		if !fromBlock.Type.ValidContent(merged) {
			return nil, violation(fromBlock.Type.Name, "replacement content not allowed")
		}
		return replaceAtPath(n, pathTo(rFrom, fromDepth), fromBlock.Copy(merged)), nil
	}

	// Диапазон охватывает несколько блоков: блоки должны быть братьями,
	// чтобы их края можно было слить в один блок.
	if fromDepth != toDepth || rFrom.Node(fromDepth-1) != rTo.Node(toDepth-1) {
		return nil, fmt.Errorf("replace range endpoints are not siblings")
	}
	merged := fromBlock.Content.Cut(0, rFrom.ParentOffset).
		Append(content).
		Append(toBlock.Content.Cut(rTo.ParentOffset, toBlock.Content.Size()))
	if !fromBlock.Type.ValidContent(merged) {
		return nil, violation(fromBlock.Type.Name, "replacement content not allowed")
	}
	parent := rFrom.Node(fromDepth - 1)
	spliced := parent.Content.Splice(rFrom.Index(fromDepth-1), rTo.Index(toDepth-1)+1, NewFragment(fromBlock.Copy(merged)))
	if !parent.Type.ValidContent(spliced) {
		return nil, violation(parent.Type.Name, "replacement content not allowed")
	}
	return replaceAtPath(n, pathTo(rFrom, fromDepth-1), parent.Copy(spliced)), nil
}

// replaceBlocks обрабатывает замену по границам блочных нод общего родителя.
func (n *Node) replaceBlocks(rFrom, rTo *ResolvedPos, content *Fragment) (*Node, error) {
	depth := rFrom.SharedDepth(rTo)
	parent := rFrom.Node(depth)
	if rFrom.Pos != rFrom.Start(depth)+boundaryOffset(parent, rFrom.Index(depth)) ||
		rTo.Pos != rTo.Start(depth)+boundaryOffset(parent, rTo.Index(depth)) {
		return nil, fmt.Errorf("replace range does not fall on node boundaries")
	}
	spliced := parent.Content.Splice(rFrom.Index(depth), rTo.Index(depth), content)
	if !parent.Type.ValidContent(spliced) {
		return nil, violation(parent.Type.Name, "replacement content not allowed")
	}
	return replaceAtPath(n, pathTo(rFrom, depth), parent.Copy(spliced)), nil
}

// boundaryOffset возвращает смещение границы перед дочерней нодой index.
func boundaryOffset(parent *Node, index int) int {
	offset := 0
	for i := 0; i < index && i < parent.ChildCount(); i++ {
		offset += parent.Child(i).NodeSize()
	}
	return offset
}

// ApplyMark возвращает документ с маркой, добавленной (add=true) или
// снятой со всего текста диапазона [from, to).
func (n *Node) ApplyMark(from, to int, mark *Mark, add bool) (*Node, error) {
	return n.mapTextblocks(from, to, func(block *Node, blockStart int) (*Node, error) {
		var result []*Node
		offset := 0
		for i := 0; i < block.ChildCount(); i++ {
			child := block.Child(i)
			end := offset + child.NodeSize()
			absStart := blockStart + offset
			absEnd := blockStart + end
			if child.IsText() && absEnd > from && absStart < to {
				cutFrom := max(from-absStart, 0)
				cutTo := min(to-absStart, len(child.Text))
				if cutFrom > 0 {
					result = append(result, child.CutText(0, cutFrom))
				}
				middle := child.CutText(cutFrom, cutTo)
				if add {
					middle = middle.WithMarks(mark.AddToSet(middle.Marks))
				} else {
					middle = middle.WithMarks(mark.RemoveFromSet(middle.Marks))
				}
				result = append(result, middle)
				if cutTo < len(child.Text) {
					result = append(result, child.CutText(cutTo, len(child.Text)))
				}
			} else {
				result = append(result, child)
			}
			offset = end
		}
		return block.Copy(FragmentFrom(result)), nil
	})
}

// SetNodeAttribute возвращает документ, в котором у ноды, начинающейся в
// позиции pos, заменён атрибут.
func (n *Node) SetNodeAttribute(pos int, name string, value any) (*Node, error) {
	r, err := n.Resolve(pos)
	if err != nil {
		return nil, err
	}
	target := r.NodeAfter()
	if target == nil {
		return nil, fmt.Errorf("no node at position %d", pos)
	}
	attrs := map[string]any{}
	for k, v := range target.Attrs {
		attrs[k] = v
	}
	attrs[name] = value
	if _, err := computeAttrs(target.Type.Name, target.Type.Attrs, attrs); err != nil {
		return nil, err
	}
	depth := r.Depth()
	path := append(pathTo(r, depth), r.Index(depth))
	return replaceAtPath(n, path, target.WithAttrs(attrs)), nil
}

// SetBlockType возвращает документ, в котором все текстовые блоки,
// пересекающие [from, to), заменены блоками данного типа с данными
// атрибутами. Блоки, не допускающие марок или не-текстового инлайна
// (например code_block), получают очищенный текст.
func (n *Node) SetBlockType(from, to int, typ *NodeType, attrs map[string]any) (*Node, error) {
	computed, err := computeAttrs(typ.Name, typ.Attrs, attrs)
	if err != nil {
		return nil, err
	}
	return n.mapTextblocks(from, to, func(block *Node, _ int) (*Node, error) {
		if block.HasMarkup(typ, computed) {
			return block, nil
		}
		content := block.Content
		if !typ.ValidContent(content) {
			// Сведение содержимого к плоскому тексту.
			content = NewFragment(typ.Schema.Text(block.TextContent()))
			if !typ.ValidContent(content) {
				return nil, violation(typ.Name, "cannot convert block content")
			}
		}
		return &Node{Type: typ, Attrs: computed, Content: content}, nil
	})
}

// mapTextblocks применяет f к каждому текстовому блоку, пересекающему
// [from, to), и собирает новый документ.
func (n *Node) mapTextblocks(from, to int, f func(block *Node, blockStart int) (*Node, error)) (*Node, error) {
	var rebuild func(node *Node, pos int) (*Node, error)
	rebuild = func(node *Node, pos int) (*Node, error) {
		if node.IsTextblock() {
			return f(node, pos+1)
		}
		changed := false
		children := make([]*Node, node.ChildCount())
		offset := pos + 1
		for i := 0; i < node.ChildCount(); i++ {
			child := node.Child(i)
			end := offset + child.NodeSize()
			children[i] = child
			if !child.IsText() && !child.IsLeaf() && end > from && offset < to {
				mapped, err := rebuild(child, offset)
				if err != nil {
					return nil, err
				}
				if mapped != child {
					children[i] = mapped
					changed = true
				}
			}
			offset = end
		}
		if !changed {
			return node, nil
		}
		return node.Copy(NewFragment(children...)), nil
	}
	return rebuild(n, -1)
}

// Wrap возвращает документ, в котором блочные ноды, покрывающие диапазон
// [from, to), обёрнуты в новую ноду данного типа.
func (n *Node) Wrap(from, to int, typ *NodeType, attrs map[string]any) (*Node, int, int, error) {
	rFrom, err := n.Resolve(from)
	if err != nil {
		return nil, 0, 0, err
	}
	rTo, err := n.Resolve(to)
	if err != nil {
		return nil, 0, 0, err
	}
	depth := rFrom.SharedDepth(rTo)
	parent := rFrom.Node(depth)
	if parent.IsTextblock() {
		depth--
		parent = rFrom.Node(depth)
	}
	startIndex := rFrom.Index(depth)
	endIndex := rTo.Index(depth)
	if endIndex < parent.ChildCount() && rTo.Pos > rTo.Start(depth)+boundaryOffset(parent, endIndex) {
		endIndex++
	}
	if endIndex == startIndex {
		endIndex++
	}

	inner := parent.Content.Cut(boundaryOffset(parent, startIndex), boundaryOffset(parent, endIndex))
	wrapper, err := typ.CreateChecked(attrs, inner.Children...)
	if err != nil {
		return nil, 0, 0, err
	}
	spliced := parent.Content.Splice(startIndex, endIndex, NewFragment(wrapper))
	if !parent.Type.ValidContent(spliced) {
		return nil, 0, 0, violation(parent.Type.Name, "wrapped content not allowed here")
	}
	wrapStart := rFrom.Start(depth) + boundaryOffset(parent, startIndex)
	wrapEnd := rFrom.Start(depth) + boundaryOffset(parent, endIndex)
	return replaceAtPath(n, pathTo(rFrom, depth), parent.Copy(spliced)), wrapStart, wrapEnd, nil
}

// LiftResult описывает выполненный подъём содержимого из контейнера.
type LiftResult struct {
	Doc *Node
	// Start и End - позиции границ поднятого диапазона в старом документе.
	Start, End int
	// SplitBefore и SplitAfter сообщают, остались ли у контейнера
	// непустые части до и после поднятого диапазона.
	SplitBefore, SplitAfter bool
}

// Lift поднимает блоки, покрывающие диапазон [from, to), из их
// непосредственного контейнера на уровень выше. Контейнер при
// необходимости разделяется на части до и после диапазона.
func (n *Node) Lift(from, to int) (*LiftResult, error) {
	rFrom, err := n.Resolve(from)
	if err != nil {
		return nil, err
	}
	rTo, err := n.Resolve(to)
	if err != nil {
		return nil, err
	}
	depth := rFrom.SharedDepth(rTo)
	inner := rFrom.Node(depth)
	if inner.IsTextblock() {
		depth--
		inner = rFrom.Node(depth)
	}
	if depth < 1 {
		return nil, fmt.Errorf("nothing to lift out of")
	}
	container := inner
	containerDepth := depth

	startIndex := rFrom.Index(containerDepth)
	endIndex := rTo.Index(containerDepth)
	if endIndex < container.ChildCount() && rTo.Pos > rTo.Start(containerDepth)+boundaryOffset(container, endIndex) {
		endIndex++
	}
	if endIndex == startIndex {
		endIndex++
	}

	lifted := container.Content.Cut(boundaryOffset(container, startIndex), boundaryOffset(container, endIndex))
	var replacement []*Node
	splitBefore := startIndex > 0
	splitAfter := endIndex < container.ChildCount()
	if splitBefore {
		replacement = append(replacement, container.Copy(container.Content.Cut(0, boundaryOffset(container, startIndex))))
	}
	replacement = append(replacement, lifted.Children...)
	if splitAfter {
		replacement = append(replacement, container.Copy(container.Content.Cut(boundaryOffset(container, endIndex), container.Content.Size())))
	}

	outer := rFrom.Node(containerDepth - 1)
	spliced := outer.Content.Splice(rFrom.Index(containerDepth-1), rFrom.Index(containerDepth-1)+1, NewFragment(replacement...))
	if !outer.Type.ValidContent(spliced) {
		return nil, violation(outer.Type.Name, "lifted content not allowed here")
	}
	start := rFrom.Start(containerDepth) + boundaryOffset(container, startIndex)
	end := rFrom.Start(containerDepth) + boundaryOffset(container, endIndex)
	return &LiftResult{
		Doc:         replaceAtPath(n, pathTo(rFrom, containerDepth-1), outer.Copy(spliced)),
		Start:       start,
		End:         end,
		SplitBefore: splitBefore,
		SplitAfter:  splitAfter,
	}, nil
}
