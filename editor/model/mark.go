package model

// Mark представляет инлайн-форматирование, применённое к отрезку текста
// (жирность, ссылка и т.д.). Марка одного типа встречается в наборе не
// более одного раза.
type Mark struct {
	Type  *MarkType
	Attrs map[string]any
}

// Eq сравнивает марки по типу и атрибутам.
func (m *Mark) Eq(other *Mark) bool {
	if m == other {
		return true
	}
	if m.Type != other.Type {
		return false
	}
	for name, attr := range m.Type.Attrs {
		av, aok := m.Attrs[name]
		if !aok {
			av = attr.Default
		}
		bv, bok := other.Attrs[name]
		if !bok {
			bv = attr.Default
		}
		if av != bv {
			return false
		}
	}
	return true
}

// AddToSet возвращает набор с добавленной маркой. Набор упорядочен по
// позиции типа в схеме. Повторное добавление идемпотентно; марка того
// же типа с другими атрибутами замещается.
func (m *Mark) AddToSet(set []*Mark) []*Mark {
	for i, existing := range set {
		if existing.Type == m.Type {
			if existing.Eq(m) {
				return set
			}
			result := append([]*Mark{}, set...)
			result[i] = m
			return result
		}
		if existing.Type.rank > m.Type.rank {
			result := make([]*Mark, 0, len(set)+1)
			result = append(result, set[:i]...)
			result = append(result, m)
			return append(result, set[i:]...)
		}
	}
	return append(append([]*Mark{}, set...), m)
}

// RemoveFromSet возвращает набор без марок данного типа.
func (m *Mark) RemoveFromSet(set []*Mark) []*Mark {
	return RemoveMarkType(set, m.Type)
}

// RemoveMarkType возвращает набор без марок данного типа.
func RemoveMarkType(set []*Mark, typ *MarkType) []*Mark {
	var result []*Mark
	for _, existing := range set {
		if existing.Type != typ {
			result = append(result, existing)
		}
	}
	return result
}

// SameMarkSet сравнивает два набора марок на равенство.
func SameMarkSet(a, b []*Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Eq(b[i]) {
			return false
		}
	}
	return true
}
