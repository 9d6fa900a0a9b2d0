package state

// StepMap описывает изменение размеров документа одним шагом как набор
// заменённых диапазонов в координатах старого документа.
type stepRange struct {
	start   int
	oldSize int
	newSize int
}

// StepMap отображает позиции старого документа в позиции нового.
type StepMap struct {
	ranges []stepRange
}

// NewStepMap создаёт отображение из троек (начало, старый размер, новый
// размер) в координатах старого документа.
func NewStepMap(triples ...[3]int) *StepMap {
	m := &StepMap{}
	for _, t := range triples {
		m.ranges = append(m.ranges, stepRange{start: t[0], oldSize: t[1], newSize: t[2]})
	}
	return m
}

// identityMap - отображение шага, не меняющего размеры документа.
var identityMap = &StepMap{}

// MapResult - результат отображения позиции.
type MapResult struct {
	Pos int
	// Deleted сообщает, что позиция находилась строго внутри удалённого
	// диапазона.
	Deleted bool
}

// MapResult отображает позицию с учётом стороны assoc: при вставке точно в
// позицию assoc > 0 сдвигает её за вставленное содержимое, assoc < 0
// оставляет перед ним.
func (m *StepMap) MapResult(pos, assoc int) MapResult {
	diff := 0
	for _, r := range m.ranges {
		if r.start > pos {
			break
		}
		end := r.start + r.oldSize
		if pos <= end {
			var side int
			switch {
			case r.oldSize == 0:
				side = assoc
			case pos == r.start:
				side = -1
			case pos == end:
				side = 1
			default:
				side = assoc
			}
			result := r.start + diff
			if side >= 0 {
				result += r.newSize
			}
			return MapResult{Pos: result, Deleted: pos > r.start && pos < end}
		}
		diff += r.newSize - r.oldSize
	}
	return MapResult{Pos: pos + diff}
}

// Map отображает позицию через шаг.
func (m *StepMap) Map(pos, assoc int) int {
	return m.MapResult(pos, assoc).Pos
}

// Mapping - последовательность отображений шагов транзакции.
type Mapping struct {
	Maps []*StepMap
}

// Append добавляет отображение шага.
func (m *Mapping) Append(sm *StepMap) {
	m.Maps = append(m.Maps, sm)
}

// MapResult отображает позицию через все шаги по порядку. Позиция считается
// удалённой, если её удалил хотя бы один шаг.
func (m *Mapping) MapResult(pos, assoc int) MapResult {
	deleted := false
	for _, sm := range m.Maps {
		r := sm.MapResult(pos, assoc)
		pos = r.Pos
		deleted = deleted || r.Deleted
	}
	return MapResult{Pos: pos, Deleted: deleted}
}

// Map отображает позицию через все шаги по порядку.
func (m *Mapping) Map(pos, assoc int) int {
	return m.MapResult(pos, assoc).Pos
}
