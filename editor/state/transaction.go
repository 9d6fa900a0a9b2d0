package state

import (
	"github.com/aisa-it/aipress/editor/model"
)

// Transaction накапливает шаги правок над снимком состояния. Каждый
// успешно применённый шаг обновляет текущий документ транзакции;
// применение готовой транзакции к снимку выполняет EditorState.Apply.
type Transaction struct {
	Doc       *model.Node
	Selection Selection

	before      *EditorState
	steps       []Step
	mapping     Mapping
	storedMarks []*model.Mark
	meta        map[string]any
	selSet      bool
}

// Steps возвращает применённые шаги транзакции.
func (tr *Transaction) Steps() []Step { return tr.steps }

// Mapping возвращает отображение позиций через все шаги транзакции.
func (tr *Transaction) Mapping() *Mapping { return &tr.mapping }

// DocChanged сообщает, меняет ли транзакция документ.
func (tr *Transaction) DocChanged() bool { return len(tr.steps) > 0 }

// Before возвращает снимок, над которым построена транзакция.
func (tr *Transaction) Before() *EditorState { return tr.before }

// Step применяет шаг к текущему документу транзакции. При ошибке
// транзакция остаётся в прежнем состоянии.
func (tr *Transaction) Step(s Step) error {
	newDoc, err := s.Apply(tr.Doc)
	if err != nil {
		return err
	}
	tr.Doc = newDoc
	tr.steps = append(tr.steps, s)
	sm := s.Map()
	tr.mapping.Append(sm)
	if !tr.selSet {
		tr.Selection = Selection{
			Anchor: sm.Map(tr.Selection.Anchor, -1),
			Head:   sm.Map(tr.Selection.Head, -1),
		}
	}
	return nil
}

// Replace заменяет диапазон содержимым фрагмента.
func (tr *Transaction) Replace(from, to int, content *model.Fragment) error {
	return tr.Step(&ReplaceStep{From: from, To: to, Content: content})
}

// ReplaceSelection заменяет текущее выделение содержимым фрагмента и
// ставит курсор после него.
func (tr *Transaction) ReplaceSelection(content *model.Fragment) error {
	from, to := tr.Selection.From(), tr.Selection.To()
	if err := tr.Replace(from, to, content); err != nil {
		return err
	}
	return tr.SetSelection(Cursor(from + content.Size()))
}

// InsertText вставляет текст на месте выделения, применяя отложенные
// марки либо марки позиции курсора.
func (tr *Transaction) InsertText(text string) error {
	marks := tr.storedMarks
	if marks == nil {
		if r, err := tr.Doc.Resolve(tr.Selection.From()); err == nil {
			marks = r.Marks()
		}
	}
	node := tr.before.Schema.Text(text, marks...)
	return tr.ReplaceSelection(model.NewFragment(node))
}

// DeleteSelection удаляет содержимое выделения.
func (tr *Transaction) DeleteSelection() error {
	if tr.Selection.Empty() {
		return nil
	}
	return tr.ReplaceSelection(model.EmptyFragment)
}

// AddMark накладывает марку на диапазон.
func (tr *Transaction) AddMark(from, to int, mark *model.Mark) error {
	return tr.Step(&AddMarkStep{From: from, To: to, Mark: mark})
}

// RemoveMark снимает марку с диапазона.
func (tr *Transaction) RemoveMark(from, to int, mark *model.Mark) error {
	return tr.Step(&RemoveMarkStep{From: from, To: to, Mark: mark})
}

// SetNodeAttribute устанавливает атрибут ноды в позиции pos.
func (tr *Transaction) SetNodeAttribute(pos int, name string, value any) error {
	return tr.Step(&AttrStep{Pos: pos, Name: name, Value: value})
}

// SetBlockType меняет тип текстовых блоков диапазона.
func (tr *Transaction) SetBlockType(from, to int, typ *model.NodeType, attrs map[string]any) error {
	return tr.Step(&BlockTypeStep{From: from, To: to, Type: typ, Attrs: attrs})
}

// Wrap оборачивает блоки диапазона в новую ноду.
func (tr *Transaction) Wrap(from, to int, typ *model.NodeType, attrs map[string]any) error {
	return tr.Step(&WrapStep{From: from, To: to, Type: typ, Attrs: attrs})
}

// Lift поднимает блоки диапазона из их контейнера.
func (tr *Transaction) Lift(from, to int) error {
	return tr.Step(&LiftStep{From: from, To: to})
}

// SetSelection явно устанавливает выделение; дальнейшие шаги перестают
// отображать его автоматически.
func (tr *Transaction) SetSelection(sel Selection) error {
	tr.Selection = sel
	tr.selSet = true
	return nil
}

// SetStoredMarks устанавливает отложенные марки.
func (tr *Transaction) SetStoredMarks(marks []*model.Mark) {
	tr.storedMarks = marks
}

// AddStoredMark добавляет отложенную марку.
func (tr *Transaction) AddStoredMark(mark *model.Mark) {
	base := tr.storedMarks
	if base == nil {
		base = tr.before.MarksAt()
	}
	tr.storedMarks = mark.AddToSet(base)
}

// RemoveStoredMark снимает отложенную марку данного типа. Результат
// всегда не nil: пустой набор тоже подавляет марки позиции курсора.
func (tr *Transaction) RemoveStoredMark(typ *model.MarkType) {
	base := tr.storedMarks
	if base == nil {
		base = tr.before.MarksAt()
	}
	tr.storedMarks = model.RemoveMarkType(base, typ)
	if tr.storedMarks == nil {
		tr.storedMarks = []*model.Mark{}
	}
}

// SetMeta прикладывает к транзакции метаданные, не меняющие документ.
func (tr *Transaction) SetMeta(key string, value any) {
	if tr.meta == nil {
		tr.meta = map[string]any{}
	}
	tr.meta[key] = value
}

// GetMeta возвращает метаданные транзакции по ключу.
func (tr *Transaction) GetMeta(key string) any {
	return tr.meta[key]
}
