// Пакет state реализует снимок состояния редактора и транзакции над ним.
// Снимок объединяет документ, выделение и отложенные марки; транзакция -
// упорядоченный список примитивных правок, дающий новый снимок как чистую
// функцию от старого.
//
// Основные возможности:
//   - Выделение с якорем и головой в плоских позициях документа.
//   - Примитивные шаги правок: замена диапазона, установка атрибута,
//     наложение и снятие марок, оборачивание и подъём блоков, смена типа
//     блока.
//   - Отображение позиций через выполненные шаги (remap) для якорей
//     выделения и внешних декораций.
//   - Метаданные транзакции для сигналов, не меняющих документ
//     (используются механизмом аннотаций).
package state

import (
	"github.com/aisa-it/aipress/editor/model"
)

// Selection - диапазон выделения с направлением: Anchor - неподвижный
// конец, Head - подвижный. При Anchor == Head выделение схлопнуто в курсор.
type Selection struct {
	Anchor int
	Head   int
}

// NewSelection создаёт выделение.
func NewSelection(anchor, head int) Selection {
	return Selection{Anchor: anchor, Head: head}
}

// Cursor создаёт схлопнутое выделение.
func Cursor(pos int) Selection {
	return Selection{Anchor: pos, Head: pos}
}

// From возвращает меньшую границу выделения.
func (s Selection) From() int { return min(s.Anchor, s.Head) }

// To возвращает большую границу выделения.
func (s Selection) To() int { return max(s.Anchor, s.Head) }

// Empty сообщает, схлопнуто ли выделение.
func (s Selection) Empty() bool { return s.Anchor == s.Head }

// Map отображает границы выделения через mapping.
func (s Selection) Map(m *Mapping) Selection {
	return Selection{Anchor: m.Map(s.Anchor, 1), Head: m.Map(s.Head, 1)}
}

// EditorState - неизменяемый снимок состояния редактора.
type EditorState struct {
	Schema    *model.Schema
	Doc       *model.Node
	Selection Selection
	// StoredMarks - марки, которые будут применены к следующему введённому
	// тексту; заданы только когда пользователь переключил форматирование
	// на схлопнутом выделении.
	StoredMarks []*model.Mark
}

// NewEditorState создаёт снимок для документа с курсором в его начале.
func NewEditorState(schema *model.Schema, doc *model.Node) *EditorState {
	return &EditorState{Schema: schema, Doc: doc, Selection: Cursor(0)}
}

// Tr создаёт пустую транзакцию над снимком.
func (s *EditorState) Tr() *Transaction {
	return &Transaction{
		before:      s,
		Doc:         s.Doc,
		Selection:   s.Selection,
		storedMarks: s.StoredMarks,
	}
}

// Apply применяет транзакцию и возвращает новый снимок. Исходный снимок
// не изменяется.
func (s *EditorState) Apply(tr *Transaction) *EditorState {
	return &EditorState{
		Schema:      s.Schema,
		Doc:         tr.Doc,
		Selection:   tr.Selection,
		StoredMarks: tr.storedMarks,
	}
}

// MarksAt возвращает марки, действующие в текущем выделении: отложенные
// марки либо марки в позиции курсора.
func (s *EditorState) MarksAt() []*model.Mark {
	if s.StoredMarks != nil {
		return s.StoredMarks
	}
	r, err := s.Doc.Resolve(s.Selection.From())
	if err != nil {
		return nil
	}
	return r.Marks()
}
