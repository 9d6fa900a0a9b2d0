package state

import (
	"github.com/aisa-it/aipress/editor/model"
)

// Step - примитивная правка документа. Применение шага либо возвращает
// новый документ, либо ошибку, если шаг неприменим к данному документу.
type Step interface {
	Apply(doc *model.Node) (*model.Node, error)

	// Map возвращает отображение позиций, произведённое шагом. Вызывается
	// только после успешного Apply.
	Map() *StepMap
}

// ReplaceStep заменяет диапазон документа содержимым фрагмента.
type ReplaceStep struct {
	From, To int
	Content  *model.Fragment
}

func (s *ReplaceStep) Apply(doc *model.Node) (*model.Node, error) {
	return doc.Replace(s.From, s.To, s.Content)
}

func (s *ReplaceStep) Map() *StepMap {
	return NewStepMap([3]int{s.From, s.To - s.From, s.Content.Size()})
}

// AttrStep устанавливает атрибут ноды, начинающейся в позиции Pos.
type AttrStep struct {
	Pos   int
	Name  string
	Value any
}

func (s *AttrStep) Apply(doc *model.Node) (*model.Node, error) {
	return doc.SetNodeAttribute(s.Pos, s.Name, s.Value)
}

func (s *AttrStep) Map() *StepMap { return identityMap }

// AddMarkStep накладывает марку на текст диапазона.
type AddMarkStep struct {
	From, To int
	Mark     *model.Mark
}

func (s *AddMarkStep) Apply(doc *model.Node) (*model.Node, error) {
	return doc.ApplyMark(s.From, s.To, s.Mark, true)
}

func (s *AddMarkStep) Map() *StepMap { return identityMap }

// RemoveMarkStep снимает марку с текста диапазона.
type RemoveMarkStep struct {
	From, To int
	Mark     *model.Mark
}

func (s *RemoveMarkStep) Apply(doc *model.Node) (*model.Node, error) {
	return doc.ApplyMark(s.From, s.To, s.Mark, false)
}

func (s *RemoveMarkStep) Map() *StepMap { return identityMap }

// BlockTypeStep меняет тип текстовых блоков, пересекающих диапазон.
type BlockTypeStep struct {
	From, To int
	Type     *model.NodeType
	Attrs    map[string]any
}

func (s *BlockTypeStep) Apply(doc *model.Node) (*model.Node, error) {
	return doc.SetBlockType(s.From, s.To, s.Type, s.Attrs)
}

func (s *BlockTypeStep) Map() *StepMap { return identityMap }

// WrapStep оборачивает блоки, покрывающие диапазон, в новую ноду.
type WrapStep struct {
	From, To int
	Type     *model.NodeType
	Attrs    map[string]any

	wrapStart, wrapEnd int
}

func (s *WrapStep) Apply(doc *model.Node) (*model.Node, error) {
	newDoc, start, end, err := doc.Wrap(s.From, s.To, s.Type, s.Attrs)
	if err != nil {
		return nil, err
	}
	s.wrapStart, s.wrapEnd = start, end
	return newDoc, nil
}

func (s *WrapStep) Map() *StepMap {
	// Открывающий токен вставляется перед диапазоном, закрывающий - после.
	return NewStepMap([3]int{s.wrapStart, 0, 1}, [3]int{s.wrapEnd, 0, 1})
}

// LiftStep поднимает блоки диапазона из их контейнера на уровень выше.
type LiftStep struct {
	From, To int

	result *model.LiftResult
	before int
	after  int
}

func (s *LiftStep) Apply(doc *model.Node) (*model.Node, error) {
	result, err := doc.Lift(s.From, s.To)
	if err != nil {
		return nil, err
	}
	s.result = result
	// Позиции токенов контейнера в старом документе.
	s.before = result.Start - 1
	s.after = result.End
	return result.Doc, nil
}

func (s *LiftStep) Map() *StepMap {
	// Без разделения контейнера его токены удаляются по краям диапазона;
	// при разделении на месте края появляется токен новой части.
	var triples [][3]int
	if s.result.SplitBefore {
		triples = append(triples, [3]int{s.result.Start, 0, 1})
	} else {
		triples = append(triples, [3]int{s.before, 1, 0})
	}
	if s.result.SplitAfter {
		triples = append(triples, [3]int{s.result.End, 0, 1})
	} else {
		triples = append(triples, [3]int{s.after, 1, 0})
	}
	return NewStepMap(triples...)
}
