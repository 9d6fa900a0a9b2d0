// Пакет annotation реализует локальный учёт инлайн-комментариев:
// декорации, привязанные к диапазонам документа, с ремапом позиций под
// правками, локальным созданием и удалением и проигрыванием событий от
// сервера.
//
// Основные возможности:
//   - Чистое состояние: каждая операция возвращает новое значение, не
//     трогая старое.
//   - Ремап диапазонов через карты шагов транзакции: вставка на левой
//     границе сдвигает комментарий, а не растягивает его; удаление
//     диапазона схлопывает границы, не уничтожая запись.
//   - Версионированный обмен с сервером: локальные события копятся в
//     очереди неотправленных, подтверждённые отбрасываются по счётчику.
package annotation

import (
	"github.com/gofrs/uuid"

	"github.com/aisa-it/aipress/editor/state"
)

// Comment - содержимое инлайн-комментария.
type Comment struct {
	ID     uuid.UUID
	Author string
	Text   string
}

// Decoration - комментарий, привязанный к диапазону [From, To).
type Decoration struct {
	From    int
	To      int
	Comment Comment
}

// EventType - вид события обмена.
type EventType string

const (
	EventCreate EventType = "create"
	EventDelete EventType = "delete"
)

// Event - событие создания или удаления комментария. Для создания
// диапазон указывает актуальные границы.
type Event struct {
	Type    EventType
	Comment Comment
	From    int
	To      int
}

// MetaKey - ключ метаданных транзакции с локальным действием над
// комментариями.
const MetaKey = "comments"

// LocalAction - локальное действие, вложенное в транзакцию через
// SetMeta(MetaKey, ...). Диапазон создания задаётся в координатах
// документа после применения шагов транзакции.
type LocalAction struct {
	Type    EventType
	Comment Comment
	From    int
	To      int
}

// CommentState - состояние комментариев редактора. Значение
// неизменяемо: Apply и Receive возвращают новое состояние.
type CommentState struct {
	// Version - версия последнего принятого серверного батча.
	Version int
	decos   []Decoration
	unsent  []Event
}

// NewCommentState создаёт пустое состояние первой версии.
func NewCommentState() *CommentState {
	return &CommentState{Version: 1}
}

// Decorations возвращает копию текущих декораций.
func (cs *CommentState) Decorations() []Decoration {
	out := make([]Decoration, len(cs.decos))
	copy(out, cs.decos)
	return out
}

// Apply ремапит декорации через карты шагов транзакции и исполняет
// вложенное локальное действие, если оно есть.
func (cs *CommentState) Apply(tr *state.Transaction) *CommentState {
	next := &CommentState{
		Version: cs.Version,
		decos:   make([]Decoration, len(cs.decos)),
		unsent:  append([]Event(nil), cs.unsent...),
	}
	m := tr.Mapping()
	for i, d := range cs.decos {
		// вставка на границе сдвигает комментарий, не растягивая
		from := m.Map(d.From, 1)
		to := m.Map(d.To, -1)
		if to < from {
			to = from
		}
		next.decos[i] = Decoration{From: from, To: to, Comment: d.Comment}
	}
	if a, ok := tr.GetMeta(MetaKey).(*LocalAction); ok {
		next.applyLocal(a)
	}
	return next
}

func (cs *CommentState) applyLocal(a *LocalAction) {
	switch a.Type {
	case EventCreate:
		cs.decos = append(cs.decos, Decoration{From: a.From, To: a.To, Comment: a.Comment})
		cs.unsent = append(cs.unsent, Event{Type: EventCreate, Comment: a.Comment, From: a.From, To: a.To})
	case EventDelete:
		cs.removeDeco(a.Comment.ID)
		cs.unsent = append(cs.unsent, Event{Type: EventDelete, Comment: a.Comment})
	}
}

func (cs *CommentState) removeDeco(id uuid.UUID) {
	for i, d := range cs.decos {
		if d.Comment.ID == id {
			cs.decos = append(cs.decos[:i:i], cs.decos[i+1:]...)
			return
		}
	}
}

// ReceiveBatch - серверный батч: новая версия, чужие события и число
// подтверждённых локальных событий.
type ReceiveBatch struct {
	Version           int
	Events            []Event
	AcknowledgedCount int
}

// Receive применяет серверный батч. Операция чистая и идемпотентная:
// батч уже принятой версии не меняет состояния.
func (cs *CommentState) Receive(batch ReceiveBatch) *CommentState {
	if batch.Version <= cs.Version {
		return cs
	}
	next := &CommentState{
		Version: batch.Version,
		decos:   append([]Decoration(nil), cs.decos...),
	}
	if batch.AcknowledgedCount < len(cs.unsent) {
		next.unsent = append([]Event(nil), cs.unsent[batch.AcknowledgedCount:]...)
	}
	for _, ev := range batch.Events {
		switch ev.Type {
		case EventCreate:
			next.removeDeco(ev.Comment.ID)
			next.decos = append(next.decos, Decoration{From: ev.From, To: ev.To, Comment: ev.Comment})
		case EventDelete:
			next.removeDeco(ev.Comment.ID)
		}
	}
	return next
}

// UnsentEvents возвращает неотправленные события с актуальными после
// всех ремапов диапазонами.
func (cs *CommentState) UnsentEvents() []Event {
	out := make([]Event, 0, len(cs.unsent))
	for _, ev := range cs.unsent {
		if ev.Type == EventCreate {
			if d, ok := cs.FindComment(ev.Comment.ID); ok {
				ev.From, ev.To = d.From, d.To
			}
		}
		out = append(out, ev)
	}
	return out
}

// FindComment возвращает декорацию комментария по идентификатору.
func (cs *CommentState) FindComment(id uuid.UUID) (Decoration, bool) {
	for _, d := range cs.decos {
		if d.Comment.ID == id {
			return d, true
		}
	}
	return Decoration{}, false
}

// CommentsAt возвращает декорации, покрывающие позицию.
func (cs *CommentState) CommentsAt(pos int) []Decoration {
	var out []Decoration
	for _, d := range cs.decos {
		if d.From <= pos && pos < d.To || d.From == d.To && d.From == pos {
			out = append(out, d)
		}
	}
	return out
}
