// Пакет editor собирает ядро редактора документов: схему, кодек
// разметки, команды, каталог инструментов и учёт комментариев - и
// выставляет слою представления точки входа исполнения, сериализации и
// привязок клавиш.
//
// Основные возможности:
//   - Готовые сборки: редактор статьи с полной схемой и редактор
//     комментария с урезанной.
//   - Исполнение инструмента по имени или сочетанию клавиш: сбой
//     команды логируется и вырождается в no-op, документ не трогается.
//   - Сериализация и разбор документа в текст диалекта.
//   - Настройки пользователя: видимость инструментов и привязки
//     клавиш с сохранением в хранилище.
package editor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofrs/uuid"

	"github.com/aisa-it/aipress/editor/action"
	"github.com/aisa-it/aipress/editor/annotation"
	"github.com/aisa-it/aipress/editor/markdown"
	"github.com/aisa-it/aipress/editor/model"
	"github.com/aisa-it/aipress/editor/state"
	"github.com/aisa-it/aipress/editor/tool"
)

// View - слой представления над редактором: снимки состояния он
// читает, транзакции присылает через Dispatch.
type View interface {
	GetSnapshot() *state.EditorState
	Dispatch(tr *state.Transaction)
}

// Callbacks - колбэки слоя представления для инструментов без
// собственной команды. Нулевой колбэк делает инструмент бездействующим.
type Callbacks struct {
	ImageHotlink      func(ctx context.Context) error
	ImageUpload       func(ctx context.Context) error
	ImageFromCMS      func(ctx context.Context) error
	ImageEdit         func(ctx context.Context) error
	EmbedRequest      func(ctx context.Context) error
	EmojiRequest      func(ctx context.Context) error
	AnnotationRequest func(ctx context.Context) error
}

// Options - зависимости редактора. Все внедряются снаружи, глобального
// состояния нет.
type Options struct {
	Clipboard   action.Clipboard
	History     action.HistoryProvider
	Preferences tool.PreferenceStore
	UserID      uuid.UUID
	Callbacks   Callbacks
	Logger      *slog.Logger
}

// Editor - сессия редактирования одного документа.
type Editor struct {
	schema   *model.Schema
	parser   *markdown.Parser
	registry *tool.Registry
	state    *state.EditorState
	comments *annotation.CommentState
	opts     Options
	logger   *slog.Logger
}

func newEditor(schema *model.Schema, opts Options) *Editor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	doc := schema.TopType().Create(nil, schema.NodeType("paragraph").Create(nil))
	return &Editor{
		schema:   schema,
		parser:   markdown.NewParser(schema),
		registry: tool.NewRegistry(),
		state:    state.NewEditorState(schema, doc),
		comments: annotation.NewCommentState(),
		opts:     opts,
		logger:   logger,
	}
}

// Schema возвращает схему документа сессии.
func (e *Editor) Schema() *model.Schema { return e.schema }

// Registry возвращает каталог инструментов сессии.
func (e *Editor) Registry() *tool.Registry { return e.registry }

// GetSnapshot возвращает текущий снимок состояния.
func (e *Editor) GetSnapshot() *state.EditorState { return e.state }

// Dispatch применяет транзакцию к состоянию сессии. Транзакция,
// построенная на устаревшем снимке, отбрасывается: из наложившихся
// применяется последняя собранная на актуальном состоянии.
func (e *Editor) Dispatch(tr *state.Transaction) {
	if tr == nil {
		return
	}
	if tr.Before() != e.state {
		e.logger.Warn("Dropping transaction built on a stale snapshot")
		return
	}
	e.state = e.state.Apply(tr)
	e.comments = e.comments.Apply(tr)
}

// SetSelection переставляет выделение сессии.
func (e *Editor) SetSelection(anchor, head int) error {
	tr := e.state.Tr()
	if err := tr.SetSelection(state.NewSelection(anchor, head)); err != nil {
		return err
	}
	e.Dispatch(tr)
	return nil
}

// ExecuteAction исполняет инструмент по имени. Сбой команды не роняет
// сессию: он логируется, документ остаётся прежним.
func (e *Editor) ExecuteAction(ctx context.Context, name string, params action.Params) error {
	t, err := e.registry.GetTool(name)
	if err != nil {
		return err
	}
	switch tt := t.(type) {
	case *tool.ActionTool:
		e.executeAction(ctx, name, tt.Action, params)
		return nil
	case *tool.CallbackTool:
		if tt.Callback == nil {
			return nil
		}
		return tt.Callback(ctx)
	case *tool.MenuTool:
		return fmt.Errorf("tool %s is a menu and cannot be executed", name)
	}
	return nil
}

func (e *Editor) executeAction(ctx context.Context, name string, a action.Action, params action.Params) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Action panicked", "tool", name, "panic", r)
		}
	}()
	if a == nil {
		return
	}
	tr, err := a.Execute(ctx, e.state, params)
	if err != nil {
		e.logger.Warn("Action failed", "tool", name, "error", err)
		return
	}
	e.Dispatch(tr)
}

// ExecuteKeybind исполняет инструмент, привязанный к комбинации.
// Свободная комбинация - no-op.
func (e *Editor) ExecuteKeybind(ctx context.Context, combo string, params action.Params) error {
	t, ok := e.registry.GetKeybind(combo)
	if !ok {
		return nil
	}
	return e.ExecuteAction(ctx, t.Def().Name, params)
}

// SerializeDocument сериализует документ сессии. Результат никогда не
// пуст.
func (e *Editor) SerializeDocument() string {
	return markdown.Serialize(e.state.Doc)
}

// ParseDocument загружает документ из текста диалекта, сбрасывая
// выделение и комментарии.
func (e *Editor) ParseDocument(src string) {
	doc := e.parser.Parse(src)
	e.state = state.NewEditorState(e.schema, doc)
	e.comments = annotation.NewCommentState()
}

// Comments возвращает текущее состояние комментариев.
func (e *Editor) Comments() *annotation.CommentState { return e.comments }

// AddComment создаёт комментарий на диапазоне и возвращает его
// идентификатор.
func (e *Editor) AddComment(from, to int, author, text string) (uuid.UUID, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}
	tr := e.state.Tr()
	tr.SetMeta(annotation.MetaKey, &annotation.LocalAction{
		Type:    annotation.EventCreate,
		Comment: annotation.Comment{ID: id, Author: author, Text: text},
		From:    from,
		To:      to,
	})
	e.Dispatch(tr)
	return id, nil
}

// DeleteComment удаляет локальный комментарий.
func (e *Editor) DeleteComment(id uuid.UUID) {
	d, ok := e.comments.FindComment(id)
	if !ok {
		return
	}
	tr := e.state.Tr()
	tr.SetMeta(annotation.MetaKey, &annotation.LocalAction{
		Type:    annotation.EventDelete,
		Comment: d.Comment,
	})
	e.Dispatch(tr)
}

// ReceiveComments применяет серверный батч событий комментариев.
func (e *Editor) ReceiveComments(batch annotation.ReceiveBatch) {
	e.comments = e.comments.Receive(batch)
}

// LoadPreferences применяет сохранённые настройки пользователя.
func (e *Editor) LoadPreferences() error {
	if e.opts.Preferences == nil {
		return nil
	}
	return e.registry.LoadPreferences(e.opts.Preferences, e.opts.UserID)
}

// SavePreferences сохраняет текущие настройки пользователя.
func (e *Editor) SavePreferences() error {
	if e.opts.Preferences == nil {
		return nil
	}
	return e.registry.SavePreferences(e.opts.Preferences, e.opts.UserID)
}
