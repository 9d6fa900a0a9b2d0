// Пакет tool реализует каталог инструментов редактора: команды,
// колбэки и меню, собранные в именованные палитры с пользовательскими
// настройками видимости и сочетаний клавиш.
//
// Основные возможности:
//   - Закрытое множество видов инструмента: команда, колбэк, меню.
//   - Палитры (тулбар, контекстное меню) с группами инструментов.
//   - Привязки клавиш с защитой от конфликтов: занятая комбинация не
//     перехватывается молча.
//   - Сохранение и загрузка пользовательских настроек.
package tool

import (
	"context"
	"errors"

	"github.com/aisa-it/aipress/editor/action"
)

var (
	// ErrNotRegistered возвращается при обращении к неизвестному
	// инструменту или палитре.
	ErrNotRegistered = errors.New("tool is not registered")
	// ErrKeybindConflict возвращается при попытке занять комбинацию,
	// привязанную к другому инструменту.
	ErrKeybindConflict = errors.New("key combo is already bound")
	// ErrDuplicateTool возвращается при повторной регистрации имени.
	ErrDuplicateTool = errors.New("tool is already registered")
)

// ToolDef - описание инструмента для слоя представления.
type ToolDef struct {
	// Name - уникальный идентификатор инструмента.
	Name string
	// LongName - человекочитаемое название.
	LongName string
	// Icon - имя иконки.
	Icon string
}

// Tool - инструмент каталога. Множество видов закрыто: команда,
// колбэк или меню.
type Tool interface {
	Def() ToolDef
	sealed()
}

// ActionTool - инструмент, исполняющий команду редактирования.
type ActionTool struct {
	ToolDef
	Action action.Action
}

func (t *ActionTool) Def() ToolDef { return t.ToolDef }
func (*ActionTool) sealed()        {}

// CallbackTool - инструмент без собственной команды: нажатие отдаётся
// колбэку слоя представления (диалог выбора файла, эмодзи-панель,
// создание комментария).
type CallbackTool struct {
	ToolDef
	Callback func(ctx context.Context) error
}

func (t *CallbackTool) Def() ToolDef { return t.ToolDef }
func (*CallbackTool) sealed()        {}

// MenuTool - составной инструмент, раскрывающийся в список дочерних.
type MenuTool struct {
	ToolDef
	// Children - имена дочерних инструментов в порядке показа.
	Children []string
}

func (t *MenuTool) Def() ToolDef { return t.ToolDef }
func (*MenuTool) sealed()        {}

// Group - именованная группа инструментов внутри палитры.
type Group struct {
	Name  string
	Tools []string
}

// Palette - упорядоченный набор групп: тулбар, контекстное меню.
type Palette struct {
	ID     string
	Groups []Group
}
