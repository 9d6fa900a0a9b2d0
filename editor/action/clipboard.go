package action

import (
	"context"
	"log/slog"

	"github.com/aisa-it/aipress/editor/model"
	"github.com/aisa-it/aipress/editor/state"
)

// ClipboardMIME - метка формата фрагментов документа в буфере обмена.
const ClipboardMIME = "web application/json"

// Clipboard - внедряемый доступ к буферу обмена. Реализация приходит
// из слоя представления.
type Clipboard interface {
	Write(mime string, data []byte) error
	Read(mime string) ([]byte, error)
}

// Copy кладёт выделенный фрагмент в буфер обмена как JSON. Отказ
// буфера не ошибка команды: он логируется, транзакции не будет.
type Copy struct {
	clipboard Clipboard
}

// NewCopy создаёт команду.
func NewCopy(clipboard Clipboard) *Copy {
	return &Copy{clipboard: clipboard}
}

func (a *Copy) Execute(ctx context.Context, st *state.EditorState, params Params) (*state.Transaction, error) {
	sel := st.Selection
	if sel.Empty() || a.clipboard == nil {
		return nil, nil
	}
	slice := st.Doc.Cut(sel.From(), sel.To())
	data, err := model.MarshalFragment(slice.Content)
	if err != nil {
		slog.Warn("Failed to marshal clipboard fragment", "error", err)
		return nil, nil
	}
	if err := a.clipboard.Write(ClipboardMIME, data); err != nil {
		slog.Warn("Clipboard write failed", "error", err)
	}
	return nil, nil
}

func (a *Copy) IsActive(st *state.EditorState) bool { return false }

func (a *Copy) IsApplicable(st *state.EditorState) bool {
	return a.clipboard != nil && !st.Selection.Empty()
}

func (a *Copy) DefaultKeyCombo() string { return "" }

// Paste вставляет фрагмент из буфера обмена на месте выделения.
// Нечитаемый или чужой формат логируется и игнорируется.
type Paste struct {
	clipboard Clipboard
}

// NewPaste создаёт команду.
func NewPaste(clipboard Clipboard) *Paste {
	return &Paste{clipboard: clipboard}
}

func (a *Paste) Execute(ctx context.Context, st *state.EditorState, params Params) (*state.Transaction, error) {
	if a.clipboard == nil {
		return nil, nil
	}
	data, err := a.clipboard.Read(ClipboardMIME)
	if err != nil {
		slog.Warn("Clipboard read failed", "error", err)
		return nil, nil
	}
	fragment, err := model.UnmarshalFragment(st.Schema, data)
	if err != nil {
		slog.Warn("Clipboard fragment rejected by schema", "error", err)
		return nil, nil
	}
	if fragment.Count() == 0 {
		return nil, nil
	}
	tr := st.Tr()
	if err := tr.ReplaceSelection(fragment); err != nil {
		slog.Warn("Clipboard fragment does not fit at selection", "error", err)
		return nil, nil
	}
	return tr, nil
}

func (a *Paste) IsActive(st *state.EditorState) bool { return false }

func (a *Paste) IsApplicable(st *state.EditorState) bool { return a.clipboard != nil }

func (a *Paste) DefaultKeyCombo() string { return "" }
