package action

import (
	"context"

	"github.com/aisa-it/aipress/editor/state"
)

// HistoryProvider - внедряемый движок истории правок. Редактор не
// ведёт историю сам: ему достаточно транзакций отката и повтора.
type HistoryProvider interface {
	Undo(st *state.EditorState) (*state.Transaction, error)
	Redo(st *state.EditorState) (*state.Transaction, error)
	CanUndo() bool
	CanRedo() bool
}

// Undo откатывает последнюю правку через движок истории.
type Undo struct {
	history HistoryProvider
}

// NewUndo создаёт команду.
func NewUndo(history HistoryProvider) *Undo {
	return &Undo{history: history}
}

func (a *Undo) Execute(ctx context.Context, st *state.EditorState, params Params) (*state.Transaction, error) {
	if a.history == nil || !a.history.CanUndo() {
		return nil, nil
	}
	return a.history.Undo(st)
}

func (a *Undo) IsActive(st *state.EditorState) bool { return false }

func (a *Undo) IsApplicable(st *state.EditorState) bool {
	return a.history != nil && a.history.CanUndo()
}

func (a *Undo) DefaultKeyCombo() string { return "ctrl_z" }

// Redo повторяет откаченную правку через движок истории.
type Redo struct {
	history HistoryProvider
}

// NewRedo создаёт команду.
func NewRedo(history HistoryProvider) *Redo {
	return &Redo{history: history}
}

func (a *Redo) Execute(ctx context.Context, st *state.EditorState, params Params) (*state.Transaction, error) {
	if a.history == nil || !a.history.CanRedo() {
		return nil, nil
	}
	return a.history.Redo(st)
}

func (a *Redo) IsActive(st *state.EditorState) bool { return false }

func (a *Redo) IsApplicable(st *state.EditorState) bool {
	return a.history != nil && a.history.CanRedo()
}

func (a *Redo) DefaultKeyCombo() string { return "ctrl_y" }
