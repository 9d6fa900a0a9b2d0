package action

import (
	"context"
	"fmt"

	"github.com/aisa-it/aipress/editor/model"
	"github.com/aisa-it/aipress/editor/state"
)

// InsertImage вставляет изображение на месте выделения.
type InsertImage struct {
	image *model.NodeType
}

// NewInsertImage создаёт команду.
func NewInsertImage(schema *model.Schema) (*InsertImage, error) {
	image := schema.NodeType("image")
	if image == nil {
		return nil, fmt.Errorf("schema has no node type %q", "image")
	}
	return &InsertImage{image: image}, nil
}

func (a *InsertImage) Execute(ctx context.Context, st *state.EditorState, params Params) (*state.Transaction, error) {
	attrs := map[string]any{
		"src":   params.String("src"),
		"alt":   params.String("alt"),
		"title": params.String("title"),
	}
	if h := params.Int("maxHeight"); h > 0 {
		attrs["maxHeight"] = h
	}
	node, err := a.image.CreateChecked(attrs)
	if err != nil {
		return nil, err
	}
	tr := st.Tr()
	if err := tr.ReplaceSelection(model.NewFragment(node)); err != nil {
		return nil, err
	}
	return tr, nil
}

func (a *InsertImage) IsActive(st *state.EditorState) bool { return false }

func (a *InsertImage) IsApplicable(st *state.EditorState) bool {
	return textblockParent(st.Doc, st.Selection.From())
}

func (a *InsertImage) DefaultKeyCombo() string { return "" }

// InsertEmbed вставляет блок встраиваемого контента после блока с
// курсором.
type InsertEmbed struct {
	embed *model.NodeType
}

// NewInsertEmbed создаёт команду.
func NewInsertEmbed(schema *model.Schema) (*InsertEmbed, error) {
	embed := schema.NodeType("embed")
	if embed == nil {
		return nil, fmt.Errorf("schema has no node type %q", "embed")
	}
	return &InsertEmbed{embed: embed}, nil
}

func (a *InsertEmbed) Execute(ctx context.Context, st *state.EditorState, params Params) (*state.Transaction, error) {
	node, err := a.embed.CreateChecked(map[string]any{
		"type":      params.String("type"),
		"contentID": params.String("contentID"),
	})
	if err != nil {
		return nil, err
	}
	r, err := st.Doc.Resolve(st.Selection.From())
	if err != nil {
		return nil, err
	}
	pos := st.Selection.From()
	if r.Depth() >= 1 {
		pos = r.After(1)
	}
	tr := st.Tr()
	if err := tr.Replace(pos, pos, model.NewFragment(node)); err != nil {
		return nil, err
	}
	return tr, nil
}

func (a *InsertEmbed) IsActive(st *state.EditorState) bool { return false }

func (a *InsertEmbed) IsApplicable(st *state.EditorState) bool { return true }

func (a *InsertEmbed) DefaultKeyCombo() string { return "" }

// InsertFootnote вставляет сноску на месте курсора. Индексы монотонно
// растут по документу и не переиспользуются после удаления.
type InsertFootnote struct {
	footnote *model.NodeType
}

// NewInsertFootnote создаёт команду.
func NewInsertFootnote(schema *model.Schema) (*InsertFootnote, error) {
	footnote := schema.NodeType("footnote")
	if footnote == nil {
		return nil, fmt.Errorf("schema has no node type %q", "footnote")
	}
	return &InsertFootnote{footnote: footnote}, nil
}

func (a *InsertFootnote) Execute(ctx context.Context, st *state.EditorState, params Params) (*state.Transaction, error) {
	index := 0
	st.Doc.NodesBetween(0, st.Doc.Content.Size(), func(n *model.Node, pos int) bool {
		if n.Type == a.footnote {
			if i, ok := n.Attrs["index"].(int); ok && i > index {
				index = i
			}
		}
		return true
	})
	node, err := a.footnote.CreateChecked(map[string]any{
		"index": index + 1,
		"text":  params.String("text"),
	})
	if err != nil {
		return nil, err
	}
	tr := st.Tr()
	if err := tr.ReplaceSelection(model.NewFragment(node)); err != nil {
		return nil, err
	}
	return tr, nil
}

func (a *InsertFootnote) IsActive(st *state.EditorState) bool { return false }

func (a *InsertFootnote) IsApplicable(st *state.EditorState) bool {
	return textblockParent(st.Doc, st.Selection.From())
}

func (a *InsertFootnote) DefaultKeyCombo() string { return "" }

// InsertText вставляет текст на месте выделения с учётом отложенных
// марок курсора.
type InsertText struct{}

// NewInsertText создаёт команду.
func NewInsertText() *InsertText { return &InsertText{} }

func (a *InsertText) Execute(ctx context.Context, st *state.EditorState, params Params) (*state.Transaction, error) {
	text := params.String("text")
	if text == "" {
		return nil, nil
	}
	tr := st.Tr()
	if err := tr.InsertText(text); err != nil {
		return nil, err
	}
	return tr, nil
}

func (a *InsertText) IsActive(st *state.EditorState) bool { return false }

func (a *InsertText) IsApplicable(st *state.EditorState) bool {
	return textblockParent(st.Doc, st.Selection.From())
}

func (a *InsertText) DefaultKeyCombo() string { return "" }

// DeleteSelection удаляет выделенный диапазон.
type DeleteSelection struct{}

// NewDeleteSelection создаёт команду.
func NewDeleteSelection() *DeleteSelection { return &DeleteSelection{} }

func (a *DeleteSelection) Execute(ctx context.Context, st *state.EditorState, params Params) (*state.Transaction, error) {
	if st.Selection.Empty() {
		return nil, nil
	}
	tr := st.Tr()
	if err := tr.DeleteSelection(); err != nil {
		return nil, err
	}
	return tr, nil
}

func (a *DeleteSelection) IsActive(st *state.EditorState) bool { return false }

func (a *DeleteSelection) IsApplicable(st *state.EditorState) bool {
	return !st.Selection.Empty()
}

func (a *DeleteSelection) DefaultKeyCombo() string { return "" }
