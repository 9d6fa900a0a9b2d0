package editor

import (
	"context"
	"fmt"

	"github.com/aisa-it/aipress/editor/action"
	"github.com/aisa-it/aipress/editor/schemas"
	"github.com/aisa-it/aipress/editor/tool"
)

// Идентификаторы палитр.
const (
	PaletteToolbar     = "toolbar"
	PaletteContextMenu = "context-menu"
)

// NewArticleEditor собирает редактор статьи: полная схема, все
// инструменты и палитры.
func NewArticleEditor(opts Options) (*Editor, error) {
	schema, err := schemas.NewArticleSchema()
	if err != nil {
		return nil, err
	}
	e := newEditor(schema, opts)
	if err := e.registerCommonTools(); err != nil {
		return nil, err
	}
	if err := e.registerMediaTools(); err != nil {
		return nil, err
	}
	e.registry.RegisterPalette(&tool.Palette{
		ID: PaletteToolbar,
		Groups: []tool.Group{
			{Name: "History", Tools: []string{"Undo", "Redo"}},
			{Name: "Formatting", Tools: []string{
				"ToggleBold", "ToggleItalic", "ToggleUnderline", "ToggleInlineCode",
				"SetLink", "formatting.alignment.menu",
			}},
			{Name: "Sectioning", Tools: []string{
				"SetHeading.ID.1", "SetHeading.ID.2", "SetHeading.ID.3",
				"SetHeading.ID.4", "SetHeading.ID.5", "SetHeading.ID.6",
				"MakeQuote", "InsertCodeBlock", "InsertHorizontalRule",
			}},
			{Name: "Lists", Tools: []string{"ToggleBulletList", "ToggleNumberedList"}},
			{Name: "Media", Tools: []string{
				"media.image", "media.embed.request", "media.emoji.request",
			}},
			{Name: "Widgets", Tools: []string{
				"widgets.note.menu", "InsertFootnote", "annotation.request",
			}},
		},
	})
	e.registry.RegisterPalette(&tool.Palette{
		ID: PaletteContextMenu,
		Groups: []tool.Group{
			{Name: "Clipboard", Tools: []string{"ClipboardCopy", "ClipboardPaste"}},
			{Name: "Formatting", Tools: []string{
				"ToggleBold", "ToggleItalic", "ToggleUnderline", "SetLink",
			}},
			{Name: "Widgets", Tools: []string{"annotation.request"}},
		},
	})
	return e, nil
}

// NewCommentEditor собирает редактор комментария: урезанная схема без
// изображений, сносок и встраиваемого контента.
func NewCommentEditor(opts Options) (*Editor, error) {
	schema, err := schemas.NewCommentSchema()
	if err != nil {
		return nil, err
	}
	e := newEditor(schema, opts)
	if err := e.registerCommonTools(); err != nil {
		return nil, err
	}
	if err := e.registerCallback("media.emoji.request", "Эмодзи", "emoji", e.opts.Callbacks.EmojiRequest); err != nil {
		return nil, err
	}
	e.registry.RegisterPalette(&tool.Palette{
		ID: PaletteToolbar,
		Groups: []tool.Group{
			{Name: "History", Tools: []string{"Undo", "Redo"}},
			{Name: "Formatting", Tools: []string{
				"ToggleBold", "ToggleItalic", "ToggleUnderline", "ToggleInlineCode", "SetLink",
			}},
			{Name: "Sectioning", Tools: []string{"MakeQuote", "InsertCodeBlock"}},
			{Name: "Lists", Tools: []string{"ToggleBulletList", "ToggleNumberedList"}},
			{Name: "Widgets", Tools: []string{"widgets.note.menu", "media.emoji.request"}},
		},
	})
	e.registry.RegisterPalette(&tool.Palette{
		ID: PaletteContextMenu,
		Groups: []tool.Group{
			{Name: "Clipboard", Tools: []string{"ClipboardCopy", "ClipboardPaste"}},
			{Name: "Formatting", Tools: []string{"ToggleBold", "ToggleItalic", "ToggleUnderline"}},
		},
	})
	return e, nil
}

// registerCommonTools регистрирует инструменты, общие для обеих сборок.
func (e *Editor) registerCommonTools() error {
	markActions := []struct {
		id, long, icon, mark, combo string
	}{
		{"ToggleBold", "Жирный", "bold", "strong", "ctrl_b"},
		{"ToggleItalic", "Курсив", "italic", "em", "ctrl_i"},
		{"ToggleUnderline", "Подчёркнутый", "underline", "underline", "ctrl_u"},
		{"ToggleInlineCode", "Код", "code", "code", ""},
	}
	for _, m := range markActions {
		a, err := action.NewToggleMark(e.schema, m.mark, m.combo)
		if err != nil {
			return err
		}
		if err := e.registerAction(m.id, m.long, m.icon, a); err != nil {
			return err
		}
	}

	link, err := action.NewToggleWordMark(e.schema, "link", "")
	if err != nil {
		return err
	}
	if err := e.registerAction("SetLink", "Ссылка", "link", link); err != nil {
		return err
	}

	for level := 1; level <= 6; level++ {
		h, err := action.NewSetHeading(e.schema, level)
		if err != nil {
			return err
		}
		id := fmt.Sprintf("SetHeading.ID.%d", level)
		if err := e.registerAction(id, fmt.Sprintf("Заголовок %d", level), fmt.Sprintf("h%d", level), h); err != nil {
			return err
		}
	}

	var alignChildren []string
	for _, align := range schemas.Alignments {
		a, err := action.NewSetAlignment(e.schema, align)
		if err != nil {
			return err
		}
		id := "formatting.align." + align
		if err := e.registerAction(id, "Выравнивание: "+align, "align-"+align, a); err != nil {
			return err
		}
		alignChildren = append(alignChildren, id)
	}
	if err := e.registry.RegisterTool(&tool.MenuTool{
		ToolDef:  tool.ToolDef{Name: "formatting.alignment.menu", LongName: "Выравнивание", Icon: "align"},
		Children: alignChildren,
	}); err != nil {
		return err
	}

	quote, err := action.NewToggleWrap(e.schema, "blockquote", "")
	if err != nil {
		return err
	}
	if err := e.registerAction("MakeQuote", "Цитата", "quote", quote); err != nil {
		return err
	}

	var alertChildren []string
	for _, typ := range schemas.AlertTypes {
		a, err := action.NewInsertAlert(e.schema, typ)
		if err != nil {
			return err
		}
		id := "alert.insert." + typ
		if err := e.registerAction(id, "Заметка: "+typ, "alert-"+typ, a); err != nil {
			return err
		}
		alertChildren = append(alertChildren, id)
	}
	if err := e.registry.RegisterTool(&tool.MenuTool{
		ToolDef:  tool.ToolDef{Name: "widgets.note.menu", LongName: "Заметка", Icon: "note"},
		Children: alertChildren,
	}); err != nil {
		return err
	}

	bullet, err := action.NewToggleList(e.schema, "bullet_list", "ctrl_enter")
	if err != nil {
		return err
	}
	if err := e.registerAction("ToggleBulletList", "Маркированный список", "list-bullet", bullet); err != nil {
		return err
	}
	ordered, err := action.NewToggleList(e.schema, "ordered_list", "")
	if err != nil {
		return err
	}
	if err := e.registerAction("ToggleNumberedList", "Нумерованный список", "list-ordered", ordered); err != nil {
		return err
	}

	code, err := action.NewInsertCodeBlock(e.schema)
	if err != nil {
		return err
	}
	if err := e.registerAction("InsertCodeBlock", "Блок кода", "code-block", code); err != nil {
		return err
	}
	hr, err := action.NewInsertHorizontalRule(e.schema)
	if err != nil {
		return err
	}
	if err := e.registerAction("InsertHorizontalRule", "Линия", "hr", hr); err != nil {
		return err
	}

	if err := e.registerAction("ClipboardCopy", "Копировать", "copy", action.NewCopy(e.opts.Clipboard)); err != nil {
		return err
	}
	if err := e.registerAction("ClipboardPaste", "Вставить", "paste", action.NewPaste(e.opts.Clipboard)); err != nil {
		return err
	}
	if err := e.registerAction("Undo", "Отменить", "undo", action.NewUndo(e.opts.History)); err != nil {
		return err
	}
	if err := e.registerAction("Redo", "Повторить", "redo", action.NewRedo(e.opts.History)); err != nil {
		return err
	}
	return nil
}

// registerMediaTools регистрирует инструменты полной схемы:
// изображения, embed, сноски, комментарии.
func (e *Editor) registerMediaTools() error {
	footnote, err := action.NewInsertFootnote(e.schema)
	if err != nil {
		return err
	}
	if err := e.registerAction("InsertFootnote", "Сноска", "footnote", footnote); err != nil {
		return err
	}

	cb := e.opts.Callbacks
	imageTools := []struct {
		id, long, icon string
		callback       func(ctx context.Context) error
	}{
		{"media.image.hotlink", "Изображение по ссылке", "image-link", cb.ImageHotlink},
		{"media.image.upload", "Загрузить изображение", "image-upload", cb.ImageUpload},
		{"media.image.from_cms", "Изображение из медиатеки", "image-cms", cb.ImageFromCMS},
		{"media.image.edit", "Изменить изображение", "image-edit", cb.ImageEdit},
	}
	var imageChildren []string
	for _, it := range imageTools {
		if err := e.registerCallback(it.id, it.long, it.icon, it.callback); err != nil {
			return err
		}
		imageChildren = append(imageChildren, it.id)
	}
	if err := e.registry.RegisterTool(&tool.MenuTool{
		ToolDef:  tool.ToolDef{Name: "media.image", LongName: "Изображение", Icon: "image"},
		Children: imageChildren,
	}); err != nil {
		return err
	}

	if err := e.registerCallback("media.embed.request", "Встроить контент", "embed", cb.EmbedRequest); err != nil {
		return err
	}
	if err := e.registerCallback("media.emoji.request", "Эмодзи", "emoji", cb.EmojiRequest); err != nil {
		return err
	}
	if err := e.registerCallback("annotation.request", "Комментарий", "comment", cb.AnnotationRequest); err != nil {
		return err
	}

	// InsertImage и InsertEmbed исполняются колбэками после выбора
	// источника, но регистрируются и напрямую для программной вставки.
	img, err := action.NewInsertImage(e.schema)
	if err != nil {
		return err
	}
	if err := e.registerAction("media.image.insert", "Вставить изображение", "image", img); err != nil {
		return err
	}
	embed, err := action.NewInsertEmbed(e.schema)
	if err != nil {
		return err
	}
	return e.registerAction("media.embed.insert", "Вставить embed", "embed", embed)
}

func (e *Editor) registerAction(name, long, icon string, a action.Action) error {
	return e.registry.RegisterTool(&tool.ActionTool{
		ToolDef: tool.ToolDef{Name: name, LongName: long, Icon: icon},
		Action:  a,
	})
}

func (e *Editor) registerCallback(name, long, icon string, cb func(ctx context.Context) error) error {
	return e.registry.RegisterTool(&tool.CallbackTool{
		ToolDef:  tool.ToolDef{Name: name, LongName: long, Icon: icon},
		Callback: cb,
	})
}
