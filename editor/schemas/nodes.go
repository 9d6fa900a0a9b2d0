// Пакет schemas объявляет варианты схемы документа, используемые
// редакторами CMS: полная схема статьи и урезанная схема комментария.
// Обе собираются из общего набора определений нод и марок; схема
// комментария - структурное подмножество схемы статьи, а не отдельная
// иерархия типов.
//
// Основные возможности:
//   - Базовые блочные ноды: параграф с выравниванием, заголовки 1-6,
//     цитата, блок кода с языком, горизонтальная линия, изображение,
//     перенос строки.
//   - Списки: маркированный и нумерованный.
//   - CMS-ноды: блок-заметка (alert) с типом, сноска, встраиваемый
//     контент (embed).
//   - Марки: strong, em, underline, code, link.
package schemas

import (
	"github.com/aisa-it/aipress/editor/model"
)

// AlertTypes - допустимые типы блок-заметок.
var AlertTypes = []string{"note", "tip", "important", "caution", "warning"}

// Alignments - допустимые значения выравнивания параграфа.
var Alignments = []string{"left", "right", "center", "justify"}

// Doc - корневая нода документа.
func Doc() *model.NodeSpec {
	return &model.NodeSpec{Name: "doc", Content: "block+"}
}

// Text - текстовая нода.
func Text() *model.NodeSpec {
	return &model.NodeSpec{Name: "text", Group: "inline"}
}

// Paragraph - параграф с атрибутом выравнивания.
func Paragraph() *model.NodeSpec {
	return &model.NodeSpec{
		Name:    "paragraph",
		Content: "inline*",
		Group:   "block",
		Attrs: map[string]*model.Attribute{
			"align": model.EnumAttr(Alignments...),
		},
	}
}

// Heading - заголовок уровня 1-6.
func Heading() *model.NodeSpec {
	return &model.NodeSpec{
		Name:    "heading",
		Content: "inline*",
		Group:   "block",
		Attrs: map[string]*model.Attribute{
			"level": model.OptionalAttr(1),
		},
	}
}

// Blockquote - цитата из одного и более блоков.
func Blockquote() *model.NodeSpec {
	return &model.NodeSpec{Name: "blockquote", Content: "block+", Group: "block"}
}

// CodeBlock - блок кода с атрибутом языка.
func CodeBlock() *model.NodeSpec {
	return &model.NodeSpec{
		Name:    "code_block",
		Content: "text*",
		Group:   "block",
		Attrs: map[string]*model.Attribute{
			"language": model.OptionalAttr("javascript"),
		},
	}
}

// HorizontalRule - горизонтальная линия.
func HorizontalRule() *model.NodeSpec {
	return &model.NodeSpec{Name: "horizontal_rule", Group: "block"}
}

// Image - инлайн-изображение.
func Image() *model.NodeSpec {
	return &model.NodeSpec{
		Name:   "image",
		Group:  "inline",
		Inline: true,
		Attrs: map[string]*model.Attribute{
			"src":       model.RequiredAttr(),
			"alt":       model.OptionalAttr(""),
			"title":     model.OptionalAttr(""),
			"maxHeight": model.OptionalAttr(0),
		},
	}
}

// HardBreak - принудительный перенос строки.
func HardBreak() *model.NodeSpec {
	return &model.NodeSpec{Name: "hard_break", Group: "inline", Inline: true}
}

// BulletList - маркированный список.
func BulletList() *model.NodeSpec {
	return &model.NodeSpec{Name: "bullet_list", Content: "list_item+", Group: "block"}
}

// OrderedList - нумерованный список с начальным номером.
func OrderedList() *model.NodeSpec {
	return &model.NodeSpec{
		Name:    "ordered_list",
		Content: "list_item+",
		Group:   "block",
		Attrs: map[string]*model.Attribute{
			"order": model.OptionalAttr(1),
		},
	}
}

// ListItem - элемент списка.
func ListItem() *model.NodeSpec {
	return &model.NodeSpec{Name: "list_item", Content: "paragraph block*"}
}

// Alert - блок-заметка с типом оформления.
func Alert() *model.NodeSpec {
	return &model.NodeSpec{
		Name:    "alert",
		Content: "paragraph+",
		Group:   "block",
		Attrs: map[string]*model.Attribute{
			"type": model.EnumAttr(AlertTypes...),
		},
	}
}

// Footnote - атомарная инлайн-сноска, несущая индекс и текст.
func Footnote() *model.NodeSpec {
	return &model.NodeSpec{
		Name:   "footnote",
		Group:  "inline",
		Inline: true,
		Atom:   true,
		Attrs: map[string]*model.Attribute{
			"index": model.OptionalAttr(1),
			"text":  model.OptionalAttr(""),
		},
	}
}

// Embed - атомарный блок встраиваемого контента.
func Embed() *model.NodeSpec {
	return &model.NodeSpec{
		Name:  "embed",
		Group: "block",
		Atom:  true,
		Attrs: map[string]*model.Attribute{
			"type":      model.OptionalAttr(""),
			"contentID": model.OptionalAttr(""),
		},
	}
}

// Strong - жирное начертание.
func Strong() *model.MarkSpec {
	return &model.MarkSpec{Name: "strong", Inclusive: true}
}

// Em - курсив.
func Em() *model.MarkSpec {
	return &model.MarkSpec{Name: "em", Inclusive: true}
}

// Underline - подчёркивание; марка расширяется при вводе на её границе.
func Underline() *model.MarkSpec {
	return &model.MarkSpec{Name: "underline", Inclusive: true}
}

// Code - инлайн-код; на границе отрезка марка не расширяется.
func Code() *model.MarkSpec {
	return &model.MarkSpec{Name: "code"}
}

// Link - ссылка с адресом и необязательным заголовком. Как и code,
// ввод на границе ссылки в неё не включается.
func Link() *model.MarkSpec {
	return &model.MarkSpec{
		Name: "link",
		Attrs: map[string]*model.Attribute{
			"href":  model.RequiredAttr(),
			"title": model.OptionalAttr(""),
		},
	}
}
