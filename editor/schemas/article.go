package schemas

import "github.com/aisa-it/aipress/editor/model"

// NewArticleSchema собирает полную схему статьи: все блочные ноды,
// списки, CMS-ноды и марки.
func NewArticleSchema() (*model.Schema, error) {
	return model.NewSchema(&model.SchemaSpec{
		Nodes: []*model.NodeSpec{
			Doc(),
			Paragraph(),
			Heading(),
			Blockquote(),
			CodeBlock(),
			HorizontalRule(),
			BulletList(),
			OrderedList(),
			ListItem(),
			Alert(),
			Embed(),
			Image(),
			Footnote(),
			HardBreak(),
			Text(),
		},
		Marks: []*model.MarkSpec{
			Strong(),
			Em(),
			Underline(),
			Code(),
			Link(),
		},
	})
}

// MustArticleSchema - NewArticleSchema с паникой при ошибке сборки.
// Используется при инициализации редактора, где набор нод фиксирован.
func MustArticleSchema() *model.Schema {
	s, err := NewArticleSchema()
	if err != nil {
		panic(err)
	}
	return s
}
