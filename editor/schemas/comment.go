package schemas

import "github.com/aisa-it/aipress/editor/model"

// NewCommentSchema собирает урезанную схему комментария: без
// изображений, сносок и встраиваемого контента. Markdown-синтаксис
// отсутствующих нод при разборе деградирует до обычного текста.
func NewCommentSchema() (*model.Schema, error) {
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

// MustCommentSchema - NewCommentSchema с паникой при ошибке сборки.
func MustCommentSchema() *model.Schema {
	s, err := NewCommentSchema()
	if err != nil {
		panic(err)
	}
	return s
}
