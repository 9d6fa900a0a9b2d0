// Пакет markdown реализует кодек диалекта разметки: парсер текста в
// дерево документа и сериализатор дерева обратно в текст.
//
// Основные возможности:
//   - Разбор CommonMark-совместимого ядра через goldmark с
//     расширениями диалекта: подчёркивание __..__, блок-заметки
//     > [!type], сноски [^индекс--текст], встраиваемый контент
//     ::: embed и хвостовые атрибуты {key=value}.
//   - Расширения регистрируются по схеме: если в схеме нет типа ноды,
//     его синтаксис остаётся обычным текстом.
//   - Парсер не возвращает ошибок разметки: нераспознанные конструкции
//     деградируют до параграфов и текста.
//   - Сериализация - левая обратная к разбору: parse(serialize(doc))
//     восстанавливает дерево с точностью до незначащих пробелов.
package markdown

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/aisa-it/aipress/editor/model"
)

// Parser разбирает текст диалекта в дерево документа конкретной схемы.
type Parser struct {
	schema *model.Schema
	md     goldmark.Markdown
}

// NewParser собирает парсер под схему. Набор расширений урезается до
// типов, которые схема объявляет.
func NewParser(schema *model.Schema) *Parser {
	var opts []parser.Option
	if schema.MarkType("underline") != nil {
		opts = append(opts, underlineParserOption(), underlineTransformerOption())
	}
	if schema.NodeType("footnote") != nil {
		opts = append(opts, footnoteParserOption())
	}
	if schema.NodeType("embed") != nil {
		opts = append(opts, embedParserOption())
	}
	return &Parser{
		schema: schema,
		md:     goldmark.New(goldmark.WithParserOptions(opts...)),
	}
}

// Schema возвращает схему, под которую собран парсер.
func (p *Parser) Schema() *model.Schema { return p.schema }

// Parse разбирает текст в дерево документа. Ошибок разметки не бывает:
// всё, что не распозналось, становится обычным текстом. Пустой вход
// даёт документ с одним пустым параграфом.
func (p *Parser) Parse(src string) *model.Node {
	src = stripFootnoteDefinitions(src)
	source := []byte(src)
	root := p.md.Parser().Parse(text.NewReader(source))

	c := &converter{schema: p.schema, source: source}
	blocks := c.blocks(root)
	if len(blocks) == 0 {
		blocks = []*model.Node{c.emptyParagraph()}
	}
	doc, err := p.schema.TopType().CreateChecked(nil, blocks...)
	if err != nil {
		slog.Warn("Document content rejected by schema, falling back to plain text",
			"error", err)
		doc = p.schema.TopType().Create(nil, c.plainParagraph(src))
	}
	return doc
}

// converter преобразует AST goldmark в ноды документа.
type converter struct {
	schema *model.Schema
	source []byte
}

func (c *converter) blocks(parent ast.Node) []*model.Node {
	var out []*model.Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		out = append(out, c.block(child)...)
	}
	return out
}

func (c *converter) block(n ast.Node) []*model.Node {
	switch b := n.(type) {
	case *ast.Paragraph:
		return []*model.Node{c.paragraph(n)}
	case *ast.TextBlock:
		return []*model.Node{c.paragraph(n)}
	case *ast.Heading:
		if t := c.schema.NodeType("heading"); t != nil {
			node, err := t.CreateChecked(map[string]any{"level": b.Level}, c.inlines(n, nil)...)
			if err == nil {
				return []*model.Node{node}
			}
		}
		return []*model.Node{c.paragraph(n)}
	case *ast.Blockquote:
		return c.blockquote(b)
	case *ast.FencedCodeBlock:
		return c.codeBlock(string(b.Language(c.source)), b.Lines())
	case *ast.CodeBlock:
		return c.codeBlock("", b.Lines())
	case *ast.ThematicBreak:
		if t := c.schema.NodeType("horizontal_rule"); t != nil {
			return []*model.Node{t.Create(nil)}
		}
		return nil
	case *ast.List:
		return c.list(b)
	case *ast.HTMLBlock:
		return []*model.Node{c.plainParagraph(c.rawLines(b.Lines()))}
	case *embedBlock:
		if t := c.schema.NodeType("embed"); t != nil {
			node, err := t.CreateChecked(map[string]any{
				"type":      b.embedType,
				"contentID": b.contentID,
			})
			if err == nil {
				return []*model.Node{node}
			}
		}
		return nil
	default:
		slog.Warn("Unknown block kind, degrading to plain paragraph", "kind", n.Kind().String())
		return []*model.Node{c.plainParagraph(c.astText(n))}
	}
}

// paragraph собирает параграф из инлайн-содержимого блока, снимая
// хвост {align=...} в атрибут выравнивания.
func (c *converter) paragraph(n ast.Node) *model.Node {
	inline := c.inlines(n, nil)
	inline, attrs := extractAlign(c.schema, inline)
	t := c.schema.NodeType("paragraph")
	node, err := t.CreateChecked(attrs, inline...)
	if err != nil {
		slog.Warn("Paragraph content rejected by schema, dropping markup", "error", err)
		node = t.Create(nil, c.schema.Text(plainText(inline)))
	}
	return node
}

// extractAlign снимает завершающий {align=...} с последней текстовой
// ноды. Хвост без распознанных ключей остаётся обычным текстом.
func extractAlign(schema *model.Schema, inline []*model.Node) ([]*model.Node, map[string]any) {
	if len(inline) == 0 {
		return inline, nil
	}
	last := inline[len(inline)-1]
	if !last.IsText() {
		return inline, nil
	}
	attrs, rest, ok := parseAttrTrailer(last.TextString())
	if !ok {
		return inline, nil
	}
	align, ok := attrs["align"]
	if !ok {
		return inline, nil
	}
	if err := schema.NodeType("paragraph").CheckAttrs(map[string]any{"align": align}); err != nil {
		return inline, nil
	}
	out := inline[:len(inline)-1]
	if rest != "" {
		out = append(out, schema.Text(rest, last.Marks...))
	}
	return out, map[string]any{"align": align}
}

func (c *converter) blockquote(b *ast.Blockquote) []*model.Node {
	alertType := c.alertType(b)
	blocks := c.blocks(b)
	if alertType != "" {
		blocks = stripAlertMarker(blocks, alertType)
		if len(blocks) == 0 {
			blocks = []*model.Node{c.emptyParagraph()}
		}
		t := c.schema.NodeType("alert")
		node, err := t.CreateChecked(map[string]any{"type": alertType}, blocks...)
		if err == nil {
			return []*model.Node{node}
		}
	}
	if t := c.schema.NodeType("blockquote"); t != nil {
		if len(blocks) == 0 {
			blocks = []*model.Node{c.emptyParagraph()}
		}
		node, err := t.CreateChecked(nil, blocks...)
		if err == nil {
			return []*model.Node{node}
		}
	}
	return blocks
}

// alertType возвращает тип блок-заметки, если первая строка цитаты -
// маркер [!type] с известным типом, иначе пустую строку.
func (c *converter) alertType(b *ast.Blockquote) string {
	if c.schema.NodeType("alert") == nil {
		return ""
	}
	first := b.FirstChild()
	if first == nil || first.Lines() == nil || first.Lines().Len() == 0 {
		return ""
	}
	seg := first.Lines().At(0)
	raw := strings.TrimSpace(string(seg.Value(c.source)))
	if !strings.HasPrefix(raw, "[!") || !strings.HasSuffix(raw, "]") {
		return ""
	}
	typ := raw[2 : len(raw)-1]
	if err := c.schema.NodeType("alert").CheckAttrs(map[string]any{"type": typ}); err != nil {
		return ""
	}
	return typ
}

// stripAlertMarker убирает маркер [!type] из начала первого параграфа.
func stripAlertMarker(blocks []*model.Node, alertType string) []*model.Node {
	if len(blocks) == 0 {
		return blocks
	}
	first := blocks[0]
	marker := []rune("[!" + alertType + "]")
	content := []rune(first.TextContent())
	if len(content) < len(marker) || string(content[:len(marker)]) != string(marker) {
		return blocks
	}
	cut := len(marker)
	for cut < len(content) && content[cut] == ' ' {
		cut++
	}
	trimmed := first.Cut(cut, first.Content.Size())
	if trimmed.Content.Size() == 0 && len(blocks) > 1 {
		return blocks[1:]
	}
	return append([]*model.Node{trimmed}, blocks[1:]...)
}

func (c *converter) codeBlock(language string, lines *text.Segments) []*model.Node {
	t := c.schema.NodeType("code_block")
	if t == nil {
		return []*model.Node{c.plainParagraph(c.rawLines(lines))}
	}
	var attrs map[string]any
	if language != "" {
		attrs = map[string]any{"language": language}
	}
	code := strings.TrimSuffix(c.rawLines(lines), "\n")
	var content []*model.Node
	if code != "" {
		content = append(content, c.schema.Text(code))
	}
	node, err := t.CreateChecked(attrs, content...)
	if err != nil {
		return []*model.Node{c.plainParagraph(code)}
	}
	return []*model.Node{node}
}

func (c *converter) list(b *ast.List) []*model.Node {
	typeName := "bullet_list"
	var attrs map[string]any
	if b.IsOrdered() {
		typeName = "ordered_list"
		attrs = map[string]any{"order": b.Start}
	}
	listType := c.schema.NodeType(typeName)
	itemType := c.schema.NodeType("list_item")
	if listType == nil || itemType == nil {
		return c.blocks(b)
	}
	var items []*model.Node
	for child := b.FirstChild(); child != nil; child = child.NextSibling() {
		itemBlocks := c.blocks(child)
		if len(itemBlocks) == 0 {
			itemBlocks = []*model.Node{c.emptyParagraph()}
		}
		item, err := itemType.CreateChecked(nil, itemBlocks...)
		if err != nil {
			item = itemType.Create(nil, c.plainParagraph(plainText(itemBlocks)))
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil
	}
	node, err := listType.CreateChecked(attrs, items...)
	if err != nil {
		slog.Warn("List rejected by schema, degrading to paragraphs", "error", err)
		return c.blocks(b)
	}
	return []*model.Node{node}
}

func (c *converter) inlines(parent ast.Node, marks []*model.Mark) []*model.Node {
	var out []*model.Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		out = append(out, c.inline(child, marks)...)
	}
	return applyImageTrailers(out)
}

func (c *converter) inline(n ast.Node, marks []*model.Mark) []*model.Node {
	switch b := n.(type) {
	case *ast.Text:
		var out []*model.Node
		raw := string(b.Segment.Value(c.source))
		if b.HardLineBreak() {
			// жёсткий перенос: хвостовой слэш или пробелы не содержимое
			raw = strings.TrimRight(strings.TrimSuffix(raw, `\`), " ")
		}
		value := unescapePunct(raw)
		if value != "" {
			out = append(out, c.schema.Text(value, marks...))
		}
		switch {
		case b.HardLineBreak():
			if t := c.schema.NodeType("hard_break"); t != nil {
				out = append(out, t.Create(nil))
			} else {
				out = append(out, c.schema.Text(" ", marks...))
			}
		case b.SoftLineBreak():
			out = append(out, c.schema.Text(" ", marks...))
		}
		return out
	case *ast.String:
		if len(b.Value) == 0 {
			return nil
		}
		return []*model.Node{c.schema.Text(string(b.Value), marks...)}
	case *ast.CodeSpan:
		return c.marked(n, marks, "code", nil)
	case *ast.Emphasis:
		name := "em"
		if b.Level >= 2 {
			name = "strong"
		}
		return c.marked(n, marks, name, nil)
	case *underlineNode:
		return c.marked(n, marks, "underline", nil)
	case *ast.Link:
		return c.marked(n, marks, "link", map[string]any{
			"href":  unescapePunct(string(b.Destination)),
			"title": unescapePunct(string(b.Title)),
		})
	case *ast.AutoLink:
		url := string(b.URL(c.source))
		linkMarks, _ := c.addMark(marks, "link", map[string]any{"href": url})
		return []*model.Node{c.schema.Text(url, linkMarks...)}
	case *ast.Image:
		return c.image(b, marks)
	case *footnoteRef:
		if t := c.schema.NodeType("footnote"); t != nil {
			node, err := t.CreateChecked(map[string]any{
				"index": b.index,
				"text":  b.noteText,
			})
			if err == nil {
				node = node.WithMarks(marks)
				return []*model.Node{node}
			}
		}
		return []*model.Node{c.schema.Text("[^"+encodeFootnoteLabel(b.index, b.noteText)+"]", marks...)}
	case *ast.RawHTML:
		return []*model.Node{c.schema.Text(c.rawLines(b.Segments), marks...)}
	default:
		return c.inlines(n, marks)
	}
}

// marked разбирает содержимое n с добавленной маркой. Если схема марку
// не объявляет, содержимое остаётся без неё.
func (c *converter) marked(n ast.Node, marks []*model.Mark, name string, attrs map[string]any) []*model.Node {
	inner, ok := c.addMark(marks, name, attrs)
	if !ok {
		inner = marks
	}
	if _, isCode := n.(*ast.CodeSpan); isCode {
		// содержимое code span - сырые сегменты без вложенной разметки
		value := c.astText(n)
		if value == "" {
			return nil
		}
		return []*model.Node{c.schema.Text(value, inner...)}
	}
	return c.inlines(n, inner)
}

func (c *converter) addMark(marks []*model.Mark, name string, attrs map[string]any) ([]*model.Mark, bool) {
	t := c.schema.MarkType(name)
	if t == nil {
		return marks, false
	}
	m, err := t.Create(attrs)
	if err != nil {
		slog.Warn("Mark attributes rejected by schema", "mark", name, "error", err)
		return marks, false
	}
	out := make([]*model.Mark, len(marks), len(marks)+1)
	copy(out, marks)
	return m.AddToSet(out), true
}

// image строит ноду изображения; в схеме без изображений синтаксис
// деградирует до текста подписи.
func (c *converter) image(b *ast.Image, marks []*model.Mark) []*model.Node {
	alt := unescapePunct(c.astText(b))
	t := c.schema.NodeType("image")
	if t == nil {
		fallback := alt
		if fallback == "" {
			fallback = string(b.Destination)
		}
		if fallback == "" {
			return nil
		}
		return []*model.Node{c.schema.Text(fallback, marks...)}
	}
	node, err := t.CreateChecked(map[string]any{
		"src":   unescapePunct(string(b.Destination)),
		"alt":   alt,
		"title": unescapePunct(string(b.Title)),
	})
	if err != nil {
		slog.Warn("Image rejected by schema, degrading to text", "error", err)
		return []*model.Node{c.schema.Text(alt, marks...)}
	}
	return []*model.Node{node.WithMarks(marks)}
}

// applyImageTrailers переносит {maxHeight=N} из текста сразу после
// изображения в его атрибут.
func applyImageTrailers(inline []*model.Node) []*model.Node {
	var out []*model.Node
	for i := 0; i < len(inline); i++ {
		n := inline[i]
		if n.Type.Name == "image" && i+1 < len(inline) && inline[i+1].IsText() {
			attrs, rest, ok := parseAttrPrefix(inline[i+1].TextString())
			if ok {
				if h, err := strconv.Atoi(attrs["maxHeight"]); err == nil && h > 0 {
					merged := make(map[string]any, len(n.Attrs)+1)
					for k, v := range n.Attrs {
						merged[k] = v
					}
					merged["maxHeight"] = h
					n = n.WithAttrs(merged)
				}
				out = append(out, n)
				if rest != "" {
					out = append(out, n.Type.Schema.Text(rest, inline[i+1].Marks...))
				}
				i++
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

func (c *converter) emptyParagraph() *model.Node {
	return c.schema.NodeType("paragraph").Create(nil)
}

func (c *converter) plainParagraph(s string) *model.Node {
	s = strings.TrimSpace(s)
	t := c.schema.NodeType("paragraph")
	if s == "" {
		return t.Create(nil)
	}
	return t.Create(nil, c.schema.Text(s))
}

// unescapePunct снимает обратные слэши перед пунктуацией. Goldmark
// оставляет экранирование в сегментах AST и снимает его только при
// HTML-рендеринге, которого здесь нет.
func unescapePunct(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && util.IsPunct(s[i+1]) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// astText собирает текст всех текстовых потомков ноды AST.
func (c *converter) astText(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(c.source))
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func (c *converter) rawLines(lines *text.Segments) string {
	if lines == nil {
		return ""
	}
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.source))
	}
	return b.String()
}

// plainText собирает текст нод для аварийной деградации.
func plainText(nodes []*model.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		if n.IsText() {
			b.WriteString(n.TextString())
		} else {
			b.WriteString(n.TextContent())
		}
	}
	return b.String()
}
