package markdown

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/aisa-it/aipress/editor/model"
)

// Serialize сериализует дерево документа в текст диалекта. Результат
// никогда не пуст: для документа без содержимого возвращается один
// пробел, чтобы хранилище не путало пустой документ с отсутствующим.
func Serialize(doc *model.Node) string {
	w := &writer{}
	var blocks []string
	for i := 0; i < doc.ChildCount(); i++ {
		if s := w.block(doc.Child(i)); s != "" {
			blocks = append(blocks, s)
		}
	}
	out := strings.Join(blocks, "\n\n")
	if defs := w.footnoteDefinitions(); defs != "" {
		out += "\n\n" + defs
	}
	if strings.TrimSpace(out) == "" {
		return " "
	}
	return out
}

type footnoteDef struct {
	index    int
	noteText string
}

type writer struct {
	footnotes []footnoteDef
}

func (w *writer) block(n *model.Node) string {
	switch n.Type.Name {
	case "paragraph":
		out := w.inlineContent(n)
		if align := attrString(n, "align"); align != "" && align != "left" {
			if out == "" {
				out = " "
			}
			out += " " + formatAttrTrailer([][2]string{{"align", align}})
		}
		return escapeBlockStart(out)
	case "heading":
		level := attrInt(n, "level", 1)
		return strings.Repeat("#", level) + " " + w.inlineContent(n)
	case "blockquote":
		return prefixLines(w.blockContent(n), "> ")
	case "alert":
		typ := attrString(n, "type")
		if typ == "" {
			typ = "note"
		}
		body := "[!" + typ + "]\n" + w.blockContent(n)
		return prefixLines(body, "> ")
	case "code_block":
		code := n.TextContent()
		fence := strings.Repeat("`", max(3, longestRun(code, '`')+1))
		return fence + attrString(n, "language") + "\n" + code + "\n" + fence
	case "horizontal_rule":
		return "---"
	case "bullet_list":
		return w.listItems(n, func(int) string { return "- " })
	case "ordered_list":
		start := attrInt(n, "order", 1)
		return w.listItems(n, func(i int) string {
			return strconv.Itoa(start+i) + ". "
		})
	case "embed":
		trailer := formatAttrTrailer([][2]string{
			{"type", attrString(n, "type")},
			{"contentID", attrString(n, "contentID")},
		})
		return "::: embed " + trailer + "\n:::"
	default:
		slog.Warn("Unknown block type for serialization", "type", n.Type.Name)
		return escapeText(n.TextContent())
	}
}

// blockContent сериализует дочерние блоки контейнера.
func (w *writer) blockContent(n *model.Node) string {
	var blocks []string
	for i := 0; i < n.ChildCount(); i++ {
		blocks = append(blocks, w.block(n.Child(i)))
	}
	return strings.Join(blocks, "\n\n")
}

func (w *writer) listItems(n *model.Node, bullet func(i int) string) string {
	var items []string
	for i := 0; i < n.ChildCount(); i++ {
		b := bullet(i)
		body := w.blockContent(n.Child(i))
		items = append(items, b+indentLines(body, strings.Repeat(" ", len(b))))
	}
	return strings.Join(items, "\n")
}

// markOrder - канонический порядок вложенности марок при сериализации:
// снаружи внутрь. Марка code обрабатывается отдельно, её содержимое не
// несёт вложенной разметки.
var markOrder = []string{"link", "strong", "em", "underline"}

func (w *writer) inlineContent(parent *model.Node) string {
	var b strings.Builder
	var active []*model.Mark
	for i := 0; i < parent.ChildCount(); i++ {
		child := parent.Child(i)
		want := orderedMarks(child.Marks)
		keep := commonMarkPrefix(active, want)
		for j := len(active) - 1; j >= keep; j-- {
			b.WriteString(closeMark(active[j]))
		}
		for j := keep; j < len(want); j++ {
			b.WriteString(openMark(want[j]))
		}
		active = want
		b.WriteString(w.inlineNode(child))
	}
	for j := len(active) - 1; j >= 0; j-- {
		b.WriteString(closeMark(active[j]))
	}
	return b.String()
}

func (w *writer) inlineNode(n *model.Node) string {
	if n.IsText() {
		text := n.TextString()
		if code := findMark(n.Marks, "code"); code != nil {
			return codeSpan(text)
		}
		return escapeText(text)
	}
	switch n.Type.Name {
	case "image":
		out := "![" + escapeText(attrString(n, "alt")) + "](" + attrString(n, "src")
		if title := attrString(n, "title"); title != "" {
			out += " \"" + title + "\""
		}
		out += ")"
		if h := attrInt(n, "maxHeight", 0); h > 0 {
			out += formatAttrTrailer([][2]string{{"maxHeight", strconv.Itoa(h)}})
		}
		return out
	case "footnote":
		index := attrInt(n, "index", 1)
		noteText := attrString(n, "text")
		w.footnotes = append(w.footnotes, footnoteDef{index: index, noteText: noteText})
		return "[^" + encodeFootnoteLabel(index, noteText) + "]"
	case "hard_break":
		return "\\\n"
	default:
		slog.Warn("Unknown inline type for serialization", "type", n.Type.Name)
		return escapeText(n.TextContent())
	}
}

// footnoteDefinitions собирает справочный хвост определений сносок.
func (w *writer) footnoteDefinitions() string {
	var lines []string
	for _, def := range w.footnotes {
		lines = append(lines, "[^"+encodeFootnoteLabel(def.index, def.noteText)+"]: "+def.noteText)
	}
	return strings.Join(lines, "\n")
}

func orderedMarks(marks []*model.Mark) []*model.Mark {
	var out []*model.Mark
	for _, name := range markOrder {
		if m := findMark(marks, name); m != nil {
			out = append(out, m)
		}
	}
	return out
}

func findMark(marks []*model.Mark, name string) *model.Mark {
	for _, m := range marks {
		if m.Type.Name == name {
			return m
		}
	}
	return nil
}

func commonMarkPrefix(a, b []*model.Mark) int {
	i := 0
	for i < len(a) && i < len(b) && a[i].Eq(b[i]) {
		i++
	}
	return i
}

func openMark(m *model.Mark) string {
	switch m.Type.Name {
	case "link":
		return "["
	case "strong":
		return "**"
	case "em":
		return "*"
	case "underline":
		return "__"
	default:
		return ""
	}
}

func closeMark(m *model.Mark) string {
	switch m.Type.Name {
	case "link":
		out := "](" + markAttrString(m, "href")
		if title := markAttrString(m, "title"); title != "" {
			out += " \"" + title + "\""
		}
		return out + ")"
	case "strong":
		return "**"
	case "em":
		return "*"
	case "underline":
		return "__"
	default:
		return ""
	}
}

// codeSpan оборачивает текст в ограждение длиннее любой внутренней
// серии обратных кавычек, с пробельной подкладкой по краям при
// необходимости.
func codeSpan(s string) string {
	fence := strings.Repeat("`", longestRun(s, '`')+1)
	pad := ""
	if s == "" || strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") ||
		strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		pad = " "
	}
	return fence + pad + s + pad + fence
}

func longestRun(s string, ch byte) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == ch {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

const escapedPunct = "\\`*_[]{}"

// escapeText экранирует символы, которые парсер принял бы за разметку.
func escapeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 128 && strings.ContainsRune(escapedPunct, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// escapeBlockStart экранирует первый символ строк, которые иначе
// начали бы другой блок: заголовок, цитату, список, ограждение embed.
func escapeBlockStart(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		switch line[0] {
		case '#', '>', '-', '+', ':':
			lines[i] = "\\" + line
		default:
			if d := leadingDigits(line); d > 0 && d < len(line) && line[d] == '.' {
				lines[i] = "\\" + line
			}
		}
	}
	return strings.Join(lines, "\n")
}

func leadingDigits(s string) int {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}

func prefixLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = strings.TrimRight(prefix, " ")
		} else {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// indentLines добавляет отступ ко всем строкам, кроме первой.
func indentLines(s, indent string) string {
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func attrString(n *model.Node, name string) string {
	if v, ok := n.Attrs[name].(string); ok {
		return v
	}
	return ""
}

func attrInt(n *model.Node, name string, def int) int {
	if v, ok := n.Attrs[name].(int); ok {
		return v
	}
	return def
}

func markAttrString(m *model.Mark, name string) string {
	if v, ok := m.Attrs[name].(string); ok {
		return v
	}
	return ""
}
