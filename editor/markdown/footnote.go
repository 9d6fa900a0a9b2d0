package markdown

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Сноска записывается одной ссылкой вида [^индекс--текст], где текст
// закодирован заменой пробелов на '_'. Отдельного блока определений в
// документе нет: сериализатор дописывает строки [^индекс--текст]: в
// конец текста только как справочный хвост, парсер их отбрасывает.

var kindFootnote = ast.NewNodeKind("FootnoteRef")

// footnoteRef - атомарная инлайн-нода сноски.
type footnoteRef struct {
	ast.BaseInline
	index    int
	noteText string
}

func (*footnoteRef) Kind() ast.NodeKind { return kindFootnote }

func (n *footnoteRef) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Index": strconv.Itoa(n.index),
		"Text":  n.noteText,
	}, nil)
}

type footnoteParser struct{}

func (*footnoteParser) Trigger() []byte { return []byte{'['} }

func (*footnoteParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if len(line) < 3 || line[0] != '[' || line[1] != '^' {
		return nil
	}
	end := -1
	for i := 2; i < len(line); i++ {
		if line[i] == ']' {
			end = i
			break
		}
		if line[i] == '[' || line[i] == '\n' {
			break
		}
	}
	if end < 0 {
		return nil
	}
	label := string(line[2:end])
	idx, noteText, ok := decodeFootnoteLabel(label)
	if !ok {
		return nil
	}
	block.Advance(end + 1)
	return &footnoteRef{index: idx, noteText: noteText}
}

// decodeFootnoteLabel разбирает метку вида "индекс--текст_с_пробелами".
func decodeFootnoteLabel(label string) (int, string, bool) {
	num, encoded, found := strings.Cut(label, "--")
	if !found || num == "" {
		return 0, "", false
	}
	idx, err := strconv.Atoi(num)
	if err != nil || idx < 1 {
		return 0, "", false
	}
	return idx, strings.ReplaceAll(encoded, "_", " "), true
}

// encodeFootnoteLabel собирает метку сноски для сериализации.
func encodeFootnoteLabel(index int, noteText string) string {
	return strconv.Itoa(index) + "--" + strings.ReplaceAll(noteText, " ", "_")
}

func footnoteParserOption() parser.Option {
	return parser.WithInlineParsers(
		util.Prioritized(&footnoteParser{}, 150),
	)
}
