package markdown

import (
	"strings"
	"testing"

	"github.com/aisa-it/aipress/editor/model"
	"github.com/aisa-it/aipress/editor/schemas"
)

func articleParser(t *testing.T) (*Parser, *model.Schema) {
	t.Helper()
	s, err := schemas.NewArticleSchema()
	if err != nil {
		t.Fatalf("схема: %v", err)
	}
	return NewParser(s), s
}

// TestParseUnderline проверяет разбор серий подчёркиваний. Серия из N
// подчёркиваний распадается на пары; нечётный остаток - обычный текст.
func TestParseUnderline(t *testing.T) {
	p, s := articleParser(t)
	tests := []struct {
		src        string
		text       string // текстовое содержимое параграфа
		underlined string // содержимое под маркой underline
	}{
		{"__u__", "u", "u"},
		{"a __b__ c", "a b c", "b"},
		// нечётная серия: лишний символ остаётся текстом, пары смыкаются
		// на пустом содержимом
		{"a_____b", "a_b", ""},
		{"a__b", "a__b", ""},
		// одиночные подчёркивания уходят штатному парсеру выделения
		{"_em_", "em", ""},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			doc := p.Parse(tc.src)
			para := doc.Child(0)
			if got := para.TextContent(); got != tc.text {
				t.Errorf("текст %q, ожидалось %q", got, tc.text)
			}
			ut := s.MarkType("underline")
			var underlined strings.Builder
			para.NodesBetween(0, para.Content.Size(), func(n *model.Node, _ int) bool {
				if n.IsText() && ut.IsInSet(n.Marks) != nil {
					underlined.WriteString(n.TextString())
				}
				return true
			})
			if got := underlined.String(); got != tc.underlined {
				t.Errorf("под маркой underline %q, ожидалось %q", got, tc.underlined)
			}
		})
	}
}

// TestParseAlertUnknownType: цитата с маркером неизвестного типа остаётся
// обычной цитатой, маркер - текстом.
func TestParseAlertUnknownType(t *testing.T) {
	p, _ := articleParser(t)
	doc := p.Parse("> [!bogus]\n> body")
	got := doc.Child(0)
	if got.Type.Name != "blockquote" {
		t.Fatalf("тип %q, ожидалась цитата", got.Type.Name)
	}
	if text := got.TextContent(); !strings.Contains(text, "[!bogus]") {
		t.Errorf("маркер потерян: %q", text)
	}
}

// TestParseFootnoteDefinitions: хвост определений не попадает в документ.
func TestParseFootnoteDefinitions(t *testing.T) {
	p, _ := articleParser(t)
	doc := p.Parse("text[^1--a_note]\n\n[^1--a_note]: a note")
	if doc.ChildCount() != 1 {
		t.Fatalf("блоков %d, ожидался 1", doc.ChildCount())
	}
	para := doc.Child(0)
	last := para.Child(para.ChildCount() - 1)
	if last.Type.Name != "footnote" {
		t.Fatalf("последняя нода %q, ожидалась сноска", last.Type.Name)
	}
	if last.Attrs["index"] != 1 || last.Attrs["text"] != "a note" {
		t.Errorf("атрибуты сноски %v", last.Attrs)
	}
}

// TestParseFootnoteBadLabel: метка без индекса остаётся текстом.
func TestParseFootnoteBadLabel(t *testing.T) {
	p, _ := articleParser(t)
	doc := p.Parse("see [^oops]")
	if got := doc.Child(0).TextContent(); got != "see [^oops]" {
		t.Errorf("текст %q, метка должна остаться как есть", got)
	}
}

// TestParseCommentSchemaDegradation: в схеме комментариев нет картинок,
// сносок и встраиваемого контента - их синтаксис остаётся текстом.
func TestParseCommentSchemaDegradation(t *testing.T) {
	s, err := schemas.NewCommentSchema()
	if err != nil {
		t.Fatalf("схема: %v", err)
	}
	p := NewParser(s)

	// картинка деградирует до подписи
	doc := p.Parse("![alt text](https://example.com/pic.png)")
	if got := doc.Child(0).TextContent(); got != "alt text" {
		t.Errorf("текст %q, ожидалась подпись", got)
	}

	// картинка без подписи - до адреса
	doc = p.Parse("![](https://example.com/pic.png)")
	if got := doc.Child(0).TextContent(); got != "https://example.com/pic.png" {
		t.Errorf("текст %q, ожидался адрес", got)
	}

	// ссылка на сноску остаётся текстом
	doc = p.Parse("x[^1--note]")
	if got := doc.Child(0).TextContent(); got != "x[^1--note]" {
		t.Errorf("текст %q, синтаксис сноски должен сохраниться", got)
	}

	// ограждение embed остаётся параграфом
	doc = p.Parse("::: embed {type=youtube contentID=abc}\n:::")
	if got := doc.Child(0).Type.Name; got != "paragraph" {
		t.Errorf("тип %q, ожидался параграф", got)
	}
}

// TestParseEmpty: пустой вход даёт документ с одним пустым параграфом.
func TestParseEmpty(t *testing.T) {
	p, _ := articleParser(t)
	for _, src := range []string{"", " ", "\n\n"} {
		doc := p.Parse(src)
		if doc.ChildCount() != 1 || doc.Child(0).Type.Name != "paragraph" {
			t.Errorf("Parse(%q): %d блоков, ожидался один пустой параграф", src, doc.ChildCount())
		}
		if size := doc.Child(0).Content.Size(); size != 0 {
			t.Errorf("Parse(%q): параграф не пуст, размер %d", src, size)
		}
	}
}

// TestParseAlignTrailer: хвостовой атрибут выравнивания снимается с текста.
func TestParseAlignTrailer(t *testing.T) {
	p, _ := articleParser(t)
	doc := p.Parse("centered {align=center}")
	para := doc.Child(0)
	if got := para.Attrs["align"]; got != "center" {
		t.Errorf("align = %v, ожидалось center", got)
	}
	if got := para.TextContent(); got != "centered" {
		t.Errorf("текст %q, хвост должен быть срезан", got)
	}

	// неизвестное значение остаётся текстом
	doc = p.Parse("x {align=sideways}")
	para = doc.Child(0)
	if got := para.Attrs["align"]; got != "left" {
		t.Errorf("align = %v, ожидалось значение по умолчанию", got)
	}
	if got := para.TextContent(); got != "x {align=sideways}" {
		t.Errorf("текст %q, хвост не должен срезаться", got)
	}
}

// TestAttrTrailer - разбор и сборка хвостовых атрибутов.
func TestAttrTrailer(t *testing.T) {
	attrs, rest, ok := parseAttrTrailer("body {align=center}")
	if !ok || rest != "body" || attrs["align"] != "center" {
		t.Errorf("parseAttrTrailer: attrs=%v rest=%q ok=%v", attrs, rest, ok)
	}
	if _, _, ok := parseAttrTrailer("no trailer"); ok {
		t.Error("строка без хвоста не должна разбираться")
	}
	if _, _, ok := parseAttrTrailer("bad {align}"); ok {
		t.Error("пара без значения не должна разбираться")
	}

	attrs, rest, ok = parseAttrPrefix("{maxHeight=240} tail")
	if !ok || attrs["maxHeight"] != "240" || rest != " tail" {
		t.Errorf("parseAttrPrefix: attrs=%v rest=%q ok=%v", attrs, rest, ok)
	}

	got := formatAttrTrailer([][2]string{{"type", "youtube"}, {"contentID", "abc"}})
	if got != "{type=youtube contentID=abc}" {
		t.Errorf("formatAttrTrailer = %q", got)
	}
}
