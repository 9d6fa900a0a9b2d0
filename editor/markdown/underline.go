package markdown

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Подчёркивание записывается парой двойных подчёркиваний: __текст__.
// Одиночное подчёркивание остаётся обычным курсивом CommonMark.
//
// Разбор двухфазный: инлайн-парсер снимает целую серию символов '_'
// длиной от двух и кладёт в дерево маркерную ноду, а трансформер после
// разбора разбивает серии на пары, спаривает открывающие и закрывающие
// маркеры стеком и понижает непарные маркеры обратно до текста. Нечётная
// серия даёт один литеральный '_' перед парами: из пяти подчёркиваний
// получаются литерал и две пары маркеров.

var kindUnderline = ast.NewNodeKind("Underline")

// underlineNode - инлайн-нода подчёркнутого фрагмента в дереве goldmark.
type underlineNode struct {
	ast.BaseInline
}

func (*underlineNode) Kind() ast.NodeKind { return kindUnderline }

func (n *underlineNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

var kindUnderlineMarker = ast.NewNodeKind("UnderlineMarker")

// underlineMarker - непарный маркер серии подчёркиваний. Живёт в дереве
// только между инлайн-разбором и трансформером.
type underlineMarker struct {
	ast.BaseInline
	segment text.Segment
	runLen  int
}

func (*underlineMarker) Kind() ast.NodeKind { return kindUnderlineMarker }

func (n *underlineMarker) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

type underlineParser struct{}

func (*underlineParser) Trigger() []byte { return []byte{'_'} }

func (*underlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, segment := block.PeekLine()
	run := 0
	for run < len(line) && line[run] == '_' {
		run++
	}
	if run < 2 {
		// одиночное подчёркивание обрабатывает стандартный emphasis
		return nil
	}
	block.Advance(run)
	return &underlineMarker{
		segment: segment.WithStop(segment.Start + run),
		runLen:  run,
	}
}

type underlineTransformer struct{}

func (underlineTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	var parents []ast.Node
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Kind() == kindUnderlineMarker {
			p := n.Parent()
			if len(parents) == 0 || parents[len(parents)-1] != p {
				parents = append(parents, p)
			}
		}
		return ast.WalkContinue, nil
	})
	for _, p := range parents {
		splitMarkerRuns(p)
		pairMarkers(p)
	}
}

// splitMarkerRuns разбивает каждую серию на единичные маркеры по два
// символа. Нечётный остаток становится литеральным '_' перед парами.
func splitMarkerRuns(parent ast.Node) {
	c := parent.FirstChild()
	for c != nil {
		next := c.NextSibling()
		if m, ok := c.(*underlineMarker); ok {
			start := m.segment.Start
			if m.runLen%2 == 1 {
				parent.InsertBefore(parent, m, ast.NewTextSegment(text.NewSegment(start, start+1)))
				start++
			}
			pairs := m.runLen / 2
			m.segment = text.NewSegment(start, start+2)
			m.runLen = 2
			last := ast.Node(m)
			for i := 1; i < pairs; i++ {
				unit := &underlineMarker{
					segment: text.NewSegment(start+2*i, start+2*i+2),
					runLen:  2,
				}
				parent.InsertAfter(parent, last, unit)
				last = unit
			}
		}
		c = next
	}
}

// pairMarkers спаривает маркеры стеком: первый свободный маркер
// открывает, следующий закрывает, содержимое между ними переносится в
// underlineNode. Оставшиеся без пары маркеры понижаются до текста.
func pairMarkers(parent ast.Node) {
	var stack []*underlineMarker
	c := parent.FirstChild()
	for c != nil {
		next := c.NextSibling()
		if m, ok := c.(*underlineMarker); ok {
			if len(stack) > 0 {
				opener := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				u := &underlineNode{}
				inner := opener.NextSibling()
				for inner != nil && inner != m {
					innerNext := inner.NextSibling()
					parent.RemoveChild(parent, inner)
					u.AppendChild(u, inner)
					inner = innerNext
				}
				parent.ReplaceChild(parent, opener, u)
				parent.RemoveChild(parent, m)
			} else {
				stack = append(stack, m)
			}
		}
		c = next
	}
	for _, m := range stack {
		parent.ReplaceChild(parent, m, ast.NewTextSegment(m.segment))
	}
}

func underlineParserOption() parser.Option {
	return parser.WithInlineParsers(
		util.Prioritized(&underlineParser{}, 450),
	)
}

func underlineTransformerOption() parser.Option {
	return parser.WithASTTransformers(
		util.Prioritized(underlineTransformer{}, 500),
	)
}
