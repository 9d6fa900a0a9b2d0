package markdown

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Встраиваемый контент записывается контейнером:
//
//	::: embed {type=youtube contentID=abc123}
//	:::
//
// Нода атомарная, содержимое между ограждениями игнорируется.

var kindEmbed = ast.NewNodeKind("EmbedBlock")

// embedBlock - блочная нода встраиваемого контента.
type embedBlock struct {
	ast.BaseBlock
	embedType string
	contentID string
}

func (*embedBlock) Kind() ast.NodeKind { return kindEmbed }

func (*embedBlock) IsRaw() bool { return true }

func (n *embedBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Type":      n.embedType,
		"ContentID": n.contentID,
	}, nil)
}

var (
	embedFence  = []byte(":::")
	embedMarker = []byte("embed")
)

type embedParser struct{}

func (*embedParser) Trigger() []byte { return []byte{':'} }

func (*embedParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	rest, ok := bytes.CutPrefix(bytes.TrimSpace(line), embedFence)
	if !ok {
		return nil, parser.NoChildren
	}
	rest = bytes.TrimSpace(rest)
	rest, ok = bytes.CutPrefix(rest, embedMarker)
	if !ok {
		return nil, parser.NoChildren
	}
	attrs, _, ok := parseAttrTrailer(string(bytes.TrimSpace(rest)))
	if !ok {
		return nil, parser.NoChildren
	}
	reader.Advance(segment.Len() - 1)
	return &embedBlock{
		embedType: attrs["type"],
		contentID: attrs["contentID"],
	}, parser.NoChildren
}

func (*embedParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, segment := reader.PeekLine()
	if bytes.Equal(bytes.TrimSpace(line), embedFence) {
		reader.Advance(segment.Len() - 1)
		return parser.Close
	}
	reader.Advance(segment.Len() - 1)
	return parser.Continue | parser.NoChildren
}

func (*embedParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (*embedParser) CanInterruptParagraph() bool { return true }

func (*embedParser) CanAcceptIndentedLine() bool { return false }

func embedParserOption() parser.Option {
	return parser.WithBlockParsers(
		util.Prioritized(&embedParser{}, 500),
	)
}
