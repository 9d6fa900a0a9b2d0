package markdown

import (
	"strings"
)

// Блочные атрибуты записываются хвостом {key=value ...} после
// содержимого: выравнивание у параграфа, maxHeight у изображения.

// parseAttrTrailer отделяет от строки завершающий блок атрибутов.
// Возвращает пары ключ-значение, текст до блока и признак успеха.
func parseAttrTrailer(s string) (map[string]string, string, bool) {
	if !strings.HasSuffix(s, "}") {
		return nil, s, false
	}
	open := strings.LastIndex(s, "{")
	if open < 0 {
		return nil, s, false
	}
	body := s[open+1 : len(s)-1]
	attrs := map[string]string{}
	for _, field := range strings.Fields(body) {
		key, value, found := strings.Cut(field, "=")
		if !found || key == "" {
			return nil, s, false
		}
		attrs[key] = value
	}
	if len(attrs) == 0 {
		return nil, s, false
	}
	return attrs, strings.TrimRight(s[:open], " "), true
}

// parseAttrPrefix отделяет блок атрибутов в начале строки. Используется
// для хвоста изображения, который стоит перед остальным текстом.
func parseAttrPrefix(s string) (map[string]string, string, bool) {
	if !strings.HasPrefix(s, "{") {
		return nil, s, false
	}
	end := strings.Index(s, "}")
	if end < 0 {
		return nil, s, false
	}
	attrs, rest, ok := parseAttrTrailer(s[:end+1])
	if !ok || rest != "" {
		return nil, s, false
	}
	return attrs, s[end+1:], true
}

// formatAttrTrailer собирает блок атрибутов в каноническом порядке ключей.
func formatAttrTrailer(pairs [][2]string) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, kv := range pairs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(kv[0])
		b.WriteByte('=')
		b.WriteString(kv[1])
	}
	b.WriteByte('}')
	return b.String()
}

// stripFootnoteDefinitions отбрасывает справочные строки определений
// сносок в конце текста; документ их не содержит, индекс и текст сноски
// целиком закодированы в инлайн-метке.
func stripFootnoteDefinitions(src string) string {
	lines := strings.Split(src, "\n")
	end := len(lines)
	for end > 0 {
		line := strings.TrimSpace(lines[end-1])
		if line == "" || isFootnoteDefinition(line) {
			end--
			continue
		}
		break
	}
	if end == len(lines) {
		return src
	}
	return strings.Join(lines[:end], "\n")
}

func isFootnoteDefinition(line string) bool {
	if !strings.HasPrefix(line, "[^") {
		return false
	}
	end := strings.Index(line, "]:")
	if end < 0 {
		return false
	}
	_, _, ok := decodeFootnoteLabel(line[2:end])
	return ok
}
