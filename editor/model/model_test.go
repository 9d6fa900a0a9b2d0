package model

import (
	"testing"
)

// testSchema собирает минимальную схему: параграф, заголовок и цитата
// с марками strong и em.
func testSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema(&SchemaSpec{
		Nodes: []*NodeSpec{
			{Name: "doc", Content: "block+"},
			{Name: "text", Group: "inline"},
			{Name: "paragraph", Content: "inline*", Group: "block"},
			{Name: "heading", Content: "inline*", Group: "block", Attrs: map[string]*Attribute{
				"level": OptionalAttr(1),
			}},
			{Name: "blockquote", Content: "block+", Group: "block"},
		},
		Marks: []*MarkSpec{
			{Name: "strong", Inclusive: true},
			{Name: "em", Inclusive: true},
			{Name: "link"},
		},
	})
	if err != nil {
		t.Fatalf("схема: %v", err)
	}
	return s
}

func mark(t *testing.T, s *Schema, name string) *Mark {
	t.Helper()
	m, err := s.MarkType(name).Create(nil)
	if err != nil {
		t.Fatalf("марка %s: %v", name, err)
	}
	return m
}

// TestFragmentFromMerges: соседние текстовые ноды с одинаковыми марками
// объединяются, с разными - нет.
func TestFragmentFromMerges(t *testing.T) {
	s := testSchema(t)
	strong := mark(t, s, "strong")

	f := FragmentFrom([]*Node{s.Text("ab"), s.Text("cd")})
	if f.Count() != 1 || f.Child(0).TextString() != "abcd" {
		t.Errorf("одинаковые марки: получено %d нод, ожидалась одна %q", f.Count(), "abcd")
	}

	f = FragmentFrom([]*Node{s.Text("ab"), s.Text("cd", strong)})
	if f.Count() != 2 {
		t.Errorf("разные марки: получено %d нод, ожидалось 2", f.Count())
	}
	if f.Size() != 4 {
		t.Errorf("размер фрагмента = %d, ожидалось 4", f.Size())
	}
}

// TestNodeSize: текст считается по рунам, блок добавляет два токена границ.
func TestNodeSize(t *testing.T) {
	s := testSchema(t)
	text := s.Text("привет")
	if text.NodeSize() != 6 {
		t.Errorf("размер текста = %d, ожидалось 6", text.NodeSize())
	}
	para := s.NodeType("paragraph").Create(nil, text)
	if para.NodeSize() != 8 {
		t.Errorf("размер параграфа = %d, ожидалось 8", para.NodeSize())
	}
	doc := s.TopType().Create(nil, para)
	if doc.Content.Size() != 8 {
		t.Errorf("размер содержимого документа = %d, ожидалось 8", doc.Content.Size())
	}
}

// TestResolve: разрешение позиции внутри вложенного блока.
func TestResolve(t *testing.T) {
	s := testSchema(t)
	doc := s.TopType().Create(nil,
		s.NodeType("paragraph").Create(nil, s.Text("hello")),
		s.NodeType("blockquote").Create(nil,
			s.NodeType("paragraph").Create(nil, s.Text("world")),
		),
	)

	// Позиция в первом параграфе.
	r, err := doc.Resolve(3)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.Depth() != 1 || r.Parent().Type.Name != "paragraph" {
		t.Fatalf("глубина %d, родитель %s; ожидался параграф на глубине 1", r.Depth(), r.Parent().Type.Name)
	}
	if r.ParentOffset != 2 || r.Start(1) != 1 || r.Before(1) != 0 || r.After(1) != 7 {
		t.Errorf("границы параграфа: offset=%d start=%d before=%d after=%d",
			r.ParentOffset, r.Start(1), r.Before(1), r.After(1))
	}

	// Позиция в параграфе внутри цитаты.
	r, err = doc.Resolve(10)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.Depth() != 2 || r.Node(1).Type.Name != "blockquote" {
		t.Fatalf("глубина %d, предок %s; ожидалась цитата на глубине 1", r.Depth(), r.Node(1).Type.Name)
	}
	if r.Before(1) != 7 || r.Start(2) != 9 || r.After(2) != 15 {
		t.Errorf("границы вложенного параграфа: before(1)=%d start(2)=%d after(2)=%d",
			r.Before(1), r.Start(2), r.After(2))
	}

	if _, err := doc.Resolve(100); err == nil {
		t.Error("позиция за пределами документа должна давать ошибку")
	}
}

// TestResolveMarks: марки позиции берутся у текста перед ней.
func TestResolveMarks(t *testing.T) {
	s := testSchema(t)
	strong := mark(t, s, "strong")
	doc := s.TopType().Create(nil,
		s.NodeType("paragraph").Create(nil, s.Text("ab", strong), s.Text("cd")),
	)

	r, err := doc.Resolve(2)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if s.MarkType("strong").IsInSet(r.Marks()) == nil {
		t.Error("на границе жирного текста марка должна действовать")
	}
	r, _ = doc.Resolve(4)
	if r.Marks() != nil {
		t.Error("внутри чистого текста марок быть не должно")
	}
}

// TestResolveMarksInclusive: неинклюзивная марка действует только
// строго внутри своего отрезка.
func TestResolveMarksInclusive(t *testing.T) {
	s := testSchema(t)
	link := mark(t, s, "link")
	doc := s.TopType().Create(nil,
		s.NodeType("paragraph").Create(nil, s.Text("ab", link), s.Text("cd")),
	)
	lt := s.MarkType("link")

	// строго внутри отрезка
	r, err := doc.Resolve(2)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if lt.IsInSet(r.Marks()) == nil {
		t.Error("внутри отрезка ссылка должна действовать")
	}

	// на конце отрезка
	r, _ = doc.Resolve(3)
	if lt.IsInSet(r.Marks()) != nil {
		t.Error("на границе ссылки марка не должна расширяться")
	}

	// в начале отрезка
	r, _ = doc.Resolve(1)
	if lt.IsInSet(r.Marks()) != nil {
		t.Error("перед ссылкой марка не должна действовать")
	}
}

// TestReplaceInline: замена внутри одного текстового блока.
func TestReplaceInline(t *testing.T) {
	s := testSchema(t)
	doc := s.TopType().Create(nil,
		s.NodeType("paragraph").Create(nil, s.Text("hello")),
	)

	got, err := doc.Replace(1, 3, NewFragment(s.Text("XY")))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if text := got.TextBetween(0, got.Content.Size(), "\n"); text != "XYllo" {
		t.Errorf("текст = %q, ожидалось %q", text, "XYllo")
	}
	// Исходный документ не изменился.
	if doc.Child(0).TextContent() != "hello" {
		t.Error("замена не должна менять исходный документ")
	}
}

// TestReplaceCrossBlock: удаление через границу параграфов сливает их
// остатки в один блок.
func TestReplaceCrossBlock(t *testing.T) {
	s := testSchema(t)
	doc := s.TopType().Create(nil,
		s.NodeType("paragraph").Create(nil, s.Text("hello")),
		s.NodeType("paragraph").Create(nil, s.Text("world")),
	)

	got, err := doc.Replace(4, 10, EmptyFragment)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got.ChildCount() != 1 {
		t.Fatalf("блоков после слияния = %d, ожидался 1", got.ChildCount())
	}
	if text := got.Child(0).TextContent(); text != "helrld" {
		t.Errorf("текст = %q, ожидалось %q", text, "helrld")
	}
}

// TestReplaceBlocks: блочное содержимое вставляется только по границам нод.
func TestReplaceBlocks(t *testing.T) {
	s := testSchema(t)
	para := s.NodeType("paragraph")
	doc := s.TopType().Create(nil,
		para.Create(nil, s.Text("hello")),
		para.Create(nil, s.Text("world")),
	)
	heading := s.NodeType("heading").Create(map[string]any{"level": 2}, s.Text("title"))

	got, err := doc.Replace(7, 14, NewFragment(heading))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got.Child(1).Type.Name != "heading" || got.Child(1).TextContent() != "title" {
		t.Errorf("второй блок = %s %q, ожидался заголовок %q",
			got.Child(1).Type.Name, got.Child(1).TextContent(), "title")
	}

	if _, err := doc.Replace(3, 14, NewFragment(heading)); err == nil {
		t.Error("блочная замена не по границе ноды должна давать ошибку")
	}
}

// TestApplyMarkRestore: наложение и снятие марки возвращают документ в
// исходное состояние, разрезанный текст сливается обратно.
func TestApplyMarkRestore(t *testing.T) {
	s := testSchema(t)
	strong := mark(t, s, "strong")
	doc := s.TopType().Create(nil,
		s.NodeType("paragraph").Create(nil, s.Text("hello")),
	)

	marked, err := doc.ApplyMark(2, 4, strong, true)
	if err != nil {
		t.Fatalf("apply mark: %v", err)
	}
	if !marked.RangeHasMark(2, 4, strong.Type) {
		t.Fatal("диапазон должен нести марку")
	}
	if marked.Child(0).ChildCount() != 3 {
		t.Errorf("текст должен быть разрезан на 3 ноды, получено %d", marked.Child(0).ChildCount())
	}

	restored, err := marked.ApplyMark(2, 4, strong, false)
	if err != nil {
		t.Fatalf("remove mark: %v", err)
	}
	if !restored.Eq(doc) {
		t.Error("после снятия марки документ должен совпадать с исходным")
	}
}

// TestWrapLift: оборачивание в цитату и обратный подъём восстанавливают
// документ.
func TestWrapLift(t *testing.T) {
	s := testSchema(t)
	para := s.NodeType("paragraph")
	doc := s.TopType().Create(nil,
		para.Create(nil, s.Text("a")),
		para.Create(nil, s.Text("b")),
	)

	wrapped, start, end, err := doc.Wrap(1, 5, s.NodeType("blockquote"), nil)
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if start != 0 || end != 6 {
		t.Errorf("границы оборачивания = [%d, %d), ожидалось [0, 6)", start, end)
	}
	if wrapped.ChildCount() != 1 || wrapped.Child(0).Type.Name != "blockquote" {
		t.Fatal("оба параграфа должны оказаться в одной цитате")
	}

	result, err := wrapped.Lift(2, 6)
	if err != nil {
		t.Fatalf("lift: %v", err)
	}
	if result.SplitBefore || result.SplitAfter {
		t.Error("полный подъём не должен оставлять части контейнера")
	}
	if !result.Doc.Eq(doc) {
		t.Error("подъём после оборачивания должен восстановить документ")
	}
}

// TestLiftSplit: подъём среднего блока разделяет контейнер.
func TestLiftSplit(t *testing.T) {
	s := testSchema(t)
	para := s.NodeType("paragraph")
	doc := s.TopType().Create(nil,
		s.NodeType("blockquote").Create(nil,
			para.Create(nil, s.Text("a")),
			para.Create(nil, s.Text("b")),
			para.Create(nil, s.Text("c")),
		),
	)

	// Средний параграф занимает [4, 7) внутри цитаты [0, 11).
	result, err := doc.Lift(5, 6)
	if err != nil {
		t.Fatalf("lift: %v", err)
	}
	if !result.SplitBefore || !result.SplitAfter {
		t.Fatalf("подъём из середины должен разделить контейнер: %+v", result)
	}
	got := result.Doc
	if got.ChildCount() != 3 ||
		got.Child(0).Type.Name != "blockquote" ||
		got.Child(1).Type.Name != "paragraph" ||
		got.Child(2).Type.Name != "blockquote" {
		t.Errorf("структура после подъёма: %d блоков", got.ChildCount())
	}
	if got.Child(1).TextContent() != "b" {
		t.Errorf("поднят блок %q, ожидался %q", got.Child(1).TextContent(), "b")
	}
}

// TestSetBlockType: смена типа блока сохраняет содержимое и применяет
// атрибуты.
func TestSetBlockType(t *testing.T) {
	s := testSchema(t)
	doc := s.TopType().Create(nil,
		s.NodeType("paragraph").Create(nil, s.Text("title")),
	)

	got, err := doc.SetBlockType(1, 2, s.NodeType("heading"), map[string]any{"level": 3})
	if err != nil {
		t.Fatalf("set block type: %v", err)
	}
	block := got.Child(0)
	if block.Type.Name != "heading" || block.Attrs["level"] != 3 {
		t.Errorf("блок = %s level=%v, ожидался заголовок уровня 3", block.Type.Name, block.Attrs["level"])
	}
	if block.TextContent() != "title" {
		t.Errorf("текст = %q, ожидалось %q", block.TextContent(), "title")
	}
}

// TestSetNodeAttribute: установка атрибута ноды по позиции.
func TestSetNodeAttribute(t *testing.T) {
	s := testSchema(t)
	doc := s.TopType().Create(nil,
		s.NodeType("heading").Create(map[string]any{"level": 1}, s.Text("h")),
	)

	got, err := doc.SetNodeAttribute(0, "level", 4)
	if err != nil {
		t.Fatalf("set attribute: %v", err)
	}
	if got.Child(0).Attrs["level"] != 4 {
		t.Errorf("level = %v, ожидалось 4", got.Child(0).Attrs["level"])
	}
	if doc.Child(0).Attrs["level"] != 1 {
		t.Error("исходный документ не должен меняться")
	}
}

// TestCut: вырезание диапазона сохраняет частично покрытые блоки.
func TestCut(t *testing.T) {
	s := testSchema(t)
	para := s.NodeType("paragraph")
	doc := s.TopType().Create(nil,
		para.Create(nil, s.Text("hello")),
		para.Create(nil, s.Text("world")),
	)

	cut := doc.Cut(0, 7)
	if cut.ChildCount() != 1 || cut.Child(0).TextContent() != "hello" {
		t.Errorf("вырезан блок %q, ожидался %q", cut.Child(0).TextContent(), "hello")
	}

	cut = doc.Cut(3, 10)
	if cut.ChildCount() != 2 ||
		cut.Child(0).TextContent() != "llo" ||
		cut.Child(1).TextContent() != "wo" {
		t.Errorf("частичное вырезание: %d блоков", cut.ChildCount())
	}
}

// TestJSONRoundTrip: сериализация в JSON и обратно даёт равный документ.
func TestJSONRoundTrip(t *testing.T) {
	s := testSchema(t)
	strong := mark(t, s, "strong")
	em := mark(t, s, "em")
	doc := s.TopType().Create(nil,
		s.NodeType("heading").Create(map[string]any{"level": 2}, s.Text("title")),
		s.NodeType("paragraph").Create(nil,
			s.Text("plain "),
			s.Text("bold", strong),
			s.Text("both", strong, em),
		),
		s.NodeType("blockquote").Create(nil,
			s.NodeType("paragraph").Create(nil, s.Text("quoted")),
		),
	)

	data, err := MarshalNode(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnmarshalNode(s, data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Eq(doc) {
		t.Errorf("документ после round trip не равен исходному:\n%s", data)
	}

	if _, err := UnmarshalNode(s, []byte(`{"type":"widget"}`)); err == nil {
		t.Error("неизвестный тип ноды должен давать ошибку")
	}
}

// TestCreateChecked: нарушения схемы при создании нод.
func TestCreateChecked(t *testing.T) {
	s := testSchema(t)
	para := s.NodeType("paragraph")

	// Блок внутри инлайн-содержимого.
	if _, err := para.CreateChecked(nil, para.Create(nil)); err == nil {
		t.Error("параграф внутри параграфа должен нарушать схему")
	}
	// Пустой документ: block+ требует хотя бы один блок.
	if _, err := s.TopType().CreateChecked(nil); err == nil {
		t.Error("пустой документ должен нарушать схему")
	}
	// Неизвестный атрибут.
	if _, err := s.NodeType("heading").CreateChecked(map[string]any{"depth": 1}, s.Text("h")); err == nil {
		t.Error("неизвестный атрибут должен нарушать схему")
	}
	// Корректная нода проходит.
	if _, err := para.CreateChecked(nil, s.Text("ok")); err != nil {
		t.Errorf("корректный параграф: %v", err)
	}
}

// TestCheckAttrs: проверка атрибутов не требует содержимого, в отличие
// от CreateChecked.
func TestCheckAttrs(t *testing.T) {
	s, err := NewSchema(&SchemaSpec{
		Nodes: []*NodeSpec{
			{Name: "doc", Content: "block+"},
			{Name: "text", Group: "inline"},
			{Name: "paragraph", Content: "inline*", Group: "block"},
			{Name: "callout", Content: "paragraph+", Group: "block", Attrs: map[string]*Attribute{
				"kind": EnumAttr("note", "tip"),
			}},
		},
	})
	if err != nil {
		t.Fatalf("схема: %v", err)
	}
	callout := s.NodeType("callout")

	// Тип требует содержимое: создание без детей падает, проверка
	// атрибутов - нет.
	if _, err := callout.CreateChecked(map[string]any{"kind": "tip"}); err == nil {
		t.Error("callout без содержимого должен нарушать схему")
	}
	if err := callout.CheckAttrs(map[string]any{"kind": "tip"}); err != nil {
		t.Errorf("CheckAttrs с допустимым значением: %v", err)
	}
	if err := callout.CheckAttrs(map[string]any{"kind": "bogus"}); err == nil {
		t.Error("недопустимое значение атрибута должно давать ошибку")
	}
	if err := callout.CheckAttrs(map[string]any{"size": 1}); err == nil {
		t.Error("неизвестный атрибут должен давать ошибку")
	}
}

// TestMarkSetOrder: марки в наборе держатся в порядке объявления схемы.
func TestMarkSetOrder(t *testing.T) {
	s := testSchema(t)
	strong := mark(t, s, "strong")
	em := mark(t, s, "em")

	set := em.AddToSet(nil)
	set = strong.AddToSet(set)
	if len(set) != 2 || set[0].Type.Name != "strong" || set[1].Type.Name != "em" {
		t.Fatalf("порядок набора: %v", markNames(set))
	}
	// Повторное добавление не меняет набор.
	if again := strong.AddToSet(set); len(again) != 2 {
		t.Errorf("повторное добавление: %d марок", len(again))
	}
	// Снятие по типу.
	set = RemoveMarkType(set, strong.Type)
	if len(set) != 1 || set[0].Type.Name != "em" {
		t.Errorf("после снятия: %v", markNames(set))
	}

	// Text нормализует порядок независимо от порядка аргументов.
	a := s.Text("x", em, strong)
	b := s.Text("x", strong, em)
	if !a.Eq(b) {
		t.Error("порядок марок в Text должен быть каноническим")
	}
}

func markNames(set []*Mark) []string {
	names := make([]string, len(set))
	for i, m := range set {
		names[i] = m.Type.Name
	}
	return names
}
