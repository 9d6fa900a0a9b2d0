package state

import (
	"testing"

	"github.com/aisa-it/aipress/editor/model"
	"github.com/aisa-it/aipress/editor/schemas"
)

// mustMark создаёт марку типа с атрибутами по умолчанию.
func mustMark(t *testing.T, typ *model.MarkType) *model.Mark {
	t.Helper()
	m, err := typ.Create(nil)
	if err != nil {
		t.Fatalf("марка %s: %v", typ.Name, err)
	}
	return m
}

// paraDoc строит документ из одного параграфа с данным текстом.
func paraDoc(s *model.Schema, text string) *model.Node {
	return s.TopType().Create(nil,
		s.NodeType("paragraph").Create(nil, s.Text(text)),
	)
}

// TestStepMapMap: отображение позиций через вставку, удаление и замену,
// с учётом стороны assoc на границах.
func TestStepMapMap(t *testing.T) {
	cases := []struct {
		name    string
		triples [][3]int
		pos     int
		assoc   int
		want    int
		deleted bool
	}{
		{"вставка перед позицией", [][3]int{{1, 0, 4}}, 5, 1, 9, false},
		{"позиция до вставки", [][3]int{{1, 0, 4}}, 0, 1, 0, false},
		{"вставка в позицию, assoc=-1", [][3]int{{1, 0, 4}}, 1, -1, 1, false},
		{"вставка в позицию, assoc=1", [][3]int{{1, 0, 4}}, 1, 1, 5, false},
		{"позиция внутри удаления", [][3]int{{4, 8, 0}}, 5, 1, 4, true},
		{"позиция на левой границе удаления", [][3]int{{4, 8, 0}}, 4, 1, 4, false},
		{"позиция на правой границе удаления", [][3]int{{4, 8, 0}}, 12, -1, 4, false},
		{"позиция за удалением", [][3]int{{4, 8, 0}}, 13, 1, 5, false},
		{"позиция внутри замены", [][3]int{{2, 2, 5}}, 3, 1, 7, true},
		{"позиция внутри замены, assoc=-1", [][3]int{{2, 2, 5}}, 3, -1, 2, true},
		{"две вставки", [][3]int{{1, 0, 1}, {6, 0, 1}}, 8, 1, 10, false},
	}
	for _, tc := range cases {
		m := NewStepMap(tc.triples...)
		r := m.MapResult(tc.pos, tc.assoc)
		if r.Pos != tc.want || r.Deleted != tc.deleted {
			t.Errorf("%s: MapResult(%d, %d) = (%d, %v), ожидалось (%d, %v)",
				tc.name, tc.pos, tc.assoc, r.Pos, r.Deleted, tc.want, tc.deleted)
		}
	}
}

// TestMappingSequence: композиция отображений применяет шаги по порядку
// и помнит удаление любым из них.
func TestMappingSequence(t *testing.T) {
	var m Mapping
	m.Append(NewStepMap([3]int{1, 0, 4})) // вставка 4 в позицию 1
	m.Append(NewStepMap([3]int{0, 2, 0})) // удаление [0, 2)

	if got := m.Map(5, 1); got != 7 {
		t.Errorf("Map(5) = %d, ожидалось 7", got)
	}
	r := m.MapResult(0, 1)
	if r.Pos != 0 {
		t.Errorf("Map(0) = %d, ожидалось 0", r.Pos)
	}
	// Позиция 1 после первой вставки попадает внутрь удаляемого диапазона.
	if r := m.MapResult(1, -1); !r.Deleted {
		t.Error("позиция, удалённая вторым шагом, должна быть помечена Deleted")
	}
}

// TestTransactionMapsSelection: выделение автоматически отображается
// через шаги, пока не установлено явно.
func TestTransactionMapsSelection(t *testing.T) {
	s := schemas.MustArticleSchema()
	st := &EditorState{Schema: s, Doc: paraDoc(s, "hello"), Selection: NewSelection(3, 5)}

	tr := st.Tr()
	if err := tr.Replace(1, 1, model.NewFragment(s.Text("ab"))); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if tr.Selection != NewSelection(5, 7) {
		t.Errorf("выделение после вставки = %+v, ожидалось {5 7}", tr.Selection)
	}

	// Вставка точно в якорь не сдвигает его (assoc = -1).
	tr2 := st.Tr()
	if err := tr2.Replace(3, 3, model.NewFragment(s.Text("x"))); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if tr2.Selection.Anchor != 3 {
		t.Errorf("якорь после вставки в его позицию = %d, ожидалось 3", tr2.Selection.Anchor)
	}

	// Явно установленное выделение дальше не отображается.
	tr3 := st.Tr()
	if err := tr3.SetSelection(Cursor(2)); err != nil {
		t.Fatalf("set selection: %v", err)
	}
	if err := tr3.Replace(1, 1, model.NewFragment(s.Text("y"))); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if tr3.Selection != Cursor(2) {
		t.Errorf("явное выделение = %+v, ожидалось курсор 2", tr3.Selection)
	}
}

// TestReplaceSelectionCursor: замена выделения ставит курсор после
// вставленного содержимого.
func TestReplaceSelectionCursor(t *testing.T) {
	s := schemas.MustArticleSchema()
	st := &EditorState{Schema: s, Doc: paraDoc(s, "hello"), Selection: NewSelection(1, 6)}

	tr := st.Tr()
	if err := tr.ReplaceSelection(model.NewFragment(s.Text("xy"))); err != nil {
		t.Fatalf("replace selection: %v", err)
	}
	if tr.Selection != Cursor(3) {
		t.Errorf("курсор = %+v, ожидалось 3", tr.Selection)
	}
	if got := tr.Doc.TextBetween(0, tr.Doc.Content.Size(), "\n"); got != "xy" {
		t.Errorf("текст документа = %q, ожидалось %q", got, "xy")
	}
}

// TestInsertTextStoredMarks: отложенные марки применяются к вводимому
// тексту и переносятся в следующий снимок.
func TestInsertTextStoredMarks(t *testing.T) {
	s := schemas.MustArticleSchema()
	st := &EditorState{Schema: s, Doc: paraDoc(s, "ab"), Selection: Cursor(2)}
	strong := s.MarkType("strong")

	tr := st.Tr()
	tr.AddStoredMark(mustMark(t, strong))
	if err := tr.InsertText("c"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	st2 := st.Apply(tr)
	if !st2.Doc.RangeHasMark(2, 3, strong) {
		t.Error("вставленный текст должен нести отложенную марку")
	}
	if strong.IsInSet(st2.StoredMarks) == nil {
		t.Error("отложенные марки должны перейти в новый снимок")
	}

	// Снятие отложенной марки: следующий ввод чистый, хотя курсор стоит
	// в размеченном тексте.
	tr2 := st2.Tr()
	tr2.RemoveStoredMark(strong)
	if err := tr2.InsertText("d"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	st3 := st2.Apply(tr2)
	if st3.Doc.RangeHasMark(3, 4, strong) {
		t.Error("после снятия отложенной марки ввод должен быть без неё")
	}
}

// TestInsertTextInheritsMarks: без отложенных марок ввод наследует марки
// позиции курсора.
func TestInsertTextInheritsMarks(t *testing.T) {
	s := schemas.MustArticleSchema()
	strong := s.MarkType("strong")
	doc := s.TopType().Create(nil,
		s.NodeType("paragraph").Create(nil, s.Text("ab", mustMark(t, strong))),
	)
	st := &EditorState{Schema: s, Doc: doc, Selection: Cursor(2)}

	tr := st.Tr()
	if err := tr.InsertText("c"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !tr.Doc.RangeHasMark(2, 3, strong) {
		t.Error("ввод внутри жирного текста должен быть жирным")
	}
}

// TestDeleteSelection: удаление схлопнутого выделения не меняет документ.
func TestDeleteSelection(t *testing.T) {
	s := schemas.MustArticleSchema()
	st := &EditorState{Schema: s, Doc: paraDoc(s, "hello"), Selection: Cursor(3)}

	tr := st.Tr()
	if err := tr.DeleteSelection(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if tr.DocChanged() {
		t.Error("удаление пустого выделения не должно порождать шагов")
	}

	st.Selection = NewSelection(1, 4)
	tr2 := st.Tr()
	if err := tr2.DeleteSelection(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := tr2.Doc.TextBetween(0, tr2.Doc.Content.Size(), "\n"); got != "lo" {
		t.Errorf("текст после удаления = %q, ожидалось %q", got, "lo")
	}
	if tr2.Selection != Cursor(1) {
		t.Errorf("курсор после удаления = %+v, ожидалось 1", tr2.Selection)
	}
}

// TestApplyImmutable: применение транзакции не трогает исходный снимок.
func TestApplyImmutable(t *testing.T) {
	s := schemas.MustArticleSchema()
	doc := paraDoc(s, "hello")
	st := &EditorState{Schema: s, Doc: doc, Selection: Cursor(1)}

	tr := st.Tr()
	if tr.Before() != st {
		t.Fatal("Before должен возвращать исходный снимок")
	}
	if err := tr.InsertText("!"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	st2 := st.Apply(tr)

	if st.Doc != doc {
		t.Error("документ исходного снимка не должен меняться")
	}
	if st2 == st || st2.Doc == doc {
		t.Error("применение должно давать новый снимок с новым документом")
	}
}

// TestTransactionMeta: метаданные не меняют документ и читаются по ключу.
func TestTransactionMeta(t *testing.T) {
	s := schemas.MustArticleSchema()
	st := &EditorState{Schema: s, Doc: paraDoc(s, "a"), Selection: Cursor(0)}

	tr := st.Tr()
	tr.SetMeta("origin", "remote")
	if got := tr.GetMeta("origin"); got != "remote" {
		t.Errorf("GetMeta = %v, ожидалось %q", got, "remote")
	}
	if tr.GetMeta("missing") != nil {
		t.Error("отсутствующий ключ должен давать nil")
	}
	if tr.DocChanged() {
		t.Error("метаданные не должны считаться правкой документа")
	}
}

// TestStepError: неудачный шаг оставляет транзакцию нетронутой.
func TestStepError(t *testing.T) {
	s := schemas.MustArticleSchema()
	st := &EditorState{Schema: s, Doc: paraDoc(s, "ab"), Selection: Cursor(1)}

	tr := st.Tr()
	if err := tr.Replace(100, 200, model.EmptyFragment); err == nil {
		t.Fatal("замена за пределами документа должна давать ошибку")
	}
	if tr.DocChanged() || tr.Doc != st.Doc {
		t.Error("после ошибки шага документ транзакции не должен меняться")
	}
}
