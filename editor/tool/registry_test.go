package tool

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisa-it/aipress/editor/action"
	"github.com/aisa-it/aipress/editor/model"
	"github.com/aisa-it/aipress/editor/schemas"
	"github.com/aisa-it/aipress/editor/state"
)

// newTestRegistry собирает каталог с командами жирного и курсива,
// привязанными к ctrl_b и ctrl_i.
func newTestRegistry(t *testing.T) (*Registry, *model.Schema) {
	t.Helper()
	s, err := schemas.NewArticleSchema()
	require.NoError(t, err)
	r := NewRegistry()
	bold, err := action.NewToggleMark(s, "strong", "ctrl_b")
	require.NoError(t, err)
	italic, err := action.NewToggleMark(s, "em", "ctrl_i")
	require.NoError(t, err)
	require.NoError(t, r.RegisterTool(&ActionTool{
		ToolDef: ToolDef{Name: "ToggleBold", LongName: "Жирный", Icon: "format_bold"},
		Action:  bold,
	}))
	require.NoError(t, r.RegisterTool(&ActionTool{
		ToolDef: ToolDef{Name: "ToggleItalic", LongName: "Курсив", Icon: "format_italic"},
		Action:  italic,
	}))
	return r, s
}

func TestRegisterTool(t *testing.T) {
	r, _ := newTestRegistry(t)

	// повторная регистрация отклоняется
	err := r.RegisterTool(&CallbackTool{ToolDef: ToolDef{Name: "ToggleBold"}})
	assert.ErrorIs(t, err, ErrDuplicateTool)

	// привязки по умолчанию выставлены
	tool, ok := r.GetKeybind("ctrl_b")
	require.True(t, ok)
	assert.Equal(t, "ToggleBold", tool.Def().Name)

	_, err = r.GetTool("Nope")
	assert.ErrorIs(t, err, ErrNotRegistered)
}

// TestKeybindConflict: занятая комбинация не перехватывается, привязка
// не меняется.
func TestKeybindConflict(t *testing.T) {
	r, _ := newTestRegistry(t)

	err := r.SetKeybind("ctrl_b", "ToggleItalic")
	assert.ErrorIs(t, err, ErrKeybindConflict)

	tool, ok := r.GetKeybind("ctrl_b")
	require.True(t, ok)
	assert.Equal(t, "ToggleBold", tool.Def().Name, "привязка должна остаться прежней")

	// привязка той же комбинации тому же инструменту не конфликт
	assert.NoError(t, r.SetKeybind("ctrl_b", "ToggleBold"))

	// свободная комбинация привязывается, прежняя привязка инструмента
	// снимается
	require.NoError(t, r.SetKeybind("ctrl_shift_b", "ToggleItalic"))
	tool, ok = r.GetKeybind("ctrl_shift_b")
	require.True(t, ok)
	assert.Equal(t, "ToggleItalic", tool.Def().Name)
	_, ok = r.GetKeybind("ctrl_i")
	assert.False(t, ok)

	// неизвестный инструмент
	assert.ErrorIs(t, r.SetKeybind("ctrl_x", "Nope"), ErrNotRegistered)

	r.RemoveKeybind("ctrl_shift_b")
	_, ok = r.GetKeybind("ctrl_shift_b")
	assert.False(t, ok)
}

func TestVisiblePalette(t *testing.T) {
	r, _ := newTestRegistry(t)
	r.RegisterPalette(&Palette{
		ID: "toolbar",
		Groups: []Group{
			{Name: "Форматирование", Tools: []string{"ToggleBold", "ToggleItalic"}},
			{Name: "Одиночный", Tools: []string{"ToggleBold"}},
		},
	})

	require.NoError(t, r.SetVisible("ToggleBold", false))
	assert.False(t, r.IsVisible("ToggleBold"))

	p, err := r.VisiblePalette("toolbar")
	require.NoError(t, err)
	// группа, опустевшая после фильтрации, опускается
	require.Len(t, p.Groups, 1)
	assert.Equal(t, []string{"ToggleItalic"}, p.Groups[0].Tools)

	require.NoError(t, r.SetVisible("ToggleBold", true))
	p, err = r.VisiblePalette("toolbar")
	require.NoError(t, err)
	assert.Len(t, p.Groups, 2)

	assert.ErrorIs(t, r.SetVisible("Nope", false), ErrNotRegistered)
}

// TestVisiblePaletteMenu: меню скрывается вместе с последним видимым
// дочерним инструментом.
func TestVisiblePaletteMenu(t *testing.T) {
	r, _ := newTestRegistry(t)
	require.NoError(t, r.RegisterTool(&MenuTool{
		ToolDef:  ToolDef{Name: "formatting.menu"},
		Children: []string{"ToggleBold", "ToggleItalic"},
	}))
	r.RegisterPalette(&Palette{
		ID:     "menubar",
		Groups: []Group{{Name: "Меню", Tools: []string{"formatting.menu"}}},
	})

	require.NoError(t, r.SetVisible("ToggleBold", false))
	p, err := r.VisiblePalette("menubar")
	require.NoError(t, err)
	require.Len(t, p.Groups, 1, "меню с видимым ребёнком остаётся")

	require.NoError(t, r.SetVisible("ToggleItalic", false))
	p, err = r.VisiblePalette("menubar")
	require.NoError(t, err)
	assert.Empty(t, p.Groups, "меню без видимых детей скрывается")

	require.NoError(t, r.SetVisible("ToggleItalic", true))
	p, err = r.VisiblePalette("menubar")
	require.NoError(t, err)
	require.Len(t, p.Groups, 1)
	assert.Equal(t, []string{"formatting.menu"}, p.Groups[0].Tools)
}

// TestMenuIsActive: меню активно, когда активен любой дочерний
// инструмент.
func TestMenuIsActive(t *testing.T) {
	r, s := newTestRegistry(t)
	require.NoError(t, r.RegisterTool(&MenuTool{
		ToolDef:  ToolDef{Name: "formatting.menu"},
		Children: []string{"ToggleBold", "ToggleItalic"},
	}))

	strong, err := s.MarkType("strong").Create(nil)
	require.NoError(t, err)
	doc := s.TopType().Create(nil,
		s.NodeType("paragraph").Create(nil, s.Text("bold", strong)),
	)
	st := &state.EditorState{Schema: s, Doc: doc, Selection: state.NewSelection(1, 5)}

	assert.True(t, r.IsActive("ToggleBold", st))
	assert.False(t, r.IsActive("ToggleItalic", st))
	assert.True(t, r.IsActive("formatting.menu", st))

	// меню и колбэки применимы всегда
	assert.True(t, r.IsApplicable("formatting.menu", st))
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	userID := uuid.Must(uuid.NewV4())

	// новый пользователь получает пустые настройки
	prefs, err := store.Load(userID)
	require.NoError(t, err)
	assert.Empty(t, prefs.Keybinds)
	assert.Empty(t, prefs.HiddenTools)

	saved := &Preferences{
		Keybinds:    map[string]string{"ToggleItalic": "ctrl_shift_x"},
		HiddenTools: []string{"ToggleBold"},
	}
	require.NoError(t, store.Save(userID, saved))

	loaded, err := store.Load(userID)
	require.NoError(t, err)
	assert.Equal(t, saved.Keybinds, loaded.Keybinds)
	assert.Equal(t, saved.HiddenTools, loaded.HiddenTools)
}

// TestPreferencesRoundTrip: настройки каталога переживают сохранение и
// загрузку в свежую сессию.
func TestPreferencesRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	userID := uuid.Must(uuid.NewV4())

	r, _ := newTestRegistry(t)
	require.NoError(t, r.SetKeybind("ctrl_shift_i", "ToggleItalic"))
	require.NoError(t, r.SetVisible("ToggleBold", false))
	require.NoError(t, r.SavePreferences(store, userID))

	// в долговременном формате привязка ключуется именем инструмента
	saved, err := store.Load(userID)
	require.NoError(t, err)
	assert.Equal(t, "ctrl_shift_i", saved.Keybinds["ToggleItalic"])

	// свежая сессия с теми же инструментами
	r2, _ := newTestRegistry(t)
	require.NoError(t, r2.LoadPreferences(store, userID))

	tool, ok := r2.GetKeybind("ctrl_shift_i")
	require.True(t, ok)
	assert.Equal(t, "ToggleItalic", tool.Def().Name)
	assert.False(t, r2.IsVisible("ToggleBold"))

	// привязки по умолчанию не потеряны
	tool, ok = r2.GetKeybind("ctrl_b")
	require.True(t, ok)
	assert.Equal(t, "ToggleBold", tool.Def().Name)
}

// TestLoadPreferencesSkipsBroken: настройки с неизвестным инструментом
// или занятой комбинацией применяются частично.
func TestLoadPreferencesSkipsBroken(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	userID := uuid.Must(uuid.NewV4())
	require.NoError(t, store.Save(userID, &Preferences{
		Keybinds: map[string]string{
			"ToggleItalic": "ctrl_b",       // занято ToggleBold
			"Gone":         "ctrl_shift_q", // инструмент не зарегистрирован
			"SetLink":      "ctrl_shift_k",
		},
		HiddenTools: []string{"Gone", "ToggleBold"},
	}))

	r, s := newTestRegistry(t)
	link, err := action.NewToggleWordMark(s, "link", "ctrl_l")
	require.NoError(t, err)
	require.NoError(t, r.RegisterTool(&ActionTool{
		ToolDef: ToolDef{Name: "SetLink", LongName: "Ссылка", Icon: "link"},
		Action:  link,
	}))
	require.NoError(t, r.LoadPreferences(store, userID))

	// конфликтная привязка пропущена, обе прежние целы
	tool, ok := r.GetKeybind("ctrl_b")
	require.True(t, ok)
	assert.Equal(t, "ToggleBold", tool.Def().Name)
	tool, ok = r.GetKeybind("ctrl_i")
	require.True(t, ok)
	assert.Equal(t, "ToggleItalic", tool.Def().Name)

	// корректная привязка применена
	tool, ok = r.GetKeybind("ctrl_shift_k")
	require.True(t, ok)
	assert.Equal(t, "SetLink", tool.Def().Name)

	assert.False(t, r.IsVisible("ToggleBold"))
}
