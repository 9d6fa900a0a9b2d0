package tool

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/aisa-it/aipress/editor/state"
)

// Registry - каталог инструментов одной сессии редактора. Безопасен
// для конкурентного чтения.
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]Tool
	palettes map[string]*Palette
	keybinds map[string]string
	hidden   map[string]bool
}

// NewRegistry создаёт пустой каталог.
func NewRegistry() *Registry {
	return &Registry{
		tools:    map[string]Tool{},
		palettes: map[string]*Palette{},
		keybinds: map[string]string{},
		hidden:   map[string]bool{},
	}
}

// RegisterTool добавляет инструмент. Команда с сочетанием клавиш по
// умолчанию сразу получает привязку, если комбинация свободна.
func (r *Registry) RegisterTool(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := t.Def().Name
	if name == "" {
		return fmt.Errorf("tool has empty name")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	r.tools[name] = t
	if at, ok := t.(*ActionTool); ok && at.Action != nil {
		if combo := at.Action.DefaultKeyCombo(); combo != "" {
			if bound, taken := r.keybinds[combo]; taken {
				slog.Warn("Default key combo is already bound, skipping",
					"combo", combo, "tool", name, "boundTo", bound)
			} else {
				r.keybinds[combo] = name
			}
		}
	}
	return nil
}

// GetTool возвращает инструмент по имени.
func (r *Registry) GetTool(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	return t, nil
}

// RegisterPalette добавляет или замещает палитру.
func (r *Registry) RegisterPalette(p *Palette) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.palettes[p.ID] = p
}

// GetPalette возвращает палитру по идентификатору.
func (r *Registry) GetPalette(id string) (*Palette, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.palettes[id]
	if !ok {
		return nil, fmt.Errorf("%w: palette %s", ErrNotRegistered, id)
	}
	return p, nil
}

// VisiblePalette возвращает палитру без скрытых инструментов. Группы,
// опустевшие после фильтрации, опускаются.
func (r *Registry) VisiblePalette(id string) (*Palette, error) {
	p, err := r.GetPalette(id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := &Palette{ID: p.ID}
	for _, g := range p.Groups {
		var tools []string
		for _, name := range g.Tools {
			if r.toolVisible(name, map[string]bool{}) {
				tools = append(tools, name)
			}
		}
		if len(tools) > 0 {
			out.Groups = append(out.Groups, Group{Name: g.Name, Tools: tools})
		}
	}
	return out, nil
}

// toolVisible: обычный инструмент видим, когда не скрыт; меню - когда
// вдобавок видим хотя бы один его дочерний инструмент, рекурсивно через
// вложенные меню.
func (r *Registry) toolVisible(name string, seen map[string]bool) bool {
	if r.hidden[name] || seen[name] {
		return false
	}
	menu, ok := r.tools[name].(*MenuTool)
	if !ok {
		return true
	}
	seen[name] = true
	for _, child := range menu.Children {
		if r.toolVisible(child, seen) {
			return true
		}
	}
	return false
}

// IsVisible сообщает видимость инструмента.
func (r *Registry) IsVisible(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.hidden[name]
}

// SetVisible управляет видимостью инструмента в палитрах.
func (r *Registry) SetVisible(name string, visible bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	if visible {
		delete(r.hidden, name)
	} else {
		r.hidden[name] = true
	}
	return nil
}

// GetKeybind возвращает инструмент, привязанный к комбинации.
func (r *Registry) GetKeybind(combo string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.keybinds[combo]
	if !ok {
		return nil, false
	}
	t, ok := r.tools[name]
	return t, ok
}

// Keybinds возвращает копию текущих привязок: комбинация - имя
// инструмента.
func (r *Registry) Keybinds() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.keybinds))
	for combo, name := range r.keybinds {
		out[combo] = name
	}
	return out
}

// SetKeybind привязывает комбинацию к инструменту, снимая его прежнюю
// привязку. Комбинация, занятая другим инструментом, не
// перехватывается: возвращается ErrKeybindConflict, существующая
// привязка не меняется.
func (r *Registry) SetKeybind(combo, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	if bound, taken := r.keybinds[combo]; taken && bound != name {
		return fmt.Errorf("%w: %s is bound to %s", ErrKeybindConflict, combo, bound)
	}
	// Инструмент держит не более одной комбинации: новая снимает старую.
	for c, n := range r.keybinds {
		if n == name {
			delete(r.keybinds, c)
		}
	}
	r.keybinds[combo] = name
	return nil
}

// RemoveKeybind снимает привязку комбинации.
func (r *Registry) RemoveKeybind(combo string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.keybinds, combo)
}

// IsActive сообщает активность инструмента на снимке. Меню активно,
// когда активен любой из его дочерних инструментов.
func (r *Registry) IsActive(name string, st *state.EditorState) bool {
	t, err := r.GetTool(name)
	if err != nil {
		return false
	}
	switch tt := t.(type) {
	case *ActionTool:
		return tt.Action != nil && tt.Action.IsActive(st)
	case *MenuTool:
		for _, child := range tt.Children {
			if r.IsActive(child, st) {
				return true
			}
		}
	}
	return false
}

// IsApplicable сообщает применимость инструмента на снимке. Колбэки и
// меню применимы всегда.
func (r *Registry) IsApplicable(name string, st *state.EditorState) bool {
	t, err := r.GetTool(name)
	if err != nil {
		return false
	}
	if tt, ok := t.(*ActionTool); ok {
		return tt.Action != nil && tt.Action.IsApplicable(st)
	}
	return true
}
