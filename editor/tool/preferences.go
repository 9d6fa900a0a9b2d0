package tool

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/uuid"
)

// Preferences - пользовательские настройки каталога: привязки клавиш
// (имя инструмента -> комбинация) и скрытые инструменты.
type Preferences struct {
	Keybinds    map[string]string `json:"keybinds"`
	HiddenTools []string          `json:"hiddenTools"`
}

// PreferenceStore - хранилище настроек по пользователю.
type PreferenceStore interface {
	Load(userID uuid.UUID) (*Preferences, error)
	Save(userID uuid.UUID, prefs *Preferences) error
}

// FileStore хранит настройки в JSON-файлах каталога, по файлу на
// пользователя.
type FileStore struct {
	dir string
}

// NewFileStore создаёт хранилище в каталоге dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create preferences dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(userID uuid.UUID) string {
	return filepath.Join(s.dir, userID.String()+".json")
}

// Load читает настройки пользователя. Для нового пользователя
// возвращаются пустые настройки.
func (s *FileStore) Load(userID uuid.UUID) (*Preferences, error) {
	data, err := os.ReadFile(s.path(userID))
	if errors.Is(err, fs.ErrNotExist) {
		return &Preferences{Keybinds: map[string]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	var prefs Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	if prefs.Keybinds == nil {
		prefs.Keybinds = map[string]string{}
	}
	return &prefs, nil
}

// Save записывает настройки пользователя.
func (s *FileStore) Save(userID uuid.UUID, prefs *Preferences) error {
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := os.WriteFile(s.path(userID), data, 0o644); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}

// SavePreferences снимает текущее состояние каталога в хранилище.
func (r *Registry) SavePreferences(store PreferenceStore, userID uuid.UUID) error {
	r.mu.RLock()
	prefs := &Preferences{Keybinds: make(map[string]string, len(r.keybinds))}
	for combo, name := range r.keybinds {
		prefs.Keybinds[name] = combo
	}
	for name := range r.hidden {
		prefs.HiddenTools = append(prefs.HiddenTools, name)
	}
	r.mu.RUnlock()
	return store.Save(userID, prefs)
}

// LoadPreferences применяет сохранённые настройки к каталогу.
// Привязка на занятую комбинацию или неизвестный инструмент
// пропускается с записью в лог, остальные применяются.
func (r *Registry) LoadPreferences(store PreferenceStore, userID uuid.UUID) error {
	prefs, err := store.Load(userID)
	if err != nil {
		return err
	}
	for name, combo := range prefs.Keybinds {
		if err := r.SetKeybind(combo, name); err != nil {
			slog.Warn("Skipping saved keybind", "combo", combo, "tool", name, "error", err)
		}
	}
	for _, name := range prefs.HiddenTools {
		if err := r.SetVisible(name, false); err != nil {
			slog.Warn("Skipping saved hidden tool", "tool", name, "error", err)
		}
	}
	return nil
}
