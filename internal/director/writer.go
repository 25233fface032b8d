package director

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/pinstudio/internal/overlay"
)

// WriteStoryboard сохраняет сториборд в YAML-файл
func WriteStoryboard(sb *Storyboard, path string) error {
	if sb.Version == "" {
		sb.Version = StoryboardVersion
	}
	data, err := yaml.Marshal(sb)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadStoryboard читает сториборд из YAML-файла и проверяет правки слайдов
func ReadStoryboard(path string) (*Storyboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sb Storyboard
	if err := yaml.Unmarshal(data, &sb); err != nil {
		return nil, fmt.Errorf("storyboard %s: %w", path, err)
	}
	if len(sb.Slides) == 0 {
		return nil, fmt.Errorf("storyboard %s has no slides", path)
	}
	for i, sl := range sb.Slides {
		if sl.Image == "" {
			return nil, fmt.Errorf("storyboard %s: slide %d has no image", path, i+1)
		}
		if sl.Edit != nil {
			if err := sl.Edit.Validate(); err != nil {
				return nil, fmt.Errorf("storyboard %s: slide %d: %w", path, i+1, err)
			}
		}
	}

	return &sb, nil
}

// Presets are named edit states kept in one YAML file.
type Presets map[string]overlay.EditState

func ReadPresets(path string) (Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Presets
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("presets %s: %w", path, err)
	}
	for name, st := range p {
		if err := st.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
	}
	return p, nil
}

func WritePresets(p Presets, path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Names returns preset names sorted.
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for n := range p {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
