package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ivlev/pinstudio/internal/director"
	"github.com/ivlev/pinstudio/internal/effects"
	"github.com/ivlev/pinstudio/internal/export"
	"github.com/ivlev/pinstudio/internal/overlay"
	"github.com/ivlev/pinstudio/internal/source"
	"github.com/ivlev/pinstudio/internal/system"
)

const defaultPresets = "input/presets.yaml"

// editFlags are the EditState fields exposed on the command line.
type editFlags struct {
	fs       *flag.FlagSet
	text     *string
	sub      *string
	style    *string
	pos      *string
	filter   *string
	sticker  *string
	mockup   *string
	dim      *float64
	fontSize *float64
}

func addEditFlags(fs *flag.FlagSet) *editFlags {
	d := overlay.DefaultEditState()
	return &editFlags{
		fs:       fs,
		text:     fs.String("text", "", "Заголовок"),
		sub:      fs.String("sub", "", "Подзаголовок"),
		style:    fs.String("style", string(d.Style), "Стиль текста: luxury, neon, magazine, bold (modern), minimal"),
		pos:      fs.String("pos", string(d.Position), "Позиция текста: top, mid, bot, auto"),
		filter:   fs.String("filter", string(d.Filter), "Фильтр: none, noir, vivid, gold, cinema"),
		sticker:  fs.String("sticker", string(d.Sticker), "Стикер: none, sale, new, hit, best"),
		mockup:   fs.String("mockup", string(d.Mockup), "Мокап: none, phone, polaroid, browser"),
		dim:      fs.Float64("dim", d.Dim, "Затемнение 0..0.8"),
		fontSize: fs.Float64("font-size", d.FontSizePercent, "Размер шрифта в % от ширины"),
	}
}

// apply overrides st with the flags given on the command line.
func (e *editFlags) apply(st overlay.EditState) (overlay.EditState, error) {
	set := visited(e.fs)
	if set["text"] {
		st.Text = *e.text
	}
	if set["sub"] {
		st.SubText = *e.sub
	}
	if set["style"] {
		s, err := overlay.ParseStyle(*e.style)
		if err != nil {
			return st, err
		}
		st.Style = s
	}
	if set["pos"] {
		p, err := overlay.ParsePosition(*e.pos)
		if err != nil {
			return st, err
		}
		st.Position = p
	}
	if set["filter"] {
		f, err := effects.ParseFilter(*e.filter)
		if err != nil {
			return st, err
		}
		st.Filter = f
	}
	if set["sticker"] {
		st.Sticker = overlay.Sticker(strings.ToLower(*e.sticker))
	}
	if set["mockup"] {
		st.Mockup = overlay.Mockup(strings.ToLower(*e.mockup))
	}
	if set["dim"] {
		st.Dim = *e.dim
	}
	if set["font-size"] {
		st.FontSizePercent = *e.fontSize
	}
	return st, st.Validate()
}

func loadPresets(path string) (director.Presets, error) {
	p, err := director.ReadPresets(path)
	if errors.Is(err, os.ErrNotExist) {
		return director.Presets{}, nil
	}
	return p, err
}

func runEdit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	configPtr := fs.String("config", "", "YAML-файл конфигурации")
	inputPtr := fs.String("input", "", "Изображение, URL, PDF или папка (по умолчанию: самое свежее изображение в input/)")
	outputPtr := fs.String("output", "", "Файл .png или папка (по умолчанию: output/edited/)")
	presetPtr := fs.String("preset", "", "Взять настройки из пресета")
	presetsPtr := fs.String("presets", "", "Файл пресетов (по умолчанию: input/presets.yaml)")
	savePtr := fs.String("save-preset", "", "Сохранить итоговые настройки как пресет")
	watermarkPtr := fs.String("watermark", "", "Текст водяного знака")
	workersPtr := fs.Int("workers", runtime.NumCPU(), "Потоки")
	ef := addEditFlags(fs)
	fs.Parse(args)

	cfg, err := loadConfig(*configPtr)
	if err != nil {
		return err
	}

	presetsPath := *presetsPtr
	if presetsPath == "" {
		presetsPath = cfg.PresetsFile
	}
	if presetsPath == "" {
		presetsPath = defaultPresets
	}
	presets, err := loadPresets(presetsPath)
	if err != nil {
		return err
	}

	st := overlay.DefaultEditState()
	if *presetPtr != "" {
		p, ok := presets[*presetPtr]
		if !ok {
			return fmt.Errorf("пресет %q не найден в %s (есть: %s)", *presetPtr, presetsPath, strings.Join(presets.Names(), ", "))
		}
		st = p
		fmt.Printf("[*] Пресет: %s\n", *presetPtr)
	}
	if st, err = ef.apply(st); err != nil {
		return err
	}

	inputPath := *inputPtr
	if inputPath == "" {
		if inputPath, err = system.FindLatestImage(inputDir); err != nil {
			return fmt.Errorf("%v. Положите изображение в %s/", err, inputDir)
		}
		fmt.Printf("[*] Выбран файл: %s\n", inputPath)
	}
	refs := []string{inputPath}
	if !strings.Contains(inputPath, "://") && !strings.HasPrefix(inputPath, "data:") {
		if refs, err = source.Expand(inputPath); err != nil {
			return err
		}
	}

	pins := make([]*overlay.Pin, len(refs))
	for i, ref := range refs {
		pins[i] = &overlay.Pin{ID: fmt.Sprint(i + 1), Title: refTitle(ref), Original: ref}
	}

	eng := overlay.NewEngine()
	results := eng.ApplyAll(ctx, source.NewLoader(cfg.DPI), pins, st, *workersPtr)

	single := len(pins) == 1 && strings.EqualFold(filepath.Ext(*outputPtr), ".png")
	outDir := *outputPtr
	if outDir == "" || single {
		outDir = filepath.Join(outputDir, "edited")
	}
	if !single {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return err
		}
	}

	var written []string
	for i, res := range results {
		if res.Fallback {
			fmt.Printf("[!] Пропущен %s: %v\n", source.Describe(refs[i]), res.Err)
			continue
		}
		data := res.PNG
		if *watermarkPtr != "" {
			if data, err = overlay.WatermarkPNG(data, *watermarkPtr); err != nil {
				return err
			}
		}
		path := *outputPtr
		if !single {
			path = filepath.Join(outDir, fmt.Sprintf("%s_%d.png", pins[i].Title, i+1))
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return err
		}
		written = append(written, path)
		fmt.Printf("[>] %s -> %s\n", source.Describe(refs[i]), path)
	}
	if len(written) == 0 {
		return fmt.Errorf("ни одно изображение не обработано")
	}

	if *savePtr != "" {
		presets[*savePtr] = st
		if err := director.WritePresets(presets, presetsPath); err != nil {
			return err
		}
		fmt.Printf("[*] Пресет %q сохранен в %s\n", *savePtr, presetsPath)
	}

	remember(ctx, cfg, "edit", map[string]any{
		"input":   inputPath,
		"outputs": written,
		"style":   string(st.Style),
		"text":    st.Text,
	})
	fmt.Printf("[+++] Готово: %d из %d\n", len(written), len(refs))
	return nil
}

func refTitle(ref string) string {
	if i := strings.Index(ref, "#page="); i >= 0 {
		return export.Slug(filepath.Base(ref[:i]), 40) + "_p" + ref[i+len("#page="):]
	}
	base := filepath.Base(ref)
	if slug := export.Slug(strings.TrimSuffix(base, filepath.Ext(base)), 40); slug != "" {
		return slug
	}
	return "pin"
}
