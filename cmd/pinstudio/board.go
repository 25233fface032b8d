package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/ivlev/pinstudio/internal/director"
	"github.com/ivlev/pinstudio/internal/overlay"
	"github.com/ivlev/pinstudio/internal/source"
)

func runBoard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("board", flag.ExitOnError)
	configPtr := fs.String("config", "", "YAML-файл конфигурации")
	inputPtr := fs.String("input", inputDir, "Папка с изображениями или PDF")
	outputPtr := fs.String("output", "", "Файл сториборда (по умолчанию: input/boards/storyboard_<время>.yaml)")
	titlePtr := fs.String("title", "", "Название")
	durationPtr := fs.Float64("duration", 0, "Желаемая длительность видео в секундах (0 = из конфигурации)")
	pacePtr := fs.Float64("pace", 0.75, "Секунд на блок деталей, если -duration не задан (0 = выкл)")
	audioPtr := fs.String("audio", "", "Звук для сториборда")
	presetPtr := fs.String("preset", "", "Пресет правок для всех слайдов")
	ef := addEditFlags(fs)
	fs.Parse(args)

	cfg, err := loadConfig(*configPtr)
	if err != nil {
		return err
	}
	refs, err := source.Expand(*inputPtr)
	if err != nil {
		return err
	}

	var base *overlay.EditState
	set := visited(fs)
	if *presetPtr != "" || set["text"] || set["sub"] || set["pos"] || set["sticker"] || set["filter"] || set["mockup"] || set["dim"] {
		st := overlay.DefaultEditState()
		if *presetPtr != "" {
			path := cfg.PresetsFile
			if path == "" {
				path = defaultPresets
			}
			presets, err := loadPresets(path)
			if err != nil {
				return err
			}
			p, ok := presets[*presetPtr]
			if !ok {
				return fmt.Errorf("пресет %q не найден в %s", *presetPtr, path)
			}
			st = p
		}
		if st, err = ef.apply(st); err != nil {
			return err
		}
		base = &st
	}

	d := director.NewDirector()
	d.BlockDwell = *pacePtr
	sb, err := d.Draft(ctx, source.NewLoader(cfg.DPI), *titlePtr, refs, base, *durationPtr, cfg.FPS, cfg.TransitionFrames)
	if err != nil {
		return err
	}
	sb.Plan.Audio = *audioPtr

	path := *outputPtr
	if path == "" {
		path = director.GenerateStoryboardPath(boardsDir)
	}
	if err := director.WriteStoryboard(sb, path); err != nil {
		return err
	}
	if sb.Plan.SlideDuration != nil {
		fmt.Printf("[*] Длительность слайда: %.2fs\n", *sb.Plan.SlideDuration)
	}
	fmt.Printf("[+++] Сториборд (%d слайдов) сохранен: %s\n", len(sb.Slides), path)
	return nil
}
