package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ivlev/pinstudio/internal/export"
	"github.com/ivlev/pinstudio/internal/overlay"
	"github.com/ivlev/pinstudio/internal/source"
	"github.com/ivlev/pinstudio/internal/system"
)

func runPack(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	configPtr := fs.String("config", "", "YAML-файл конфигурации")
	inputPtr := fs.String("input", filepath.Join(outputDir, "edited"), "Папка с готовыми изображениями")
	outputPtr := fs.String("output", "", "Путь к архиву (по умолчанию: output/<тема>_PROJECT_PACK.zip)")
	topicPtr := fs.String("topic", "", "Тема проекта")
	tagsPtr := fs.String("tags", "", "Теги через запятую")
	linkPtr := fs.String("link", "", "Ссылка для всех пинов")
	qrPtr := fs.String("qr", "", "Добавить qr.png с этой ссылкой")
	watermarkPtr := fs.Bool("watermark", false, "Поставить водяной знак на изображения")
	watermarkTextPtr := fs.String("watermark-text", overlay.DefaultWatermark, "Текст водяного знака")
	csvPtr := fs.String("csv", "", "Дополнительно сохранить CSV для массовой загрузки")
	publishPtr := fs.Bool("publish", false, "Загрузить архив в S3 (S3_BUCKET)")
	fs.Parse(args)

	cfg, err := loadConfig(*configPtr)
	if err != nil {
		return err
	}

	files, err := system.ListImages(*inputPtr)
	if err != nil {
		return err
	}
	var tags []string
	for _, t := range strings.Split(*tagsPtr, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	loader := source.NewLoader(cfg.DPI)
	assets := make([]export.Asset, 0, len(files))
	for _, f := range files {
		data, err := pngBytes(ctx, loader, f)
		if err != nil {
			fmt.Printf("[!] Пропущен %s: %v\n", f, err)
			continue
		}
		base := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		assets = append(assets, export.Asset{
			Title:       base,
			Description: sidecarText(f),
			Tags:        tags,
			Link:        *linkPtr,
			PNG:         data,
		})
	}

	p := &export.Pack{Topic: *topicPtr, Assets: assets, QRLink: *qrPtr}
	if *watermarkPtr {
		p.Watermark = *watermarkTextPtr
	}

	path := *outputPtr
	if path == "" {
		path = filepath.Join(outputDir, p.FileName())
	}
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return err
	}
	fmt.Printf("[*] Архив: %s (%d изображений, %d КБ)\n", path, len(assets), buf.Len()/1024)

	if *csvPtr != "" {
		f, err := os.Create(*csvPtr)
		if err != nil {
			return err
		}
		if err := export.WriteCSV(f, assets); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("[*] CSV: %s\n", *csvPtr)
	}

	entry := map[string]any{"input": *inputPtr, "output": path, "assets": len(assets), "topic": *topicPtr}
	if *publishPtr || cfg.Publish {
		uri, err := publish(ctx, cfg, filepath.Base(path), buf.Bytes(), "application/zip")
		if err != nil {
			return err
		}
		fmt.Printf("[*] Опубликовано: %s\n", uri)
		entry["published"] = uri
	}
	remember(ctx, cfg, "pack", entry)

	fmt.Printf("[+++] Успех! Результат: %s\n", path)
	return nil
}

// pngBytes returns the file as PNG, converting other formats.
func pngBytes(ctx context.Context, loader *source.Loader, path string) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if _, err := png.DecodeConfig(bytes.NewReader(data)); err == nil {
			return data, nil
		}
	}
	img, err := loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return overlay.EncodePNG(img)
}

// sidecarText читает описание из .txt-файла рядом с изображением
func sidecarText(path string) string {
	data, err := os.ReadFile(strings.TrimSuffix(path, filepath.Ext(path)) + ".txt")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
