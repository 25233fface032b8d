package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ivlev/pinstudio/internal/docs"
	"github.com/ivlev/pinstudio/internal/export"
	"github.com/ivlev/pinstudio/internal/store"
)

func runQR(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("qr", flag.ExitOnError)
	urlPtr := fs.String("url", "", "Ссылка")
	sizePtr := fs.Int("size", export.DefaultQRSize, "Размер в пикселях")
	outputPtr := fs.String("output", filepath.Join(outputDir, "qr.png"), "Путь к PNG")
	fs.Parse(args)

	data, err := export.QRCode(*urlPtr, *sizePtr)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*outputPtr, data, 0644); err != nil {
		return err
	}
	fmt.Printf("[+++] QR-код сохранен: %s\n", *outputPtr)
	return nil
}

func runText(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("text", flag.ExitOnError)
	inputPtr := fs.String("input", "", "PDF, EPUB, DOCX, TXT, MD или изображение")
	fs.Parse(args)

	if *inputPtr == "" {
		return fmt.Errorf("укажите -input")
	}
	doc, err := docs.Extract(*inputPtr)
	if err != nil {
		return err
	}
	if doc.Base64 != "" {
		fmt.Printf("[*] %s: изображение %s, %d байт в base64\n", doc.Name, doc.MIME, len(doc.Base64))
		return nil
	}
	fmt.Printf("[*] %s (%s), %d символов\n\n", doc.Name, doc.MIME, len([]rune(doc.Text)))
	fmt.Println(doc.Text)
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPtr := fs.String("config", "", "YAML-файл конфигурации")
	limitPtr := fs.Int("limit", 20, "Сколько записей показать (0 = все)")
	fs.Parse(args)

	cfg, err := loadConfig(*configPtr)
	if err != nil {
		return err
	}
	s := openStore(ctx, cfg)
	defer s.Close()

	recs, err := s.List(ctx, store.History, *limitPtr)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("[*] История пуста")
		return nil
	}
	for _, r := range recs {
		fmt.Printf("[%s] %-9v %v\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Data["kind"], details(r.Data))
	}
	return nil
}

func details(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		if k != "kind" && k != "version" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := ""
	for _, k := range keys {
		out += fmt.Sprintf("%s=%v ", k, data[k])
	}
	return out
}
