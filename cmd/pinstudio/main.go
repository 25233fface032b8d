package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ivlev/pinstudio/internal/config"
	"github.com/ivlev/pinstudio/internal/store"
	"github.com/ivlev/pinstudio/internal/system"
)

var version = "dev"

const (
	inputDir    = "input"
	boardsDir   = "input/boards"
	outputDir   = "output"
	historyFile = "output/history.yaml"
	benchLog    = "benchmark.log"
)

var commands = []struct {
	name, help string
	run        func(ctx context.Context, args []string) error
}{
	{"slideshow", "собрать видео из изображений, PDF или сториборда", runSlideshow},
	{"board", "подготовить сториборд из папки изображений", runBoard},
	{"edit", "наложить текст, стикер, фильтр или мокап на изображения", runEdit},
	{"pack", "собрать ZIP-архив проекта", runPack},
	{"qr", "сгенерировать QR-код", runQR},
	{"text", "извлечь текст из PDF, EPUB, DOCX или TXT", runText},
	{"history", "показать историю сборок", runHistory},
}

func usage() {
	fmt.Fprintf(os.Stderr, "pinstudio %s\n\nИспользование: pinstudio <команда> [флаги]\n\n", version)
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", c.name, c.help)
	}
	fmt.Fprintf(os.Stderr, "\nФлаги команды: pinstudio <команда> -h\n")
}

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	for _, d := range []string{inputDir, boardsDir, outputDir} {
		os.MkdirAll(d, 0755)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	name := os.Args[1]
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if err := c.run(ctx, os.Args[2:]); err != nil {
			stop()
			log.Fatalf("[-] Ошибка: %v", err)
		}
		return
	}
	if name != "-h" && name != "help" {
		fmt.Fprintf(os.Stderr, "[-] Неизвестная команда: %s\n\n", name)
	}
	usage()
}

// loadConfig накладывает YAML-файл и переменные окружения на значения по умолчанию
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	cfg.BuildVersion = version
	return cfg, nil
}

// visited returns the names of flags given on the command line, so they can
// win over the config file without their defaults doing the same.
func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func openStore(ctx context.Context, cfg *config.Config) store.Store {
	return store.Open(ctx, store.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, historyFile)
}

// remember добавляет запись в историю. Ошибки только выводятся как предупреждение
func remember(ctx context.Context, cfg *config.Config, kind string, data map[string]any) {
	s := openStore(ctx, cfg)
	defer s.Close()
	data["kind"] = kind
	data["version"] = version
	if err := s.Put(ctx, &store.Record{Collection: store.History, Data: data}); err != nil {
		log.Printf("[!] Не удалось сохранить историю: %v", err)
	}
}

func timestamped(dir, name, ext string) string {
	if name == "" {
		name = "pinstudio"
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s%s", name, time.Now().Format("2006-01-02_15-04-05"), ext))
}
