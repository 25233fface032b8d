package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ivlev/pinstudio/internal/audio"
	"github.com/ivlev/pinstudio/internal/config"
	"github.com/ivlev/pinstudio/internal/director"
	"github.com/ivlev/pinstudio/internal/engine"
	"github.com/ivlev/pinstudio/internal/export"
	"github.com/ivlev/pinstudio/internal/overlay"
	"github.com/ivlev/pinstudio/internal/source"
	"github.com/ivlev/pinstudio/internal/video"
)

func runSlideshow(ctx context.Context, args []string) error {
	def := config.Default()
	fs := flag.NewFlagSet("slideshow", flag.ExitOnError)
	configPtr := fs.String("config", "", "YAML-файл конфигурации")
	inputPtr := fs.String("input", "", "Папка с изображениями, PDF или сториборд .yaml (по умолчанию: самый свежий сториборд в input/boards/, иначе input/)")
	outputPtr := fs.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	speedPtr := fs.Float64("speed", def.SlideDuration, "Длительность показа слайда в секундах (0 = статичный режим, 2.5с без зума)")
	audioPtr := fs.String("audio", def.AudioStyle, "Звук: mute, luxury, focus, pulse, lofi")
	fitPtr := fs.String("fit", def.Fit, "Кадрирование: cover, contain")
	qualityPtr := fs.String("quality", def.Quality, "Разрешение: 720p, 1080p")
	aspectPtr := fs.String("aspect", def.Aspect, "Формат: 9:16, 1:1, 3:4, 16:9")
	fpsPtr := fs.Int("fps", def.FPS, "FPS")
	transitionPtr := fs.Int("transition", def.TransitionFrames, "Длительность перехода в кадрах")
	zoomSpeedPtr := fs.Float64("zoom-speed", def.ZoomSpeed, "Прирост масштаба за кадр")
	containerPtr := fs.String("container", "", "Контейнер: webm, mp4, avi (пусто = первый доступный)")
	videoQualityPtr := fs.Int("video-quality", def.VideoQuality, "Качество кодека (CRF для x264/vp9)")
	dpiPtr := fs.Int("dpi", def.DPI, "DPI для страниц PDF")
	workersPtr := fs.Int("workers", runtime.NumCPU(), "Потоки загрузки изображений")
	ffmpegPtr := fs.Bool("ffmpeg", def.PreferFFmpeg, "Использовать ffmpeg, если он установлен")
	realtimePtr := fs.Bool("realtime", false, "Выдерживать темп 1000/fps мс на кадр")
	statsPtr := fs.Bool("stats", false, "Показать отчет о производительности и дописать его в benchmark.log")
	publishPtr := fs.Bool("publish", false, "Загрузить результат в S3 (S3_BUCKET)")
	fs.Parse(args)

	cfg, err := loadConfig(*configPtr)
	if err != nil {
		return err
	}

	inputPath := *inputPtr
	if inputPath == "" {
		inputPath = cfg.InputPath
	}
	if inputPath == "" {
		if latest, err := director.FindLatestStoryboard(boardsDir); err == nil {
			inputPath = latest
		} else {
			inputPath = inputDir
		}
		fmt.Printf("[*] Выбран источник: %s\n", inputPath)
	}

	var refs []string
	var edits map[string]*overlay.EditState
	if director.IsStoryboard(inputPath) {
		sb, err := director.ReadStoryboard(inputPath)
		if err != nil {
			return err
		}
		sb.Plan.Apply(cfg)
		refs, edits = sb.Refs(), sb.Edits()
		fmt.Printf("[*] Сториборд %q: %d слайдов, %d с правками\n", sb.Title, len(refs), len(edits))
	} else {
		refs, err = source.Expand(inputPath)
		if err != nil {
			return fmt.Errorf("источник %s: %w", inputPath, err)
		}
	}

	set := visited(fs)
	if set["speed"] {
		cfg.SlideDuration = *speedPtr
	}
	if set["audio"] {
		cfg.AudioStyle = *audioPtr
	}
	if set["fit"] || set["quality"] || set["aspect"] {
		cfg.Width, cfg.Height = 0, 0
	}
	if set["fit"] {
		cfg.Fit = *fitPtr
	}
	if set["quality"] {
		cfg.Quality = *qualityPtr
	}
	if set["aspect"] {
		cfg.Aspect = *aspectPtr
	}
	if set["fps"] {
		cfg.FPS = *fpsPtr
	}
	if set["transition"] {
		cfg.TransitionFrames = *transitionPtr
	}
	if set["zoom-speed"] {
		cfg.ZoomSpeed = *zoomSpeedPtr
	}
	if set["container"] {
		cfg.Container = *containerPtr
	}
	if set["video-quality"] {
		cfg.VideoQuality = *videoQualityPtr
	}
	if set["dpi"] {
		cfg.DPI = *dpiPtr
	}
	if set["workers"] || cfg.Workers <= 0 {
		cfg.Workers = *workersPtr
	}
	if set["ffmpeg"] {
		cfg.PreferFFmpeg = *ffmpegPtr
	}
	cfg.Realtime = cfg.Realtime || *realtimePtr
	cfg.ShowStats = cfg.ShowStats || *statsPtr
	cfg.Publish = cfg.Publish || *publishPtr
	cfg.InputPath = inputPath

	if err := cfg.ResolveSize(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	plan, err := engine.NewPlan(refs, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("[*] Слайдов: %d, кадр %dx%d, %d fps, звук: %s\n", len(refs), plan.Width, plan.Height, plan.FrameRate, plan.Audio)
	fmt.Printf("[*] Длительность: %.2fs (%d кадров)\n", plan.Duration(), plan.TotalFrames())

	var loader engine.ImageLoader = source.NewLoader(cfg.DPI)
	if len(edits) > 0 {
		loader = &director.EditingLoader{Base: loader, Engine: overlay.NewEngine(), Edits: edits}
	}

	b := &engine.Builder{
		Loader:   loader,
		Recorder: video.NewRecorder(cfg.PreferFFmpeg),
		Synth:    audio.NewSynthesizer(audio.DefaultSampleRate, nil),
		Quality:  cfg.VideoQuality,
		Workers:  cfg.Workers,
		OnState: func(s engine.State) {
			switch s {
			case engine.RecordingStarted:
				fmt.Println("[*] Запись начата")
			case engine.RecordingStopped:
				fmt.Println("\n[*] Запись остановлена, финализация...")
			}
		},
		OnProgress: func(done, total int) {
			if done%plan.FrameRate == 0 || done == total {
				fmt.Printf("\r[>] Кадр %d/%d (%.0f%%)", done, total, float64(done)*100/float64(total))
			}
		},
	}
	if cfg.Realtime {
		b.Pacer = engine.NewRealtimePacer(cfg.FPS)
	}

	res, err := b.Build(ctx, plan)
	if err != nil {
		return err
	}
	fmt.Printf("[*] Формат: %s\n", res.Codec)

	finalOutput := *outputPtr
	if finalOutput == "" {
		finalOutput = cfg.OutputVideo
	}
	if finalOutput == "" {
		name := export.Slug(strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)), 60)
		finalOutput = timestamped(outputDir, name, res.Ext)
	} else if ext := filepath.Ext(finalOutput); !strings.EqualFold(ext, res.Ext) {
		finalOutput = strings.TrimSuffix(finalOutput, ext) + res.Ext
		fmt.Printf("[!] Расширение изменено под формат записи: %s\n", finalOutput)
	}
	if err := os.MkdirAll(filepath.Dir(finalOutput), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(finalOutput, res.Data, 0644); err != nil {
		return err
	}

	if cfg.ShowStats {
		fmt.Print(res.Stats.Report(version))
		if err := res.Stats.AppendLog(benchLog, version, inputPath); err != nil {
			log.Printf("[!] Не удалось записать %s: %v", benchLog, err)
		}
	}

	entry := map[string]any{
		"input":  inputPath,
		"output": finalOutput,
		"codec":  res.Codec.Name,
		"frames": res.Frames,
		"slides": len(refs),
		"audio":  res.Audio,
	}
	if cfg.Publish {
		uri, err := publish(ctx, cfg, filepath.Base(finalOutput), res.Data, res.MIME)
		if err != nil {
			log.Printf("[!] Публикация не удалась: %v", err)
		} else {
			fmt.Printf("[*] Опубликовано: %s\n", uri)
			entry["published"] = uri
		}
	}
	remember(ctx, cfg, "slideshow", entry)

	fmt.Printf("[+++] Успех! Результат: %s\n", finalOutput)
	return nil
}

func publish(ctx context.Context, cfg *config.Config, key string, data []byte, mime string) (string, error) {
	p, err := export.NewPublisher(ctx, export.PublisherConfig{
		Bucket:   cfg.S3Bucket,
		Prefix:   cfg.S3Prefix,
		Region:   cfg.S3Region,
		Endpoint: cfg.S3Endpoint,
	})
	if err != nil {
		return "", err
	}
	return p.Publish(ctx, key, data, mime)
}
