// Package engine turns a slideshow plan into a recorded video.
package engine

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/pinstudio/internal/audio"
	"github.com/ivlev/pinstudio/internal/renderer"
	"github.com/ivlev/pinstudio/internal/system"
	"github.com/ivlev/pinstudio/internal/video"
)

// ImageLoader resolves a slide reference into pixels.
type ImageLoader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// AudioRenderer writes a soundtrack of the given style and length.
type AudioRenderer interface {
	Render(style audio.Style, sink audio.Sink, duration float64) error
}

// BuildError names the stage a build failed in.
type BuildError struct {
	Stage string
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("сборка видео прервана на этапе %s: %v", e.Stage, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Result is a finished video held in memory.
type Result struct {
	Data   []byte
	MIME   string
	Ext    string
	Codec  video.Codec
	Frames int
	Audio  bool
	Stats  Stats
}

// Builder runs one build at a time.
type Builder struct {
	Loader   ImageLoader
	Recorder video.Recorder
	// Synth renders the soundtrack. Nil builds a silent video.
	Synth AudioRenderer
	// Pacer spaces frames in wall-clock time. Nil records as fast as possible.
	Pacer Pacer
	// Pool supplies the frame buffer. Nil uses the process-wide pool.
	Pool *system.ImagePool
	// Preferences overrides video.Preferences.
	Preferences []video.Codec
	Quality     int
	Workers     int
	TempDir     string

	CheckMemory func(need uint64) error
	OnState     func(State)
	OnProgress  func(done, total int)
}

func (b *Builder) setState(s State) {
	if b.OnState != nil {
		b.OnState(s)
	}
}

// Build records plan. Every temporary file, frame buffer and recording session
// is released before it returns; on failure no partial output survives.
func (b *Builder) Build(ctx context.Context, plan *Plan) (res *Result, err error) {
	stats := Stats{BuildID: uuid.NewString(), Start: time.Now(), Segments: len(plan.Segments)}
	b.setState(Idle)

	if err := plan.Validate(); err != nil {
		b.setState(Failed)
		return nil, err
	}
	defer func() {
		if err != nil {
			b.setState(Failed)
		}
	}()

	prefs := b.Preferences
	if prefs == nil {
		prefs = video.FilterByContainer(video.Preferences, plan.Container)
	}
	codec, err := video.SelectCodec(b.Recorder.Supported(), prefs)
	if err != nil {
		return nil, err
	}
	stats.Codec = codec

	check := b.CheckMemory
	if check == nil {
		check = system.CheckMemory
	}
	frameBytes := uint64(plan.Width) * uint64(plan.Height) * 4
	if err := check(frameBytes * uint64(len(plan.Segments)+2)); err != nil {
		return nil, &BuildError{Stage: "preload", Err: err}
	}

	tmp, err := os.MkdirTemp(b.TempDir, "pinstudio_")
	if err != nil {
		return nil, &BuildError{Stage: "preload", Err: err}
	}
	defer os.RemoveAll(tmp)

	t := time.Now()
	images, err := b.preload(ctx, plan)
	if err != nil {
		return nil, &BuildError{Stage: "preload", Err: err}
	}
	stats.Preload = time.Since(t)

	t = time.Now()
	audioPath := b.renderAudio(plan, tmp)
	stats.Audio = time.Since(t)

	sess, err := b.Recorder.Begin(ctx, video.Settings{
		Width:   plan.Width,
		Height:  plan.Height,
		FPS:     plan.FrameRate,
		Codec:   codec,
		Quality: b.Quality,
		Dir:     tmp,
	})
	if err != nil {
		return nil, &BuildError{Stage: "record", Err: err}
	}
	finished := false
	defer func() {
		if !finished {
			sess.Abort()
		}
	}()
	if audioPath != "" {
		sess.AttachAudio(audioPath)
	}
	b.setState(RecordingStarted)

	t = time.Now()
	if err := b.draw(ctx, plan, images, sess); err != nil {
		return nil, &BuildError{Stage: "draw", Err: err}
	}
	stats.Draw = time.Since(t)

	t = time.Now()
	b.setState(RecordingStopped)
	out, err := sess.Stop(ctx)
	finished = true
	if err != nil {
		return nil, &BuildError{Stage: "finalize", Err: err}
	}
	data, err := out.ReadAll()
	if err != nil {
		return nil, &BuildError{Stage: "finalize", Err: err}
	}
	if len(data) == 0 {
		return nil, &BuildError{Stage: "finalize", Err: video.ErrEmptyOutput}
	}
	stats.Finalize = time.Since(t)
	stats.Frames = out.Frames
	stats.Total = time.Since(stats.Start)
	b.setState(Encoded)

	return &Result{
		Data:   data,
		MIME:   out.Codec.MIME,
		Ext:    out.Codec.Ext,
		Codec:  out.Codec,
		Frames: out.Frames,
		Audio:  out.Audio,
		Stats:  stats,
	}, nil
}

// preload декодирует все слайды до начала записи. Одна ошибка отменяет
// остальные загрузки и всю сборку
func (b *Builder) preload(ctx context.Context, plan *Plan) ([]image.Image, error) {
	images := make([]image.Image, len(plan.Segments))
	g, gctx := errgroup.WithContext(ctx)
	workers := b.Workers
	if workers <= 0 {
		workers = 4
	}
	g.SetLimit(workers)

	for i, seg := range plan.Segments {
		g.Go(func() error {
			img, err := b.Loader.Load(gctx, seg.Ref)
			if err != nil {
				return fmt.Errorf("слайд %d: %w", seg.Index+1, err)
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// renderAudio возвращает путь к звуковой дорожке или "" для видео без звука
func (b *Builder) renderAudio(plan *Plan, dir string) string {
	if b.Synth == nil || plan.Audio == audio.Mute || plan.Audio == "" {
		return ""
	}
	path := filepath.Join(dir, "soundtrack.wav")
	if err := b.Synth.Render(plan.Audio, &audio.WAVSink{Path: path}, plan.AudioDuration()); err != nil {
		log.Printf("[!] Не удалось синтезировать звук (%s), видео будет без звука: %v", plan.Audio, err)
		return ""
	}
	return path
}

func (b *Builder) draw(ctx context.Context, plan *Plan, images []image.Image, sess video.Session) error {
	comp := renderer.NewCompositor(plan.Width, plan.Height)
	defer comp.Release(nil)

	get, put := system.GetImage, system.PutImage
	if b.Pool != nil {
		get, put = b.Pool.Get, b.Pool.Put
	}
	frame := get(image.Rect(0, 0, plan.Width, plan.Height))
	defer put(frame)

	if b.Pacer != nil {
		b.Pacer.Reset()
	}
	schedule := plan.Schedule()
	phase := Idle
	for _, fr := range schedule {
		if err := ctx.Err(); err != nil {
			return err
		}
		if fr.Phase != phase {
			phase = fr.Phase
			b.setState(phase)
		}

		renderFrame(comp, frame, images, fr, plan.Fit)
		if err := sess.WriteFrame(frame); err != nil {
			return err
		}
		if b.OnProgress != nil {
			b.OnProgress(fr.Index+1, len(schedule))
		}
		if b.Pacer != nil {
			if err := b.Pacer.Wait(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// renderFrame paints the layers of fr over a black frame in schedule order.
func renderFrame(comp *renderer.Compositor, dst *image.RGBA, images []image.Image, fr Frame, fit renderer.FitMode) {
	comp.Clear(dst)
	for _, l := range fr.Layers {
		comp.DrawFrame(dst, images[l.Segment], l.Scale, l.Alpha, fit)
	}
}
