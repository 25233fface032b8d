// Package generation defines the content generation collaborator and the
// batch logic around it. The service itself (copy and image model) lives
// outside this module.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ivlev/pinstudio/internal/overlay"
)

var (
	// ErrQuotaExceeded means the service refuses further calls for a while.
	// It is never retried.
	ErrQuotaExceeded = errors.New("generation: quota exceeded")
	// ErrServerBusy is a transient failure worth retrying.
	ErrServerBusy = errors.New("generation: server busy")
)

const (
	DefaultBatchDelay = 4 * time.Second
	// Cooldown is how long callers should wait after ErrQuotaExceeded.
	Cooldown = 120 * time.Second
)

// Request asks for a set of pins about Input.
type Request struct {
	Input    string
	Image    string // optional base64 reference image
	MIME     string
	Count    int
	Language string
	Aspect   string
	Link     string
}

// Content is the copy for one pin.
type Content struct {
	Title       string
	Description string
	Tags        []string
	ImagePrompt string
	OverlayText string
	Link        string
}

type Batch struct {
	Topic string
	Pins  []Content
}

type Generator interface {
	GeneratePins(ctx context.Context, req Request) (*Batch, error)
	// GenerateImage returns an image reference, usually a data: URL.
	GenerateImage(ctx context.Context, prompt, aspect string) (string, error)
}

// Retry calls fn up to retries+1 times. Only ErrServerBusy is retried, with
// the delay doubling each time; quota errors return at once.
func Retry[T any](ctx context.Context, retries int, delay time.Duration, fn func() (T, error)) (T, error) {
	for {
		v, err := fn()
		if err == nil || !errors.Is(err, ErrServerBusy) || retries <= 0 {
			return v, err
		}
		log.Printf("[!] Сервер занят, повтор через %v (осталось попыток: %d)", delay, retries)
		if err := sleep(ctx, delay); err != nil {
			var zero T
			return zero, err
		}
		retries--
		delay *= 2
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Job is a pin waiting for its image.
type Job struct {
	Pin    *overlay.Pin
	Prompt string
}

// BatchResult counts what BatchImages did.
type BatchResult struct {
	Rendered int
	Failed   int
	Skipped  int
}

// BatchImages renders images for pins that have none, one at a time with
// delay between calls. A quota error stops the batch and is returned; other
// failures are logged and the batch moves on. Each rendered image becomes
// both the pin's Original and Current.
func BatchImages(ctx context.Context, gen Generator, jobs []Job, aspect string, delay time.Duration, progress func(done, total int)) (BatchResult, error) {
	var res BatchResult
	var pending []Job
	for _, j := range jobs {
		if j.Pin.Current != "" {
			res.Skipped++
			continue
		}
		pending = append(pending, j)
	}

	for i, j := range pending {
		if i > 0 {
			if err := sleep(ctx, delay); err != nil {
				return res, err
			}
		}
		ref, err := Retry(ctx, 3, 2*time.Second, func() (string, error) {
			return gen.GenerateImage(ctx, j.Prompt, aspect)
		})
		switch {
		case errors.Is(err, ErrQuotaExceeded):
			return res, fmt.Errorf("after %d of %d images: %w", i, len(pending), err)
		case ctx.Err() != nil:
			return res, ctx.Err()
		case err != nil:
			log.Printf("[!] Не удалось создать изображение для %q: %v", j.Pin.Title, err)
			res.Failed++
		default:
			j.Pin.Original = ref
			j.Pin.Current = ref
			res.Rendered++
		}
		if progress != nil {
			progress(i+1, len(pending))
		}
	}
	return res, nil
}
