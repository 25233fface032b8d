// Package video records composited frames into a video file.
package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"

	"github.com/ivlev/pinstudio/internal/system"
)

var (
	ErrUnsupported = errors.New("video: recording not supported")
	ErrRecorder    = errors.New("video: recorder failure")
	ErrEmptyOutput = errors.New("video: recording produced no data")
)

// Settings configure one recording session.
type Settings struct {
	Width, Height int
	FPS           int
	Codec         Codec
	// Quality is a CRF-style value: lower is better.
	Quality int
	// Dir receives the output file.
	Dir string
}

// Output is a finished recording on disk.
type Output struct {
	Path   string
	Size   int64
	Codec  Codec
	Frames int
	// Audio reports whether a soundtrack was muxed in.
	Audio bool
}

func (o Output) ReadAll() ([]byte, error) {
	return os.ReadFile(o.Path)
}

// Recorder starts recording sessions in the formats it supports.
type Recorder interface {
	Supported() []Codec
	Begin(ctx context.Context, s Settings) (Session, error)
}

// Session accepts frames in display order. Exactly one of Stop or Abort ends it.
type Session interface {
	WriteFrame(frame *image.RGBA) error
	// AttachAudio marks a WAV file to be muxed at Stop.
	AttachAudio(path string)
	Stop(ctx context.Context) (Output, error)
	// Abort discards everything recorded so far. Safe to call after Stop.
	Abort()
}

// NewRecorder prefers ffmpeg when it is installed and falls back to the
// pure-Go Motion JPEG writer.
func NewRecorder(preferFFmpeg bool) Recorder {
	if preferFFmpeg && system.FFmpegAvailable() {
		return &FFmpegRecorder{}
	}
	if preferFFmpeg {
		log.Printf("[!] ffmpeg не найден, запись в Motion JPEG (AVI)")
	}
	return &MJPEGRecorder{}
}

func checkOutput(out Output) (Output, error) {
	if out.Frames == 0 {
		return out, ErrEmptyOutput
	}
	fi, err := os.Stat(out.Path)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrRecorder, err)
	}
	if fi.Size() == 0 {
		return out, ErrEmptyOutput
	}
	out.Size = fi.Size()
	return out, nil
}
