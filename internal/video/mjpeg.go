package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/icza/mjpeg"
)

// MJPEGRecorder writes Motion JPEG AVI files without any external tools.
type MJPEGRecorder struct {
	// JPEGQuality defaults to 85.
	JPEGQuality int
}

func (r *MJPEGRecorder) Supported() []Codec {
	return []Codec{MJPEG}
}

func (r *MJPEGRecorder) Begin(_ context.Context, s Settings) (Session, error) {
	if s.Codec != MJPEG {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, s.Codec)
	}
	path := filepath.Join(s.Dir, "capture-"+uuid.NewString()+MJPEG.Ext)
	w, err := mjpeg.New(path, int32(s.Width), int32(s.Height), int32(s.FPS))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecorder, err)
	}
	q := r.JPEGQuality
	if q <= 0 {
		q = 85
	}
	return &mjpegSession{writer: w, path: path, quality: q}, nil
}

type mjpegSession struct {
	writer  mjpeg.AviWriter
	path    string
	quality int
	frames  int
	buf     bytes.Buffer
	done    bool
}

func (s *mjpegSession) WriteFrame(frame *image.RGBA) error {
	if s.done {
		return fmt.Errorf("%w: session already finished", ErrRecorder)
	}
	s.buf.Reset()
	if err := jpeg.Encode(&s.buf, frame, &jpeg.Options{Quality: s.quality}); err != nil {
		return fmt.Errorf("%w: encode frame %d: %v", ErrRecorder, s.frames, err)
	}
	if err := s.writer.AddFrame(s.buf.Bytes()); err != nil {
		return fmt.Errorf("%w: add frame %d: %v", ErrRecorder, s.frames, err)
	}
	s.frames++
	return nil
}

func (s *mjpegSession) AttachAudio(path string) {
	log.Printf("[!] Motion JPEG не поддерживает звук, дорожка %s пропущена", filepath.Base(path))
}

func (s *mjpegSession) Stop(_ context.Context) (Output, error) {
	if s.done {
		return Output{}, fmt.Errorf("%w: session already finished", ErrRecorder)
	}
	s.done = true
	if err := s.writer.Close(); err != nil {
		os.Remove(s.path)
		return Output{}, fmt.Errorf("%w: close avi: %v", ErrRecorder, err)
	}
	out, err := checkOutput(Output{Path: s.path, Codec: MJPEG, Frames: s.frames})
	if err != nil {
		os.Remove(s.path)
		return Output{}, err
	}
	return out, nil
}

func (s *mjpegSession) Abort() {
	if !s.done {
		s.done = true
		s.writer.Close()
	}
	os.Remove(s.path)
}
