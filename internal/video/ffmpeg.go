package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/ivlev/pinstudio/internal/system"
)

// FFmpegRecorder реализует Recorder через системный FFmpeg: сырые RGBA-кадры идут в stdin
type FFmpegRecorder struct {
	// Probe lists available encoders. Defaults to system.ProbeEncoders.
	Probe func() (map[string]bool, error)
}

func (r *FFmpegRecorder) Supported() []Codec {
	probe := r.Probe
	if probe == nil {
		probe = system.ProbeEncoders
	}
	encoders, err := probe()
	if err != nil {
		log.Printf("[!] %v", err)
		return nil
	}
	var out []Codec
	for _, c := range Preferences {
		if encoders[c.Encoder] {
			out = append(out, c)
		}
	}
	return out
}

func (r *FFmpegRecorder) Begin(ctx context.Context, s Settings) (Session, error) {
	path := filepath.Join(s.Dir, "capture-"+uuid.NewString()+s.Codec.Ext)
	cmd := exec.CommandContext(ctx, "ffmpeg", buildFFmpegArgs(s, path)...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %v", ErrRecorder, err)
	}
	sess := &ffmpegSession{settings: s, path: path, cmd: cmd, stdin: stdin}
	cmd.Stderr = &sess.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg start: %v", ErrRecorder, err)
	}
	return sess, nil
}

func buildFFmpegArgs(s Settings, path string) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", s.Width, s.Height),
		"-framerate", fmt.Sprintf("%d", s.FPS),
		"-i", "-",
		"-an",
		"-pix_fmt", "yuv420p",
		"-c:v", s.Codec.Encoder,
	}

	quality := s.Quality
	if quality <= 0 {
		quality = 23
	}
	switch s.Codec.Encoder {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", quality))
	case "libx264":
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-preset", "medium")
	case "libvpx-vp9":
		args = append(args, "-crf", fmt.Sprintf("%d", quality+8), "-b:v", "0", "-deadline", "good", "-cpu-used", "4")
	case "libvpx":
		args = append(args, "-crf", fmt.Sprintf("%d", quality/2+4), "-b:v", "4M")
	case "mjpeg":
		args = append(args, "-q:v", "3")
	}
	if s.Codec.Container == "mp4" {
		args = append(args, "-movflags", "+faststart")
	}

	return append(args, path)
}

type ffmpegSession struct {
	settings Settings
	path     string
	audio    string
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stderr   bytes.Buffer
	frames   int
	done     bool
}

func (s *ffmpegSession) WriteFrame(frame *image.RGBA) error {
	if s.done {
		return fmt.Errorf("%w: session already finished", ErrRecorder)
	}
	if err := writeRawRGBA(s.stdin, frame); err != nil {
		return fmt.Errorf("%w: write frame %d: %v: %s", ErrRecorder, s.frames, err, s.tail())
	}
	s.frames++
	return nil
}

func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	if img.Stride != bounds.Dx()*4 || bounds.Min.X != 0 || bounds.Min.Y != 0 {
		packed := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(packed, packed.Bounds(), img, bounds.Min, draw.Src)
		img = packed
	}
	_, err := w.Write(img.Pix)
	return err
}

func (s *ffmpegSession) AttachAudio(path string) {
	s.audio = path
}

func (s *ffmpegSession) Stop(ctx context.Context) (Output, error) {
	if s.done {
		return Output{}, fmt.Errorf("%w: session already finished", ErrRecorder)
	}
	s.done = true
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		os.Remove(s.path)
		if ctx.Err() != nil {
			return Output{}, ctx.Err()
		}
		return Output{}, fmt.Errorf("%w: ffmpeg: %v: %s", ErrRecorder, err, s.tail())
	}

	out, err := checkOutput(Output{Path: s.path, Codec: s.settings.Codec, Frames: s.frames})
	if err != nil {
		os.Remove(s.path)
		return Output{}, err
	}

	if s.audio != "" {
		muxed, err := muxAudio(s.path, s.audio, s.settings.Codec)
		if err != nil {
			log.Printf("[!] Не удалось добавить звук, видео сохранено без него: %v", err)
		} else {
			os.Remove(s.path)
			out.Path = muxed
			out.Audio = true
			if fi, err := os.Stat(muxed); err == nil {
				out.Size = fi.Size()
			}
		}
	}
	return out, nil
}

func (s *ffmpegSession) Abort() {
	if !s.done {
		s.done = true
		s.stdin.Close()
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
		s.cmd.Wait()
	}
	os.Remove(s.path)
}

func (s *ffmpegSession) tail() string {
	msg := strings.TrimSpace(s.stderr.String())
	if len(msg) > 400 {
		msg = msg[len(msg)-400:]
	}
	return msg
}

func audioCodecFor(c Codec) string {
	if c.Container == "webm" {
		return "libopus"
	}
	return "aac"
}

// muxAudio copies the video stream and encodes the WAV next to it. The
// soundtrack runs slightly longer than the picture, so the shorter stream wins.
func muxAudio(videoPath, audioPath string, c Codec) (string, error) {
	out := strings.TrimSuffix(videoPath, c.Ext) + "-av" + c.Ext
	err := ffmpeg.Output(
		[]*ffmpeg.Stream{ffmpeg.Input(videoPath), ffmpeg.Input(audioPath)},
		out,
		ffmpeg.KwArgs{
			"c:v":      "copy",
			"c:a":      audioCodecFor(c),
			"b:a":      "128k",
			"shortest": "",
		},
	).OverWriteOutput().Run()
	if err != nil {
		os.Remove(out)
		return "", err
	}
	return out, nil
}
