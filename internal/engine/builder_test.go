package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ivlev/pinstudio/internal/audio"
	"github.com/ivlev/pinstudio/internal/renderer"
	"github.com/ivlev/pinstudio/internal/source"
	"github.com/ivlev/pinstudio/internal/video"
)

type fakeLoader struct {
	mu    sync.Mutex
	calls int
	fail  string
}

func (l *fakeLoader) Load(_ context.Context, ref string) (image.Image, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	if ref == l.fail {
		return nil, fmt.Errorf("%w: %s", source.ErrDecode, ref)
	}
	img := image.NewRGBA(image.Rect(0, 0, 8, 12))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{200, 100, 50, 255}), image.Point{}, draw.Src)
	return img, nil
}

type fakeRecorder struct {
	supported []video.Codec
	failAt    int
	began     int
	session   *fakeSession
}

func (r *fakeRecorder) Supported() []video.Codec {
	if r.supported == nil {
		return []video.Codec{video.MJPEG}
	}
	return r.supported
}

func (r *fakeRecorder) Begin(_ context.Context, s video.Settings) (video.Session, error) {
	r.began++
	r.session = &fakeSession{settings: s, failAt: r.failAt}
	return r.session, nil
}

type fakeSession struct {
	settings video.Settings
	failAt   int
	frames   int
	audio    string
	audioOK  bool
	stopped  bool
	aborted  bool
}

func (s *fakeSession) WriteFrame(f *image.RGBA) error {
	if s.failAt > 0 && s.frames == s.failAt {
		return fmt.Errorf("%w: disk full", video.ErrRecorder)
	}
	if f.Rect.Dx() != s.settings.Width || f.Rect.Dy() != s.settings.Height {
		return fmt.Errorf("frame size %v", f.Rect)
	}
	s.frames++
	return nil
}

func (s *fakeSession) AttachAudio(path string) {
	s.audio = path
	_, err := os.Stat(path)
	s.audioOK = err == nil
}

func (s *fakeSession) Stop(context.Context) (video.Output, error) {
	s.stopped = true
	path := filepath.Join(s.settings.Dir, "out.avi")
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		return video.Output{}, err
	}
	return video.Output{Path: path, Size: 5, Codec: s.settings.Codec, Frames: s.frames, Audio: s.audio != ""}, nil
}

func (s *fakeSession) Abort() {
	s.aborted = true
}

type fakeSynth struct {
	err      error
	duration float64
}

func (f *fakeSynth) Render(style audio.Style, sink audio.Sink, duration float64) error {
	f.duration = duration
	if f.err != nil {
		return f.err
	}
	return sink.WriteTrack(&audio.Track{Style: style, SampleRate: 8000, Samples: make([]float64, 10)})
}

func newTestBuilder(rec *fakeRecorder, loader *fakeLoader) (*Builder, *[]State) {
	var states []State
	b := &Builder{
		Loader:      loader,
		Recorder:    rec,
		TempDir:     "",
		CheckMemory: func(uint64) error { return nil },
		OnState:     func(s State) { states = append(states, s) },
	}
	return b, &states
}

func TestBuildThreeSlides(t *testing.T) {
	rec := &fakeRecorder{}
	b, states := newTestBuilder(rec, &fakeLoader{})
	b.TempDir = t.TempDir()
	synth := &fakeSynth{}
	b.Synth = synth

	plan := testPlan(3)
	plan.Audio = audio.Lofi
	res, err := b.Build(context.Background(), plan)
	if err != nil {
		t.Fatal(err)
	}
	if res.Frames != 265 || rec.session.frames != 265 {
		t.Errorf("frames = %d (session %d), want 265", res.Frames, rec.session.frames)
	}
	if string(res.Data) != "video" || res.MIME != video.MJPEG.MIME || res.Ext != ".avi" {
		t.Errorf("result = %+v", res)
	}
	if !rec.session.audioOK || !res.Audio {
		t.Error("soundtrack was not attached")
	}
	if synth.duration != plan.AudioDuration() {
		t.Errorf("synth duration = %v, want %v", synth.duration, plan.AudioDuration())
	}
	if rec.session.aborted {
		t.Error("successful build aborted the session")
	}

	want := []State{Idle, RecordingStarted, Hold, Crossfade, Hold, Crossfade, Hold, RecordingStopped, Encoded}
	if fmt.Sprint(*states) != fmt.Sprint(want) {
		t.Errorf("states = %v, want %v", *states, want)
	}

	entries, _ := os.ReadDir(b.TempDir)
	if len(entries) != 0 {
		t.Errorf("temporary files left behind: %d", len(entries))
	}
}

func TestBuildSingleSlide(t *testing.T) {
	rec := &fakeRecorder{}
	b, states := newTestBuilder(rec, &fakeLoader{})
	res, err := b.Build(context.Background(), testPlan(1))
	if err != nil {
		t.Fatal(err)
	}
	if res.Frames != 75 {
		t.Errorf("frames = %d, want 75", res.Frames)
	}
	for _, s := range *states {
		if s == Crossfade {
			t.Error("single slide must not crossfade")
		}
	}
	if res.Audio {
		t.Error("mute build reported audio")
	}
}

func TestBuildNoSegmentsAcquiresNothing(t *testing.T) {
	rec := &fakeRecorder{}
	loader := &fakeLoader{}
	b, states := newTestBuilder(rec, loader)
	_, err := b.Build(context.Background(), testPlan(0))
	if !errors.Is(err, ErrNoSegments) {
		t.Fatalf("err = %v, want ErrNoSegments", err)
	}
	if rec.began != 0 || loader.calls != 0 {
		t.Errorf("resources acquired: began=%d loads=%d", rec.began, loader.calls)
	}
	if last := (*states)[len(*states)-1]; last != Failed {
		t.Errorf("final state = %v", last)
	}
}

func TestBuildDecodeFailure(t *testing.T) {
	rec := &fakeRecorder{}
	b, _ := newTestBuilder(rec, &fakeLoader{fail: "broken.png"})
	plan := testPlan(3)
	plan.Segments[1].Ref = "broken.png"

	_, err := b.Build(context.Background(), plan)
	if !errors.Is(err, source.ErrDecode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}
	var be *BuildError
	if !errors.As(err, &be) || be.Stage != "preload" {
		t.Errorf("err = %v, want preload BuildError", err)
	}
	if rec.began != 0 {
		t.Error("recording started despite a decode failure")
	}
}

func TestBuildUnsupported(t *testing.T) {
	rec := &fakeRecorder{supported: []video.Codec{}}
	b, _ := newTestBuilder(rec, &fakeLoader{})
	_, err := b.Build(context.Background(), testPlan(2))
	if !errors.Is(err, video.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	if rec.began != 0 {
		t.Error("recording started without a codec")
	}
}

func TestBuildRecorderFailureAborts(t *testing.T) {
	rec := &fakeRecorder{failAt: 100}
	b, states := newTestBuilder(rec, &fakeLoader{})
	_, err := b.Build(context.Background(), testPlan(3))
	if !errors.Is(err, video.ErrRecorder) {
		t.Fatalf("err = %v, want ErrRecorder", err)
	}
	if !rec.session.aborted || rec.session.stopped {
		t.Errorf("session aborted=%v stopped=%v", rec.session.aborted, rec.session.stopped)
	}
	if last := (*states)[len(*states)-1]; last != Failed {
		t.Errorf("final state = %v", last)
	}
}

func TestBuildSynthesisFailureIsMuted(t *testing.T) {
	rec := &fakeRecorder{}
	b, _ := newTestBuilder(rec, &fakeLoader{})
	b.Synth = &fakeSynth{err: errors.New("boom")}
	plan := testPlan(1)
	plan.Audio = audio.Focus

	res, err := b.Build(context.Background(), plan)
	if err != nil {
		t.Fatal(err)
	}
	if res.Audio || rec.session.audio != "" {
		t.Error("failed synthesis must produce a silent video")
	}
}

func TestBuildCancelled(t *testing.T) {
	rec := &fakeRecorder{}
	b, _ := newTestBuilder(rec, &fakeLoader{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.OnProgress = func(done, total int) {
		if done == 10 {
			cancel()
		}
	}
	_, err := b.Build(ctx, testPlan(2))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if !rec.session.aborted {
		t.Error("cancelled build did not abort the session")
	}
	if rec.session.frames != 10 {
		t.Errorf("frames written = %d, want 10", rec.session.frames)
	}
}

func TestBuildMemoryCheck(t *testing.T) {
	rec := &fakeRecorder{}
	b, _ := newTestBuilder(rec, &fakeLoader{})
	b.CheckMemory = func(uint64) error { return errors.New("low memory") }
	if _, err := b.Build(context.Background(), testPlan(1)); err == nil {
		t.Fatal("expected error")
	}
	if rec.began != 0 {
		t.Error("recording started without memory")
	}
}

func TestCrossfadePixels(t *testing.T) {
	fill := func(c color.RGBA) *image.RGBA {
		img := image.NewRGBA(image.Rect(0, 0, 16, 16))
		draw.Draw(img, img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
		return img
	}
	images := []image.Image{fill(color.RGBA{255, 0, 0, 255}), fill(color.RGBA{0, 0, 255, 255})}

	for _, fit := range []renderer.FitMode{renderer.Cover, renderer.Contain} {
		t.Run(string(fit), func(t *testing.T) {
			plan := testPlan(2)
			plan.Fit = fit
			schedule := plan.Schedule()
			hold, trans := plan.HoldFrames(), plan.TransitionFrames

			comp := renderer.NewCompositor(plan.Width, plan.Height)
			dst := image.NewRGBA(image.Rect(0, 0, plan.Width, plan.Height))
			centre := func(i int) color.RGBA {
				fr := schedule[i]
				if fr.Phase != Crossfade {
					t.Fatalf("frame %d is %v, want crossfade", i, fr.Phase)
				}
				if len(fr.Layers) != 2 || fr.Layers[0].Segment != 0 || fr.Layers[1].Segment != 1 {
					t.Fatalf("frame %d layers = %+v, want outgoing then incoming", i, fr.Layers)
				}
				renderFrame(comp, dst, images, fr, fit)
				return dst.RGBAAt(8, 8)
			}

			if got := centre(hold); got.R != 255 || got.B != 0 {
				t.Errorf("first crossfade frame = %v, want outgoing slide only", got)
			}
			if got := centre(hold + trans - 1); got.R != 0 || got.B != 255 {
				t.Errorf("last crossfade frame = %v, want incoming slide only", got)
			}
			if got := centre(hold + trans/2); got.R == 0 || got.B == 0 {
				t.Errorf("middle crossfade frame = %v, want both slides", got)
			}

			prev := centre(hold)
			for i := hold + 1; i < hold+trans; i++ {
				got := centre(i)
				if int(got.R) > int(prev.R)+1 || int(got.B)+1 < int(prev.B) {
					t.Errorf("frame %d = %v after %v: outgoing must fade out and incoming fade in", i, got, prev)
				}
				prev = got
			}
		})
	}
}
