package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/pinstudio/internal/system"
	"github.com/ivlev/pinstudio/internal/video"
)

// Stats are the timings of one build.
type Stats struct {
	BuildID  string
	Start    time.Time
	Segments int
	Frames   int
	Codec    video.Codec

	Preload  time.Duration
	Audio    time.Duration
	Draw     time.Duration
	Finalize time.Duration
	Total    time.Duration
}

func (s Stats) EffectiveFPS() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Total.Seconds()
}

func (s Stats) Report(version string) string {
	memTotal, memUsed := system.HostMemory()
	return fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s (%s)\n"+
			"Format: %s\n"+
			"Slides: %d | Frames: %d\n"+
			"Total Time: %.2fs\n"+
			"Preload: %.2fs\n"+
			"Audio Synthesis: %.2fs\n"+
			"Drawing + Encoding: %.2fs\n"+
			"Finalize: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"Host Memory: %d/%d MB\n"+
			"----------------------------\n",
		version, s.BuildID, s.Codec, s.Segments, s.Frames, s.Total.Seconds(), s.Preload.Seconds(),
		s.Audio.Seconds(), s.Draw.Seconds(), s.Finalize.Seconds(), s.EffectiveFPS(), memUsed, memTotal,
	)
}

// AppendLog дописывает строку с результатами в лог бенчмарка
func (s Stats) AppendLog(path, version, input string) error {
	entry := fmt.Sprintf("[%s] Build: %s | Input: %s | Slides: %d | Frames: %d | Total: %.2fs | Draw: %.2fs | FPS: %.2f\n",
		s.Start.Format("2006-01-02 15:04:05"),
		version,
		filepath.Base(input),
		s.Segments,
		s.Frames,
		s.Total.Seconds(),
		s.Draw.Seconds(),
		s.EffectiveFPS(),
	)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(entry)
	return err
}
