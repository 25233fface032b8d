package audio

import (
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

type wavFile interface {
	io.WriteSeeker
	io.Closer
}

var createWAV = func(path string) (wavFile, error) {
	return os.Create(path)
}

// WAVSink writes tracks as 16-bit mono PCM.
type WAVSink struct {
	Path string
}

func (w *WAVSink) WriteTrack(t *Track) (err error) {
	f, err := createWAV(w.Path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close wav: %w", cerr)
		}
	}()

	data := make([]int, len(t.Samples))
	for i, v := range t.Samples {
		data[i] = int(math.Round(math.Max(-1, math.Min(1, v)) * math.MaxInt16))
	}

	enc := wav.NewEncoder(f, t.SampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: t.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return enc.Close()
}
