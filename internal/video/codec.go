package video

import "fmt"

// Codec is one recording format a Recorder may offer.
type Codec struct {
	Name      string
	Encoder   string
	Container string
	MIME      string
	Ext       string
}

func (c Codec) String() string {
	return fmt.Sprintf("%s/%s (%s)", c.Container, c.Name, c.Encoder)
}

var (
	VP9         = Codec{Name: "vp9", Encoder: "libvpx-vp9", Container: "webm", MIME: "video/webm;codecs=vp9", Ext: ".webm"}
	VP8         = Codec{Name: "vp8", Encoder: "libvpx", Container: "webm", MIME: "video/webm;codecs=vp8", Ext: ".webm"}
	H264Toolbox = Codec{Name: "h264", Encoder: "h264_videotoolbox", Container: "mp4", MIME: "video/mp4", Ext: ".mp4"}
	H264NVENC   = Codec{Name: "h264", Encoder: "h264_nvenc", Container: "mp4", MIME: "video/mp4", Ext: ".mp4"}
	H264        = Codec{Name: "h264", Encoder: "libx264", Container: "mp4", MIME: "video/mp4", Ext: ".mp4"}
	MJPEG       = Codec{Name: "mjpeg", Encoder: "mjpeg", Container: "avi", MIME: "video/x-msvideo", Ext: ".avi"}
)

// Preferences is the default order formats are tried in: webm first,
// then mp4 with hardware encoders ahead of libx264, then Motion JPEG.
var Preferences = []Codec{VP9, VP8, H264Toolbox, H264NVENC, H264, MJPEG}

// SelectCodec returns the first entry of prefs that is in supported.
func SelectCodec(supported, prefs []Codec) (Codec, error) {
	for _, p := range prefs {
		for _, s := range supported {
			if s == p {
				return p, nil
			}
		}
	}
	return Codec{}, fmt.Errorf("%w: none of %d preferred formats is available", ErrUnsupported, len(prefs))
}

// FilterByContainer keeps the codecs of prefs stored in container, or all of
// them when container is empty.
func FilterByContainer(prefs []Codec, container string) []Codec {
	if container == "" {
		return prefs
	}
	var out []Codec
	for _, c := range prefs {
		if c.Container == container {
			out = append(out, c)
		}
	}
	return out
}
