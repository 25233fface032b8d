package director

import (
	"github.com/ivlev/pinstudio/internal/config"
	"github.com/ivlev/pinstudio/internal/overlay"
)

const StoryboardVersion = "1.0"

// Storyboard is a saved slideshow: which stills, in what order, how each one
// is edited and how the video is timed.
type Storyboard struct {
	Version string   `yaml:"version"`
	Title   string   `yaml:"title,omitempty"`
	Plan    PlanSpec `yaml:"plan,omitempty"`
	Slides  []Slide  `yaml:"slides"`
}

// PlanSpec holds plan settings that override the configuration. Unset fields
// keep the configured value.
type PlanSpec struct {
	SlideDuration    *float64 `yaml:"slide_duration,omitempty"` // 0 = static
	FPS              int      `yaml:"fps,omitempty"`
	TransitionFrames int      `yaml:"transition_frames,omitempty"`
	Audio            string   `yaml:"audio,omitempty"`
	Fit              string   `yaml:"fit,omitempty"`
	Quality          string   `yaml:"quality,omitempty"`
	Aspect           string   `yaml:"aspect,omitempty"`
}

// Slide is one still of the storyboard.
type Slide struct {
	Image string             `yaml:"image"`
	Title string             `yaml:"title,omitempty"`
	Edit  *overlay.EditState `yaml:"edit,omitempty"`
}

// Refs returns slide references in order.
func (s *Storyboard) Refs() []string {
	refs := make([]string, len(s.Slides))
	for i, sl := range s.Slides {
		refs[i] = sl.Image
	}
	return refs
}

// Edits maps references to their edit. Slides without an edit are omitted.
func (s *Storyboard) Edits() map[string]*overlay.EditState {
	edits := make(map[string]*overlay.EditState)
	for _, sl := range s.Slides {
		if sl.Edit != nil {
			edits[sl.Image] = sl.Edit
		}
	}
	return edits
}

// Apply copies the set fields onto cfg. Width and Height are cleared when the
// fit, quality or aspect changes so ResolveSize picks them again.
func (p PlanSpec) Apply(cfg *config.Config) {
	if p.SlideDuration != nil {
		cfg.SlideDuration = *p.SlideDuration
	}
	if p.FPS > 0 {
		cfg.FPS = p.FPS
	}
	if p.TransitionFrames > 0 {
		cfg.TransitionFrames = p.TransitionFrames
	}
	if p.Audio != "" {
		cfg.AudioStyle = p.Audio
	}
	resize := false
	if p.Fit != "" {
		cfg.Fit = p.Fit
		resize = true
	}
	if p.Quality != "" {
		cfg.Quality = p.Quality
		resize = true
	}
	if p.Aspect != "" {
		cfg.Aspect = p.Aspect
		resize = true
	}
	if resize {
		cfg.Width, cfg.Height = 0, 0
	}
}
