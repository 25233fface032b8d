package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolution(t *testing.T) {
	tests := []struct {
		quality, aspect, fit string
		w, h                 int
	}{
		{"720p", "9:16", "cover", 720, 1280},
		{"720p", "1:1", "cover", 720, 720},
		{"720p", "1:1", "contain", 720, 1280},
		{"720p", "3:4", "contain", 720, 960},
		{"1080p", "16:9", "cover", 1920, 1080},
		{"1080p", "1:1", "contain", 1080, 1920},
	}
	for _, tt := range tests {
		t.Run(tt.quality+" "+tt.aspect+" "+tt.fit, func(t *testing.T) {
			w, h, err := Resolution(tt.quality, tt.aspect, tt.fit)
			if err != nil {
				t.Fatal(err)
			}
			if w != tt.w || h != tt.h {
				t.Errorf("got %dx%d, want %dx%d", w, h, tt.w, tt.h)
			}
		})
	}

	if _, _, err := Resolution("4k", "9:16", "cover"); err == nil {
		t.Error("expected error for unknown quality")
	}
	if _, _, err := Resolution("720p", "5:4", "cover"); err == nil {
		t.Error("expected error for unknown aspect")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studio.yaml")
	data := "slide_duration: 0\naudio: lofi\nfit: contain\naspect: \"1:1\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Static() || cfg.HoldSeconds() != StaticSlideDuration {
		t.Errorf("static = %v, hold = %v", cfg.Static(), cfg.HoldSeconds())
	}
	if cfg.AudioStyle != "lofi" || cfg.FPS != 30 {
		t.Errorf("cfg = %+v", cfg)
	}
	if err := cfg.ResolveSize(); err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 720 || cfg.Height != 1280 {
		t.Errorf("contain 1:1 resolved to %dx%d", cfg.Width, cfg.Height)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Width, cfg.Height = 721, 0
	cfg.FPS = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation errors")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("S3_BUCKET", "pins")
	cfg := Default()
	cfg.ApplyEnv()
	if cfg.RedisAddr != "cache:6379" || cfg.RedisDB != 3 || cfg.S3Bucket != "pins" {
		t.Errorf("cfg = %+v", cfg)
	}
}
