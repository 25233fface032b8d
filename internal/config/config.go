package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// StaticSlideDuration replaces a zero slide duration: a static slideshow holds
// each slide for this long without zooming.
const StaticSlideDuration = 2.5

type Config struct {
	InputPath   string `yaml:"input"`
	OutputVideo string `yaml:"output"`

	// SlideDuration is the hold time per slide in seconds; 0 means static.
	SlideDuration    float64 `yaml:"slide_duration"`
	FPS              int     `yaml:"fps"`
	TransitionFrames int     `yaml:"transition_frames"`
	ZoomSpeed        float64 `yaml:"zoom_speed"`
	AudioStyle       string  `yaml:"audio"`
	Fit              string  `yaml:"fit"`
	Quality          string  `yaml:"quality"`
	Aspect           string  `yaml:"aspect"`
	Width            int     `yaml:"width"`
	Height           int     `yaml:"height"`
	DPI              int     `yaml:"dpi"`
	Workers          int     `yaml:"workers"`

	Container    string `yaml:"container"`
	VideoQuality int    `yaml:"video_quality"`
	PreferFFmpeg bool   `yaml:"prefer_ffmpeg"`
	Realtime     bool   `yaml:"realtime"`
	ShowStats    bool   `yaml:"show_stats"`
	Publish      bool   `yaml:"publish"`

	S3Bucket   string `yaml:"s3_bucket"`
	S3Prefix   string `yaml:"s3_prefix"`
	S3Region   string `yaml:"s3_region"`
	S3Endpoint string `yaml:"s3_endpoint"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"-"`
	RedisDB       int    `yaml:"redis_db"`

	PresetsFile  string  `yaml:"presets_file"`
	BatchDelay   float64 `yaml:"batch_delay"`
	BuildVersion string  `yaml:"-"`
}

func Default() *Config {
	return &Config{
		SlideDuration:    2.5,
		FPS:              30,
		TransitionFrames: 20,
		ZoomSpeed:        0.002,
		AudioStyle:       "mute",
		Fit:              "cover",
		Quality:          "720p",
		Aspect:           "9:16",
		DPI:              150,
		Workers:          4,
		VideoQuality:     23,
		PreferFFmpeg:     true,
		BatchDelay:       4,
		RedisDB:          0,
	}
}

// Load читает YAML-файл поверх значений по умолчанию. Пустой путь возвращает умолчания
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv loads .env if present and lets the environment override
// endpoints and secrets.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&c.S3Bucket, "S3_BUCKET")
	setString(&c.S3Prefix, "S3_PREFIX")
	setString(&c.S3Region, "AWS_REGION")
	setString(&c.S3Endpoint, "S3_ENDPOINT")
	setString(&c.RedisAddr, "REDIS_ADDR")
	setString(&c.RedisPassword, "REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.RedisDB = db
		}
	}
}

var presets = map[string]map[string][2]int{
	"720p": {
		"9:16": {720, 1280},
		"1:1":  {720, 720},
		"3:4":  {720, 960},
		"16:9": {1280, 720},
	},
	"1080p": {
		"9:16": {1080, 1920},
		"1:1":  {1080, 1080},
		"3:4":  {1080, 1440},
		"16:9": {1920, 1080},
	},
}

// Resolution returns the frame size for a quality and aspect preset. Square
// frames leave no room for the blurred backdrop, so contain promotes 1:1 to 9:16.
func Resolution(quality, aspect, fit string) (int, int, error) {
	byAspect, ok := presets[strings.ToLower(quality)]
	if !ok {
		return 0, 0, fmt.Errorf("неизвестное качество %q (720p, 1080p)", quality)
	}
	if fit == "contain" && aspect == "1:1" {
		aspect = "9:16"
	}
	wh, ok := byAspect[aspect]
	if !ok {
		return 0, 0, fmt.Errorf("неизвестный формат %q (9:16, 1:1, 3:4, 16:9)", aspect)
	}
	return wh[0], wh[1], nil
}

// ResolveSize fills Width and Height from the preset unless both are set.
func (c *Config) ResolveSize() error {
	if c.Width > 0 && c.Height > 0 {
		return nil
	}
	w, h, err := Resolution(c.Quality, c.Aspect, c.Fit)
	if err != nil {
		return err
	}
	c.Width, c.Height = w, h
	return nil
}

// Static reports whether slides are shown without zoom.
func (c *Config) Static() bool {
	return c.SlideDuration == 0
}

// HoldSeconds is the effective hold time per slide.
func (c *Config) HoldSeconds() float64 {
	if c.Static() {
		return StaticSlideDuration
	}
	return c.SlideDuration
}

func (c *Config) Validate() error {
	var errs []error
	if c.SlideDuration < 0 {
		errs = append(errs, fmt.Errorf("slide_duration не может быть отрицательной: %v", c.SlideDuration))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps должен быть положительным: %d", c.FPS))
	}
	if c.TransitionFrames < 2 {
		errs = append(errs, fmt.Errorf("transition_frames должно быть не меньше 2: %d", c.TransitionFrames))
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("некорректное разрешение %dx%d", c.Width, c.Height))
	}
	if c.Width%2 != 0 || c.Height%2 != 0 {
		errs = append(errs, fmt.Errorf("разрешение должно быть чётным: %dx%d", c.Width, c.Height))
	}
	if c.ZoomSpeed < 0 {
		errs = append(errs, fmt.Errorf("zoom_speed не может быть отрицательной"))
	}
	return errors.Join(errs...)
}
