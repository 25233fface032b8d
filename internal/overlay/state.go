package overlay

import (
	"fmt"
	"strings"

	"github.com/ivlev/pinstudio/internal/effects"
)

type TextPosition string

const (
	Top    TextPosition = "top"
	Mid    TextPosition = "mid"
	Bottom TextPosition = "bot"
	// Auto places the text in the calmest third of the picture.
	Auto TextPosition = "auto"
)

type TextStyle string

const (
	Luxury   TextStyle = "luxury"
	Neon     TextStyle = "neon"
	Magazine TextStyle = "magazine"
	Bold     TextStyle = "bold"
	Minimal  TextStyle = "minimal"
)

type Sticker string

const (
	NoSticker Sticker = "none"
	Sale      Sticker = "sale"
	New       Sticker = "new"
	Hit       Sticker = "hit"
	Best      Sticker = "best"
)

type Mockup string

const (
	NoMockup Mockup = "none"
	Phone    Mockup = "phone"
	Polaroid Mockup = "polaroid"
	Browser  Mockup = "browser"
)

const MaxDim = 0.8

// EditState describes every edit applied to a still. Applying the same state
// to the same source always produces the same pixels.
type EditState struct {
	Filter          effects.Filter `yaml:"filter,omitempty"`
	Dim             float64        `yaml:"dim,omitempty"`
	Text            string         `yaml:"text,omitempty"`
	SubText         string         `yaml:"sub_text,omitempty"`
	FontSizePercent float64        `yaml:"font_size,omitempty"`
	Position        TextPosition   `yaml:"position,omitempty"`
	Style           TextStyle      `yaml:"style,omitempty"`
	Sticker         Sticker        `yaml:"sticker,omitempty"`
	Mockup          Mockup         `yaml:"mockup,omitempty"`
}

func DefaultEditState() EditState {
	return EditState{
		Filter:          effects.FilterNone,
		Dim:             0.2,
		FontSizePercent: 8,
		Position:        Bottom,
		Style:           Luxury,
		Sticker:         NoSticker,
		Mockup:          NoMockup,
	}
}

// Normalize fills empty fields with defaults and clamps Dim.
func (s EditState) Normalize() EditState {
	d := DefaultEditState()
	if f, err := effects.ParseFilter(string(s.Filter)); err == nil {
		s.Filter = f
	}
	if s.FontSizePercent <= 0 {
		s.FontSizePercent = d.FontSizePercent
	}
	if s.Position == "" {
		s.Position = d.Position
	}
	if s.Style == "" {
		s.Style = d.Style
	}
	if s.Sticker == "" {
		s.Sticker = NoSticker
	}
	if s.Mockup == "" {
		s.Mockup = NoMockup
	}
	s.Dim = min(max(s.Dim, 0), MaxDim)
	return s
}

func (s EditState) Validate() error {
	if _, err := effects.ParseFilter(string(s.Filter)); err != nil {
		return err
	}
	if s.FontSizePercent < 0 || s.FontSizePercent > 50 {
		return fmt.Errorf("font size %.1f%% out of range", s.FontSizePercent)
	}
	checks := []struct {
		kind, value string
		allowed     []string
	}{
		{"position", string(s.Position), []string{"", "top", "mid", "bot", "auto"}},
		{"style", string(s.Style), []string{"", "luxury", "neon", "magazine", "bold", "minimal"}},
		{"sticker", string(s.Sticker), []string{"", "none", "sale", "new", "hit", "best"}},
		{"mockup", string(s.Mockup), []string{"", "none", "phone", "polaroid", "browser"}},
	}
	for _, c := range checks {
		if !contains(c.allowed, c.value) {
			return fmt.Errorf("unknown %s %q (%s)", c.kind, c.value, strings.Join(c.allowed[1:], ", "))
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// ParsePosition accepts the short and long spellings used on the command line.
func ParsePosition(s string) (TextPosition, error) {
	switch strings.ToLower(s) {
	case "top":
		return Top, nil
	case "mid", "middle", "center":
		return Mid, nil
	case "bot", "bottom", "":
		return Bottom, nil
	case "auto":
		return Auto, nil
	}
	return "", fmt.Errorf("unknown text position %q", s)
}

// ParseStyle accepts "modern" as an alias of bold.
func ParseStyle(s string) (TextStyle, error) {
	switch v := TextStyle(strings.ToLower(s)); v {
	case Luxury, Neon, Magazine, Bold, Minimal:
		return v, nil
	case "modern":
		return Bold, nil
	case "":
		return Luxury, nil
	}
	return "", fmt.Errorf("unknown text style %q", s)
}

// Pin is an editable still. Original is never overwritten by edits, so any
// edit can be redone from the pristine image.
type Pin struct {
	ID       string     `yaml:"id,omitempty"`
	Title    string     `yaml:"title,omitempty"`
	Original string     `yaml:"original,omitempty"`
	Current  string     `yaml:"current,omitempty"`
	Edit     *EditState `yaml:"edit,omitempty"`
}
