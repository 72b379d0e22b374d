package main

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/atlasforge/pkg/atlas"
	gmath "github.com/Faultbox/atlasforge/pkg/math"
)

// Report accumulates bake results across shaders and writes the atlas
// images plus a YAML summary usable by a downstream import pipeline.
type Report struct {
	Mode    string         `yaml:"mode"`
	Shaders []ShaderReport `yaml:"shaders"`

	atlases []*atlas.Atlas
	files   []string
}

type ShaderReport struct {
	Shader    string           `yaml:"shader"`
	Atlases   []AtlasReport    `yaml:"atlases"`
	Materials []MaterialReport `yaml:"materials"`
	Remaps    []RemapReport    `yaml:"remaps,omitempty"`
	Events    []string         `yaml:"events,omitempty"`
}

type AtlasReport struct {
	File       string  `yaml:"file"`
	Property   string  `yaml:"property"`
	Role       string  `yaml:"role"`
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Complexity float64 `yaml:"complexity"`
	Reason     string  `yaml:"reason"`
	Tier       string  `yaml:"tier"`
	MaxSize    int     `yaml:"max_size"`
	Quality    int     `yaml:"quality"`
	Format     string  `yaml:"format"`
	Mipmaps    bool    `yaml:"mipmaps"`
}

type MaterialReport struct {
	Name string     `yaml:"name"`
	Rect RectReport `yaml:"rect"`
}

type RemapReport struct {
	Surface  string     `yaml:"surface"`
	Slot     int        `yaml:"slot"`
	Material string     `yaml:"material"`
	Rect     RectReport `yaml:"rect"`
	Baked    bool       `yaml:"baked"`
	Skipped  bool       `yaml:"skipped,omitempty"`
	Reason   string     `yaml:"reason,omitempty"`
}

type RectReport struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	W float32 `yaml:"w"`
	H float32 `yaml:"h"`
}

func rectReport(r gmath.Rect) RectReport {
	return RectReport{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

// NewReport creates an empty report for the given workflow mode.
func NewReport(mode atlas.WorkflowMode) *Report {
	return &Report{Mode: string(mode)}
}

// Add folds one shader's outcome into the report.
func (r *Report) Add(shader string, outcome *atlas.Outcome) {
	sr := ShaderReport{Shader: shader}

	for _, a := range outcome.Atlases {
		file := fmt.Sprintf("%s_%d.png", sanitize(a.Image.ID), len(r.atlases))
		r.atlases = append(r.atlases, a)
		r.files = append(r.files, file)

		sr.Atlases = append(sr.Atlases, AtlasReport{
			File:       file,
			Property:   a.Group.Representative.Name,
			Role:       a.Role.String(),
			Width:      a.Image.Width,
			Height:     a.Image.Height,
			Complexity: a.Analysis.Score,
			Reason:     a.Analysis.Reason,
			Tier:       a.Settings.Tier,
			MaxSize:    a.Settings.MaxSize,
			Quality:    a.Settings.Quality,
			Format:     a.Settings.Format,
			Mipmaps:    a.Settings.Mipmaps,
		})
	}

	for _, mc := range outcome.MaterialCopies {
		sr.Materials = append(sr.Materials, MaterialReport{
			Name: mc.Material.Name,
			Rect: rectReport(mc.Rect),
		})
	}

	for _, rm := range outcome.Remaps {
		sr.Remaps = append(sr.Remaps, RemapReport{
			Surface:  rm.Surface,
			Slot:     rm.Slot,
			Material: rm.Material,
			Rect:     rectReport(rm.Rect),
			Baked:    rm.Baked,
			Skipped:  rm.Skipped,
			Reason:   rm.Reason,
		})
	}

	for _, ev := range outcome.Events {
		if ev.Severity >= atlas.SeverityWarn {
			sr.Events = append(sr.Events, fmt.Sprintf("%s [%s] %s", ev.Severity, ev.Component, ev.Message))
		}
	}

	r.Shaders = append(r.Shaders, sr)
}

// AtlasCount returns how many atlas images the report holds.
func (r *Report) AtlasCount() int { return len(r.atlases) }

// MaterialCount returns how many materials were atlased.
func (r *Report) MaterialCount() int {
	n := 0
	for _, sr := range r.Shaders {
		n += len(sr.Materials)
	}
	return n
}

// Write writes the atlas PNGs and, when enabled, the YAML report to dir.
func (r *Report) Write(dir string, withReport bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	for i, a := range r.atlases {
		path := filepath.Join(dir, r.files[i])
		if err := writePNG(path, a); err != nil {
			return err
		}
	}

	if !withReport {
		return nil
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	path := filepath.Join(dir, "report.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func writePNG(path string, a *atlas.Atlas) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, a.Image.RGBA()); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}

// sanitize turns an atlas image ID into a safe file name stem.
func sanitize(id string) string {
	var b strings.Builder
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			b.WriteRune(c)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
