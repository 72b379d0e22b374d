package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/atlasforge/pkg/atlas"
	"github.com/Faultbox/atlasforge/pkg/imaging"
	gmath "github.com/Faultbox/atlasforge/pkg/math"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Manifest describes one bake batch: the shaders, the materials using
// them, and optionally the surfaces whose coordinates may be rewritten.
// Image paths are resolved relative to the manifest file.
type Manifest struct {
	Shaders    []ManifestShader   `yaml:"shaders"`
	Materials  []ManifestMaterial `yaml:"materials"`
	Surfaces   []ManifestSurface  `yaml:"surfaces"`
	Exclusions ManifestExclusions `yaml:"exclusions"`

	dir string
}

type ManifestShader struct {
	Name       string             `yaml:"name"`
	Properties []ManifestProperty `yaml:"properties"`
}

type ManifestProperty struct {
	Name string `yaml:"name"`
	Role string `yaml:"role"`
}

type ManifestMaterial struct {
	Name   string            `yaml:"name"`
	Shader string            `yaml:"shader"`
	Images map[string]string `yaml:"images"`
}

type ManifestSurface struct {
	Name  string         `yaml:"name"`
	UV    [][]float32    `yaml:"uv"`
	Slots []ManifestSlot `yaml:"slots"`
}

type ManifestSlot struct {
	Material string `yaml:"material"`
	Start    int    `yaml:"start"`
	Count    int    `yaml:"count"`
}

// ManifestExclusions names materials and properties the bake must leave
// untouched, typically because they are animated at runtime.
type ManifestExclusions struct {
	Materials  []string `yaml:"materials"`
	Properties []string `yaml:"properties"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	m.dir = filepath.Dir(path)

	if len(m.Shaders) == 0 {
		return nil, fmt.Errorf("manifest declares no shaders")
	}
	shaders := make(map[string]bool, len(m.Shaders))
	for _, s := range m.Shaders {
		if s.Name == "" {
			return nil, fmt.Errorf("shader with empty name")
		}
		shaders[s.Name] = true
		for _, p := range s.Properties {
			if _, err := parseRole(p.Role); err != nil {
				return nil, fmt.Errorf("shader %q property %q: %w", s.Name, p.Name, err)
			}
		}
	}
	for _, mat := range m.Materials {
		if !shaders[mat.Shader] {
			return nil, fmt.Errorf("material %q references unknown shader %q", mat.Name, mat.Shader)
		}
	}
	return &m, nil
}

// parseRole maps a manifest role string to a property role. An empty
// string means generic.
func parseRole(s string) (atlas.PropertyRole, error) {
	switch s {
	case "", "generic":
		return atlas.RoleGeneric, nil
	case "albedo":
		return atlas.RoleAlbedo, nil
	case "normal":
		return atlas.RoleNormal, nil
	case "mask":
		return atlas.RoleMask, nil
	case "detail":
		return atlas.RoleDetail, nil
	case "emission":
		return atlas.RoleEmission, nil
	default:
		return atlas.RoleGeneric, fmt.Errorf("unknown role %q", s)
	}
}

// Descriptor builds the shader descriptor for the named shader.
func (m *Manifest) Descriptor(shader ManifestShader) *atlas.ShaderDescriptor {
	desc := &atlas.ShaderDescriptor{Name: shader.Name}
	for _, p := range shader.Properties {
		role, _ := parseRole(p.Role)
		desc.Properties = append(desc.Properties, atlas.PropertyDesc{Name: p.Name, Role: role})
	}
	return desc
}

// MaterialsFor loads the materials assigned to the given shader, decoding
// their images lazily: pixel data is rasterized only when the packer
// actually composes an atlas from it.
func (m *Manifest) MaterialsFor(shader string) ([]*atlas.Material, error) {
	var out []*atlas.Material
	for _, mm := range m.Materials {
		if mm.Shader != shader {
			continue
		}
		mat := &atlas.Material{
			Name:       mm.Name,
			Shader:     mm.Shader,
			Properties: make(map[string]atlas.Property, len(mm.Images)),
		}
		for prop, rel := range mm.Images {
			img, err := m.loadImage(rel)
			if err != nil {
				return nil, fmt.Errorf("material %q property %q: %w", mm.Name, prop, err)
			}
			mat.Properties[prop] = atlas.Property{Image: img}
		}
		out = append(out, mat)
	}
	return out, nil
}

func (m *Manifest) loadImage(rel string) (*imaging.Image, error) {
	path := filepath.Join(m.dir, rel)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return imaging.Deferred(rel, src), nil
}

// SurfacesFor builds the surface set for the given materials. Only
// surfaces with at least one slot pointing at a known material are kept.
func (m *Manifest) SurfacesFor(materials []*atlas.Material) []*atlas.Surface {
	known := make(map[string]bool, len(materials))
	for _, mat := range materials {
		known[mat.Name] = true
	}

	var out []*atlas.Surface
	for _, ms := range m.Surfaces {
		s := &atlas.Surface{Name: ms.Name}
		for _, uv := range ms.UV {
			if len(uv) != 2 {
				continue
			}
			s.UV = append(s.UV, gmath.Vec2{X: uv[0], Y: uv[1]})
		}
		for _, slot := range ms.Slots {
			if !known[slot.Material] {
				continue
			}
			s.Slots = append(s.Slots, atlas.SurfaceSlot{
				Material: slot.Material,
				Start:    slot.Start,
				Count:    slot.Count,
			})
		}
		if len(s.Slots) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// ExclusionSet converts manifest exclusion lists to lookup sets.
func (m *Manifest) ExclusionSet() atlas.ExclusionSet {
	set := atlas.ExclusionSet{
		Materials:  make(map[string]bool, len(m.Exclusions.Materials)),
		Properties: make(map[string]bool, len(m.Exclusions.Properties)),
	}
	for _, name := range m.Exclusions.Materials {
		set.Materials[name] = true
	}
	for _, name := range m.Exclusions.Properties {
		set.Properties[name] = true
	}
	return set
}
