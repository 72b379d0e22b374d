// Package atlas implements texture atlas packing and adaptive compression
// selection for material batches: signature-based property grouping, 2D bin
// packing with recursive subset splitting, layout replication across
// properties, atlas post-processing, visual complexity analysis, and
// rule-based compression tier selection.
//
// The package is a library invoked by a bake pipeline. Inputs are treated
// as immutable: materials and images are never edited in place, every
// produced material is a copy.
package atlas

import (
	"github.com/Faultbox/atlasforge/pkg/imaging"
	gmath "github.com/Faultbox/atlasforge/pkg/math"
)

// PropertyRole classifies what a texture property feeds, which steers
// placeholder fill values, normal-map post-processing, and complexity
// score modifiers.
type PropertyRole int

const (
	RoleGeneric PropertyRole = iota
	RoleAlbedo
	RoleNormal
	RoleMask
	RoleDetail
	RoleEmission
)

// String returns the role name.
func (r PropertyRole) String() string {
	switch r {
	case RoleAlbedo:
		return "albedo"
	case RoleNormal:
		return "normal"
	case RoleMask:
		return "mask"
	case RoleDetail:
		return "detail"
	case RoleEmission:
		return "emission"
	default:
		return "generic"
	}
}

// PropertyDesc names one image slot of a shader and its role.
type PropertyDesc struct {
	Name string
	Role PropertyRole
}

// ShaderDescriptor is the statically-typed description of a shader's image
// properties, supplied by the caller in place of runtime reflection over
// shader property tables.
type ShaderDescriptor struct {
	Name       string
	Properties []PropertyDesc
}

// Property is one image slot on a material: an optional image plus the
// scale/offset transform applied to surface coordinates when sampling it.
type Property struct {
	Image  *imaging.Image // nil when no image is assigned
	Scale  gmath.Vec2
	Offset gmath.Vec2
}

// Material is an immutable input material: a shader reference and its
// property assignments. The engine only ever produces copies.
type Material struct {
	Name       string
	Shader     string
	Properties map[string]Property
}

// Property returns the named property and whether it exists.
func (m *Material) Property(name string) (Property, bool) {
	p, ok := m.Properties[name]
	return p, ok
}

// Clone returns a deep copy of the material. Images are shared by
// reference; they are read-only for the duration of a run.
func (m *Material) Clone() *Material {
	props := make(map[string]Property, len(m.Properties))
	for name, p := range m.Properties {
		props[name] = p
	}
	return &Material{Name: m.Name, Shader: m.Shader, Properties: props}
}

// MaterialCopy is the per-material output: a cloned material whose image
// properties point at produced atlases, plus the placement rectangle
// assigned to the original material in the driver atlas.
type MaterialCopy struct {
	Source   *Material
	Material *Material
	Rect     gmath.Rect
}
