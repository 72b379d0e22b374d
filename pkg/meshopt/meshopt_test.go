package meshopt

import (
	"reflect"
	"testing"

	gmath "github.com/Faultbox/atlasforge/pkg/math"
)

func TestMergeVerticesByDistance(t *testing.T) {
	positions := []gmath.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 0.005, Y: 0, Z: 0}, // within range of vertex 0
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: 0.004}, // within range of vertex 0
	}

	merged, remap := MergeVerticesByDistance(positions, 0.01)

	if len(merged) != 2 {
		t.Fatalf("len(merged) = %d, want 2", len(merged))
	}
	wantRemap := []int{0, 0, 1, 0}
	if !reflect.DeepEqual(remap, wantRemap) {
		t.Errorf("remap = %v, want %v", remap, wantRemap)
	}
	// Survivors keep first-seen positions.
	if merged[0] != positions[0] || merged[1] != positions[2] {
		t.Errorf("merged = %v, want first-seen positions", merged)
	}
}

func TestMergeVerticesExactOnly(t *testing.T) {
	positions := []gmath.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: 0},
		{X: 0.001, Y: 0, Z: 0},
	}

	merged, remap := MergeVerticesByDistance(positions, 0)

	if len(merged) != 2 {
		t.Fatalf("len(merged) = %d, want 2", len(merged))
	}
	if remap[0] != remap[1] {
		t.Errorf("exact duplicates not merged: remap = %v", remap)
	}
	if remap[2] == remap[0] {
		t.Errorf("distinct vertex merged at zero distance: remap = %v", remap)
	}
}

func TestMergeVerticesDeterministic(t *testing.T) {
	positions := []gmath.Vec3{
		{X: 0.1, Y: 0.2, Z: 0.3},
		{X: 0.1005, Y: 0.2, Z: 0.3},
		{X: 5, Y: 5, Z: 5},
		{X: 0.1, Y: 0.2005, Z: 0.3},
	}

	first, firstRemap := MergeVerticesByDistance(positions, 0.01)
	for i := 0; i < 5; i++ {
		merged, remap := MergeVerticesByDistance(positions, 0.01)
		if !reflect.DeepEqual(merged, first) || !reflect.DeepEqual(remap, firstRemap) {
			t.Fatalf("run %d differs: %v %v vs %v %v", i, merged, remap, first, firstRemap)
		}
	}
}

func TestRemapIndicesDropsDegenerates(t *testing.T) {
	// Triangle 0: all three collapse to vertex 0. Triangle 1 survives.
	indices := []int{0, 1, 2, 0, 3, 4}
	remap := []int{0, 0, 0, 1, 2}

	got := RemapIndices(indices, remap)
	want := []int{0, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RemapIndices() = %v, want %v", got, want)
	}
}

func TestPruneBoneWeights(t *testing.T) {
	vertices := [][]BoneWeight{
		{{Bone: 0, Weight: 0.6}, {Bone: 1, Weight: 0.3}, {Bone: 2, Weight: 0.1}},
	}

	got := PruneBoneWeights(vertices, 0.2)

	if len(got[0]) != 2 {
		t.Fatalf("kept %d influences, want 2", len(got[0]))
	}
	var sum float32
	for _, w := range got[0] {
		if w.Bone == 2 {
			t.Errorf("bone 2 kept despite weight below threshold")
		}
		sum += w.Weight
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("weights sum to %v, want 1", sum)
	}
	// 0.6/0.9 and 0.3/0.9
	if got[0][0].Weight < 0.66 || got[0][0].Weight > 0.67 {
		t.Errorf("renormalized weight = %v, want ~0.667", got[0][0].Weight)
	}
}

func TestPruneBoneWeightsKeepsStrongest(t *testing.T) {
	vertices := [][]BoneWeight{
		{{Bone: 3, Weight: 0.05}, {Bone: 7, Weight: 0.08}, {Bone: 1, Weight: 0.02}},
	}

	got := PruneBoneWeights(vertices, 0.5)

	want := []BoneWeight{{Bone: 7, Weight: 1}}
	if !reflect.DeepEqual(got[0], want) {
		t.Errorf("PruneBoneWeights() = %v, want %v", got[0], want)
	}
}

func TestUsedBones(t *testing.T) {
	vertices := [][]BoneWeight{
		{{Bone: 5, Weight: 1}},
		{{Bone: 2, Weight: 0.5}, {Bone: 5, Weight: 0.5}},
		nil,
	}

	got := UsedBones(vertices)
	want := []int{2, 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UsedBones() = %v, want %v", got, want)
	}
}

func TestPruneBlendshapes(t *testing.T) {
	shapes := []Blendshape{
		{Name: "smile"},
		{Name: "blink_l"},
		{Name: "jaw_open"},
	}
	used := map[string]bool{"jaw_open": true, "smile": true}

	got := PruneBlendshapes(shapes, used)

	if len(got) != 2 {
		t.Fatalf("kept %d shapes, want 2", len(got))
	}
	// Input order preserved.
	if got[0].Name != "smile" || got[1].Name != "jaw_open" {
		t.Errorf("order = [%s %s], want [smile jaw_open]", got[0].Name, got[1].Name)
	}
}

func TestRemapBlendshape(t *testing.T) {
	shape := Blendshape{
		Name: "smile",
		Deltas: []gmath.Vec3{
			{X: 1, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0}, // duplicate of vertex 0
			{X: 0, Y: 2, Z: 0},
		},
	}
	remap := []int{0, 0, 1}

	got := RemapBlendshape(shape, remap, 2)

	if len(got.Deltas) != 2 {
		t.Fatalf("len(Deltas) = %d, want 2", len(got.Deltas))
	}
	if got.Deltas[0] != (gmath.Vec3{X: 1, Y: 0, Z: 0}) {
		t.Errorf("Deltas[0] = %v, want identical merged delta preserved", got.Deltas[0])
	}
	if got.Deltas[1] != (gmath.Vec3{X: 0, Y: 2, Z: 0}) {
		t.Errorf("Deltas[1] = %v, want {0 2 0}", got.Deltas[1])
	}
}
