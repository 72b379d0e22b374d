package meshopt

import "sort"

// BoneWeight binds one vertex to a bone with an influence weight.
type BoneWeight struct {
	Bone   int
	Weight float32
}

// PruneBoneWeights drops influences below threshold from each vertex and
// renormalizes the remainder to sum to 1. A vertex whose influences all
// fall below threshold keeps its single strongest one at full weight, so
// no vertex ever detaches from the skeleton.
func PruneBoneWeights(vertices [][]BoneWeight, threshold float32) [][]BoneWeight {
	out := make([][]BoneWeight, len(vertices))
	for vi, weights := range vertices {
		if len(weights) == 0 {
			continue
		}

		var kept []BoneWeight
		var total float32
		for _, w := range weights {
			if w.Weight >= threshold {
				kept = append(kept, w)
				total += w.Weight
			}
		}

		if len(kept) == 0 || total == 0 {
			strongest := weights[0]
			for _, w := range weights[1:] {
				if w.Weight > strongest.Weight {
					strongest = w
				}
			}
			out[vi] = []BoneWeight{{Bone: strongest.Bone, Weight: 1}}
			continue
		}

		for i := range kept {
			kept[i].Weight /= total
		}
		out[vi] = kept
	}
	return out
}

// UsedBones returns the sorted distinct bone indices referenced by any
// vertex, for compacting a skeleton after pruning.
func UsedBones(vertices [][]BoneWeight) []int {
	seen := make(map[int]bool)
	for _, weights := range vertices {
		for _, w := range weights {
			seen[w.Bone] = true
		}
	}
	out := make([]int, 0, len(seen))
	for bone := range seen {
		out = append(out, bone)
	}
	sort.Ints(out)
	return out
}
