package atlas

import "strings"

// Sentinels for "no image assigned", distinct per role direction so a
// missing normal map never groups with a missing mask.
const (
	absentNormalKey = "\x00absent-normal"
	absentOtherKey  = "\x00absent"
)

// PropertyGroup is a set of properties whose image assignments are
// identical across every material in the batch. The representative is the
// first property encountered for the signature and drives actual packing;
// all members share the representative's atlas by reference.
type PropertyGroup struct {
	Representative PropertyDesc
	Members        []PropertyDesc
}

// GroupProperties partitions the candidate properties into equivalence
// classes by their per-material image-identity signature. Pure over image
// identities; pixel contents are never touched. Groups come back in
// property-declaration order of their representatives.
//
// Packing cost downstream is proportional to distinct image sets, not raw
// property count, so collapsing identical assignments means fewer atlases.
func GroupProperties(props []PropertyDesc, materials []*Material) []PropertyGroup {
	var groups []PropertyGroup
	index := make(map[string]int)

	for _, prop := range props {
		key := signatureKey(prop, materials)
		if i, ok := index[key]; ok {
			groups[i].Members = append(groups[i].Members, prop)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, PropertyGroup{
			Representative: prop,
			Members:        []PropertyDesc{prop},
		})
	}
	return groups
}

// signatureKey emits, for every material in order, the assigned image's
// stable identity or the role-directed absent sentinel.
func signatureKey(prop PropertyDesc, materials []*Material) string {
	var b strings.Builder
	for _, m := range materials {
		p, ok := m.Property(prop.Name)
		switch {
		case ok && p.Image != nil:
			b.WriteString(p.Image.ID)
		case prop.Role == RoleNormal:
			b.WriteString(absentNormalKey)
		default:
			b.WriteString(absentOtherKey)
		}
		b.WriteByte('|')
	}
	return b.String()
}
