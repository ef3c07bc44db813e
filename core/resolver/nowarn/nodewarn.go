package nowarn

import "strings"

// ProjectWide is a set of Codes suppressed for every package under a
// project.
type ProjectWide = CodeSet

// PackageSpecific maps package id (case-insensitive) to the set of Codes
// suppressed only for that package. Keys are stored lower-cased; use
// newPackageSpecific/Set/Get rather than indexing the map directly so
// case-insensitivity holds.
type PackageSpecific map[string]CodeSet

// newPackageSpecific returns an empty, non-nil PackageSpecific.
func newPackageSpecific() PackageSpecific {
	return make(PackageSpecific)
}

// Get returns the CodeSet for id (case-insensitive), or nil if absent.
func (p PackageSpecific) Get(id string) CodeSet {
	if p == nil {
		return nil
	}
	return p[strings.ToLower(id)]
}

// Set records codes for id (case-insensitive), overwriting any prior entry.
func (p PackageSpecific) Set(id string, codes CodeSet) {
	p[strings.ToLower(id)] = codes
}

// pkgMerge returns the per-key union of a and b over PackageSpecific maps.
// Null-safe: if either is nil, the other is returned as-is.
func pkgMerge(a, b PackageSpecific) PackageSpecific {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	out := make(PackageSpecific, len(a)+len(b))
	for id, codes := range a {
		out[id] = codes
	}
	for id, codes := range b {
		out[id] = unionCodes(out[id], codes)
	}
	return out
}

// pkgEqual reports structural equality of two PackageSpecific maps,
// treating nil and empty as equal and missing keys as an empty CodeSet.
func pkgEqual(a, b PackageSpecific) bool {
	seen := make(map[string]struct{}, len(a)+len(b))
	for id := range a {
		seen[id] = struct{}{}
	}
	for id := range b {
		seen[id] = struct{}{}
	}
	for id := range seen {
		if !a[id].Equal(b[id]) {
			return false
		}
	}
	return true
}

// NodeWarn is the pair of project-wide and package-specific suppression
// carried along a path, or attached to a node in the dependency index.
// Either component may be nil (absent), which is treated as empty almost
// everywhere; the one place nil carries extra meaning ("unconstrained so
// far", not "empty") is the admission cache's intersect, see admit.
type NodeWarn struct {
	ProjectWide     ProjectWide
	PackageSpecific PackageSpecific
}

// IsEmpty reports whether w carries no suppression at all.
func (w NodeWarn) IsEmpty() bool {
	if len(w.ProjectWide) != 0 {
		return false
	}
	for _, codes := range w.PackageSpecific {
		if len(codes) != 0 {
			return false
		}
	}
	return true
}

// Equal reports structural equality, treating nil as empty.
func (w NodeWarn) Equal(other NodeWarn) bool {
	return w.ProjectWide.Equal(other.ProjectWide) && pkgEqual(w.PackageSpecific, other.PackageSpecific)
}

// unionNodeWarn merges node configuration into a path value: project-wide
// codes union, package-specific codes union per key. This is the "along a
// single path" operator applied when a project node is entered; strictly
// additive.
func unionNodeWarn(path, node NodeWarn) NodeWarn {
	return NodeWarn{
		ProjectWide:     unionCodes(path.ProjectWide, node.ProjectWide),
		PackageSpecific: pkgMerge(path.PackageSpecific, node.PackageSpecific),
	}
}

// intersectNodeWarn is the admission cache's component-wise intersect:
// ProjectWide sets intersect null-safely, and PackageSpecific intersects per
// key over the union of keys, with a missing side on a key treated as the
// other side's value. Absence means "unknown so far", not "zero codes", so
// it must not zero out a key the other side constrained.
func intersectNodeWarn(a, b NodeWarn) NodeWarn {
	out := NodeWarn{
		ProjectWide:     intersectCodes(a.ProjectWide, b.ProjectWide),
		PackageSpecific: make(PackageSpecific, len(a.PackageSpecific)+len(b.PackageSpecific)),
	}
	keys := make(map[string]struct{}, len(a.PackageSpecific)+len(b.PackageSpecific))
	for id := range a.PackageSpecific {
		keys[id] = struct{}{}
	}
	for id := range b.PackageSpecific {
		keys[id] = struct{}{}
	}
	for id := range keys {
		av, aok := a.PackageSpecific[id]
		bv, bok := b.PackageSpecific[id]
		switch {
		case aok && bok:
			out.PackageSpecific[id] = intersectCodes(av, bv)
		case aok:
			out.PackageSpecific[id] = av
		default:
			out.PackageSpecific[id] = bv
		}
	}
	return out
}

// isSubsetNodeWarn reports whether a ⊆ b: a's ProjectWide is a subset of
// b's, and every package-specific entry in a has a corresponding entry in b
// that is a superset. Absent sides are treated as empty. An empty a is
// always a subset.
//
// Intersecting a guaranteed set G with an incoming path P only ever leaves G
// unchanged when G ⊆ P (P is a superset of, or equal to, what's already
// guaranteed, so it can remove nothing from the intersection). The
// admission check in admit (walker.go) therefore tests
// isSubsetNodeWarn(existing, incoming), not the other way around: when the
// incoming path is a strict subset of what's recorded, it genuinely shrinks
// the guaranteed set and must be admitted.
func isSubsetNodeWarn(a, b NodeWarn) bool {
	if !isSubsetCodes(a.ProjectWide, b.ProjectWide) {
		return false
	}
	for id, codes := range a.PackageSpecific {
		if len(codes) == 0 {
			continue
		}
		if !isSubsetCodes(codes, b.PackageSpecific[id]) {
			return false
		}
	}
	return true
}
