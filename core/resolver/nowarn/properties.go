package nowarn

import (
	"strings"

	"github.com/go-nuget/gonuget/frameworks"
)

// RawPackageSpecific is the wire/config shape a project's package-specific
// warning suppression is authored in: diagnostic code -> package id -> the
// frameworks under which that suppression applies. This mirrors how
// per-project warning properties are actually declared (one NoWarn entry
// per package reference, optionally scoped to specific frameworks) rather
// than the framework -> package -> codes shape the walk wants to consume.
//
// Package ids are matched case-insensitively.
type RawPackageSpecific map[Code]map[string][]*frameworks.NuGetFramework

// ForFramework reindexes r into the PackageSpecific shape (package id ->
// CodeSet) restricted to fw: a (code, packageID) pair contributes to the
// result only if fw appears in its framework list, or the pair's framework
// list is empty (meaning "all frameworks").
//
// Returns nil if r is nil (no configuration at all).
func (r RawPackageSpecific) ForFramework(fw *frameworks.NuGetFramework) PackageSpecific {
	if r == nil {
		return nil
	}
	out := newPackageSpecific()
	for code, byPackage := range r {
		for pkgID, fws := range byPackage {
			if !frameworkListContains(fws, fw) {
				continue
			}
			key := strings.ToLower(pkgID)
			set := out[key]
			if set == nil {
				set = NewCodeSet()
			}
			set[code] = struct{}{}
			out[key] = set
		}
	}
	return out
}

func frameworkListContains(fws []*frameworks.NuGetFramework, target *frameworks.NuGetFramework) bool {
	if len(fws) == 0 {
		return true
	}
	if target == nil {
		return false
	}
	for _, fw := range fws {
		if fw != nil && fw.Equals(target) {
			return true
		}
	}
	return false
}

// ProjectSpec is a project's own warning configuration, as delivered by the
// external project-model collaborator. Path is used as the NodeWarnCache
// key and, like package ids, is compared case-insensitively.
type ProjectSpec struct {
	Path             string
	ProjectWide      ProjectWide
	PackageSpecific  RawPackageSpecific
	TargetFrameworks []*frameworks.NuGetFramework
}

// ParentSpec is the consuming (top-level) project's own warning
// configuration, supplied to Resolve.
type ParentSpec struct {
	ID               string
	ProjectWide      ProjectWide
	PackageSpecific  RawPackageSpecific
	TargetFrameworks []*frameworks.NuGetFramework
}
