package nowarn

import (
	"fmt"

	"github.com/go-nuget/gonuget/frameworks"
)

// ItemType distinguishes a project node from a package node in a flattened
// dependency graph.
type ItemType int

const (
	// ItemTypePackage is a resolved package dependency.
	ItemTypePackage ItemType = iota
	// ItemTypeProject is a referenced project (a project-to-project
	// reference), carrying its own warning configuration.
	ItemTypeProject
)

func (t ItemType) String() string {
	if t == ItemTypeProject {
		return "Project"
	}
	return "Package"
}

// FlattenedItem is one entry of a resolved graph's flattened dependency
// list: an id, its item type, its outgoing edges, and, for project items,
// the referenced project's own spec.
type FlattenedItem struct {
	ID            string
	Type          ItemType
	OutgoingEdges []string
	ProjectSpec   *ProjectSpec // non-nil iff Type == ItemTypeProject
}

// TargetGraph is one target-framework-scoped resolved graph for the parent
// project. RootEdges are the parent's own direct dependency ids; the parent
// itself is never a member of Flattened, since its suppression
// configuration is supplied separately as a ParentSpec.
type TargetGraph struct {
	Framework         *frameworks.NuGetFramework
	RuntimeIdentifier string
	RootEdges         []string
	Flattened         []FlattenedItem
}

// NearestFrameworkFunc selects the nearest compatible framework for a
// referenced project relative to a desired framework, or nil if none is
// compatible. frameworks.GetNearest is the default.
type NearestFrameworkFunc func(candidates []*frameworks.NuGetFramework, desired *frameworks.NuGetFramework) *frameworks.NuGetFramework

// DefaultNearestFramework adapts frameworks.GetNearest to NearestFrameworkFunc.
func DefaultNearestFramework(candidates []*frameworks.NuGetFramework, desired *frameworks.NuGetFramework) *frameworks.NuGetFramework {
	return frameworks.GetNearest(desired, candidates)
}

// InvariantViolationError reports a programmer-error input that the
// resolver refuses to process: a missing id, or a project-typed flattened
// item with no ProjectSpec. These are fail-fast and not recoverable; Resolve
// and walk panic with this error rather than returning one, matching how
// frameworks.MustParseFramework panics on a malformed TFM.
type InvariantViolationError struct {
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("nowarn: invariant violation: %s", e.Reason)
}

func invariantViolation(format string, args ...any) {
	panic(&InvariantViolationError{Reason: fmt.Sprintf(format, args...)})
}
