package nowarn

import (
	"strings"

	"github.com/go-nuget/gonuget/frameworks"
)

// indexEntry is one node of the dependency index built from a TargetGraph's
// flattened list: its type, its outgoing edges, and, for project nodes
// only, its own suppression configuration for this walk's framework.
// Package nodes carry no suppression of their own; suppression reaches a
// package only via the path that led to it.
type indexEntry struct {
	id            string
	itemType      ItemType
	outgoingEdges []string
	own           NodeWarn
}

// index is the per-framework lookup structure the walk runs over: every
// node reachable from the parent, plus the set of package ids that make up
// the parent's transitive package closure.
type index struct {
	byID    map[string]*indexEntry
	closure map[string]struct{}
}

// buildIndex constructs an index from graph for framework fw, resolving
// each project node's own NodeWarn via cache. It panics with
// InvariantViolationError if a flattened item is missing an id, or is typed
// as a project but carries no ProjectSpec.
func buildIndex(graph *TargetGraph, fw *frameworks.NuGetFramework, cache *NodeWarnCache, nearest NearestFrameworkFunc) *index {
	idx := &index{
		byID:    make(map[string]*indexEntry, len(graph.Flattened)),
		closure: make(map[string]struct{}),
	}

	for i := range graph.Flattened {
		item := &graph.Flattened[i]
		if item.ID == "" {
			invariantViolation("flattened item %d has no id", i)
		}
		key := strings.ToLower(item.ID)

		entry := &indexEntry{
			id:            item.ID,
			itemType:      item.Type,
			outgoingEdges: item.OutgoingEdges,
		}

		switch item.Type {
		case ItemTypeProject:
			if item.ProjectSpec == nil {
				invariantViolation("project item %q has no project spec", item.ID)
			}
			projectFw := fw
			if len(item.ProjectSpec.TargetFrameworks) > 0 {
				projectFw = nearest(item.ProjectSpec.TargetFrameworks, fw)
				if projectFw == nil {
					// No compatible framework for this referenced project:
					// its edges are still traversed, but it contributes no
					// suppression of its own.
					break
				}
			}
			entry.own = cache.GetOrBuild(item.ProjectSpec, projectFw)
		case ItemTypePackage:
			idx.closure[key] = struct{}{}
		}

		idx.byID[key] = entry
	}

	return idx
}

func (idx *index) get(id string) (*indexEntry, bool) {
	e, ok := idx.byID[strings.ToLower(id)]
	return e, ok
}
