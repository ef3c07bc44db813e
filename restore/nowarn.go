package restore

import (
	"strings"
	"time"

	"github.com/go-nuget/gonuget/core/resolver"
	"github.com/go-nuget/gonuget/core/resolver/nowarn"
	"github.com/go-nuget/gonuget/frameworks"
	"github.com/go-nuget/gonuget/observability"
)

// BuildNowarnGraph flattens a resolved package dependency tree (as built by
// the transitive walker) into the package-closure shape nowarn.Resolve
// expects for one target framework.
//
// Only resolver.GraphNode's package graph is modeled here: the walker has
// no project-to-project reference nodes, so every flattened item comes out
// typed as a package. nowarn itself still implements the project-node
// union branch, it is simply never exercised through this adapter.
func BuildNowarnGraph(root *resolver.GraphNode, fw *frameworks.NuGetFramework, runtimeIdentifier string) *nowarn.TargetGraph {
	graph := &nowarn.TargetGraph{
		Framework:         fw,
		RuntimeIdentifier: runtimeIdentifier,
	}
	if root == nil {
		return graph
	}

	seen := make(map[string]*nowarn.FlattenedItem)
	rootSeen := make(map[string]struct{}, len(root.InnerNodes))
	rootEdges := make([]string, 0, len(root.InnerNodes))

	for _, child := range root.InnerNodes {
		if child == nil || child.Item == nil || child.Disposition == resolver.DispositionRejected {
			continue
		}
		key := strings.ToLower(child.Item.ID)
		if _, dup := rootSeen[key]; !dup {
			rootSeen[key] = struct{}{}
			rootEdges = append(rootEdges, child.Item.ID)
		}
		flattenGraphNode(child, seen)
	}

	graph.RootEdges = rootEdges
	graph.Flattened = make([]nowarn.FlattenedItem, 0, len(seen))
	for _, item := range seen {
		graph.Flattened = append(graph.Flattened, *item)
	}
	return graph
}

// flattenGraphNode records node (and merges any new outgoing edges into an
// already-recorded entry for its id) and, on first visit only, recurses
// into its children. Dedup on id rather than node identity handles shared
// dependencies reached via more than one path, and the id-keyed seen map
// makes this safe against graph cycles.
func flattenGraphNode(node *resolver.GraphNode, seen map[string]*nowarn.FlattenedItem) {
	if node == nil || node.Item == nil || node.Disposition == resolver.DispositionRejected {
		return
	}
	key := strings.ToLower(node.Item.ID)

	existing, visited := seen[key]
	if !visited {
		existing = &nowarn.FlattenedItem{ID: node.Item.ID, Type: nowarn.ItemTypePackage}
		seen[key] = existing
	}

	edgeSeen := make(map[string]struct{}, len(existing.OutgoingEdges))
	for _, e := range existing.OutgoingEdges {
		edgeSeen[strings.ToLower(e)] = struct{}{}
	}
	for _, child := range node.InnerNodes {
		if child == nil || child.Item == nil || child.Disposition == resolver.DispositionRejected {
			continue
		}
		childKey := strings.ToLower(child.Item.ID)
		if _, dup := edgeSeen[childKey]; !dup {
			edgeSeen[childKey] = struct{}{}
			existing.OutgoingEdges = append(existing.OutgoingEdges, child.Item.ID)
		}
	}

	if visited {
		return
	}
	for _, child := range node.InnerNodes {
		flattenGraphNode(child, seen)
	}
}

// ComputeNoWarn computes, for one resolved target framework graph, the
// diagnostic codes suppressed on every transitively reachable package,
// recording the walk duration and suppressed-package count.
func ComputeNoWarn(parent *nowarn.ParentSpec, graphRoot *resolver.GraphNode, fw *frameworks.NuGetFramework) *nowarn.Result {
	start := time.Now()

	target := BuildNowarnGraph(graphRoot, fw, "")
	result := nowarn.Resolve(parent, []*nowarn.TargetGraph{target})

	fwLabel := ""
	if fw != nil {
		fwLabel = fw.String()
	}
	observability.NowarnWalkDuration.WithLabelValues(fwLabel).Observe(time.Since(start).Seconds())
	if byPkg := result.PackageSpecific[strings.ToLower(fwLabel)]; len(byPkg) > 0 {
		observability.NowarnSuppressedPackagesTotal.WithLabelValues(fwLabel).Add(float64(len(byPkg)))
	}

	return result
}
