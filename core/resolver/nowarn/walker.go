package nowarn

import "strings"

// queueEntry is one pending (node, path-so-far) pair awaiting admission.
type queueEntry struct {
	id   string
	path NodeWarn
}

// walk performs a breadth-first traversal of a single target framework's
// dependency index: starting from the parent's direct dependencies carrying
// rootWarn as the initial path, it visits every reachable node at most as
// many times as subset-pruning allows, and returns, for every package id in
// idx.closure that remains non-empty, the intersection across all admitted
// paths that reached it of the suppression effective on that path.
//
// Packages pruned down to an empty CodeSet are dropped from the result
// entirely: an empty set there is indistinguishable from "never
// suppressed", so there is nothing to report.
func walk(idx *index, rootWarn NodeWarn, rootEdges []string) map[string]CodeSet {
	seen := make(map[string]NodeWarn)
	remaining := make(map[string]struct{}, len(idx.closure))
	for id := range idx.closure {
		remaining[id] = struct{}{}
	}
	result := make(map[string]CodeSet, len(idx.closure))

	queue := make([]queueEntry, 0, len(rootEdges))
	for _, edge := range rootEdges {
		queue = append(queue, queueEntry{id: edge, path: rootWarn})
	}

	for len(queue) > 0 && len(remaining) > 0 {
		cur := queue[0]
		queue = queue[1:]

		key := strings.ToLower(cur.id)
		entry, ok := idx.byID[key]
		if !ok {
			// Edge pointing outside the flattened node set (e.g. a project
			// reference the graph never resolved): nothing to admit.
			continue
		}

		admitted, accum := admit(seen, key, cur.path)
		if !admitted {
			continue
		}

		if entry.itemType == ItemTypePackage {
			if _, open := remaining[key]; !open {
				// Already settled to no suppression by an earlier path: no
				// future path can add any back, so there is nothing left to
				// compute, and this node's children are not re-enqueued.
				continue
			}

			effective := normalizeCodes(unionCodes(accum.ProjectWide, accum.PackageSpecific.Get(cur.id)))
			merged := effective
			if existing, ok := result[key]; ok {
				merged = intersectCodes(existing, effective)
			}
			result[key] = merged
			if len(merged) == 0 {
				delete(remaining, key)
				delete(result, key)
			}
		}

		nextPath := accum
		if entry.itemType == ItemTypeProject && !entry.own.IsEmpty() {
			nextPath = unionNodeWarn(accum, entry.own)
		}

		for _, childID := range entry.outgoingEdges {
			childKey := strings.ToLower(childID)
			if existing, ok := seen[childKey]; ok && isSubsetNodeWarn(existing, nextPath) {
				// Pure optimization: admit() would refuse this anyway.
				// Skipping the enqueue only shrinks the queue, it never
				// changes which node ends up admitted, since admit() still
				// runs unconditionally for anything that does get queued.
				continue
			}
			queue = append(queue, queueEntry{id: childID, path: nextPath})
		}
	}

	return result
}

// admit records path's arrival at the node keyed by key, reporting whether
// this path contributes suppression information beyond what is already
// guaranteed for that node.
//
// The first path to reach a node is accepted outright; its ProjectWide is
// normalized to a concrete set first, because once stored in seen, nil no
// longer means "nothing has reached this node yet" but "this admitted path
// applies zero project-wide suppression", a fact that must intersect as a
// true empty set against later paths, not be read back as unconstrained.
//
// A later path is refused only when it is a superset of (or equal to) what
// is already guaranteed: intersecting a guaranteed set with a superset
// cannot shrink it. A path that is a strict subset of what's guaranteed
// must be admitted, since it genuinely narrows the guaranteed set.
func admit(seen map[string]NodeWarn, key string, path NodeWarn) (bool, NodeWarn) {
	path = NodeWarn{
		ProjectWide:     normalizeCodes(path.ProjectWide),
		PackageSpecific: path.PackageSpecific,
	}

	existing, ok := seen[key]
	if !ok {
		seen[key] = path
		return true, path
	}

	if isSubsetNodeWarn(existing, path) {
		return false, existing
	}

	merged := intersectNodeWarn(existing, path)
	seen[key] = merged
	return true, merged
}
