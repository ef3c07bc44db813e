package nowarn

import (
	"strings"

	"github.com/go-nuget/gonuget/frameworks"
)

// NodeWarnCache memoizes a project spec's NodeWarn per framework across a
// single walk, and across the sibling walks Resolve runs per target
// framework, since one cache is shared for the lifetime of one Resolve
// call. It holds no TTL or background eviction: unlike core/resolver's
// WalkerCache, there is no network fetch behind a miss, only a cheap struct
// build, and the cache is discarded when Resolve returns.
type NodeWarnCache struct {
	byProject map[string]map[string]NodeWarn
}

// NewNodeWarnCache creates an empty cache.
func NewNodeWarnCache() *NodeWarnCache {
	return &NodeWarnCache{byProject: make(map[string]map[string]NodeWarn)}
}

// GetOrBuild returns spec's NodeWarn for fw, building and inserting it if
// this is the first time (spec, fw) has been requested.
func (c *NodeWarnCache) GetOrBuild(spec *ProjectSpec, fw *frameworks.NuGetFramework) NodeWarn {
	projectKey := strings.ToLower(spec.Path)
	byFw, ok := c.byProject[projectKey]
	if !ok {
		byFw = make(map[string]NodeWarn)
		c.byProject[projectKey] = byFw
	}

	fwKey := frameworkCacheKey(fw)
	if warn, ok := byFw[fwKey]; ok {
		return warn
	}

	warn := NodeWarn{
		ProjectWide:     spec.ProjectWide,
		PackageSpecific: spec.PackageSpecific.ForFramework(fw),
	}
	byFw[fwKey] = warn
	return warn
}

func frameworkCacheKey(fw *frameworks.NuGetFramework) string {
	if fw == nil {
		return ""
	}
	return strings.ToLower(fw.String())
}
