package nowarn

import (
	"strings"

	"github.com/go-nuget/gonuget/frameworks"
	"github.com/go-nuget/gonuget/observability"
)

// Output is the per-framework, per-package suppression result: framework
// moniker string -> package id (case-insensitive, stored lower-cased) ->
// suppressed codes.
type Output map[string]map[string]CodeSet

// Result is the outcome of Resolve for a parent project across every
// target graph it was given. ProjectWide is always nil: project-wide
// suppression applies uniformly and is never surfaced per package, only
// folded into PackageSpecific's effective sets during the walk.
type Result struct {
	ProjectWide     ProjectWide
	PackageSpecific Output
	Frameworks      []*frameworks.NuGetFramework
}

// Option configures a Resolve call.
type Option func(*resolveConfig)

type resolveConfig struct {
	logger  observability.Logger
	nearest NearestFrameworkFunc
}

// WithLogger attaches a logger used to trace per-framework walk progress.
// The default is a no-op logger.
func WithLogger(logger observability.Logger) Option {
	return func(c *resolveConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNearestFrameworkFunc overrides the nearest-compatible-framework
// selection used for referenced projects. The default is
// DefaultNearestFramework.
func WithNearestFrameworkFunc(fn NearestFrameworkFunc) Option {
	return func(c *resolveConfig) {
		if fn != nil {
			c.nearest = fn
		}
	}
}

// Resolve computes, for a parent project's resolved dependency graphs, the
// diagnostic codes suppressed for every transitively reachable package.
//
// Graphs carrying a non-empty RuntimeIdentifier are skipped: suppression is
// computed once per target framework and does not vary per runtime
// identifier, since RID-specific graphs are runtime-only expansions of the
// same compile-time closure.
func Resolve(parent *ParentSpec, graphs []*TargetGraph, opts ...Option) *Result {
	if parent == nil {
		invariantViolation("parent spec is nil")
	}

	cfg := &resolveConfig{
		logger:  observability.NewNullLogger(),
		nearest: DefaultNearestFramework,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	cache := NewNodeWarnCache()
	output := make(Output, len(graphs))
	resolvedFrameworks := make([]*frameworks.NuGetFramework, 0, len(graphs))

	for _, graph := range graphs {
		if graph == nil || graph.RuntimeIdentifier != "" {
			continue
		}

		cfg.logger.Verbose("nowarn: walking graph for framework %s", graph.Framework)

		fw := graph.Framework
		parentWarn := NodeWarn{
			ProjectWide:     parent.ProjectWide,
			PackageSpecific: parent.PackageSpecific.ForFramework(fw),
		}

		idx := buildIndex(graph, fw, cache, cfg.nearest)
		packages := walk(idx, parentWarn, graph.RootEdges)

		fwKey := frameworkOutputKey(fw)
		byPkg := output[fwKey]
		if byPkg == nil {
			byPkg = make(map[string]CodeSet, len(packages))
			output[fwKey] = byPkg
		}
		for id, codes := range packages {
			byPkg[id] = unionCodes(byPkg[id], codes)
		}
		resolvedFrameworks = append(resolvedFrameworks, fw)

		cfg.logger.Verbose("nowarn: framework %s suppresses codes on %d packages", fw, len(byPkg))
	}

	return &Result{
		ProjectWide:     nil,
		PackageSpecific: output,
		Frameworks:      resolvedFrameworks,
	}
}

func frameworkOutputKey(fw *frameworks.NuGetFramework) string {
	if fw == nil {
		return ""
	}
	return strings.ToLower(fw.String())
}
