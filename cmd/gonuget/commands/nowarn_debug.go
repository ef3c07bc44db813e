package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/go-nuget/gonuget/core/resolver/nowarn"
	"github.com/go-nuget/gonuget/frameworks"
	"github.com/spf13/cobra"
)

// nowarnDebugFixture is the on-disk shape the nowarn-debug command consumes:
// a parent project's own warning configuration plus an already-flattened
// package closure, bypassing the real restore pipeline for quick
// experimentation with suppression scenarios.
type nowarnDebugFixture struct {
	Framework string `json:"framework"`
	Parent    struct {
		ProjectWide     []string            `json:"projectWide"`
		PackageSpecific map[string][]string `json:"packageSpecific"` // code -> package ids
	} `json:"parent"`
	RootEdges []string `json:"rootEdges"`
	Packages  []struct {
		ID    string   `json:"id"`
		Edges []string `json:"edges"`
	} `json:"packages"`
}

// NowarnDebugOptions holds the configuration for the nowarn-debug command.
type NowarnDebugOptions struct {
	FixturePath string
}

// NewNowarnDebugCommand creates the 'nowarn-debug' subcommand.
func NewNowarnDebugCommand() *cobra.Command {
	opts := &NowarnDebugOptions{}

	cmd := &cobra.Command{
		Use:   "nowarn-debug",
		Short: "Print the computed transitive warning-suppression map for a fixture graph",
		Long: `Loads a JSON fixture describing a parent project's warning configuration and
an already-flattened package dependency closure, runs the transitive
warning-suppression walk, and prints the resulting per-package suppressed
codes.

This is a debugging aid: real restores compute suppression from a resolved
dependency graph internally, they do not go through fixture files.

Example:
  gonuget nowarn-debug --fixture nowarn.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNowarnDebug(opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.FixturePath, "fixture", "", "Path to a nowarn-debug JSON fixture (required)")
	_ = cmd.MarkFlagRequired("fixture")

	return cmd
}

func runNowarnDebug(opts *NowarnDebugOptions, w io.Writer) error {
	data, err := os.ReadFile(opts.FixturePath)
	if err != nil {
		return fmt.Errorf("failed to read fixture: %w", err)
	}

	var fixture nowarnDebugFixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return fmt.Errorf("failed to parse fixture: %w", err)
	}

	fw, err := frameworks.ParseFramework(fixture.Framework)
	if err != nil {
		return fmt.Errorf("invalid framework %q: %w", fixture.Framework, err)
	}

	parent := &nowarn.ParentSpec{
		ProjectWide:     nowarn.NewCodeSet(toCodes(fixture.Parent.ProjectWide)...),
		PackageSpecific: make(nowarn.RawPackageSpecific, len(fixture.Parent.PackageSpecific)),
	}
	for code, ids := range fixture.Parent.PackageSpecific {
		byPackage := make(map[string][]*frameworks.NuGetFramework, len(ids))
		for _, id := range ids {
			byPackage[id] = nil // unscoped: applies to every framework
		}
		parent.PackageSpecific[nowarn.Code(code)] = byPackage
	}

	graph := &nowarn.TargetGraph{
		Framework: fw,
		RootEdges: fixture.RootEdges,
	}
	for _, pkg := range fixture.Packages {
		graph.Flattened = append(graph.Flattened, nowarn.FlattenedItem{
			ID:            pkg.ID,
			Type:          nowarn.ItemTypePackage,
			OutgoingEdges: pkg.Edges,
		})
	}

	result := nowarn.Resolve(parent, []*nowarn.TargetGraph{graph})
	printNowarnResult(w, result)
	return nil
}

func toCodes(codes []string) []nowarn.Code {
	out := make([]nowarn.Code, len(codes))
	for i, c := range codes {
		out[i] = nowarn.Code(c)
	}
	return out
}

func printNowarnResult(w io.Writer, result *nowarn.Result) {
	header := color.New(color.Bold, color.FgWhite)
	pkgColor := color.New(color.FgCyan)
	codeColor := color.New(color.FgYellow)

	fwKeys := make([]string, 0, len(result.PackageSpecific))
	for fw := range result.PackageSpecific {
		fwKeys = append(fwKeys, fw)
	}
	sort.Strings(fwKeys)

	for _, fw := range fwKeys {
		header.Fprintf(w, "%s\n", fw)

		byPkg := result.PackageSpecific[fw]
		ids := make([]string, 0, len(byPkg))
		for id := range byPkg {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		if len(ids) == 0 {
			fmt.Fprintln(w, "  (no suppressed packages)")
			continue
		}

		for _, id := range ids {
			codes := make([]string, 0, len(byPkg[id]))
			for code := range byPkg[id] {
				codes = append(codes, string(code))
			}
			sort.Strings(codes)

			pkgColor.Fprintf(w, "  %s", id)
			fmt.Fprint(w, ": ")
			for i, code := range codes {
				if i > 0 {
					fmt.Fprint(w, ", ")
				}
				codeColor.Fprint(w, code)
			}
			fmt.Fprintln(w)
		}
	}
}
