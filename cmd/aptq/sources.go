package main

import (
	"context"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/joshuapare/aptkit/apt"
	"github.com/joshuapare/aptkit/cursor"
)

func init() {
	rootCmd.AddCommand(newSourcesCmd())
}

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources [archive]",
		Short: "List source package versions",
		Long: `The sources command prints every source=version pair that some binary
version in the cache was built from, sorted. With an archive argument only
versions available from that archive (e.g. "stable", "bookworm-backports",
"now") are considered.

Example:
  aptq sources
  aptq sources bookworm-backports`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var archive string
			if len(args) == 1 {
				archive = args[0]
			}
			return runSources(cmd.Context(), archive)
		},
	}
}

func runSources(ctx context.Context, archive string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	it, err := c.Iter(ctx)
	if err != nil {
		return err
	}
	defer it.Close()

	inArchive := func(v apt.VerView) bool {
		if archive == "" {
			return true
		}
		return v.Origins().Any(func(vf apt.VerFileView) bool {
			a, ok := cursor.First(cursor.Map(vf.File(), apt.PkgFileView.Archive))
			return ok && a == archive
		})
	}

	sources := map[string]map[string]struct{}{}
	for pkg := range it.Seq() {
		for v := range pkg.Versions().Seq() {
			if !inArchive(v) {
				continue
			}
			src := v.SourcePackage()
			if sources[src] == nil {
				sources[src] = map[string]struct{}{}
			}
			sources[src][v.SourceVersion()] = struct{}{}
		}
	}
	if err := it.Err(); err != nil {
		return err
	}

	type pair struct {
		Source  string `json:"source"`
		Version string `json:"version"`
	}
	var pairs []pair
	// lexicographic, for determinism only
	for _, src := range slices.Sorted(maps.Keys(sources)) {
		for _, ver := range slices.Sorted(maps.Keys(sources[src])) {
			pairs = append(pairs, pair{src, ver})
		}
	}

	if jsonOut {
		return printJSON(map[string]any{"archive": archive, "sources": pairs})
	}
	for _, p := range pairs {
		printInfo("%s=%s\n", p.Source, p.Version)
	}
	return nil
}
