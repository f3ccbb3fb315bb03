package main

import (
	"context"
	"slices"

	"github.com/spf13/cobra"

	"github.com/joshuapare/aptkit/apt"
	"github.com/joshuapare/aptkit/apt/simple"
	"github.com/joshuapare/aptkit/cursor"
)

var listInstalled bool

func init() {
	cmd := newListCmd()
	cmd.Flags().BoolVar(&listInstalled, "installed", false, "Only list installed packages")
	rootCmd.AddCommand(cmd)
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print a one-line summary of every package",
		Long: `The list command prints every package in the cache, one per line, as
name [ arch ] < current -> candidate | newest > ( section ).

Example:
  aptq list
  aptq list --installed --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context())
		},
	}
}

func runList(ctx context.Context) error {
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

	keep := func(pkg apt.PkgView) bool {
		return !listInstalled || installed(pkg)
	}

	if jsonOut {
		pkgs := slices.Collect(cursor.FilterMap(it, func(pkg apt.PkgView) (simple.BinaryPackage, bool) {
			if !keep(pkg) {
				return simple.BinaryPackage{}, false
			}
			return simple.NewBinaryPackage(pkg), true
		}))
		if err := it.Err(); err != nil {
			return err
		}
		return printJSON(map[string]any{"packages": pkgs, "count": len(pkgs)})
	}

	for pkg := range it.Seq() {
		if keep(pkg) {
			printInfo("%s\n", pkg.PrettyPrint())
		}
	}
	return it.Err()
}
