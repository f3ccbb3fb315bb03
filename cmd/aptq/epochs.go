package main

import (
	"context"
	"slices"

	"github.com/spf13/cobra"

	"github.com/joshuapare/aptkit/apt"
	"github.com/joshuapare/aptkit/cursor"
	"github.com/joshuapare/aptkit/internal/debver"
)

func init() {
	rootCmd.AddCommand(newEpochsCmd())
}

func newEpochsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "epochs",
		Short: "List packages that have a version with an epoch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEpochs(cmd.Context())
		},
	}
}

func runEpochs(ctx context.Context) error {
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

	names := slices.Collect(cursor.FilterMap(it, func(pkg apt.PkgView) (string, bool) {
		hasEpoch := pkg.Versions().Any(func(v apt.VerView) bool {
			return debver.HasEpoch(v.Version())
		})
		if !hasEpoch {
			return "", false
		}
		return pkg.FullName(), true
	}))
	if err := it.Err(); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{"packages": names, "count": len(names)})
	}
	for _, name := range names {
		printInfo("%s\n", name)
	}
	return nil
}
