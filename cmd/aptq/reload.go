package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newReloadCmd())
}

func newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Rebuild the cache and report how many packages it holds",
		Long: `The reload command builds the cache, rebuilds it from disk once more and
prints the package count before and after. Useful to time a rebuild or to
check that an apt update is picked up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReload(cmd.Context())
		},
	}
}

func runReload(ctx context.Context) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	count := func() (int, error) {
		it, err := c.Iter(ctx)
		if err != nil {
			return 0, err
		}
		n := it.Count()
		return n, it.Err()
	}

	before, err := count()
	if err != nil {
		return err
	}
	start := time.Now()
	if err := c.Reload(ctx); err != nil {
		return err
	}
	elapsed := time.Since(start)
	after, err := count()
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"before":     before,
			"after":      after,
			"elapsed_ms": elapsed.Milliseconds(),
		})
	}
	printInfo("Packages before reload: %d\n", before)
	printInfo("Packages after reload:  %d\n", after)
	printVerbose("Reload took %s\n", elapsed)
	return nil
}
