package main

import (
	"context"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newCompareCmd())
}

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <version> <version>",
		Short: "Compare two versions with Debian ordering rules",
		Long: `The compare command prints how two version strings order under the
engine's rules, e.g. "3.0~1 < 3.0".

Example:
  aptq compare 1:2.0 3.0
  aptq compare 2.36-9+deb12u4 2.36-9+deb12u7 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd.Context(), args[0], args[1])
		},
	}
}

func runCompare(ctx context.Context, a, b string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	n, err := c.CompareVersions(ctx, a, b)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(map[string]any{"a": a, "b": b, "result": n})
	}
	op := "="
	switch n {
	case -1:
		op = "<"
	case 1:
		op = ">"
	}
	printInfo("%s %s %s\n", a, op, b)
	return nil
}
