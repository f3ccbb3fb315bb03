package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/joshuapare/aptkit/apt/simple"
	"github.com/joshuapare/aptkit/cursor"
)

func init() {
	rootCmd.AddCommand(newPolicyCmd())
}

func newPolicyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policy <package>",
		Short: "Show the versions of a package and where they come from",
		Long: `The policy command prints a package summary followed by each of its
versions, highest first, with the pin priority and the indexes it was read from.

Example:
  aptq policy apt
  aptq policy libc6:i386 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPolicy(cmd.Context(), args[0])
		},
	}
}

func runPolicy(ctx context.Context, name string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	it, err := c.FindByName(ctx, name)
	if err != nil {
		return err
	}
	defer it.Close()

	pkg, ok := it.Peek()
	if !ok {
		return fmt.Errorf("unrecognised package: %s", name)
	}
	summary := pkg.PrettyPrint()
	versions := slices.Collect(cursor.Map(pkg.Versions(), simple.NewVersionOrigins))
	if err := it.Err(); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"package":  simple.NewBinaryPackage(pkg),
			"summary":  summary,
			"versions": versions,
		})
	}

	printInfo("%s\n", summary)
	for _, vo := range versions {
		printInfo("  %s\n", vo.Version)
		for _, o := range vo.Origins {
			printInfo("    %s\n", o)
		}
	}
	return nil
}
