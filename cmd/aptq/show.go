package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/joshuapare/aptkit/apt/simple"
	"github.com/joshuapare/aptkit/cursor"
	"github.com/joshuapare/aptkit/internal/debver"
)

var showVersion string

func init() {
	cmd := newShowCmd()
	cmd.Flags().StringVar(&showVersion, "version", "", "Show this version instead of the candidate")
	rootCmd.AddCommand(cmd)
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <package>",
		Short: "Show the details of one version of a package",
		Long: `The show command prints the record of a package's candidate version (or
the newest one when there is no candidate) and its dependencies.

Example:
  aptq show apt
  aptq show libc6 --version 2.36-9+deb12u4 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), args[0])
		},
	}
}

type showResult struct {
	Package      simple.BinaryPackage `json:"package"`
	Version      simple.Version       `json:"version"`
	Dependencies []simple.Dependency  `json:"dependencies"`
}

func runShow(ctx context.Context, name string) error {
	if showVersion != "" {
		if _, err := debver.Parse(showVersion); err != nil {
			return err
		}
	}
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
	want := showVersion
	if want == "" {
		want, _ = pkg.CandidateVersion()
	}

	var res *showResult
	for v := range pkg.Versions().Seq() {
		if want != "" && debver.Compare(v.Version(), want) != 0 {
			continue
		}
		res = &showResult{
			Package:      simple.NewBinaryPackage(pkg),
			Version:      simple.NewVersion(v),
			Dependencies: slices.Collect(cursor.Map(v.Dependencies(), simple.NewDependency)),
		}
		break
	}
	if err := it.Err(); err != nil {
		return err
	}
	if res == nil {
		if showVersion != "" {
			return fmt.Errorf("package %s has no version %s", name, showVersion)
		}
		return fmt.Errorf("package %s has no versions", name)
	}

	if jsonOut {
		return printJSON(res)
	}
	printRecord(res)
	return nil
}

func printRecord(res *showResult) {
	v := res.Version
	printInfo("Package: %s\n", res.Package.Name)
	printInfo("Version: %s\n", v.Version)
	printInfo("Architecture: %s\n", v.Arch)
	if v.Section != "" {
		printInfo("Section: %s\n", v.Section)
	}
	if v.PriorityType != "" {
		printInfo("Priority: %s\n", v.PriorityType)
	}
	if v.SourcePackage != res.Package.Name || v.SourceVersion != v.Version {
		printInfo("Source: %s (%s)\n", v.SourcePackage, v.SourceVersion)
	}
	printInfo("Pin-Priority: %d\n", v.Priority)
	if v.Details.Maintainer != "" {
		printInfo("Maintainer: %s\n", v.Details.Maintainer)
	}
	if v.Details.Homepage != "" {
		printInfo("Homepage: %s\n", v.Details.Homepage)
	}
	for _, d := range res.Dependencies {
		printInfo("%s\n", d)
	}
	if v.Details.LongDesc != "" {
		printInfo("Description: %s\n", v.Details.LongDesc)
	} else if v.Details.ShortDesc != "" {
		printInfo("Description: %s\n", v.Details.ShortDesc)
	}
}
