// Package simple copies data out of apt views into plain values that can be
// kept, compared and printed after the cursors are gone.
package simple

import (
	"fmt"
	"slices"
	"strings"

	"github.com/joshuapare/aptkit/apt"
	"github.com/joshuapare/aptkit/cursor"
)

// BinaryPackage is a snapshot of a package. Empty version fields mean the
// package has no such version.
type BinaryPackage struct {
	Name             string `json:"name"`
	Arch             string `json:"arch"`
	CurrentVersion   string `json:"current_version,omitempty"`
	CandidateVersion string `json:"candidate_version,omitempty"`
}

func NewBinaryPackage(v apt.PkgView) BinaryPackage {
	cur, _ := v.CurrentVersion()
	cand, _ := v.CandidateVersion()
	return BinaryPackage{
		Name:             v.Name(),
		Arch:             v.Arch(),
		CurrentVersion:   cur,
		CandidateVersion: cand,
	}
}

// String formats as "name:arch @ current -> candidate", leaving out the
// versions that are absent.
func (p BinaryPackage) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%s", p.Name, p.Arch)
	if p.CurrentVersion != "" {
		fmt.Fprintf(&b, " @ %s", p.CurrentVersion)
	}
	if p.CandidateVersion != "" {
		fmt.Fprintf(&b, " -> %s", p.CandidateVersion)
	}
	return b.String()
}

// VersionDetails holds the descriptive fields of a version's record.
type VersionDetails struct {
	ShortDesc  string `json:"short_desc,omitempty"`
	LongDesc   string `json:"long_desc,omitempty"`
	Maintainer string `json:"maintainer,omitempty"`
	Homepage   string `json:"homepage,omitempty"`
}

func NewVersionDetails(v apt.VerFileView) VersionDetails {
	var d VersionDetails
	d.ShortDesc, _ = v.ShortDesc()
	d.LongDesc, _ = v.LongDesc()
	d.Maintainer, _ = v.Maintainer()
	d.Homepage, _ = v.Homepage()
	return d
}

// Version is a snapshot of one version of a package.
type Version struct {
	Version       string         `json:"version"`
	Arch          string         `json:"arch"`
	Section       string         `json:"section,omitempty"`
	SourcePackage string         `json:"source_package"`
	SourceVersion string         `json:"source_version"`
	Priority      int32          `json:"priority"`
	PriorityType  string         `json:"priority_type,omitempty"`
	Details       VersionDetails `json:"details"`
}

// NewVersion snapshots v. Details come from the version's first origin;
// they are empty when it has none.
func NewVersion(v apt.VerView) Version {
	out := Version{
		Version:       v.Version(),
		Arch:          v.Arch(),
		SourcePackage: v.SourcePackage(),
		SourceVersion: v.SourceVersion(),
		Priority:      v.Priority(),
	}
	out.Section, _ = v.Section()
	out.PriorityType, _ = v.PriorityType()
	if d, ok := cursor.First(cursor.Map(v.Origins(), NewVersionDetails)); ok {
		out.Details = d
	}
	return out
}

// String formats as "version:arch in section from source:version at priority".
func (v Version) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%s", v.Version, v.Arch)
	if v.Section != "" {
		fmt.Fprintf(&b, " in %s", v.Section)
	}
	fmt.Fprintf(&b, " from %s:%s at %d", v.SourcePackage, v.SourceVersion, v.Priority)
	return b.String()
}

// Origin is a snapshot of an index file.
type Origin struct {
	FileName     string `json:"file_name"`
	Archive      string `json:"archive"`
	Version      string `json:"version,omitempty"`
	Origin       string `json:"origin,omitempty"`
	Codename     string `json:"codename,omitempty"`
	Label        string `json:"label,omitempty"`
	Site         string `json:"site,omitempty"`
	Component    string `json:"component"`
	Architecture string `json:"architecture,omitempty"`
	IndexType    string `json:"index_type"`
}

func NewOrigin(v apt.PkgFileView) Origin {
	o := Origin{
		FileName:  v.FileName(),
		Archive:   v.Archive(),
		Component: v.Component(),
		IndexType: v.IndexType(),
	}
	o.Version, _ = v.Version()
	o.Origin, _ = v.Origin()
	o.Codename, _ = v.Codename()
	o.Label, _ = v.Label()
	o.Site, _ = v.Site()
	o.Architecture, _ = v.Architecture()
	return o
}

// OriginFromVerFile snapshots the index file behind a version file.
func OriginFromVerFile(v apt.VerFileView) (Origin, bool) {
	return cursor.First(cursor.Map(v.File(), NewOrigin))
}

// String approximates a line of "apt-cache policy". Indexes without full
// release metadata, such as the dpkg status file, print as their file name.
func (o Origin) String() string {
	if o.Site == "" || o.Origin == "" || o.Label == "" || o.Codename == "" || o.Architecture == "" {
		return o.FileName
	}
	return fmt.Sprintf("%s %s/%s %s (o=%s,l=%s,n=%s) %s",
		o.Site, o.Archive, o.Component, o.Architecture,
		o.Origin, o.Label, o.Codename, o.FileName)
}

// VersionOrigins is a version together with every index it appears in.
type VersionOrigins struct {
	Version Version  `json:"version"`
	Origins []Origin `json:"origins"`
}

// NewVersionOrigins snapshots v and its origins. Origins whose index file the
// engine cannot produce are left out.
func NewVersionOrigins(v apt.VerView) VersionOrigins {
	return VersionOrigins{
		Version: NewVersion(v),
		Origins: slices.Collect(cursor.FilterMap(v.Origins(), OriginFromVerFile)),
	}
}

// BinaryPackageVersions is a package with all of its versions.
type BinaryPackageVersions struct {
	Package  BinaryPackage `json:"package"`
	Versions []Version     `json:"versions"`
}

func NewBinaryPackageVersions(v apt.PkgView) BinaryPackageVersions {
	return BinaryPackageVersions{
		Package:  NewBinaryPackage(v),
		Versions: slices.Collect(cursor.Map(v.Versions(), NewVersion)),
	}
}

func (p BinaryPackageVersions) String() string {
	return fmt.Sprintf("%s + %d versions", p.Package, len(p.Versions))
}

// Dependency is a snapshot of one relationship of a version.
type Dependency struct {
	Type    string `json:"type"`
	Comp    string `json:"comp,omitempty"`
	Version string `json:"version,omitempty"`
	// Target is the resolved target as "name:arch", empty when the engine
	// does not know the package.
	Target string `json:"target,omitempty"`
}

func NewDependency(v apt.DepView) Dependency {
	d := Dependency{Type: v.DepType()}
	d.Comp, _ = v.CompType()
	d.Version, _ = v.TargetVersion()
	if target, ok := cursor.First(cursor.Map(v.TargetPackage(), apt.PkgView.FullName)); ok {
		d.Target = target
	}
	return d
}

// String formats as "Type: target (comp version)".
func (d Dependency) String() string {
	target := d.Target
	if target == "" {
		target = "<unknown>"
	}
	if d.Comp == "" {
		return fmt.Sprintf("%s: %s", d.Type, target)
	}
	return fmt.Sprintf("%s: %s (%s %s)", d.Type, target, d.Comp, d.Version)
}
