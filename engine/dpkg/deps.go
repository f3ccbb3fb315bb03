package dpkg

import (
	"strings"

	"github.com/joshuapare/aptkit/internal/deb822"
)

// depFields maps control fields to the dependency type names APT reports,
// in the order APT lists them.
var depFields = []struct {
	field string
	kind  []byte
}{
	{"Depends", []byte("Depends")},
	{"Pre-Depends", []byte("PreDepends")},
	{"Suggests", []byte("Suggests")},
	{"Recommends", []byte("Recommends")},
	{"Conflicts", []byte("Conflicts")},
	{"Replaces", []byte("Replaces")},
	{"Obsoletes", []byte("Obsoletes")},
	{"Breaks", []byte("Breaks")},
	{"Enhances", []byte("Enhances")},
}

var compOps = []struct {
	text string
	norm []byte
}{
	// longest first so "<<" is not read as "<"
	{"<<", []byte("<<")},
	{"<=", []byte("<=")},
	{">>", []byte(">>")},
	{">=", []byte(">=")},
	{"=", []byte("=")},
	{"<", []byte("<=")},
	{">", []byte(">=")},
}

// parseDeps reads every dependency field of s. Alternatives ("a | b") become
// separate entries, as they do in APT's dependency list.
func parseDeps(s *deb822.Stanza, conv func([]byte) []byte) []dep {
	var out []dep
	for _, f := range depFields {
		v, ok := s.Get(f.field)
		if !ok {
			continue
		}
		for _, group := range strings.Split(string(conv(v)), ",") {
			for _, alt := range strings.Split(group, "|") {
				if d, ok := parseRelation(alt); ok {
					d.depType = f.kind
					out = append(out, d)
				}
			}
		}
	}
	return out
}

// parseRelation parses "name[:arch] [(op version)] [arch restrictions] [<profiles>]".
func parseRelation(s string) (dep, bool) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return dep{}, false
	}
	if i := strings.IndexAny(s, "[<"); i >= 0 && !strings.Contains(s[:i], "(") {
		s = strings.TrimSpace(s[:i])
	} else if j := strings.IndexByte(s, ')'); j >= 0 {
		s = s[:j+1]
	}

	var d dep
	name := s
	if i := strings.IndexByte(s, '('); i >= 0 {
		name = strings.TrimSpace(s[:i])
		rel := strings.TrimSuffix(strings.TrimSpace(s[i+1:]), ")")
		rel = strings.TrimSpace(rel)
		for _, op := range compOps {
			if strings.HasPrefix(rel, op.text) {
				d.comp = op.norm
				d.version = []byte(strings.TrimSpace(rel[len(op.text):]))
				break
			}
		}
		if d.comp == nil || len(d.version) == 0 {
			return dep{}, false
		}
	}
	if name == "" || strings.ContainsAny(name, " ()") {
		return dep{}, false
	}
	if i := strings.IndexByte(name, ':'); i >= 0 {
		d.arch = name[i+1:]
		name = name[:i]
		if d.arch == "any" || d.arch == "native" {
			d.arch = ""
		}
	}
	d.target = name
	return d, true
}
