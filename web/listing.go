package web

import (
	"html/template"
	"sort"

	"github.com/ancientlore/htmlroulette/resolve"
)

// listing is what is passed to the listing template.
type listing struct {
	Title  string        // page heading
	Filter string        // directory the listing is restricted to, if any
	Intro  template.HTML // rendered README.md, if any
	Groups []group       // sorted by Dir
}

// group is the files under one top-level directory.
type group struct {
	Dir   string
	Files []resolve.File // sorted by Title
}

// groupFiles groups files by their top-level directory. Files directly in
// the base are left out.
func groupFiles(files []resolve.File) []group {
	byDir := make(map[string][]resolve.File)
	for _, f := range files {
		d := f.Dir()
		if d == "" {
			continue
		}
		byDir[d] = append(byDir[d], f)
	}
	groups := make([]group, 0, len(byDir))
	for d, fs := range byDir {
		sort.Slice(fs, func(i, j int) bool {
			if fs[i].Title() != fs[j].Title() {
				return fs[i].Title() < fs[j].Title()
			}
			return fs[i].Name < fs[j].Name
		})
		groups = append(groups, group{Dir: d, Files: fs})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Dir < groups[j].Dir })
	return groups
}
