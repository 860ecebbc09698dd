// Package registry holds the ordered list of cache locations the engine visits.
package registry

import (
	"path/filepath"
	"strings"

	"github.com/fenilsonani/cache-cleaner/internal/platform"
)

// HomePlaceholder prefixes base paths that live under the user's home directory.
const HomePlaceholder = "~"

// Location is one named cache category.
//
// With an empty Pattern the immediate children of each base path are the
// candidate items. With a Pattern set, every directory named Pattern found
// anywhere below a base path is a candidate item.
type Location struct {
	Name      string   `yaml:"name" json:"name"`
	BasePaths []string `yaml:"paths" json:"paths"`
	Pattern   string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
}

// IsPattern reports whether the location is searched recursively by name.
func (l Location) IsPattern() bool {
	return l.Pattern != ""
}

// Expanded returns a copy of l with every base path expanded against home.
func (l Location) Expanded(home string) Location {
	paths := make([]string, len(l.BasePaths))
	for i, p := range l.BasePaths {
		paths[i] = Expand(p, home)
	}
	return Location{Name: l.Name, BasePaths: paths, Pattern: l.Pattern}
}

// Expand replaces a leading "~" or "~/" with home. Other paths are returned cleaned.
func Expand(path, home string) string {
	if path == HomePlaceholder {
		return filepath.Clean(home)
	}
	if strings.HasPrefix(path, HomePlaceholder+"/") {
		return filepath.Join(home, path[2:])
	}
	return filepath.Clean(path)
}

// ExpandAll expands every location against home, preserving order.
func ExpandAll(locations []Location, home string) []Location {
	out := make([]Location, len(locations))
	for i, l := range locations {
		out[i] = l.Expanded(home)
	}
	return out
}

// Merge appends extra after base. An extra location whose name matches an
// entry in base replaces that entry in place.
func Merge(base, extra []Location) []Location {
	out := make([]Location, len(base), len(base)+len(extra))
	copy(out, base)

	index := make(map[string]int, len(out))
	for i, l := range out {
		index[l.Name] = i
	}

	for _, l := range extra {
		if i, ok := index[l.Name]; ok {
			out[i] = l
			continue
		}
		index[l.Name] = len(out)
		out = append(out, l)
	}
	return out
}

// Roots returns every base path of the given locations in order.
func Roots(locations []Location) []string {
	var roots []string
	for _, l := range locations {
		roots = append(roots, l.BasePaths...)
	}
	return roots
}

// Default returns the built-in registry for p.
func Default(p platform.Platform) []Location {
	switch p {
	case platform.MacOS:
		return darwinLocations()
	case platform.Linux:
		return linuxLocations()
	default:
		return nil
	}
}
