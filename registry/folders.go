package registry

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Folder is one node of the display tree built from slash-delimited
// folder paths. The root node has no name and holds the connections of
// the RootFolder group.
type Folder struct {
	Name        string
	Connections []Connection
	Children    []*Folder
}

// BuildTree nests the flat folder groups into a tree. "a/b/c" becomes
// three levels; intermediate folders exist even when they hold no
// connections of their own. Children are sorted by name.
func BuildTree(groups map[string][]Connection) *Folder {
	root := &Folder{}

	paths := make([]string, 0, len(groups))
	for path := range groups {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		conns := groups[path]
		if path == RootFolder || path == "" {
			root.Connections = append(root.Connections, conns...)
			continue
		}

		node := root
		for _, part := range strings.Split(path, "/") {
			node = node.child(part)
		}
		node.Connections = append(node.Connections, conns...)
	}

	root.sortAll()
	return root
}

// Filter prunes the tree to connections matching the query with a
// case-insensitive fuzzy match on name, host, username or folder path.
// An empty query returns the tree unchanged. Folders left without any
// matching descendants disappear.
func (f *Folder) Filter(query string) *Folder {
	if query == "" {
		return f
	}
	return f.filter(query, "")
}

func (f *Folder) filter(query, path string) *Folder {
	out := &Folder{Name: f.Name}

	for _, c := range f.Connections {
		if matchesQuery(c, query, path) {
			out.Connections = append(out.Connections, c)
		}
	}

	for _, child := range f.Children {
		childPath := child.Name
		if path != "" {
			childPath = path + "/" + child.Name
		}
		if kept := child.filter(query, childPath); len(kept.Connections) > 0 || len(kept.Children) > 0 {
			out.Children = append(out.Children, kept)
		}
	}

	return out
}

func matchesQuery(c Connection, query, path string) bool {
	return fuzzy.MatchFold(query, c.Name) ||
		fuzzy.MatchFold(query, c.IP) ||
		fuzzy.MatchFold(query, c.Username) ||
		(path != "" && fuzzy.MatchFold(query, path))
}

// Walk visits every connection in display order (folder contents
// first, then subfolders), passing the nesting depth.
func (f *Folder) Walk(visit func(depth int, c Connection)) {
	f.walk(0, visit)
}

func (f *Folder) walk(depth int, visit func(int, Connection)) {
	for _, c := range f.Connections {
		visit(depth, c)
	}
	for _, child := range f.Children {
		child.walk(depth+1, visit)
	}
}

func (f *Folder) child(name string) *Folder {
	for _, c := range f.Children {
		if c.Name == name {
			return c
		}
	}

	c := &Folder{Name: name}
	f.Children = append(f.Children, c)
	return c
}

func (f *Folder) sortAll() {
	sort.Slice(f.Connections, func(i, j int) bool {
		return f.Connections[i].Name < f.Connections[j].Name
	})
	sort.Slice(f.Children, func(i, j int) bool {
		return f.Children[i].Name < f.Children[j].Name
	})
	for _, c := range f.Children {
		c.sortAll()
	}
}
