package registry

import (
	"testing"
)

func conn(id int64, name, folder string) Connection {
	return Connection{ID: id, Name: name, Folder: folder, IP: name + ".example.com", Type: TypeSSH}
}

func TestGroupByFolder(t *testing.T) {
	t.Parallel()

	groups := groupByFolder([]Connection{
		conn(1, "beta", ""),
		conn(2, "alpha", "default"),
		conn(3, "web1", "prod/web"),
	})

	root := groups[RootFolder]
	if len(root) != 2 {
		t.Fatalf("want 2 root connections, got: %d", len(root))
	}
	// Empty and "default" folders coalesce, sorted by name.
	if root[0].Name != "alpha" || root[1].Name != "beta" {
		t.Errorf("root group not sorted: %v, %v", root[0].Name, root[1].Name)
	}

	if len(groups["prod/web"]) != 1 {
		t.Error("slash paths stay as one group key")
	}
}

func TestBuildTreeNesting(t *testing.T) {
	t.Parallel()

	tree := BuildTree(map[string][]Connection{
		"default":  {conn(1, "local", "default")},
		"prod/web": {conn(2, "web1", "prod/web")},
		"prod/db":  {conn(3, "db1", "prod/db")},
		"prod":     {conn(4, "bastion", "prod")},
	})

	if len(tree.Connections) != 1 || tree.Connections[0].Name != "local" {
		t.Errorf("root connections wrong: %+v", tree.Connections)
	}
	if len(tree.Children) != 1 || tree.Children[0].Name != "prod" {
		t.Fatalf("want single prod child, got: %+v", tree.Children)
	}

	prod := tree.Children[0]
	if len(prod.Connections) != 1 || prod.Connections[0].Name != "bastion" {
		t.Errorf("prod folder contents wrong: %+v", prod.Connections)
	}
	if len(prod.Children) != 2 || prod.Children[0].Name != "db" || prod.Children[1].Name != "web" {
		t.Errorf("prod children wrong or unsorted: %+v", prod.Children)
	}
}

func TestBuildTreeIntermediateFolders(t *testing.T) {
	t.Parallel()

	tree := BuildTree(map[string][]Connection{
		"a/b/c": {conn(1, "deep", "a/b/c")},
	})

	a := tree.Children[0]
	if a.Name != "a" || len(a.Connections) != 0 {
		t.Fatalf("intermediate folder a wrong: %+v", a)
	}
	b := a.Children[0]
	if b.Name != "b" || len(b.Connections) != 0 {
		t.Fatalf("intermediate folder b wrong: %+v", b)
	}
	c := b.Children[0]
	if c.Name != "c" || len(c.Connections) != 1 {
		t.Fatalf("leaf folder c wrong: %+v", c)
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	tree := BuildTree(map[string][]Connection{
		"default":  {conn(1, "gateway", "default")},
		"prod/web": {conn(2, "web1", "prod/web")},
		"staging":  {conn(3, "stage1", "staging")},
	})

	got := tree.Filter("web")
	if len(got.Connections) != 0 {
		t.Error("gateway should not match web")
	}
	if len(got.Children) != 1 || got.Children[0].Name != "prod" {
		t.Fatalf("want prod kept, got: %+v", got.Children)
	}

	// Folder path matches keep their contents.
	got = tree.Filter("staging")
	if len(got.Children) != 1 || got.Children[0].Connections[0].Name != "stage1" {
		t.Errorf("folder path match failed: %+v", got.Children)
	}

	// Empty query is the identity.
	if got := tree.Filter(""); got != tree {
		t.Error("empty query must return the tree unchanged")
	}

	// No matches prunes everything.
	got = tree.Filter("zzzzzz")
	if len(got.Connections) != 0 || len(got.Children) != 0 {
		t.Errorf("want empty tree, got: %+v", got)
	}
}

func TestWalkOrder(t *testing.T) {
	t.Parallel()

	tree := BuildTree(map[string][]Connection{
		"default": {conn(1, "root1", "default")},
		"prod":    {conn(2, "p1", "prod")},
	})

	var names []string
	var depths []int
	tree.Walk(func(depth int, c Connection) {
		names = append(names, c.Name)
		depths = append(depths, depth)
	})

	if len(names) != 2 || names[0] != "root1" || names[1] != "p1" {
		t.Errorf("walk order wrong: %v", names)
	}
	if depths[0] != 0 || depths[1] != 1 {
		t.Errorf("walk depths wrong: %v", depths)
	}
}

func TestSSHPortDefault(t *testing.T) {
	t.Parallel()

	c := Connection{}
	if c.SSHPort() != 22 {
		t.Error("nil port must default to 22")
	}

	p := 2222
	c.Port = &p
	if c.SSHPort() != 2222 {
		t.Error("explicit port must be used")
	}
}
