// Package tree merges lazily fetched remote directory listings with
// expansion state into a flat, render-ready list of rows. Folder contents
// are fetched at most once per path and never evicted, so re-expanding a
// collapsed folder is free (and may show stale data until the tree is
// cleared by a repository or branch switch).
package tree

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

type Kind int

const (
	KindFile Kind = iota
	KindDir
)

// Node is one entry of the displayed hierarchy. Path is unique within the
// tree. SHA is the revision token for remote files; Local marks overlay
// nodes that exist only client-side.
type Node struct {
	Path  string
	Name  string
	Kind  Kind
	SHA   string
	Size  int64
	Local bool
}

// Lister fetches the children of one directory path ("" for the root).
type Lister interface {
	ListDir(ctx context.Context, path string) ([]Node, error)
}

// Row is a node positioned for rendering.
type Row struct {
	Node     Node
	Depth    int
	Expanded bool
}

type Tree struct {
	mu       sync.Mutex
	lister   Lister
	flight   singleflight.Group
	roots    []Node
	rootSet  bool
	expanded map[string]bool
	// cache distinguishes "absent key" (never fetched) from "empty
	// slice" (fetched, zero children).
	cache map[string][]Node
}

func New(lister Lister) *Tree {
	return &Tree{
		lister:   lister,
		expanded: make(map[string]bool),
		cache:    make(map[string][]Node),
	}
}

// Load fetches the root listing. Called once per repository/branch selection.
func (t *Tree) Load(ctx context.Context) error {
	nodes, err := t.lister.ListDir(ctx, "")
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.roots = nodes
	t.rootSet = true
	t.mu.Unlock()
	return nil
}

// Loaded reports whether the root listing has been fetched.
func (t *Tree) Loaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rootSet
}

// Open expands a directory, fetching its contents if this is the first
// expansion. Exactly one listing fetch is ever issued per path; concurrent
// expansions of the same path share one flight.
func (t *Tree) Open(ctx context.Context, path string) error {
	t.mu.Lock()
	_, cached := t.cache[path]
	t.mu.Unlock()

	if !cached {
		_, err, _ := t.flight.Do(path, func() (any, error) {
			t.mu.Lock()
			_, ok := t.cache[path]
			t.mu.Unlock()
			if ok {
				return nil, nil
			}
			nodes, err := t.lister.ListDir(ctx, path)
			if err != nil {
				return nil, err
			}
			if nodes == nil {
				nodes = []Node{}
			}
			t.mu.Lock()
			t.cache[path] = nodes
			t.mu.Unlock()
			return nil, nil
		})
		if err != nil {
			return err
		}
	}

	t.mu.Lock()
	t.expanded[path] = true
	t.mu.Unlock()
	return nil
}

// Collapse hides a directory's children without evicting the cache.
func (t *Tree) Collapse(path string) {
	t.mu.Lock()
	delete(t.expanded, path)
	t.mu.Unlock()
}

// Toggle opens a collapsed directory or collapses an expanded one.
func (t *Tree) Toggle(ctx context.Context, path string) error {
	t.mu.Lock()
	open := t.expanded[path]
	t.mu.Unlock()
	if open {
		t.Collapse(path)
		return nil
	}
	return t.Open(ctx, path)
}

// IsExpanded reports whether path is currently shown expanded.
func (t *Tree) IsExpanded(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expanded[path]
}

// Children returns the cached listing for a directory. ok is false when the
// directory has never been fetched.
func (t *Tree) Children(path string) ([]Node, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	nodes, ok := t.cache[path]
	return nodes, ok
}

// Insert appends a newly created node to the listing of dir ("" for root).
// Creating inside a never-fetched directory seeds it as cached-empty first.
func (t *Tree) Insert(dir string, n Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if dir == "" {
		t.roots = append(t.roots, n)
		return
	}
	if _, ok := t.cache[dir]; !ok {
		t.cache[dir] = []Node{}
	}
	t.cache[dir] = append(t.cache[dir], n)
}

// AddFolder registers a locally created directory: cached with zero
// children (empty, not "unfetched") and shown expanded with no fetch.
func (t *Tree) AddFolder(path string) {
	t.mu.Lock()
	t.cache[path] = []Node{}
	t.expanded[path] = true
	t.mu.Unlock()
}

// Clear drops all tree state on repository/branch switch or logout.
func (t *Tree) Clear() {
	t.mu.Lock()
	t.roots = nil
	t.rootSet = false
	t.expanded = make(map[string]bool)
	t.cache = make(map[string][]Node)
	t.mu.Unlock()
}

// Rows flattens the visible hierarchy depth-first, descending only into
// expanded directories whose contents are cached. Listing order is the
// API's; no sorting is imposed here.
func (t *Tree) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()

	var rows []Row
	var walk func(nodes []Node, depth int)
	walk = func(nodes []Node, depth int) {
		for _, n := range nodes {
			open := n.Kind == KindDir && t.expanded[n.Path]
			rows = append(rows, Row{Node: n, Depth: depth, Expanded: open})
			if open {
				if children, ok := t.cache[n.Path]; ok {
					walk(children, depth+1)
				}
			}
		}
	}
	walk(t.roots, 0)
	return rows
}

// Find returns the node with the given path among the visible rows.
func (t *Tree) Find(path string) (Node, bool) {
	for _, r := range t.Rows() {
		if r.Node.Path == path {
			return r.Node, true
		}
	}
	return Node{}, false
}

// SetSHA updates the revision token of a node in place after a save.
func (t *Tree) SetSHA(path, sha string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.roots {
		if t.roots[i].Path == path {
			t.roots[i].SHA = sha
			return
		}
	}
	for dir, nodes := range t.cache {
		for i := range nodes {
			if nodes[i].Path == path {
				t.cache[dir][i].SHA = sha
				return
			}
		}
	}
}
