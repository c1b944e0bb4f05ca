package tree

import (
	"context"
	"sync"
	"testing"
)

// fakeLister serves canned listings and counts fetches per path.
type fakeLister struct {
	mu       sync.Mutex
	listings map[string][]Node
	calls    map[string]int
}

func newFakeLister() *fakeLister {
	return &fakeLister{
		listings: map[string][]Node{
			"": {
				{Path: "README.md", Name: "README.md", Kind: KindFile, SHA: "r1"},
				{Path: "src", Name: "src", Kind: KindDir},
			},
			"src": {
				{Path: "src/main.js", Name: "main.js", Kind: KindFile, SHA: "m1"},
				{Path: "src/util", Name: "util", Kind: KindDir},
			},
			"src/util": {},
		},
		calls: map[string]int{},
	}
}

func (f *fakeLister) ListDir(_ context.Context, path string) ([]Node, error) {
	f.mu.Lock()
	f.calls[path]++
	f.mu.Unlock()
	return f.listings[path], nil
}

func TestOpenFetchesExactlyOnce(t *testing.T) {
	l := newFakeLister()
	tr := New(l)
	ctx := context.Background()
	if err := tr.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := tr.Open(ctx, "src"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if l.calls["src"] != 1 {
		t.Fatalf("first expansion issued %d fetches, want 1", l.calls["src"])
	}

	tr.Collapse("src")
	if tr.IsExpanded("src") {
		t.Error("src still expanded after Collapse")
	}
	if err := tr.Open(ctx, "src"); err != nil {
		t.Fatalf("re-Open: %v", err)
	}
	if l.calls["src"] != 1 {
		t.Errorf("re-expansion issued %d additional fetches, want 0", l.calls["src"]-1)
	}
	if !tr.IsExpanded("src") {
		t.Error("src not expanded after re-Open")
	}
}

func TestConcurrentOpenFetchesOnce(t *testing.T) {
	l := newFakeLister()
	tr := New(l)
	ctx := context.Background()
	if err := tr.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tr.Open(ctx, "src"); err != nil {
				t.Errorf("Open: %v", err)
			}
		}()
	}
	wg.Wait()

	if l.calls["src"] != 1 {
		t.Fatalf("concurrent expansion issued %d fetches, want 1", l.calls["src"])
	}
	if !tr.IsExpanded("src") {
		t.Error("src not expanded after concurrent Open")
	}
}

func TestEmptyDirIsDistinctFromUnfetched(t *testing.T) {
	l := newFakeLister()
	tr := New(l)
	ctx := context.Background()
	tr.Load(ctx)

	if _, ok := tr.Children("src/util"); ok {
		t.Fatal("never-fetched dir must report no cached children")
	}
	tr.Open(ctx, "src")
	tr.Open(ctx, "src/util")
	children, ok := tr.Children("src/util")
	if !ok {
		t.Fatal("fetched dir must have a cache entry")
	}
	if len(children) != 0 {
		t.Fatalf("expected zero children, got %d", len(children))
	}
}

func TestRowsFollowExpansion(t *testing.T) {
	l := newFakeLister()
	tr := New(l)
	ctx := context.Background()
	tr.Load(ctx)

	rows := tr.Rows()
	if len(rows) != 2 {
		t.Fatalf("collapsed tree has %d rows, want 2", len(rows))
	}

	tr.Open(ctx, "src")
	rows = tr.Rows()
	want := []string{"README.md", "src", "src/main.js", "src/util"}
	if len(rows) != len(want) {
		t.Fatalf("expanded tree has %d rows, want %d", len(rows), len(want))
	}
	for i, p := range want {
		if rows[i].Node.Path != p {
			t.Errorf("row %d = %s, want %s", i, rows[i].Node.Path, p)
		}
	}
	if rows[2].Depth != 1 {
		t.Errorf("src/main.js depth = %d, want 1", rows[2].Depth)
	}
}

func TestToggle(t *testing.T) {
	l := newFakeLister()
	tr := New(l)
	ctx := context.Background()
	tr.Load(ctx)

	tr.Toggle(ctx, "src")
	if !tr.IsExpanded("src") {
		t.Fatal("toggle should expand a collapsed dir")
	}
	tr.Toggle(ctx, "src")
	if tr.IsExpanded("src") {
		t.Fatal("toggle should collapse an expanded dir")
	}
	if l.calls["src"] != 1 {
		t.Errorf("toggling fetched %d times, want 1", l.calls["src"])
	}
}

func TestInsertAndAddFolder(t *testing.T) {
	l := newFakeLister()
	tr := New(l)
	ctx := context.Background()
	tr.Load(ctx)

	tr.Insert("", Node{Path: "docs", Name: "docs", Kind: KindDir, Local: true})
	tr.AddFolder("docs")
	if !tr.IsExpanded("docs") {
		t.Error("new folder should start expanded")
	}
	if children, ok := tr.Children("docs"); !ok || len(children) != 0 {
		t.Error("new folder should be cached as empty, not unfetched")
	}

	tr.Insert("docs", Node{Path: "docs/notes.md", Name: "notes.md", Kind: KindFile, Local: true})
	tr.Insert("", Node{Path: "index.html", Name: "index.html", Kind: KindFile, Local: true})

	seen := map[string]int{}
	for _, r := range tr.Rows() {
		seen[r.Node.Path]++
	}
	for _, p := range []string{"docs/notes.md", "index.html"} {
		if seen[p] != 1 {
			t.Errorf("path %s appears %d times in tree, want exactly 1", p, seen[p])
		}
	}
}

func TestClearDropsEverything(t *testing.T) {
	l := newFakeLister()
	tr := New(l)
	ctx := context.Background()
	tr.Load(ctx)
	tr.Open(ctx, "src")

	tr.Clear()
	if tr.Loaded() {
		t.Error("Loaded after Clear")
	}
	if len(tr.Rows()) != 0 {
		t.Error("rows remain after Clear")
	}
	if _, ok := tr.Children("src"); ok {
		t.Error("cache remains after Clear")
	}
}

func TestSetSHA(t *testing.T) {
	l := newFakeLister()
	tr := New(l)
	ctx := context.Background()
	tr.Load(ctx)
	tr.Open(ctx, "src")

	tr.SetSHA("src/main.js", "m2")
	n, ok := tr.Find("src/main.js")
	if !ok {
		t.Fatal("src/main.js not found")
	}
	if n.SHA != "m2" {
		t.Errorf("sha = %s, want m2", n.SHA)
	}
}
