package src

import (
	"context"
	"strings"
	"testing"

	"github.com/forgepad/forgepad/src/config"
	"github.com/forgepad/forgepad/src/tree"
)

func testModel() *model {
	m := NewModel(context.Background(), &config.Config{Theme: "dark"})
	m.width, m.height = 100, 40
	return m
}

func TestViewTokenModeAsksForToken(t *testing.T) {
	m := testModel()

	out := m.View()
	if !strings.Contains(out, "personal access token") {
		t.Error("token mode should prompt for a token")
	}
	if !strings.Contains(out, "ctrl+c: quit") {
		t.Error("footer should always offer quit")
	}
}

func TestViewHeaderShowsRepoAndBranch(t *testing.T) {
	m := testModel()
	m.repo.Owner, m.repo.Name = "octo", "site"
	m.branch.Name = "main"

	header := m.viewHeader()
	if !strings.Contains(header, "octo/site") || !strings.Contains(header, "main") {
		t.Errorf("header missing repo context:\n%s", header)
	}
}

func TestRenderRowMarksDirsAndLocalFiles(t *testing.T) {
	m := testModel()

	dir := m.renderRow(tree.Row{Node: tree.Node{Path: "src", Name: "src", Kind: tree.KindDir}}, false)
	if !strings.Contains(dir, "src/") {
		t.Errorf("dir row missing trailing slash: %q", dir)
	}

	local := m.renderRow(tree.Row{Node: tree.Node{Path: "new.js", Name: "new.js", Kind: tree.KindFile, Local: true}}, false)
	if !strings.Contains(local, "[local]") {
		t.Errorf("local row missing marker: %q", local)
	}

	selected := m.renderRow(tree.Row{Node: tree.Node{Path: "a", Name: "a", Kind: tree.KindFile}}, true)
	if !strings.Contains(selected, "❯") {
		t.Errorf("selected row missing cursor: %q", selected)
	}
}

func TestDirtySessionMarksEditTitle(t *testing.T) {
	m := testModel()
	m.sess.CreateFile("index.html")

	title := m.editTitle()
	if !strings.Contains(title, "index.html") || !strings.Contains(title, "●") {
		t.Errorf("dirty marker missing from %q", title)
	}
}

func TestTreeListingIndentsByDepth(t *testing.T) {
	m := testModel()
	m.tr = tree.New(nil)
	m.tr.Insert("", tree.Node{Path: "src", Name: "src", Kind: tree.KindDir})
	m.tr.AddFolder("src")
	m.tr.Insert("src", tree.Node{Path: "src/main.js", Name: "main.js", Kind: tree.KindFile})

	listing := m.treeListing()
	want := "└─ src/\n  └─ main.js"
	if listing != want {
		t.Errorf("listing = %q, want %q", listing, want)
	}
}

func TestHighlightFallsBackToPlainText(t *testing.T) {
	code := "not really code"
	if out := highlight("file.unknownext", code, "dark"); out == "" {
		t.Error("highlight returned empty output")
	}
}
