package src

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/forgepad/forgepad/src/assist"
	"github.com/forgepad/forgepad/src/forge"
	"github.com/forgepad/forgepad/src/tree"
)

type userMsg struct {
	user forge.User
	err  error
}

type reposMsg struct {
	repos []forge.Repo
	err   error
}

type branchesMsg struct {
	branches []forge.Branch
	err      error
}

type treeLoadedMsg struct {
	err error
}

type dirOpenedMsg struct {
	path string
	err  error
}

type fileLoadedMsg struct {
	seq     int
	path    string
	content string
	sha     string
	preview bool
	err     error
}

type fileSavedMsg struct {
	seq     int
	path    string
	content string
	sha     string
	err     error
}

type replyMsg struct {
	text     string
	proposal *assist.Proposal
	err      error
}

type commitsMsg struct {
	commits []forge.Commit
	err     error
}

type branchCreatedMsg struct {
	branch forge.Branch
	err    error
}

// forgeLister adapts the forge client to the tree's Lister for one
// repository+branch selection.
type forgeLister struct {
	client *forge.Client
	repo   forge.RepoRef
	ref    string
}

func (l forgeLister) ListDir(ctx context.Context, path string) ([]tree.Node, error) {
	entries, err := l.client.ListDir(ctx, l.repo, l.ref, path)
	if err != nil {
		return nil, err
	}
	nodes := make([]tree.Node, 0, len(entries))
	for _, e := range entries {
		kind := tree.KindFile
		if e.Type == "dir" {
			kind = tree.KindDir
		}
		nodes = append(nodes, tree.Node{
			Path: e.Path,
			Name: e.Name,
			Kind: kind,
			SHA:  e.SHA,
			Size: e.Size,
		})
	}
	return nodes, nil
}

func (m *model) loadUserCmd() tea.Cmd {
	return func() tea.Msg {
		user, err := m.client.CurrentUser(m.ctx)
		return userMsg{user: user, err: err}
	}
}

func (m *model) loadReposCmd() tea.Cmd {
	return func() tea.Msg {
		repos, err := m.client.Repositories(m.ctx)
		return reposMsg{repos: repos, err: err}
	}
}

func (m *model) loadBranchesCmd(repo forge.RepoRef) tea.Cmd {
	return func() tea.Msg {
		branches, err := m.client.Branches(m.ctx, repo)
		return branchesMsg{branches: branches, err: err}
	}
}

func (m *model) loadTreeCmd() tea.Cmd {
	tr := m.tr
	return func() tea.Msg {
		return treeLoadedMsg{err: tr.Load(m.ctx)}
	}
}

// openDirCmd toggles a directory; the first expansion fetches its listing,
// one directory at a time, never prefetched.
func (m *model) openDirCmd(path string) tea.Cmd {
	tr := m.tr
	return func() tea.Msg {
		return dirOpenedMsg{path: path, err: tr.Toggle(m.ctx, path)}
	}
}

func (m *model) loadFileCmd(seq int, path string, preview bool) tea.Cmd {
	repo, ref := m.repo, m.branch.Name
	return func() tea.Msg {
		content, sha, err := m.client.FileContent(m.ctx, repo, ref, path)
		return fileLoadedMsg{seq: seq, path: path, content: content, sha: sha, preview: preview, err: err}
	}
}

func (m *model) saveFileCmd(seq int, path, content, sha, message string) tea.Cmd {
	repo, branch := m.repo, m.branch.Name
	return func() tea.Msg {
		newSHA, err := m.client.UpdateFile(m.ctx, repo, branch, path, message, content, sha)
		return fileSavedMsg{seq: seq, path: path, content: content, sha: newSHA, err: err}
	}
}

func (m *model) loadCommitsCmd() tea.Cmd {
	repo, ref := m.repo, m.branch.Name
	return func() tea.Msg {
		commits, err := m.client.Commits(m.ctx, repo, ref)
		return commitsMsg{commits: commits, err: err}
	}
}

func (m *model) createBranchCmd(name string) tea.Cmd {
	repo, from := m.repo, m.branch.SHA
	return func() tea.Msg {
		branch, err := m.client.CreateBranch(m.ctx, repo, name, from)
		return branchCreatedMsg{branch: branch, err: err}
	}
}

func (m *model) askCmd(question string) tea.Cmd {
	req := m.buildAskRequest(question)
	path, current := m.sess.Path(), m.sess.Content()
	active := m.sess.Active()
	return func() tea.Msg {
		text, err := m.bridge.Ask(m.ctx, req)
		if err != nil {
			return replyMsg{err: err}
		}
		var proposal *assist.Proposal
		if active {
			proposal = assist.ExtractCandidate(text, path, current)
		}
		return replyMsg{text: text, proposal: proposal}
	}
}

// buildAskRequest snapshots the session, the overlay files, and the folder
// structure into one bounded prompt request.
func (m *model) buildAskRequest(question string) assist.Request {
	req := assist.Request{
		Question:    question,
		TreeListing: m.treeListing(),
	}
	if m.sess.Active() {
		req.Active = &assist.File{Path: m.sess.Path(), Content: m.sess.Content()}
	}
	for _, p := range m.overlay.Paths() {
		content, _ := m.overlay.Get(p)
		req.Others = append(req.Others, assist.File{Path: p, Content: content})
	}
	return req
}

// treeListing renders the visible hierarchy as an indented text listing.
func (m *model) treeListing() string {
	if m.tr == nil {
		return ""
	}
	var b strings.Builder
	for _, row := range m.tr.Rows() {
		b.WriteString(strings.Repeat("  ", row.Depth))
		b.WriteString("└─ ")
		b.WriteString(row.Node.Name)
		if row.Node.Kind == tree.KindDir {
			b.WriteString("/")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
