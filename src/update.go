package src

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/forgepad/forgepad/src/assist"
	"github.com/forgepad/forgepad/src/config"
	"github.com/forgepad/forgepad/src/forge"
	"github.com/forgepad/forgepad/src/session"
	"github.com/forgepad/forgepad/src/tree"
)

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		headerHeight := lipgloss.Height(m.viewHeader())
		footerHeight := lipgloss.Height(m.viewFooter())
		bodyHeight := m.height - headerHeight - footerHeight - 2
		m.repoList.SetSize(m.width-4, bodyHeight)
		m.branchList.SetSize(m.width-4, bodyHeight)
		m.textarea.SetWidth(m.width - 4)
		m.viewport.Width = m.width - 4
		m.viewport.Height = bodyHeight - m.textarea.Height() - 2
		if m.viewport.Height < 3 {
			m.viewport.Height = 3
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case userMsg:
		if msg.err == nil {
			m.user = msg.user
		}
		return m, nil

	case reposMsg:
		if msg.err != nil {
			m.setError(msg.err)
			if errors.Is(msg.err, forge.ErrUnauthorized) {
				m.mode = modeToken
				m.input.Focus()
			}
			return m, nil
		}
		repoItems := make([]list.Item, 0, len(msg.repos))
		for _, r := range msg.repos {
			repoItems = append(repoItems, repoItem{repo: r})
		}
		m.repoList.SetItems(repoItems)
		m.isBusy = false
		return m, nil

	case branchesMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		branchItems := make([]list.Item, 0, len(msg.branches))
		for _, b := range msg.branches {
			branchItems = append(branchItems, branchItem{branch: b})
		}
		m.branchList.SetItems(branchItems)
		m.branchList.Title = "Branches of " + m.repo.String()
		m.isBusy = false
		m.mode = modeBranches
		return m, nil

	case treeLoadedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.isBusy = false
		m.cursor = 0
		m.treeTop = 0
		return m, nil

	case dirOpenedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.isBusy = false
		return m, nil

	case fileLoadedMsg:
		return m.handleFileLoaded(msg)

	case fileSavedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, forge.ErrConflict) {
				m.setError(fmt.Errorf("the file changed remotely; reopen it to reload, then retry: %w", msg.err))
			} else {
				m.setError(msg.err)
			}
			if !m.sess.Stale(msg.seq) {
				m.mode = modeEdit
			}
			return m, nil
		}
		m.tr.SetSHA(msg.path, msg.sha)
		m.setSuccess(fmt.Sprintf("💾 committed %s @ %s", msg.path, shortSHA(msg.sha)))
		if !m.sess.ApplySave(msg.seq, msg.content, msg.sha) {
			// Commit landed, but the user has selected another file since.
			return m, nil
		}
		m.mode = modeEdit
		m.textarea.Focus()
		return m, nil

	case replyMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.output += m.style.busy.Render("Assistant:") + "\n" + m.renderMarkdown(msg.text) + "\n"
		m.proposal = msg.proposal
		if m.proposal != nil {
			m.output += m.style.subtle.Render("A replacement for "+m.proposal.Path+" was detected. ctrl+p: review diff") + "\n"
		}
		m.viewport.SetContent(m.output)
		m.viewport.GotoBottom()
		m.isBusy = false
		return m, nil

	case commitsMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.commits = msg.commits
		m.viewport.SetContent(m.renderCommits())
		m.viewport.GotoTop()
		m.isBusy = false
		m.prevMode = m.mode
		m.mode = modeCommits
		return m, nil

	case branchCreatedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			m.mode = modeBrowse
			return m, nil
		}
		m.setSuccess("🌱 created branch " + msg.branch.Name)
		return m, m.switchBranch(msg.branch)
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeRepos:
		m.repoList, cmd = m.repoList.Update(msg)
	case modeBranches:
		m.branchList, cmd = m.branchList.Update(msg)
	case modeToken, modeCommitMsg, modeNewFile, modeNewFolder, modeNewBranch:
		m.input, cmd = m.input.Update(msg)
	case modeEdit:
		m.textarea, cmd = m.textarea.Update(msg)
	case modeChat:
		var taCmd, vpCmd tea.Cmd
		m.textarea, taCmd = m.textarea.Update(msg)
		m.viewport, vpCmd = m.viewport.Update(msg)
		cmd = tea.Batch(taCmd, vpCmd)
	case modePreview, modeCommits, modeProposal:
		m.viewport, cmd = m.viewport.Update(msg)
	}

	if m.isBusy {
		var spinnerCmd tea.Cmd
		m.spinner, spinnerCmd = m.spinner.Update(msg)
		cmd = tea.Batch(cmd, spinnerCmd)
	}
	return m, cmd
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {

	case modeToken:
		if msg.String() == "enter" {
			token := strings.TrimSpace(m.input.Value())
			if token == "" {
				return m, nil
			}
			m.cfg.ForgeToken = token
			if err := config.Save(m.cfg); err != nil {
				m.setError(err)
			}
			m.client = forge.New(token)
			m.input.Reset()
			m.setBusy("connecting")
			m.mode = modeRepos
			return m, tea.Batch(m.loadReposCmd(), m.loadUserCmd(), m.spinner.Tick)
		}

	case modeRepos:
		if msg.String() == "enter" {
			if item, ok := m.repoList.SelectedItem().(repoItem); ok {
				m.repo = item.repo.Ref()
				m.setBusy("loading branches")
				return m, tea.Batch(m.loadBranchesCmd(m.repo), m.spinner.Tick)
			}
			return m, nil
		}

	case modeBranches:
		switch msg.String() {
		case "esc":
			m.mode = modeRepos
			return m, nil
		case "enter":
			if item, ok := m.branchList.SelectedItem().(branchItem); ok {
				return m, m.switchBranch(item.branch)
			}
			return m, nil
		}

	case modeBrowse:
		return m.handleBrowseKey(msg)

	case modePreview:
		if s := msg.String(); s == "esc" || s == "q" {
			m.mode = modeBrowse
			return m, nil
		}

	case modeEdit:
		switch msg.String() {
		case "esc":
			m.sess.Edit(m.textarea.Value())
			m.mode = modeBrowse
			return m, nil
		case "ctrl+s":
			return m.startSave()
		case "ctrl+a":
			m.sess.Edit(m.textarea.Value())
			return m.enterChat(modeEdit)
		}

	case modeCommitMsg:
		switch msg.String() {
		case "esc":
			m.mode = modeEdit
			m.input.Reset()
			return m, nil
		case "enter":
			message := strings.TrimSpace(m.input.Value())
			if message == "" {
				message = "Update " + m.sess.Path()
			}
			m.input.Reset()
			filePath, content, sha, seq, err := m.sess.BeginSave()
			if err != nil {
				m.setError(err)
				m.mode = modeEdit
				return m, nil
			}
			m.setBusy("committing " + filePath)
			return m, tea.Batch(m.saveFileCmd(seq, filePath, content, sha, message), m.spinner.Tick)
		}

	case modeChat:
		switch msg.String() {
		case "esc":
			return m.leaveChat()
		case "ctrl+p":
			if m.proposal != nil {
				m.viewport.SetContent(m.proposal.Diff())
				m.viewport.GotoTop()
				m.mode = modeProposal
			}
			return m, nil
		case "enter":
			question := strings.TrimSpace(m.textarea.Value())
			if question == "" {
				return m, nil
			}
			m.textarea.Reset()
			m.output += m.style.accent.Render("You:") + "\n" + question + "\n\n"
			m.viewport.SetContent(m.output)
			m.viewport.GotoBottom()
			m.setBusy("asking assistant")
			return m, tea.Batch(m.askCmd(question), m.spinner.Tick)
		}

	case modeProposal:
		switch msg.String() {
		case "y":
			if m.proposal != nil && m.proposal.State == assist.Proposed {
				m.proposal.Accept()
				m.sess.Edit(m.proposal.New)
				m.textarea.SetValue(m.proposal.New)
				m.textarea.Focus()
				m.setSuccess("replacement applied to buffer; ctrl+s to save")
				m.mode = modeEdit
			}
			return m, nil
		case "n", "esc":
			if m.proposal != nil && m.proposal.State == assist.Proposed {
				m.proposal.Reject()
			}
			m.mode = modeChat
			m.viewport.SetContent(m.output)
			m.viewport.GotoBottom()
			return m, nil
		}

	case modeCommits:
		if s := msg.String(); s == "esc" || s == "q" {
			m.mode = modeBrowse
			return m, nil
		}

	case modeNewFile, modeNewFolder:
		switch msg.String() {
		case "esc":
			m.mode = modeBrowse
			m.input.Reset()
			return m, nil
		case "enter":
			return m.createEntry(m.mode == modeNewFolder)
		}

	case modeNewBranch:
		switch msg.String() {
		case "esc":
			m.mode = modeBrowse
			m.input.Reset()
			return m, nil
		case "enter":
			name := strings.TrimSpace(m.input.Value())
			if name == "" {
				return m, nil
			}
			m.input.Reset()
			m.mode = modeBrowse
			m.setBusy("creating branch " + name)
			return m, tea.Batch(m.createBranchCmd(name), m.spinner.Tick)
		}
	}

	// Not handled here; fall through to the per-mode component update.
	var cmd tea.Cmd
	switch m.mode {
	case modeRepos:
		m.repoList, cmd = m.repoList.Update(msg)
	case modeBranches:
		m.branchList, cmd = m.branchList.Update(msg)
	case modeToken, modeCommitMsg, modeNewFile, modeNewFolder, modeNewBranch:
		m.input, cmd = m.input.Update(msg)
	case modeEdit:
		m.textarea, cmd = m.textarea.Update(msg)
	case modeChat:
		var taCmd, vpCmd tea.Cmd
		m.textarea, taCmd = m.textarea.Update(msg)
		m.viewport, vpCmd = m.viewport.Update(msg)
		cmd = tea.Batch(taCmd, vpCmd)
	case modePreview, modeCommits, modeProposal:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m *model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.tr.Rows()

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
		return m, nil

	case "enter":
		if m.cursor >= len(rows) {
			return m, nil
		}
		row := rows[m.cursor]
		if row.Node.Kind == tree.KindDir {
			// Selecting a directory toggles expansion, never loads content.
			if _, cached := m.tr.Children(row.Node.Path); !cached {
				m.setBusy("listing " + row.Node.Path)
			}
			return m, tea.Batch(m.openDirCmd(row.Node.Path), m.spinner.Tick)
		}
		return m.selectFile(row.Node)

	case "v":
		if m.cursor >= len(rows) {
			return m, nil
		}
		row := rows[m.cursor]
		if row.Node.Kind != tree.KindFile {
			return m, nil
		}
		if content, ok := m.overlay.Get(row.Node.Path); ok {
			m.viewport.SetContent(highlight(row.Node.Path, content, m.cfg.Theme))
			m.viewport.GotoTop()
			m.mode = modePreview
			return m, nil
		}
		m.setBusy("loading " + row.Node.Path)
		return m, tea.Batch(m.loadFileCmd(0, row.Node.Path, true), m.spinner.Tick)

	case "n":
		m.newItemDir = m.dirForCursor(rows)
		m.input.Placeholder = "filename (e.g. index.html)..."
		m.input.Reset()
		m.input.Focus()
		m.mode = modeNewFile
		return m, nil

	case "N":
		m.newItemDir = m.dirForCursor(rows)
		m.input.Placeholder = "folder name..."
		m.input.Reset()
		m.input.Focus()
		m.mode = modeNewFolder
		return m, nil

	case "b":
		m.input.Placeholder = "new branch name..."
		m.input.Reset()
		m.input.Focus()
		m.mode = modeNewBranch
		return m, nil

	case "g":
		m.setBusy("loading commits")
		return m, tea.Batch(m.loadCommitsCmd(), m.spinner.Tick)

	case "c":
		return m.enterChat(modeBrowse)

	case "e":
		if m.sess.Active() {
			m.textarea.SetValue(m.sess.Content())
			m.textarea.Focus()
			m.mode = modeEdit
		}
		return m, nil

	case "esc":
		m.mode = modeBranches
		return m, nil
	}
	return m, nil
}

// selectFile hands a file node off to the edit session loader. Overlay
// files load synchronously; remote files go through a guarded fetch.
func (m *model) selectFile(n tree.Node) (tea.Model, tea.Cmd) {
	if m.overlay.Has(n.Path) {
		if err := m.sess.SelectLocal(n.Path); err != nil {
			m.setError(err)
			return m, nil
		}
		m.textarea.SetValue(m.sess.Content())
		m.textarea.Focus()
		m.mode = modeEdit
		return m, nil
	}
	seq := m.sess.BeginSelect()
	m.pendingSeq = seq
	m.setBusy("loading " + n.Path)
	return m, tea.Batch(m.loadFileCmd(seq, n.Path, false), m.spinner.Tick)
}

func (m *model) handleFileLoaded(msg fileLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.preview {
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.viewport.SetContent(highlight(msg.path, msg.content, m.cfg.Theme))
		m.viewport.GotoTop()
		m.isBusy = false
		m.mode = modePreview
		return m, nil
	}

	if msg.err != nil {
		// The previous selection stays intact; only surface the error.
		if msg.seq == m.pendingSeq {
			m.setError(msg.err)
		}
		return m, nil
	}
	if !m.sess.ApplyLoad(msg.seq, msg.path, msg.content, msg.sha) {
		// Superseded by a newer selection; drop silently.
		return m, nil
	}
	m.isBusy = false
	m.textarea.SetValue(msg.content)
	m.textarea.Focus()
	m.mode = modeEdit
	return m, nil
}

func (m *model) startSave() (tea.Model, tea.Cmd) {
	if err := m.sess.Edit(m.textarea.Value()); err != nil {
		m.setError(err)
		return m, nil
	}
	if m.sess.IsLocal() {
		if err := m.sess.SaveLocal(); err != nil {
			m.setError(err)
			return m, nil
		}
		m.setSuccess("💾 saved to local overlay (not committed)")
		return m, nil
	}
	m.input.Placeholder = "commit message..."
	m.input.Reset()
	m.input.Focus()
	m.mode = modeCommitMsg
	return m, nil
}

func (m *model) switchBranch(b forge.Branch) tea.Cmd {
	m.branch = b
	// A branch switch drops all derived state and re-triggers a full reload.
	m.tr = tree.New(forgeLister{client: m.client, repo: m.repo, ref: b.Name})
	m.overlay.Clear()
	m.sess.Clear()
	m.proposal = nil
	m.output = ""
	m.cursor = 0
	m.treeTop = 0
	m.setBusy("loading " + m.repo.String() + "@" + b.Name)
	m.mode = modeBrowse
	return tea.Batch(m.loadTreeCmd(), m.spinner.Tick)
}

func (m *model) enterChat(from mode) (tea.Model, tea.Cmd) {
	m.prevMode = from
	m.mode = modeChat
	m.textarea.Reset()
	m.textarea.Placeholder = "Ask about the current file..."
	m.textarea.Focus()
	m.viewport.SetContent(m.output)
	m.viewport.GotoBottom()
	return m, nil
}

func (m *model) leaveChat() (tea.Model, tea.Cmd) {
	m.textarea.Reset()
	if m.prevMode == modeEdit && m.sess.Active() {
		m.textarea.SetValue(m.sess.Content())
		m.textarea.Focus()
		m.mode = modeEdit
		return m, nil
	}
	m.mode = modeBrowse
	return m, nil
}

func (m *model) createEntry(folder bool) (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.input.Value())
	if name == "" {
		return m, nil
	}
	m.input.Reset()
	fullPath := name
	if m.newItemDir != "" {
		fullPath = m.newItemDir + "/" + name
	}

	if m.pathExistsInTree(m.newItemDir, fullPath) {
		m.setError(fmt.Errorf("%w: %s", session.ErrAlreadyExists, fullPath))
		m.mode = modeBrowse
		return m, nil
	}

	if folder {
		m.tr.Insert(m.newItemDir, tree.Node{Path: fullPath, Name: name, Kind: tree.KindDir, Local: true})
		m.tr.AddFolder(fullPath)
		m.mode = modeBrowse
		m.setInfo("📁 created folder " + fullPath)
		return m, nil
	}

	if err := m.sess.CreateFile(fullPath); err != nil {
		if errors.Is(err, session.ErrAlreadyExists) {
			m.setError(err)
			m.mode = modeBrowse
			return m, nil
		}
		m.setError(err)
		return m, nil
	}
	m.tr.Insert(m.newItemDir, tree.Node{Path: fullPath, Name: name, Kind: tree.KindFile, Local: true})
	m.textarea.SetValue(m.sess.Content())
	m.textarea.Focus()
	m.mode = modeEdit
	m.setInfo("📄 new local file " + fullPath + " (unsaved)")
	return m, nil
}

// pathExistsInTree reports whether a node already claims path, either among
// the visible rows or in the cached listing of the target directory. Every
// path must map to exactly one node; a local create must never shadow a
// remote file.
func (m *model) pathExistsInTree(dir, path string) bool {
	if _, ok := m.tr.Find(path); ok {
		return true
	}
	if children, ok := m.tr.Children(dir); ok {
		for _, n := range children {
			if n.Path == path {
				return true
			}
		}
	}
	return false
}

// dirForCursor picks the directory a create lands in: the directory under
// the cursor, or the parent directory of the file under the cursor.
func (m *model) dirForCursor(rows []tree.Row) string {
	if m.cursor >= len(rows) {
		return ""
	}
	n := rows[m.cursor].Node
	if n.Kind == tree.KindDir {
		return n.Path
	}
	dir := path.Dir(n.Path)
	if dir == "." {
		return ""
	}
	return dir
}

func (m *model) renderMarkdown(s string) string {
	style := "dark"
	if m.cfg.Theme == "light" {
		style = "light"
	}
	out, err := glamour.Render(s, style)
	if err != nil {
		return s
	}
	return out
}
