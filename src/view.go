package src

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/forgepad/forgepad/src/tree"
)

func (m *model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(),
		m.viewBody(),
		m.viewStatus(),
		m.viewFooter(),
	)
}

func (m *model) viewHeader() string {
	logoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#5FAFD7")).Bold(true)
	context := ""
	if m.repo.Name != "" {
		context = m.repo.String()
		if m.branch.Name != "" {
			context += " @ " + m.branch.Name
		}
	}
	if m.user.Login != "" {
		if context != "" {
			context += "  ·  "
		}
		context += m.user.Login
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		logoStyle.Render(logo),
		m.style.header.Render(context),
	)
}

func (m *model) viewBody() string {
	switch m.mode {
	case modeToken:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.style.subtitle.Render("Paste a GitHub personal access token to get started:"),
			m.input.View(),
		)
	case modeRepos:
		return m.style.list.Render(m.repoList.View())
	case modeBranches:
		return m.style.list.Render(m.branchList.View())
	case modeBrowse:
		return m.viewTree()
	case modePreview, modeCommits, modeProposal:
		return m.viewport.View()
	case modeEdit:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.style.subtitle.Render(m.editTitle()),
			m.textarea.View(),
		)
	case modeCommitMsg:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.style.subtitle.Render("Commit message for "+m.sess.Path()+":"),
			m.input.View(),
		)
	case modeChat:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.viewport.View(),
			m.textarea.View(),
		)
	case modeNewFile:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.style.subtitle.Render("New file in "+displayDir(m.newItemDir)+":"),
			m.input.View(),
		)
	case modeNewFolder:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.style.subtitle.Render("New folder in "+displayDir(m.newItemDir)+":"),
			m.input.View(),
		)
	case modeNewBranch:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.style.subtitle.Render("New branch from "+m.branch.Name+" ("+shortSHA(m.branch.SHA)+"):"),
			m.input.View(),
		)
	}
	return ""
}

func (m *model) editTitle() string {
	title := m.sess.Path()
	if m.sess.Dirty() {
		title += m.style.dirty.Render(" ●")
	}
	if m.sess.IsLocal() {
		title += m.style.local.Render(" [local]")
	}
	return title
}

func displayDir(dir string) string {
	if dir == "" {
		return "repository root"
	}
	return dir + "/"
}

// viewTree renders the materialized rows with a windowed cursor.
func (m *model) viewTree() string {
	rows := m.tr.Rows()
	if len(rows) == 0 {
		if m.isBusy {
			return m.style.subtle.Render("  loading tree...")
		}
		return m.style.subtle.Render("  (empty repository)")
	}

	visible := m.treeHeight()
	if m.cursor < m.treeTop {
		m.treeTop = m.cursor
	}
	if m.cursor >= m.treeTop+visible {
		m.treeTop = m.cursor - visible + 1
	}
	end := m.treeTop + visible
	if end > len(rows) {
		end = len(rows)
	}

	var b strings.Builder
	for i := m.treeTop; i < end; i++ {
		b.WriteString(m.renderRow(rows[i], i == m.cursor))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *model) renderRow(row tree.Row, selected bool) string {
	indent := strings.Repeat("  ", row.Depth)

	var icon, name string
	if row.Node.Kind == tree.KindDir {
		if row.Expanded {
			icon = "▾ 📂"
		} else {
			icon = "▸ 📁"
		}
		name = m.style.dir.Render(row.Node.Name + "/")
	} else {
		icon = "  📄"
		name = m.style.file.Render(row.Node.Name)
		if row.Node.Local {
			name = m.style.local.Render(row.Node.Name + " [local]")
		}
	}
	if m.sess.Active() && m.sess.Path() == row.Node.Path && m.sess.Dirty() {
		name += m.style.dirty.Render(" ●")
	}

	line := fmt.Sprintf("%s%s %s", indent, icon, name)
	if selected {
		return m.style.cursor.Render("❯ ") + line
	}
	return "  " + line
}

func (m *model) treeHeight() int {
	h := m.height - lipgloss.Height(m.viewHeader()) - lipgloss.Height(m.viewFooter()) - 3
	if h < 5 {
		h = 5
	}
	return h
}

func (m *model) renderCommits() string {
	var b strings.Builder
	b.WriteString(m.style.accent.Render("History of "+m.repo.String()+" @ "+m.branch.Name) + "\n\n")
	for _, c := range m.commits {
		subject := c.Message
		if idx := strings.IndexByte(subject, '\n'); idx >= 0 {
			subject = subject[:idx]
		}
		b.WriteString(fmt.Sprintf("%s  %s\n", m.style.local.Render(shortSHA(c.SHA)), subject))
		b.WriteString(m.style.subtle.Render(fmt.Sprintf("        %s · %s", c.Author, c.Date.Format("2006-01-02 15:04"))) + "\n")
	}
	return b.String()
}

func (m *model) viewStatus() string {
	if m.isBusy {
		return m.style.busy.Render(fmt.Sprintf(" %s %s", m.spinner.View(), m.busyText))
	}
	if m.status != "" {
		return " " + m.status
	}
	return ""
}

func (m *model) viewFooter() string {
	var help string
	switch m.mode {
	case modeToken:
		help = "enter: connect"
	case modeRepos:
		help = "enter: open repository | /: filter"
	case modeBranches:
		help = "enter: select branch | esc: back"
	case modeBrowse:
		help = "enter: open | v: preview | e: resume edit | n: new file | N: new folder | b: new branch | g: history | c: chat | esc: branches"
	case modePreview:
		help = "esc: back"
	case modeEdit:
		help = "ctrl+s: save | ctrl+a: ask assistant | esc: tree"
	case modeCommitMsg:
		help = "enter: commit | esc: cancel"
	case modeChat:
		if m.proposal != nil {
			help = "enter: send | ctrl+p: review proposal | esc: back"
		} else {
			help = "enter: send | esc: back"
		}
	case modeProposal:
		help = "y: apply to buffer | n: reject"
	case modeCommits:
		help = "esc: back"
	default:
		help = "enter: confirm | esc: cancel"
	}
	return m.style.footer.Render(help + " | ctrl+c: quit")
}
