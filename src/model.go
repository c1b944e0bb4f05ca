package src

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/forgepad/forgepad/src/assist"
	"github.com/forgepad/forgepad/src/config"
	"github.com/forgepad/forgepad/src/forge"
	"github.com/forgepad/forgepad/src/session"
	"github.com/forgepad/forgepad/src/tree"
)

type mode int

const (
	modeToken mode = iota
	modeRepos
	modeBranches
	modeBrowse
	modePreview
	modeEdit
	modeCommitMsg
	modeChat
	modeProposal
	modeCommits
	modeNewFile
	modeNewFolder
	modeNewBranch
)

const logo = `
███████╗ ██████╗ ██████╗  ██████╗ ███████╗██████╗  █████╗ ██████╗
██╔════╝██╔═══██╗██╔══██╗██╔════╝ ██╔════╝██╔══██╗██╔══██╗██╔══██╗
█████╗  ██║   ██║██████╔╝██║  ███╗█████╗  ██████╔╝███████║██║  ██║
██╔══╝  ██║   ██║██╔══██╗██║   ██║██╔══╝  ██╔═══╝ ██╔══██║██║  ██║
██║     ╚██████╔╝██║  ██║╚██████╔╝███████╗██║     ██║  ██║██████╔╝
╚═╝      ╚═════╝ ╚═╝  ╚═╝ ╚═════╝ ╚══════╝╚═╝     ╚═╝  ╚═╝╚═════╝
             E D I T  ·  Y O U R  ·  R E M O T E S
`

type repoItem struct{ repo forge.Repo }

func (r repoItem) Title() string { return r.repo.FullName }
func (r repoItem) Description() string {
	if r.repo.Description == "" {
		return "no description"
	}
	return r.repo.Description
}
func (r repoItem) FilterValue() string { return r.repo.FullName }

type branchItem struct{ branch forge.Branch }

func (b branchItem) Title() string       { return b.branch.Name }
func (b branchItem) Description() string { return shortSHA(b.branch.SHA) }
func (b branchItem) FilterValue() string { return b.branch.Name }

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

type model struct {
	ctx    context.Context
	cfg    *config.Config
	client *forge.Client
	bridge *assist.Bridge

	user   forge.User
	repo   forge.RepoRef
	branch forge.Branch

	tr      *tree.Tree
	overlay *session.Overlay
	sess    *session.Session

	mode     mode
	prevMode mode
	cursor   int
	// treeTop is the first visible tree row (windowed scrolling).
	treeTop int

	// newItemDir is the directory a pending create lands in ("" = root).
	newItemDir string
	// pendingSeq matches the in-flight file load against the session.
	pendingSeq int

	output   string
	proposal *assist.Proposal
	commits  []forge.Commit

	repoList   list.Model
	branchList list.Model
	input      textinput.Model
	textarea   textarea.Model
	viewport   viewport.Model
	spinner    spinner.Model

	isBusy   bool
	busyText string
	status   string

	width  int
	height int
	style  styles
}

type styles struct {
	header   lipgloss.Style
	subtitle lipgloss.Style
	list     lipgloss.Style
	cursor   lipgloss.Style
	dir      lipgloss.Style
	file     lipgloss.Style
	local    lipgloss.Style
	dirty    lipgloss.Style
	accent   lipgloss.Style
	error    lipgloss.Style
	success  lipgloss.Style
	busy     lipgloss.Style
	subtle   lipgloss.Style
	footer   lipgloss.Style
}

func NewModel(ctx context.Context, cfg *config.Config) *model {
	overlay := session.NewOverlay()

	rl := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	rl.Title = "Repositories"
	rl.SetShowHelp(false)
	rl.SetShowStatusBar(false)

	bl := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	bl.Title = "Branches"
	bl.SetShowHelp(false)
	bl.SetShowStatusBar(false)

	ti := textinput.New()
	ti.Placeholder = "GitHub token (repo scope)..."
	ti.EchoMode = textinput.EchoPassword
	ti.Focus()

	ta := textarea.New()
	ta.SetHeight(3)

	vp := viewport.New(0, 0)

	s := spinner.New()
	s.Spinner = spinner.Line

	st := newStyles()
	s.Style = st.busy

	m := &model{
		ctx:        ctx,
		cfg:        cfg,
		overlay:    overlay,
		sess:       session.New(overlay),
		bridge:     assist.NewBridge(assist.NewGemini(cfg.GeminiKey)),
		mode:       modeToken,
		repoList:   rl,
		branchList: bl,
		input:      ti,
		textarea:   ta,
		viewport:   vp,
		spinner:    s,
		style:      st,
	}
	if cfg.ForgeToken != "" {
		m.client = forge.New(cfg.ForgeToken)
		m.mode = modeRepos
	}
	return m
}

func newStyles() styles {
	return styles{
		header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555")).
			Faint(true).
			Padding(0, 1),

		subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999")).
			Padding(0, 1),

		list: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5FAFD7")),

		cursor: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00E6B8")).
			Bold(true),

		dir: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5FAFD7")).
			Bold(true),

		file: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC")),

		local: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D7AF5F")),

		dirty: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5C5C")).
			Bold(true),

		accent: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5FAFD7")),

		error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5C5C")).
			Bold(true),

		success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3DDC97")).
			Bold(true),

		busy: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3DDC97")),

		subtle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999")),

		footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#777777")).
			Faint(true),
	}
}

func (m *model) Init() tea.Cmd {
	if m.mode == modeRepos {
		return tea.Batch(m.loadReposCmd(), m.loadUserCmd(), m.spinner.Tick)
	}
	return textinput.Blink
}

func (m *model) setBusy(text string) {
	m.isBusy = true
	m.busyText = text
	m.status = ""
}

func (m *model) setError(err error) {
	m.isBusy = false
	m.status = m.style.error.Render(fmt.Sprintf("❌ %v", err))
}

func (m *model) setInfo(text string) {
	m.isBusy = false
	m.status = m.style.subtle.Render(text)
}

func (m *model) setSuccess(text string) {
	m.isBusy = false
	m.status = m.style.success.Render(text)
}
