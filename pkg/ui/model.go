package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/fundtrail/internal/datasource"
	"github.com/vanderheijden86/fundtrail/pkg/branch"
	"github.com/vanderheijden86/fundtrail/pkg/debug"
	"github.com/vanderheijden86/fundtrail/pkg/export"
	"github.com/vanderheijden86/fundtrail/pkg/metrics"
	"github.com/vanderheijden86/fundtrail/pkg/model"
	"github.com/vanderheijden86/fundtrail/pkg/trail"
	"github.com/vanderheijden86/fundtrail/pkg/watcher"
)

const (
	loadTimeout = 2 * time.Minute
	// splitMinWidth is the terminal width from which details open beside the
	// tree instead of over it.
	splitMinWidth = 100
)

type viewMode int

const (
	viewTree viewMode = iota
	viewHolds
)

type focus int

const (
	focusMain focus = iota
	focusDetail
	focusSearch
	focusKYC
	focusHelp
)

// FileChangedMsg is sent when watched case files change on disk.
type FileChangedMsg struct {
	Change watcher.Change
}

// graphLoadedMsg carries a fetched tree. seq identifies the request; answers
// to superseded requests are dropped.
type graphLoadedMsg struct {
	seq  int
	tree *trail.Tree
	err  error
}

type holdsLoadedMsg struct {
	seq  int
	rows []model.HoldRow
	err  error
}

type exportDoneMsg struct {
	path string
	err  error
}

// Options configures the root model.
type Options struct {
	Source         datasource.Source
	Ack            string
	Branches       *branch.Cache // nil skips branch lookups
	BurstThreshold int
	ClickDebounce  time.Duration
	Viewer         bool // read-only role
	StartView      string
	ExportDir      string
	ExportFormat   string
	Watcher        *watcher.Watcher
	// HoldsFile is the holds JSON of a file source. A change to it alone
	// reloads only the hold table.
	HoldsFile string
}

// Model is the root bubbletea model: the tree and hold table views, the
// details side panel, the KYC form, search and the status line.
type Model struct {
	opts  Options
	theme Theme

	tree   TreeModel
	holds  HoldsModel
	detail DetailModel
	kyc    *KYCForm
	search textinput.Model
	clicks clickState

	mode       viewMode
	focused    focus
	showDetail bool
	iconCursor int

	width  int
	height int

	loadSeq int
	holdSeq int

	statusMsg   string
	statusIsErr bool
}

// NewModel builds the root model. Loading starts in Init.
func NewModel(opts Options) Model {
	theme := DefaultTheme(lipgloss.DefaultRenderer())
	return newModelWithTheme(opts, theme)
}

func newModelWithTheme(opts Options, theme Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "account number"
	ti.Prompt = "/ "
	ti.CharLimit = 64

	m := Model{
		opts:    opts,
		theme:   theme,
		tree:    NewTreeModel(theme),
		holds:   NewHoldsModel(theme),
		detail:  NewDetailModel(theme),
		search:  ti,
		clicks:  newClickState(opts.ClickDebounce),
		loadSeq: 1,
		holdSeq: 1,
	}
	if strings.EqualFold(opts.StartView, "holds") {
		m.mode = viewHolds
	}
	return m
}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		return FileChangedMsg{Change: <-w.Changes()}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		loadGraphCmd(m.opts, m.loadSeq),
		loadHoldsCmd(m.opts, m.holdSeq),
	}
	if m.opts.Watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.opts.Watcher))
	}
	return tea.Batch(cmds...)
}

func loadGraphCmd(opts Options, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		var topts []trail.Option
		if opts.BurstThreshold != 0 {
			topts = append(topts, trail.WithBurstThreshold(opts.BurstThreshold))
		}
		t, err := datasource.LoadTree(ctx, opts.Source, opts.Ack, topts...)
		if err != nil {
			return graphLoadedMsg{seq: seq, err: err}
		}
		branch.EnrichTree(ctx, opts.Branches, t)
		return graphLoadedMsg{seq: seq, tree: t}
	}
}

func loadHoldsCmd(opts Options, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		rows, err := opts.Source.Holds(ctx, opts.Ack)
		if err != nil {
			return holdsLoadedMsg{seq: seq, err: err}
		}
		return holdsLoadedMsg{seq: seq, rows: branch.EnrichHolds(ctx, opts.Branches, rows)}
	}
}

// reload issues fresh graph and hold requests. Answers to earlier requests
// still in flight are dropped when they arrive.
func (m *Model) reload() tea.Cmd {
	m.loadSeq++
	m.showDetail = false
	m.kyc = nil
	m.focused = focusMain
	m.clicks.cancel()
	m.tree.SetMessage("Loading graph...")
	return tea.Batch(loadGraphCmd(m.opts, m.loadSeq), m.reloadHolds())
}

func (m *Model) reloadHolds() tea.Cmd {
	m.holdSeq++
	m.holds.SetMessage("Loading put-on-hold transactions...")
	return loadHoldsCmd(m.opts, m.holdSeq)
}

// holdsOnly reports whether c touches nothing but the holds file.
func (m Model) holdsOnly(c watcher.Change) bool {
	return m.opts.HoldsFile != "" && len(c.Paths) == 1 && c.Has(m.opts.HoldsFile)
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
	m.statusIsErr = false
}

func (m *Model) setError(msg string) {
	m.statusMsg = msg
	m.statusIsErr = true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The KYC form needs every message, not only keys.
	if m.focused == focusKYC && m.kyc != nil {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
			m.kyc = nil
			m.focused = focusMain
			m.setStatus("KYC edit cancelled")
			return m, nil
		}
		if saved, ok := msg.(kycSavedMsg); ok {
			return m.handleKYCSaved(saved)
		}
		switch msg.(type) {
		case graphLoadedMsg, holdsLoadedMsg, FileChangedMsg, tea.WindowSizeMsg, exportDoneMsg:
		default:
			node := m.kyc.Node()
			src := m.opts.Source
			cmd := m.kyc.Update(msg, func(upd model.KYCUpdate) tea.Cmd {
				return saveKYCCmd(src, node, upd)
			})
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case graphLoadedMsg:
		return m.handleGraphLoaded(msg), nil

	case holdsLoadedMsg:
		if msg.seq != m.holdSeq {
			debug.Log("dropping stale holds response %d (current %d)", msg.seq, m.holdSeq)
			return m, nil
		}
		switch {
		case msg.err != nil:
			debug.Log("holds load failed: %v", msg.err)
			m.holds.SetMessage(datasource.MsgHoldsFailed)
		case len(msg.rows) == 0:
			m.holds.SetMessage(datasource.MsgNoHolds)
		default:
			m.holds.SetRows(msg.rows)
		}
		return m, nil

	case kycSavedMsg:
		// form already closed
		if msg.err == nil {
			applyKYC(msg.node, msg.upd)
		}
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.setError("Export failed: " + msg.err.Error())
		} else {
			m.setStatus("Exported hold path to " + msg.path)
		}
		return m, nil

	case FileChangedMsg:
		var cmd tea.Cmd
		if m.holdsOnly(msg.Change) {
			m.setStatus("Hold rows changed, reloading")
			cmd = m.reloadHolds()
		} else {
			m.setStatus("Case files changed, reloading")
			cmd = m.reload()
		}
		if m.opts.Watcher != nil {
			cmd = tea.Batch(cmd, WatchFileCmd(m.opts.Watcher))
		}
		return m, cmd

	case clickFireMsg:
		if n := m.clicks.fire(msg); n != nil {
			m.toggleNode(n)
		}
		return m, nil

	case revealAccountMsg:
		m.mode = viewTree
		m.revealAccount(msg.account)
		m.layout()
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleGraphLoaded(msg graphLoadedMsg) Model {
	if msg.seq != m.loadSeq {
		debug.Log("dropping stale graph response %d (current %d)", msg.seq, m.loadSeq)
		return m
	}
	if msg.err != nil {
		if !datasource.IsNoData(msg.err) {
			debug.Log("graph load failed: %v", msg.err)
		}
		m.tree.SetMessage(datasource.UserMessage(msg.err))
		return m
	}
	m.tree.SetTree(msg.tree)
	m.setStatus(fmt.Sprintf("Loaded %d accounts", msg.tree.Len()-1))
	return m
}

func (m Model) handleKYCSaved(msg kycSavedMsg) (tea.Model, tea.Cmd) {
	done, cmd := m.kyc.Saved(msg)
	if !done {
		return m, cmd
	}
	m.kyc = nil
	m.focused = focusMain
	m.setStatus("KYC saved for " + msg.node.Data.Name.Trimmed())
	if m.showDetail && m.detail.Node() == msg.node {
		m.showDetails(msg.node)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.focused {
	case focusSearch:
		return m.handleSearchKey(msg)
	case focusHelp:
		m.focused = focusMain
		return m, nil
	case focusDetail:
		switch key {
		case "esc", "tab", "d":
			m.focused = focusMain
			if key != "tab" {
				m.showDetail = false
				m.layout()
			}
			return m, nil
		case "y":
			cmd := m.copyText(m.detail.Markdown(), "details")
			return m, cmd
		}
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	if m.mode == viewHolds {
		if m.holds.MenuOpen() {
			var cmd tea.Cmd
			m.holds, cmd = m.holds.Update(msg)
			return m, cmd
		}
		switch key {
		case "q":
			return m, tea.Quit
		case "tab", "t":
			m.mode = viewTree
			m.layout()
			return m, nil
		case "r":
			cmd := m.reload()
			return m, cmd
		case "?":
			m.focused = focusHelp
			return m, nil
		}
		var cmd tea.Cmd
		m.holds, cmd = m.holds.Update(msg)
		return m, cmd
	}

	return m.handleTreeKey(msg)
}

func (m Model) handleTreeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q":
		return m, tea.Quit
	case "esc":
		if m.showDetail {
			m.showDetail = false
			m.layout()
		}
		m.tree.SetFound(nil)
	case "up", "k":
		m.tree.MoveUp()
	case "down", "j":
		m.tree.MoveDown()
	case "pgdown", "ctrl+f":
		m.tree.PageForwardFull()
	case "pgup", "ctrl+b":
		m.tree.PageBackwardFull()
	case "home", "g":
		m.tree.JumpToTop()
	case "end", "G":
		m.tree.JumpToBottom()
	case "enter", " ":
		m.clicks.cancel()
		m.toggleNode(m.tree.SelectedNode())
	case "right", "l":
		if n := m.tree.SelectedNode(); n != nil && !n.Expanded {
			m.toggleNode(n)
		}
	case "left", "h":
		if n := m.tree.SelectedNode(); n != nil && n.Expanded && n.Depth > 0 {
			m.toggleNode(n)
		} else {
			m.tree.JumpToParent()
		}
	case "e":
		if m.tree.ToggleExpandAll() {
			m.setStatus("Expanded all accounts (burst accounts stay locked)")
		} else {
			m.setStatus("Collapsed all accounts")
		}
	case "d":
		if m.showDetail && m.detail.Title() == "Details" {
			m.showDetail = false
		} else {
			m.showDetails(m.tree.SelectedNode())
		}
		m.layout()
	case "i":
		m.cycleIconPanel()
		m.layout()
	case "S":
		if t := m.tree.Tree(); t != nil {
			m.detail.Show("Summary", export.SummaryMarkdown(trail.Summarize(t), m.opts.Ack), nil)
			m.showDetail = true
			m.layout()
		}
	case "tab":
		if m.showDetail {
			m.focused = focusDetail
		} else {
			m.mode = viewHolds
		}
	case "H":
		m.mode = viewHolds
	case "/":
		m.focused = focusSearch
		m.search.SetValue("")
		cmd := m.search.Focus()
		return m, cmd
	case "K":
		return m.openKYC()
	case "x":
		return m, m.exportSelected()
	case "y":
		if n := m.tree.SelectedNode(); n != nil && n.Depth > 0 {
			cmd := m.copyText(n.Data.Name.Trimmed(), "account number")
			return m, cmd
		}
	case "r":
		cmd := m.reload()
		return m, cmd
	case "?":
		m.focused = focusHelp
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.Blur()
		m.focused = focusMain
		return m, nil
	case "enter":
		query := strings.TrimSpace(m.search.Value())
		m.search.Blur()
		m.focused = focusMain
		if query != "" {
			m.revealAccount(query)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// revealAccount expands the path to account and reports the outcome.
func (m *Model) revealAccount(account string) {
	if m.tree.Tree() == nil {
		m.setError("No graph loaded")
		return
	}
	n, ok := m.tree.Reveal(account)
	switch {
	case n == nil:
		m.setError("No path match for " + account)
	case !ok:
		m.setError(fmt.Sprintf("%s is behind burst account %s", account, n.Data.Name.Trimmed()))
	default:
		m.setStatus(fmt.Sprintf("Found %s at layer %d", n.Data.Name.Trimmed(), n.DisplayLayer()))
	}
}

// toggleNode expands or collapses n, explaining why when it cannot.
func (m *Model) toggleNode(n *trail.Node) {
	if n == nil {
		return
	}
	if m.tree.Toggle(n) {
		return
	}
	if n.Burst {
		m.setStatus(fmt.Sprintf("Burst account: %d linked accounts hidden", n.BurstCount))
	}
}

func (m *Model) showDetails(n *trail.Node) {
	if n == nil {
		return
	}
	if n.Depth == 0 {
		if t := m.tree.Tree(); t != nil {
			m.detail.Show("Summary", export.SummaryMarkdown(trail.Summarize(t), m.opts.Ack), nil)
			m.showDetail = true
		}
		return
	}
	md := export.DetailsMarkdown(n, export.DetailsOptions{Ack: m.opts.Ack})
	m.detail.Show("Details", md, n)
	m.showDetail = true
	m.iconCursor = 0
}

func (m *Model) showIcon(n *trail.Node, icon trail.Icon) {
	m.detail.Show(icon.Title(), export.IconMarkdown(m.tree.Tree(), n, icon), n)
	m.showDetail = true
}

// cycleIconPanel steps through the selected node's icon panels.
func (m *Model) cycleIconPanel() {
	n := m.tree.SelectedNode()
	if n == nil {
		return
	}
	icons := n.Icons()
	if len(icons) == 0 {
		m.setStatus("No markers on this account")
		return
	}
	if m.detail.Node() != n {
		m.iconCursor = 0
	}
	m.showIcon(n, icons[m.iconCursor%len(icons)])
	m.iconCursor++
}

func (m Model) openKYC() (tea.Model, tea.Cmd) {
	n := m.tree.SelectedNode()
	switch {
	case n == nil || n.Depth < 2:
		m.setError("Select an account below a victim to edit KYC")
		return m, nil
	case m.opts.Viewer:
		m.setError("Viewer role cannot edit KYC")
		return m, nil
	case strings.TrimSpace(n.Data.TxnID) == "":
		m.setError(datasource.MsgTxnNotFound)
		return m, nil
	}
	m.kyc = NewKYCForm(m.theme, n)
	m.kyc.SetWidth(m.width)
	m.focused = focusKYC
	return m, m.kyc.Init()
}

func (m Model) exportSelected() tea.Cmd {
	t := m.tree.Tree()
	n := m.tree.SelectedNode()
	if t == nil || n == nil || n.Depth == 0 {
		return nil
	}
	path := t.PathTo(n)
	format := m.opts.ExportFormat
	if format == "" {
		format = "svg"
	}
	dir := m.opts.ExportDir
	if dir == "" {
		dir = "."
	}
	name := fmt.Sprintf("hold_path_%s_%s.%s", safeName(m.opts.Ack), safeName(n.Data.Name.Trimmed()), format)
	out := filepath.Join(dir, name)
	ack := m.opts.Ack
	return func() tea.Msg {
		err := export.SaveHoldPath(export.HoldPathOptions{Path: out, Format: format, Ack: ack, Nodes: path})
		return exportDoneMsg{path: out, err: err}
	}
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "case"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}

func (m *Model) copyText(text, what string) tea.Cmd {
	if err := clipboard.WriteAll(text); err != nil {
		m.setError("Clipboard unavailable: " + err.Error())
		return nil
	}
	m.setStatus("Copied " + what)
	return nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.focused != focusMain {
		return m, nil
	}
	treeWidth, _ := m.splitWidths()

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if m.mode == viewTree && msg.X < treeWidth {
			m.tree.MoveUp()
		} else if m.showDetail {
			m.detail.viewport.ScrollUp(3)
		}
		return m, nil
	case tea.MouseButtonWheelDown:
		if m.mode == viewTree && msg.X < treeWidth {
			m.tree.MoveDown()
		} else if m.showDetail {
			m.detail.viewport.ScrollDown(3)
		}
		return m, nil
	}

	if m.mode != viewTree || msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if msg.X >= treeWidth {
		return m, nil
	}
	// the title bar takes the first line
	i := m.tree.RowAt(msg.Y - 1)
	n := m.tree.NodeAt(i)
	if n == nil {
		return m, nil
	}
	m.tree.SetCursor(i)

	if icon, ok := m.tree.IconAt(i, msg.X); ok {
		m.clicks.cancel()
		m.showIcon(n, icon)
		m.layout()
		return m, nil
	}

	res := m.clicks.press(n)
	if res.Flush != nil {
		m.toggleNode(res.Flush)
		m.tree.Select(n)
	}
	if res.Double != nil {
		m.showDetails(res.Double)
		m.layout()
	}
	return m, res.Cmd
}

// splitWidths returns the main and detail panel widths.
func (m Model) splitWidths() (main, side int) {
	w := m.width
	if w <= 0 {
		w = 80
	}
	if !m.showDetail || m.mode != viewTree {
		return w, 0
	}
	if w < splitMinWidth {
		return 0, w
	}
	main = w * 55 / 100
	return main, w - main
}

func (m *Model) bodyHeight() int {
	return max(m.height-2, 3)
}

func (m *Model) layout() {
	main, side := m.splitWidths()
	h := m.bodyHeight()
	if main > 0 {
		m.tree.SetSize(main, h)
	}
	m.holds.SetSize(m.width, h)
	if side > 0 {
		m.detail.SetSize(side, h)
	}
	if m.kyc != nil {
		m.kyc.SetWidth(m.width)
	}
}

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	title := m.renderTitle()
	status := m.renderStatus()

	var body string
	switch {
	case m.focused == focusHelp:
		body = m.renderHelp()
	case m.focused == focusKYC && m.kyc != nil:
		body = lipgloss.Place(max(m.width, 40), m.bodyHeight(), lipgloss.Center, lipgloss.Center, m.kyc.View())
	case m.mode == viewHolds:
		body = m.holds.View()
	default:
		main, side := m.splitWidths()
		switch {
		case side == 0:
			body = m.tree.View()
		case main == 0:
			body = m.detail.View()
		default:
			left := lipgloss.NewStyle().Width(main).MaxWidth(main).Render(m.tree.View())
			body = lipgloss.JoinHorizontal(lipgloss.Top, left, m.detail.View())
		}
	}
	body = lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body)
	return title + "\n" + body + "\n" + status
}

func (m Model) renderTitle() string {
	view := "Tree"
	if m.mode == viewHolds {
		view = "Put-On-Hold"
	}
	text := fmt.Sprintf("Fund Trail · Ack %s · %s", model.OrNA(m.opts.Ack), view)
	if m.opts.Viewer {
		text += " · viewer"
	}
	w := max(m.width, 20)
	return m.theme.Header.Width(w).MaxWidth(w).Render(text)
}

func (m Model) renderStatus() string {
	if m.focused == focusSearch {
		return m.search.View()
	}
	th := m.theme
	if m.statusMsg != "" {
		if m.statusIsErr {
			return th.ErrorText.Render(m.statusMsg)
		}
		return th.SuccessText.Render(m.statusMsg)
	}
	if m.mode == viewHolds {
		return th.keyHint("←/→", "column") + "  " + th.keyHint("s", "sort") + "  " +
			th.keyHint("f", "filter") + "  " + th.keyHint("enter", "show in tree") + "  " +
			th.keyHint("tab", "tree") + "  " + th.keyHint("?", "help")
	}
	return th.keyHint("enter", "toggle") + "  " + th.keyHint("d", "details") + "  " +
		th.keyHint("/", "find") + "  " + th.keyHint("e", "expand all") + "  " +
		th.keyHint("tab", "holds") + "  " + th.keyHint("?", "help")
}

var helpSections = []struct {
	title string
	keys  [][2]string
}{
	{"Tree", [][2]string{
		{"j/k ↑/↓", "move"},
		{"enter/space", "expand or collapse"},
		{"l/h →/←", "expand / collapse or go to parent"},
		{"e", "expand or collapse all"},
		{"/", "find account and reveal its path"},
		{"d", "details panel (double-click)"},
		{"i", "cycle marker panels (click an icon)"},
		{"S", "trail summary"},
		{"K", "edit KYC"},
		{"x", "export hold path from victim"},
		{"y", "copy account number"},
	}},
	{"Put-on-hold table", [][2]string{
		{"←/→", "select column"},
		{"s", "sort: asc, desc, off"},
		{"f", "filter menu"},
		{"x", "remove column filter"},
		{"enter", "show account in tree"},
	}},
	{"General", [][2]string{
		{"tab", "switch view / focus details"},
		{"r", "reload"},
		{"esc", "close panel"},
		{"q", "quit"},
	}},
}

func (m Model) renderHelp() string {
	th := m.theme
	var sb strings.Builder
	for i, sec := range helpSections {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(th.Renderer.NewStyle().Bold(true).Foreground(th.Primary).Render(sec.title))
		sb.WriteString("\n")
		for _, k := range sec.keys {
			sb.WriteString("  " + th.keyHint(padRight(k[0], 12), k[1]) + "\n")
		}
	}
	sb.WriteString("\n" + th.MutedText.Render("Press any key to close"))
	return th.panel(sb.String(), min(max(m.width, 40), 70), 0, true)
}
