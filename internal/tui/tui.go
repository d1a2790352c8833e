package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/chojs23/enkai/internal/app"
	"github.com/chojs23/enkai/internal/config"
	"github.com/chojs23/enkai/internal/gitutil"
)

// DiffSource loads the diff shown beside the change list. *gitutil.Repo
// implements it.
type DiffSource interface {
	Diff(ctx context.Context, st gitutil.FileStatus) (*gitutil.FileDiff, error)
}

type Options struct {
	Theme config.ThemeConfig
	Diffs DiffSource

	// Changes, when set, triggers a status refresh on every receive.
	Changes <-chan struct{}

	ProgramOptions []tea.ProgramOption
}

type model struct {
	ctx     context.Context
	env     app.Env
	state   app.State
	diffs   DiffSource
	changes <-chan struct{}

	files            list.Model
	viewportCurrent  viewport.Model
	viewportResult   viewport.Model
	viewportIncoming viewport.Model
	viewportDiff     viewport.Model
	help             help.Model

	form    *huh.Form
	pending *pendingForm

	diff     *gitutil.FileDiff
	diffPath string

	pendingScroll bool
	ready         bool
	width         int
	height        int
	toastMessage  string
	toastError    bool
	toastSeq      int
}

// pendingForm holds the values a huh form writes into. It lives on the heap
// so the bound pointers survive model copies.
type pendingForm struct {
	kind    app.CommandKind
	confirm bool
	message string
}

type toastExpiredMsg struct {
	id int
}

type repoChangedMsg struct{}

// Run drives the interactive session until the user quits and returns the
// final state. bubbletea restores the terminal itself for panics inside its
// event loop; releaseOnPanic covers the rest of Run.
func Run(ctx context.Context, s app.State, env app.Env, opts Options) (app.State, error) {
	theme, err := loadTheme(opts.Theme)
	if err != nil {
		return s, err
	}
	applyTheme(theme)

	m := newModel(ctx, s, env, opts)
	programOpts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts.ProgramOptions...)
	p := tea.NewProgram(m, programOpts...)

	defer releaseOnPanic(p)

	finalModel, err := p.Run()
	if err != nil {
		return s, fmt.Errorf("TUI error: %w", err)
	}
	if fm, ok := finalModel.(model); ok {
		return fm.state, nil
	}
	return s, nil
}

type terminalReleaser interface {
	ReleaseTerminal() error
}

// releaseOnPanic must be deferred directly. It gives the terminal back and
// re-raises the panic.
func releaseOnPanic(t terminalReleaser) {
	r := recover()
	if r == nil {
		return
	}
	if err := t.ReleaseTerminal(); err != nil {
		slog.Error("release terminal", "error", err)
	}
	panic(r)
}

func newModel(ctx context.Context, s app.State, env app.Env, opts Options) model {
	m := model{
		ctx:           ctx,
		env:           env,
		state:         s,
		diffs:         opts.Diffs,
		changes:       opts.Changes,
		files:         newFileList(s.Files),
		help:          help.New(),
		pendingScroll: true,
	}
	syncFileList(&m.files, s.Files, s.Selected)

	if s.Mode.Kind == app.ModeStatus {
		next, err := app.Dispatch(ctx, s, app.Do(app.CmdRefresh), env)
		if err != nil {
			m.toastMessage = err.Error()
			m.toastError = true
			m.toastSeq = 1
		} else {
			m.state = next
		}
	}
	return m
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForChange(m.changes)}
	if m.toastMessage != "" {
		cmds = append(cmds, toastExpiry(m.toastSeq, 4))
	}
	return tea.Batch(cmds...)
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return repoChangedMsg{}
	}
}

func toastExpiry(seq int, duration time.Duration) tea.Cmd {
	return tea.Tick(duration*time.Second, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: seq}
	})
}

func (m *model) showToast(message string, duration time.Duration) tea.Cmd {
	m.toastMessage = message
	m.toastError = false
	m.toastSeq++
	return toastExpiry(m.toastSeq, duration)
}

func (m *model) showError(err error) tea.Cmd {
	cmd := m.showToast(err.Error(), 4)
	m.toastError = true
	return cmd
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case toastExpiredMsg:
		if msg.id == m.toastSeq {
			m.toastMessage = ""
			m.toastError = false
		}
		return m, nil

	case repoChangedMsg:
		cmd := waitForChange(m.changes)
		if m.state.Mode.Kind != app.ModeStatus || m.form != nil {
			return m, cmd
		}
		slog.Debug("repository changed, refreshing")
		next, dispatchCmd := m.dispatch(app.Do(app.CmdRefresh))
		next.loadDiff(true)
		return next, tea.Batch(cmd, dispatchCmd)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if m.form != nil {
			m.form = m.form.WithWidth(m.formWidth())
		}
		return m, nil
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	cmd, ok := commandForKey(m.state.Mode, m.state.Operation.IsRebase(), keyMsg)
	if !ok {
		return m.scroll(keyMsg)
	}
	if formInit, ok := m.formFor(cmd); ok {
		return m, formInit
	}
	return m.dispatch(cmd)
}

// dispatch runs one command through the state machine and refreshes
// everything derived from the state.
func (m model) dispatch(cmd app.Command) (model, tea.Cmd) {
	prev := m.state.Mode
	next, err := app.Dispatch(m.ctx, m.state, cmd, m.env)
	if err != nil {
		return m, m.showError(err)
	}
	m.state = next
	if next.Quit {
		return m, tea.Quit
	}

	if prev != next.Mode {
		m.pendingScroll = true
	}
	syncFileList(&m.files, m.state.Files, m.state.Selected)
	m.updateViewports()
	m.loadDiff(false)

	if next.Notice != "" {
		return m, m.showToast(next.Notice, 2)
	}
	return m, nil
}

// formFor opens a confirmation or input form when cmd needs one and returns
// its init command. The second result is false when cmd can be dispatched
// directly.
func (m *model) formFor(cmd app.Command) (tea.Cmd, bool) {
	s := m.state
	switch s.Mode.Kind {
	case app.ModeRebaseActions:
		if cmd.Kind == app.CmdAbort || (cmd.Kind == app.CmdOpen && s.SelectedAction() == app.ActionAbort) {
			return m.openConfirm(app.CmdAbort, fmt.Sprintf("Abort the %s?", s.Operation), "Saved resolutions will be discarded."), true
		}
	case app.ModeStatus:
		switch {
		case cmd.Kind == app.CmdCommit,
			cmd.Kind == app.CmdOpen && s.Mode.Status == app.StatusMenu && s.SelectedMenuItem() == app.MenuCommit:
			return m.openCommit(), true
		case cmd.Kind == app.CmdRestoreAll:
			return m.openConfirm(app.CmdRestoreAll, "Restore all files?", "Unstaged changes in every tracked file will be lost."), true
		case cmd.Kind == app.CmdRestore && s.Mode.Status == app.StatusChanges:
			change, ok := s.SelectedChange()
			if !ok {
				return nil, false
			}
			return m.openConfirm(app.CmdRestore, fmt.Sprintf("Restore %s?", change.Path), "Unstaged changes to this file will be lost."), true
		}
	}
	return nil, false
}

func (m *model) openConfirm(kind app.CommandKind, title, description string) tea.Cmd {
	m.pending = &pendingForm{kind: kind}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&m.pending.confirm),
		),
	).WithShowHelp(false).WithWidth(m.formWidth())
	return m.form.Init()
}

func (m *model) openCommit() tea.Cmd {
	m.pending = &pendingForm{kind: app.CmdCommit}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Commit message").
				Placeholder("Describe the change...").
				CharLimit(2000).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return gitutil.ErrEmptyCommitMessage
					}
					return nil
				}).
				Value(&m.pending.message),
		),
	).WithWidth(m.formWidth())
	return m.form.Init()
}

func (m model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		m.form, m.pending = nil, nil
		return m, m.showToast("Cancelled", 2)
	}

	updated, cmd := m.form.Update(msg)
	if f, ok := updated.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		pending := m.pending
		m.form, m.pending = nil, nil
		if pending.kind == app.CmdCommit {
			return m.dispatch(app.Commit(strings.TrimSpace(pending.message)))
		}
		if !pending.confirm {
			return m, m.showToast("Cancelled", 2)
		}
		return m.dispatch(app.Do(pending.kind))
	case huh.StateAborted:
		m.form, m.pending = nil, nil
		return m, m.showToast("Cancelled", 2)
	}
	return m, cmd
}

// scroll hands keys no command claimed to the visible viewports.
func (m model) scroll(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch m.state.Mode.Kind {
	case app.ModeConflictResolve:
		switch {
		case key.Matches(msg, keys.ScrollLeft):
			m.scrollHorizontal(-4)
			return m, nil
		case key.Matches(msg, keys.ScrollRight):
			m.scrollHorizontal(4)
			return m, nil
		}
		m.viewportCurrent, cmd = m.viewportCurrent.Update(msg)
		cmds = append(cmds, cmd)
		m.viewportResult, cmd = m.viewportResult.Update(msg)
		cmds = append(cmds, cmd)
		m.viewportIncoming, cmd = m.viewportIncoming.Update(msg)
		cmds = append(cmds, cmd)
	case app.ModeStatus:
		switch {
		case key.Matches(msg, keys.DiffDown):
			m.viewportDiff.HalfViewDown()
		case key.Matches(msg, keys.DiffUp):
			m.viewportDiff.HalfViewUp()
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *model) scrollHorizontal(delta int) {
	apply := func(viewportModel *viewport.Model) {
		if delta < 0 {
			viewportModel.ScrollLeft(-delta)
			return
		}
		viewportModel.ScrollRight(delta)
	}
	apply(&m.viewportCurrent)
	apply(&m.viewportResult)
	apply(&m.viewportIncoming)
}

const (
	headerHeight = 1
	footerHeight = 2
)

func (m *model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	contentHeight := max(height-headerHeight-footerHeight-3, 3) // borders + title
	paneWidth := max((width-12)/3, 10)                          // 3 panes with borders

	if !m.ready {
		m.viewportCurrent = viewport.New(paneWidth, contentHeight)
		m.viewportResult = viewport.New(paneWidth, contentHeight)
		m.viewportIncoming = viewport.New(paneWidth, contentHeight)
		m.viewportDiff = viewport.New(m.diffWidth(), contentHeight)
		m.ready = true
	} else {
		for _, v := range []*viewport.Model{&m.viewportCurrent, &m.viewportResult, &m.viewportIncoming} {
			v.Width = paneWidth
			v.Height = contentHeight
		}
		m.viewportDiff.Width = m.diffWidth()
		m.viewportDiff.Height = contentHeight
	}
	m.files.SetSize(width, max(height-headerHeight-footerHeight-1, 3))

	m.pendingScroll = true
	m.updateViewports()
	m.loadDiff(true)
}

func (m model) listWidth() int {
	return max(m.width/3, 24)
}

func (m model) diffWidth() int {
	return max(m.width-m.listWidth()-8, 10)
}

func (m model) formWidth() int {
	return max(min(m.width-8, 72), 30)
}

func (m *model) updateViewports() {
	f := m.state.ActiveFile()
	if f == nil || !m.ready {
		return
	}
	hunk := m.state.Mode.HunkIndex
	styles := lineStyles()

	currentLines, currentStart := buildSideLines(f, paneCurrent, hunk)
	m.viewportCurrent.SetContent(renderLines(currentLines, styles))

	incomingLines, incomingStart := buildSideLines(f, paneIncoming, hunk)
	m.viewportIncoming.SetContent(renderLines(incomingLines, styles))

	resultLines, resultStart := buildResultLines(f, hunk)
	m.viewportResult.SetContent(renderLines(resultLines, styles))

	if m.pendingScroll {
		ensureVisible(&m.viewportCurrent, currentStart, len(currentLines))
		ensureVisible(&m.viewportIncoming, incomingStart, len(incomingLines))
		ensureVisible(&m.viewportResult, resultStart, len(resultLines))
		m.pendingScroll = false
	}
}

// loadDiff fetches the diff of the highlighted change when it differs from
// the one on screen, or always when force is set.
func (m *model) loadDiff(force bool) {
	if m.state.Mode.Kind != app.ModeStatus || m.state.Mode.Status != app.StatusChanges || m.diffs == nil {
		return
	}
	change, ok := m.state.SelectedChange()
	if !ok {
		m.diff, m.diffPath = nil, ""
		m.viewportDiff.SetContent(renderDiff(nil))
		return
	}
	id := change.Code() + " " + change.Path
	if !force && id == m.diffPath {
		return
	}

	d, err := m.diffs.Diff(m.ctx, change)
	if err != nil {
		slog.Warn("load diff", "path", change.Path, "error", err)
		m.diff, m.diffPath = nil, id
		m.viewportDiff.SetContent(unresolvedStyle.Render(err.Error()))
		return
	}
	m.diff, m.diffPath = d, id
	m.viewportDiff.SetContent(renderDiff(d))
	m.viewportDiff.GotoTop()
}

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	var body string
	switch m.state.Mode.Kind {
	case app.ModeFileList:
		body = m.viewFileList()
	case app.ModeConflictResolve:
		body = m.viewResolve()
	case app.ModeRebaseActions:
		body = m.viewActions()
	case app.ModeStatus:
		body = m.viewStatus()
	case app.ModeDone:
		body = m.viewDone()
	default:
		panic(fmt.Sprintf("tui: unknown mode %d", m.state.Mode.Kind))
	}

	if m.form != nil {
		body = selectedPaneStyle.Render(m.form.View())
	}

	footer := lipgloss.JoinVertical(lipgloss.Left,
		footerStyle.Width(m.width).Render(m.help.View(helpFor(m.state.Mode, m.state.Operation.IsRebase()))),
		m.renderToastLine(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, footer)
}

func (m model) renderHeader() string {
	parts := []string{"enkai"}
	if m.state.Operation != gitutil.OpNone {
		parts = append(parts, m.state.Operation.String()+" in progress")
	}
	switch m.state.Mode.Kind {
	case app.ModeFileList:
		parts = append(parts, fmt.Sprintf("%d conflicted file(s)", len(m.state.Files)))
	case app.ModeConflictResolve:
		if f := m.state.ActiveFile(); f != nil {
			parts = append(parts, f.Path(), fmt.Sprintf("Conflict %d/%d", m.state.Mode.HunkIndex+1, f.HunkCount()))
		}
	case app.ModeStatus:
		parts = append(parts, "no conflicts")
	}
	return headerStyle.Width(m.width).Render(strings.Join(parts, " - "))
}

func (m model) renderToastLine() string {
	content := ""
	if m.toastMessage != "" {
		style := toastStyle
		if m.toastError {
			style = errorToastStyle
		}
		content = style.Render(m.toastMessage)
	}
	return toastLineStyle.Width(m.width).Render(content)
}

func (m model) viewFileList() string {
	return m.files.View()
}

func (m model) viewResolve() string {
	f := m.state.ActiveFile()
	if f == nil {
		return "\n  No file selected.\n"
	}
	if f.HunkCount() == 0 {
		return paneStyle.Width(m.width-4).Render(
			titleStyle.Render(f.Path()) + "\n\n" +
				"No conflict markers remain in this file. Press s to save and mark it resolved.",
		)
	}

	i := m.state.Mode.HunkIndex
	h := f.Hunk(i)
	r := f.Resolution(i)

	currentTitle := "CURRENT"
	if label := formatLabel(h.CurrentLabel); label != "" {
		currentTitle = fmt.Sprintf("CURRENT (%s)", label)
	}
	incomingTitle := "INCOMING"
	if label := formatLabel(h.IncomingLabel); label != "" {
		incomingTitle = fmt.Sprintf("INCOMING (%s)", label)
	}

	currentStyle, incomingStyle := paneStyle, paneStyle
	if resolutionIncludes(r, paneCurrent) {
		currentStyle = selectedPaneStyle
	}
	if resolutionIncludes(r, paneIncoming) {
		incomingStyle = selectedPaneStyle
	}

	statusText := "Unresolved"
	statusStyle := unresolvedStyle
	if r.Valid() {
		statusText = "Resolved: " + r.String()
		statusStyle = resolvedStyle
	}
	resultStyle := unresolvedPaneStyle
	if f.IsFullyResolved() {
		resultStyle = resolvedPaneStyle
	}
	resultTitle := titleStyle.Render(fmt.Sprintf("RESULT %d/%d", f.ResolvedCount(), f.HunkCount())) + " " + statusStyle.Render("("+statusText+")")
	if len(h.Base) > 0 {
		resultTitle += dimStyle.Render(fmt.Sprintf(" base: %d line(s)", len(h.Base)))
	}

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		currentStyle.Render(titleStyle.Render(currentTitle)+"\n"+m.viewportCurrent.View()),
		resultStyle.Render(resultTitle+"\n"+m.viewportResult.View()),
		incomingStyle.Render(titleStyle.Render(incomingTitle)+"\n"+m.viewportIncoming.View()),
	)
	return panes
}

func (m model) viewActions() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("All conflicts resolved"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "  The %s is waiting. Saved %d file(s).\n\n", m.state.Operation, len(m.state.Saved))

	for i, action := range m.state.Actions() {
		cursor := "  "
		label := action.String()
		if i == m.state.ActionIndex {
			cursor = cursorStyle.Render("> ")
			label = cursorStyle.Render(label)
		}
		b.WriteString("  " + cursor + label + "\n")
	}
	if m.env.AutoStage && len(m.state.Saved) > 0 {
		b.WriteString("\n" + dimStyle.Render("  Saved files are staged before continuing."))
	}
	return paneStyle.Width(max(m.width-4, 20)).Render(b.String())
}

func (m model) viewStatus() string {
	height := max(m.height-headerHeight-footerHeight-2, 3)
	left := paneStyle.Width(m.listWidth()).Height(height)
	right := paneStyle.Width(m.diffWidth()).Height(height)

	if m.state.Mode.Status == app.StatusMenu {
		var b strings.Builder
		b.WriteString(titleStyle.Render("No conflicts") + "\n\n")
		for i, item := range app.MenuItems() {
			cursor := "  "
			label := item.String()
			if i == m.state.MenuIndex {
				cursor = cursorStyle.Render("> ")
				label = cursorStyle.Render(label)
			}
			b.WriteString(cursor + label + "\n")
		}
		return lipgloss.JoinHorizontal(lipgloss.Top,
			selectedPaneStyle.Width(m.listWidth()).Height(height).Render(b.String()),
			right.Render(m.statusSummary()),
		)
	}

	diffTitle := "DIFF"
	if m.diff != nil {
		diffTitle = fmt.Sprintf("DIFF %s %s %s", m.diff.Path,
			diffAddedStyle.Render(fmt.Sprintf("+%d", m.diff.Added)),
			diffDeletedStyle.Render(fmt.Sprintf("-%d", m.diff.Deleted)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		left.Render(m.renderChanges()),
		right.Render(titleStyle.Render(diffTitle)+"\n"+m.viewportDiff.View()),
	)
}

func (m model) renderChanges() string {
	if len(m.state.Changes) == 0 {
		return titleStyle.Render("Changes") + "\n\n" + dimStyle.Render("  working tree clean")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Changes") + "\n")
	section := gitutil.Section(-1)
	for i, change := range m.state.Changes {
		if s := change.Section(); s != section {
			section = s
			b.WriteString("\n" + sectionStyle.Render(s.String()) + "\n")
		}
		cursor := "  "
		path := change.Path
		if change.OrigPath != "" {
			path = change.OrigPath + " -> " + change.Path
		}
		if i == m.state.ChangeIndex {
			cursor = cursorStyle.Render("> ")
			path = cursorStyle.Render(path)
		}
		b.WriteString(cursor + dimStyle.Render(change.Code()) + " " + path + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m model) statusSummary() string {
	counts := map[gitutil.Section]int{}
	for _, change := range m.state.Changes {
		counts[change.Section()]++
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Working tree") + "\n\n")
	if len(m.state.Changes) == 0 {
		b.WriteString("  Nothing to commit, working tree clean.\n")
	}
	for _, s := range []gitutil.Section{gitutil.SectionStaged, gitutil.SectionBoth, gitutil.SectionUnstaged} {
		if counts[s] == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s %d file(s)\n", sectionStyle.Render(fmt.Sprintf("%-8s", s)), counts[s])
	}
	if len(m.state.Saved) > 0 {
		b.WriteString("\n  Resolved this session:\n")
		for _, path := range m.state.Saved {
			b.WriteString("    " + resolvedStyle.Render(path) + "\n")
		}
	}
	return b.String()
}

func (m model) viewDone() string {
	var b strings.Builder
	b.WriteString(resolvedStyle.Render("All conflicts resolved.") + "\n\n")
	for _, path := range m.state.Saved {
		b.WriteString("  " + resolvedStyle.Render("v") + " " + path + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("Press q or enter to exit."))
	return paneStyle.Width(max(m.width-4, 20)).Render(b.String())
}
