package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chojs23/enkai/internal/app"
	"github.com/chojs23/enkai/internal/markers"
)

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Open      key.Binding
	Back      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding

	NextHunk    key.Binding
	PrevHunk    key.Binding
	Current     key.Binding
	Incoming    key.Binding
	Both        key.Binding
	AllCurrent  key.Binding
	AllIncoming key.Binding
	AllBoth     key.Binding
	Clear       key.Binding
	Save        key.Binding
	ScrollLeft  key.Binding
	ScrollRight key.Binding

	Continue key.Binding
	Abort    key.Binding
	Skip     key.Binding

	Stage      key.Binding
	Unstage    key.Binding
	Restore    key.Binding
	StageAll   key.Binding
	UnstageAll key.Binding
	RestoreAll key.Binding
	Commit     key.Binding
	Refresh    key.Binding
	DiffDown   key.Binding
	DiffUp     key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Back:      key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "back")),
	Quit:      key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),

	NextHunk:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n/p", "next/prev hunk")),
	PrevHunk:    key.NewBinding(key.WithKeys("p")),
	Current:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "current")),
	Incoming:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "incoming")),
	Both:        key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "both")),
	AllCurrent:  key.NewBinding(key.WithKeys("C"), key.WithHelp("C/I/B", "all hunks")),
	AllIncoming: key.NewBinding(key.WithKeys("I")),
	AllBoth:     key.NewBinding(key.WithKeys("B")),
	Clear:       key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "clear")),
	Save:        key.NewBinding(key.WithKeys("s", "w"), key.WithHelp("s", "save")),
	ScrollLeft:  key.NewBinding(key.WithKeys("H"), key.WithHelp("H/L", "scroll")),
	ScrollRight: key.NewBinding(key.WithKeys("L")),

	Continue: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "continue")),
	Abort:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "abort")),
	Skip:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skip")),

	Stage:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "stage")),
	Unstage:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "unstage")),
	Restore:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restore")),
	StageAll:   key.NewBinding(key.WithKeys("A"), key.WithHelp("A/S/R", "all files")),
	UnstageAll: key.NewBinding(key.WithKeys("S")),
	RestoreAll: key.NewBinding(key.WithKeys("R")),
	Commit:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "commit")),
	Refresh:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
	DiffDown:   key.NewBinding(key.WithKeys("ctrl+d", "pgdown"), key.WithHelp("ctrl+d/u", "scroll diff")),
	DiffUp:     key.NewBinding(key.WithKeys("ctrl+u", "pgup")),
}

// commandForKey maps a key press to the command it means in mode. The second
// result is false for keys the mode does not use.
func commandForKey(mode app.ViewMode, rebase bool, msg tea.KeyMsg) (app.Command, bool) {
	if key.Matches(msg, keys.ForceQuit) {
		return app.Do(app.CmdQuit), true
	}

	switch mode.Kind {
	case app.ModeFileList:
		switch {
		case key.Matches(msg, keys.Up):
			return app.Do(app.CmdCursorUp), true
		case key.Matches(msg, keys.Down):
			return app.Do(app.CmdCursorDown), true
		case key.Matches(msg, keys.Open):
			return app.Do(app.CmdOpen), true
		case key.Matches(msg, keys.Quit):
			return app.Do(app.CmdQuit), true
		}

	case app.ModeConflictResolve:
		switch {
		case key.Matches(msg, keys.NextHunk):
			return app.Do(app.CmdNextHunk), true
		case key.Matches(msg, keys.PrevHunk):
			return app.Do(app.CmdPrevHunk), true
		case key.Matches(msg, keys.Current):
			return app.Resolve(markers.ResolutionCurrent), true
		case key.Matches(msg, keys.Incoming):
			return app.Resolve(markers.ResolutionIncoming), true
		case key.Matches(msg, keys.Both):
			return app.Resolve(markers.ResolutionBoth), true
		case key.Matches(msg, keys.AllCurrent):
			return app.ResolveAll(markers.ResolutionCurrent), true
		case key.Matches(msg, keys.AllIncoming):
			return app.ResolveAll(markers.ResolutionIncoming), true
		case key.Matches(msg, keys.AllBoth):
			return app.ResolveAll(markers.ResolutionBoth), true
		case key.Matches(msg, keys.Clear):
			return app.Do(app.CmdClear), true
		case key.Matches(msg, keys.Save):
			return app.Do(app.CmdSave), true
		case key.Matches(msg, keys.Back):
			return app.Do(app.CmdBack), true
		}

	case app.ModeRebaseActions:
		switch {
		case key.Matches(msg, keys.Up):
			return app.Do(app.CmdCursorUp), true
		case key.Matches(msg, keys.Down):
			return app.Do(app.CmdCursorDown), true
		case key.Matches(msg, keys.Open):
			return app.Do(app.CmdOpen), true
		case key.Matches(msg, keys.Continue):
			return app.Do(app.CmdContinue), true
		case key.Matches(msg, keys.Abort):
			return app.Do(app.CmdAbort), true
		case key.Matches(msg, keys.Skip) && rebase:
			return app.Do(app.CmdSkip), true
		case key.Matches(msg, keys.Quit):
			return app.Do(app.CmdQuit), true
		}

	case app.ModeStatus:
		switch {
		case key.Matches(msg, keys.Up):
			return app.Do(app.CmdCursorUp), true
		case key.Matches(msg, keys.Down):
			return app.Do(app.CmdCursorDown), true
		case key.Matches(msg, keys.Refresh):
			return app.Do(app.CmdRefresh), true
		case key.Matches(msg, keys.Commit):
			// Message is filled in by the commit form.
			return app.Do(app.CmdCommit), true
		case key.Matches(msg, keys.StageAll):
			return app.Do(app.CmdStageAll), true
		case key.Matches(msg, keys.UnstageAll):
			return app.Do(app.CmdUnstageAll), true
		case key.Matches(msg, keys.RestoreAll):
			return app.Do(app.CmdRestoreAll), true
		}
		if mode.Status == app.StatusMenu {
			switch {
			case key.Matches(msg, keys.Open):
				return app.Do(app.CmdOpen), true
			case key.Matches(msg, keys.Quit):
				return app.Do(app.CmdQuit), true
			}
			return app.Command{}, false
		}
		switch {
		case key.Matches(msg, keys.Stage):
			return app.Do(app.CmdStage), true
		case key.Matches(msg, keys.Unstage):
			return app.Do(app.CmdUnstage), true
		case key.Matches(msg, keys.Restore):
			return app.Do(app.CmdRestore), true
		case key.Matches(msg, keys.Back):
			return app.Do(app.CmdBack), true
		}

	case app.ModeDone:
		if key.Matches(msg, keys.Quit) || key.Matches(msg, keys.Open) {
			return app.Do(app.CmdQuit), true
		}
	}
	return app.Command{}, false
}

// modeHelp is the help.KeyMap for one screen.
type modeHelp []key.Binding

func (h modeHelp) ShortHelp() []key.Binding { return h }

func (h modeHelp) FullHelp() [][]key.Binding { return [][]key.Binding{h} }

func helpFor(mode app.ViewMode, rebase bool) modeHelp {
	switch mode.Kind {
	case app.ModeFileList:
		return modeHelp{keys.Up, keys.Down, keys.Open, keys.Quit}
	case app.ModeConflictResolve:
		return modeHelp{keys.NextHunk, keys.Current, keys.Incoming, keys.Both, keys.AllCurrent, keys.Clear, keys.Save, keys.ScrollLeft, keys.Back, keys.ForceQuit}
	case app.ModeRebaseActions:
		h := modeHelp{keys.Up, keys.Down, keys.Open, keys.Continue, keys.Abort}
		if rebase {
			h = append(h, keys.Skip)
		}
		return append(h, keys.Quit)
	case app.ModeStatus:
		if mode.Status == app.StatusMenu {
			return modeHelp{keys.Up, keys.Down, keys.Open, keys.Commit, keys.StageAll, keys.Quit}
		}
		return modeHelp{keys.Up, keys.Down, keys.Stage, keys.Unstage, keys.Restore, keys.StageAll, keys.Commit, keys.DiffDown, keys.Refresh, keys.Back, keys.ForceQuit}
	default:
		return modeHelp{keys.Quit}
	}
}
