package app

import (
	"github.com/chojs23/enkai/internal/engine"
	"github.com/chojs23/enkai/internal/gitutil"
)

type ModeKind int

const (
	ModeFileList ModeKind = iota
	ModeConflictResolve
	ModeRebaseActions
	ModeStatus
	ModeDone
)

func (k ModeKind) String() string {
	switch k {
	case ModeFileList:
		return "file-list"
	case ModeConflictResolve:
		return "conflict-resolve"
	case ModeRebaseActions:
		return "rebase-actions"
	case ModeStatus:
		return "status"
	case ModeDone:
		return "done"
	default:
		return "unknown"
	}
}

// StatusView is the sub-mode of ModeStatus.
type StatusView int

const (
	StatusMenu StatusView = iota
	StatusChanges
)

// ViewMode is a closed set of screens. FileIndex and HunkIndex are only
// meaningful for ModeConflictResolve, Status only for ModeStatus.
type ViewMode struct {
	Kind      ModeKind
	FileIndex int
	HunkIndex int
	Status    StatusView
}

func FileList() ViewMode { return ViewMode{Kind: ModeFileList} }

func ConflictResolve(file, hunk int) ViewMode {
	return ViewMode{Kind: ModeConflictResolve, FileIndex: file, HunkIndex: hunk}
}

func RebaseActions() ViewMode { return ViewMode{Kind: ModeRebaseActions} }

func Status(sub StatusView) ViewMode { return ViewMode{Kind: ModeStatus, Status: sub} }

func Done() ViewMode { return ViewMode{Kind: ModeDone} }

// Action is an entry of the post-resolution menu.
type Action int

const (
	ActionContinue Action = iota
	ActionAbort
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionContinue:
		return "Continue"
	case ActionAbort:
		return "Abort"
	case ActionSkip:
		return "Skip"
	default:
		return "?"
	}
}

// MenuItem is an entry of the status menu.
type MenuItem int

const (
	MenuViewChanges MenuItem = iota
	MenuStageAll
	MenuCommit
	MenuQuit
)

var menuItems = []MenuItem{MenuViewChanges, MenuStageAll, MenuCommit, MenuQuit}

func MenuItems() []MenuItem { return menuItems }

func (m MenuItem) String() string {
	switch m {
	case MenuViewChanges:
		return "View changes"
	case MenuStageAll:
		return "Stage all"
	case MenuCommit:
		return "Commit"
	case MenuQuit:
		return "Quit"
	default:
		return "?"
	}
}

// State is the whole navigation state. It is passed by value into Dispatch
// and a new value is returned; nothing else mutates it.
type State struct {
	Files     []*engine.ConflictedFile
	Selected  int
	Mode      ViewMode
	Operation gitutil.Operation
	Quit      bool

	// Saved lists files written this session, staged before continue.
	Saved []string

	ActionIndex int
	MenuIndex   int
	Changes     []gitutil.FileStatus
	ChangeIndex int

	// Notice is a one-shot message from the last dispatch.
	Notice string
}

// New picks the initial screen: the file list when there is anything to
// resolve, otherwise the status view.
func New(files []*engine.ConflictedFile, op gitutil.Operation) State {
	s := State{Files: files, Operation: op}
	if len(files) > 0 {
		s.Mode = FileList()
	} else {
		s.Mode = Status(StatusMenu)
	}
	return s
}

// Actions lists what RebaseActions offers for the operation. Merges cannot
// skip.
func (s State) Actions() []Action {
	if s.Operation.IsRebase() {
		return []Action{ActionContinue, ActionAbort, ActionSkip}
	}
	return []Action{ActionContinue, ActionAbort}
}

func (s State) SelectedAction() Action {
	actions := s.Actions()
	return actions[clamp(s.ActionIndex, 0, len(actions)-1)]
}

func (s State) SelectedMenuItem() MenuItem {
	return menuItems[clamp(s.MenuIndex, 0, len(menuItems)-1)]
}

// ActiveFile is the file being resolved, or nil outside ModeConflictResolve.
func (s State) ActiveFile() *engine.ConflictedFile {
	if s.Mode.Kind != ModeConflictResolve || s.Mode.FileIndex < 0 || s.Mode.FileIndex >= len(s.Files) {
		return nil
	}
	return s.Files[s.Mode.FileIndex]
}

// SelectedChange is the highlighted entry of the change list.
func (s State) SelectedChange() (gitutil.FileStatus, bool) {
	if s.ChangeIndex < 0 || s.ChangeIndex >= len(s.Changes) {
		return gitutil.FileStatus{}, false
	}
	return s.Changes[s.ChangeIndex], true
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
