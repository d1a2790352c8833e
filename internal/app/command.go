package app

import (
	"fmt"

	"github.com/chojs23/enkai/internal/markers"
)

type CommandKind int

const (
	CmdQuit CommandKind = iota
	CmdCursorUp
	CmdCursorDown
	CmdOpen
	CmdSelectFile
	CmdBack
	CmdNextHunk
	CmdPrevHunk
	CmdResolve
	CmdResolveAll
	CmdClear
	CmdSave
	CmdContinue
	CmdAbort
	CmdSkip
	CmdStage
	CmdUnstage
	CmdRestore
	CmdStageAll
	CmdUnstageAll
	CmdRestoreAll
	CmdCommit
	CmdRefresh
)

var commandNames = map[CommandKind]string{
	CmdQuit:       "quit",
	CmdCursorUp:   "cursor-up",
	CmdCursorDown: "cursor-down",
	CmdOpen:       "open",
	CmdSelectFile: "select-file",
	CmdBack:       "back",
	CmdNextHunk:   "next-hunk",
	CmdPrevHunk:   "prev-hunk",
	CmdResolve:    "resolve",
	CmdResolveAll: "resolve-all",
	CmdClear:      "clear",
	CmdSave:       "save",
	CmdContinue:   "continue",
	CmdAbort:      "abort",
	CmdSkip:       "skip",
	CmdStage:      "stage",
	CmdUnstage:    "unstage",
	CmdRestore:    "restore",
	CmdStageAll:   "stage-all",
	CmdUnstageAll: "unstage-all",
	CmdRestoreAll: "restore-all",
	CmdCommit:     "commit",
	CmdRefresh:    "refresh",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(k))
}

// Command is one user intent. Index is used by CmdSelectFile, Resolution by
// CmdResolve and CmdResolveAll, Message by CmdCommit.
type Command struct {
	Kind       CommandKind
	Index      int
	Resolution markers.Resolution
	Message    string
}

func Do(kind CommandKind) Command { return Command{Kind: kind} }

func SelectFile(i int) Command { return Command{Kind: CmdSelectFile, Index: i} }

func Resolve(r markers.Resolution) Command { return Command{Kind: CmdResolve, Resolution: r} }

func ResolveAll(r markers.Resolution) Command { return Command{Kind: CmdResolveAll, Resolution: r} }

func Commit(message string) Command { return Command{Kind: CmdCommit, Message: message} }
