package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chojs23/enkai/internal/engine"
)

type fileItem struct {
	path     string
	resolved int
	total    int
}

func (f fileItem) Title() string { return f.path }

func (f fileItem) Description() string { return "" }

func (f fileItem) FilterValue() string { return f.path }

func (f fileItem) done() bool { return f.resolved == f.total }

type fileItemDelegate struct{}

func (d fileItemDelegate) Height() int { return 1 }

func (d fileItemDelegate) Spacing() int { return 0 }

func (d fileItemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d fileItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	file, ok := item.(fileItem)
	if !ok {
		return
	}
	cursor := "  "
	if index == m.Index() {
		cursor = cursorStyle.Render("> ")
	}
	labelStyle := unresolvedStyle
	if file.done() {
		labelStyle = resolvedStyle
	}
	label := fmt.Sprintf("%3d/%-3d", file.resolved, file.total)
	fmt.Fprint(w, cursor+labelStyle.Render(label)+"  "+file.path)
}

func fileItems(files []*engine.ConflictedFile) []list.Item {
	items := make([]list.Item, 0, len(files))
	for _, f := range files {
		items = append(items, fileItem{path: f.Path(), resolved: f.ResolvedCount(), total: f.HunkCount()})
	}
	return items
}

func newFileList(files []*engine.ConflictedFile) list.Model {
	l := list.New(fileItems(files), fileItemDelegate{}, 0, 0)
	l.Title = "Conflicted files"
	l.Styles.Title = titleStyle
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}

// syncFileList mirrors files and the selected index into l. The list never
// moves its own cursor; navigation goes through app.Dispatch.
func syncFileList(l *list.Model, files []*engine.ConflictedFile, selected int) {
	l.SetItems(fileItems(files))
	if len(files) > 0 {
		l.Select(selected)
	}
}
