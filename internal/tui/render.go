package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/chojs23/enkai/internal/engine"
	"github.com/chojs23/enkai/internal/gitutil"
	"github.com/chojs23/enkai/internal/markers"
)

type lineInfo struct {
	text      string
	category  lineCategory
	highlight bool
	selected  bool
	underline bool
	dim       bool
	connector string
}

type lineCategory int

const (
	categoryDefault lineCategory = iota
	categoryModified
	categoryAdded
	categoryRemoved
	categoryConflicted
	categoryMarker
	categoryResolved
)

type paneSide int

const (
	paneCurrent paneSide = iota
	paneIncoming
)

func (s paneSide) resolution() markers.Resolution {
	if s == paneIncoming {
		return markers.ResolutionIncoming
	}
	return markers.ResolutionCurrent
}

func (s paneSide) label() string {
	if s == paneIncoming {
		return "incoming"
	}
	return "current"
}

func renderLines(lines []lineInfo, styles paneStyles) string {
	if len(lines) == 0 {
		return ""
	}

	width := len(fmt.Sprintf("%d", len(lines)))
	var b strings.Builder
	for i, line := range lines {
		connector := line.connector
		if connector == "" {
			connector = " "
		}
		numberText := fmt.Sprintf("%*d", width, i+1)

		style := styleForCategory(styles.base, line.category, lipgloss.NewStyle())
		if line.highlight {
			style = styleForCategory(styles.highlight, line.category, style)
		}
		if line.selected {
			style = styleForCategory(styles.selected, line.category, style)
		}
		if line.dim {
			style = style.Foreground(dimStyle.GetForeground())
		}
		if line.underline {
			style = style.Underline(true)
		}

		connectorStyle := styleForCategory(styles.connector, line.category, lineNumberStyle)

		b.WriteString(lineNumberStyle.Render(numberText) + " " + connectorStyle.Render(connector) + " " + style.Render(line.text))
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

type paneStyles struct {
	base      map[lineCategory]lipgloss.Style
	highlight map[lineCategory]lipgloss.Style
	selected  map[lineCategory]lipgloss.Style
	connector map[lineCategory]lipgloss.Style
}

// lineStyles is rebuilt on each render so theme changes apply.
func lineStyles() paneStyles {
	highlight := map[lineCategory]lipgloss.Style{
		categoryModified:   modifiedLineStyle,
		categoryAdded:      addedLineStyle,
		categoryRemoved:    removedLineStyle,
		categoryConflicted: conflictedLineStyle,
		categoryMarker:     markerStyle,
	}
	selected := map[lineCategory]lipgloss.Style{
		categoryDefault: resultLineStyle.Bold(true),
	}
	for category, style := range highlight {
		selected[category] = style.Bold(true)
	}
	selected[categoryMarker] = selectedMarkerStyle

	connector := map[lineCategory]lipgloss.Style{
		categoryDefault:  lineNumberStyle,
		categoryResolved: resolvedStyle,
	}
	for category, style := range highlight {
		connector[category] = style
	}

	return paneStyles{
		base: map[lineCategory]lipgloss.Style{
			categoryDefault:  resultLineStyle,
			categoryResolved: resultLineStyle,
		},
		highlight: highlight,
		selected:  selected,
		connector: connector,
	}
}

func styleForCategory(styles map[lineCategory]lipgloss.Style, category lineCategory, fallback lipgloss.Style) lipgloss.Style {
	if style, ok := styles[category]; ok {
		return style
	}
	if style, ok := styles[categoryDefault]; ok {
		return style
	}
	return fallback
}

func originalLines(f *engine.ConflictedFile) []string {
	lines, _ := markers.SplitLines(string(f.Original()))
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// buildSideLines lays out the whole file as seen from one side: text outside
// hunks as is, each hunk replaced by that side's lines. The second result is
// the line index where the selected hunk starts.
func buildSideLines(f *engine.ConflictedFile, side paneSide, selectedHunk int) ([]lineInfo, int) {
	source := originalLines(f)
	var lines []lineInfo
	start := 0
	next := 0

	for i, h := range f.Hunks() {
		lines = append(lines, plainLines(source[next:h.StartLine])...)
		next = h.EndLine + 1

		selected := i == selectedHunk
		if selected {
			start = len(lines)
			lines = append(lines, lineInfo{
				text:      fmt.Sprintf(">> hunk %d/%d %s (%s) >>", i+1, f.HunkCount(), side.label(), sideLabel(h, side)),
				category:  categoryMarker,
				highlight: true,
				selected:  true,
			})
		}

		connector := ""
		if resolutionIncludes(f.Resolution(i), side) {
			connector = connectorForSide(side)
		}

		current, incoming := conflictEntries(h)
		entries := current
		if side == paneIncoming {
			entries = incoming
		}
		for _, entry := range entries {
			text := entry.text
			if entry.category == categoryRemoved {
				text = "- " + text
			}
			lines = append(lines, lineInfo{
				text:      text,
				category:  entry.category,
				highlight: entry.category != categoryDefault,
				selected:  selected,
				dim:       entry.category == categoryRemoved,
				connector: connector,
			})
		}
		if len(entries) == 0 {
			lines = append(lines, lineInfo{text: "(no lines)", category: categoryConflicted, dim: true, selected: selected, connector: connector})
		}

		if selected {
			lines = append(lines, lineInfo{
				text:      ">> end of hunk >>",
				category:  categoryMarker,
				highlight: true,
				selected:  true,
			})
		}
	}
	lines = append(lines, plainLines(source[next:])...)
	return lines, start
}

// buildResultLines renders the in-progress result. Unresolved hunks show as a
// placeholder rather than raw markers.
func buildResultLines(f *engine.ConflictedFile, selectedHunk int) ([]lineInfo, int) {
	var lines []lineInfo
	start := 0
	placed := -1

	for _, pl := range f.Preview() {
		if pl.Hunk < 0 {
			lines = append(lines, lineInfo{text: strings.TrimSuffix(pl.Text, "\r")})
			continue
		}
		selected := pl.Hunk == selectedHunk
		if selected && placed != pl.Hunk {
			start = len(lines)
		}

		switch {
		case !pl.Resolved:
			if placed == pl.Hunk {
				continue
			}
			h := f.Hunk(pl.Hunk)
			lines = append(lines, lineInfo{
				text:      fmt.Sprintf("[unresolved conflict %d: %d current / %d incoming lines]", pl.Hunk+1, len(h.Current), len(h.Incoming)),
				category:  categoryConflicted,
				highlight: true,
				selected:  selected,
				underline: selected,
				dim:       true,
				connector: connectorForResult(false, selected),
			})
		case pl.Elided:
			lines = append(lines, lineInfo{
				text:      "(empty)",
				category:  categoryResolved,
				selected:  selected,
				underline: selected,
				dim:       true,
				connector: connectorForResult(true, selected),
			})
		default:
			lines = append(lines, lineInfo{
				text:      strings.TrimSuffix(pl.Text, "\r"),
				category:  categoryResolved,
				selected:  selected,
				underline: selected,
				connector: connectorForResult(true, selected),
			})
		}
		placed = pl.Hunk
	}
	return lines, start
}

func plainLines(lines []string) []lineInfo {
	infos := make([]lineInfo, 0, len(lines))
	for _, line := range lines {
		infos = append(infos, lineInfo{text: line, category: categoryDefault})
	}
	return infos
}

type lineEntry struct {
	text      string
	category  lineCategory
	baseIndex int
}

type diffOpKind int

const (
	opEqual diffOpKind = iota
	opRemove
	opAdd
)

type diffOp struct {
	kind      diffOpKind
	text      string
	baseIndex int
}

// conflictEntries classifies each side's lines. Without a diff3 base every
// line is conflicted; with one, lines are diffed against the base and lines
// both sides changed differently are marked conflicted.
func conflictEntries(h markers.Hunk) ([]lineEntry, []lineEntry) {
	if len(h.Base) == 0 {
		return entriesFromLines(h.Current, categoryConflicted), entriesFromLines(h.Incoming, categoryConflicted)
	}

	current := diffEntries(h.Base, h.Current)
	incoming := diffEntries(h.Base, h.Incoming)
	markConflicted(current, incoming)
	return current, incoming
}

func entriesFromLines(lines []string, category lineCategory) []lineEntry {
	entries := make([]lineEntry, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, lineEntry{text: strings.TrimSuffix(line, "\r"), category: category, baseIndex: -1})
	}
	return entries
}

func diffEntries(baseLines []string, sideLines []string) []lineEntry {
	ops := diffOps(baseLines, sideLines)
	entries := make([]lineEntry, 0, len(ops))
	lastRemoved := -1

	for _, op := range ops {
		text := strings.TrimSuffix(op.text, "\r")
		switch op.kind {
		case opEqual:
			entries = append(entries, lineEntry{text: text, category: categoryDefault, baseIndex: op.baseIndex})
			lastRemoved = -1
		case opRemove:
			entries = append(entries, lineEntry{text: text, category: categoryRemoved, baseIndex: op.baseIndex})
			lastRemoved = op.baseIndex
		case opAdd:
			category := categoryAdded
			baseIndex := -1
			if lastRemoved >= 0 {
				category = categoryModified
				baseIndex = lastRemoved
				lastRemoved = -1
			}
			entries = append(entries, lineEntry{text: text, category: category, baseIndex: baseIndex})
		}
	}
	return entries
}

// diffOps is a longest-common-subsequence line diff. Hunks are small enough
// that the quadratic table is fine.
func diffOps(baseLines []string, sideLines []string) []diffOp {
	if len(baseLines) == 0 && len(sideLines) == 0 {
		return nil
	}

	lcs := make([][]int, len(baseLines)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(sideLines)+1)
	}
	for i := len(baseLines) - 1; i >= 0; i-- {
		for j := len(sideLines) - 1; j >= 0; j-- {
			switch {
			case baseLines[i] == sideLines[j]:
				lcs[i][j] = lcs[i+1][j+1] + 1
			case lcs[i+1][j] >= lcs[i][j+1]:
				lcs[i][j] = lcs[i+1][j]
			default:
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var ops []diffOp
	i, j := 0, 0
	for i < len(baseLines) && j < len(sideLines) {
		if baseLines[i] == sideLines[j] {
			ops = append(ops, diffOp{kind: opEqual, text: baseLines[i], baseIndex: i})
			i++
			j++
			continue
		}
		if lcs[i+1][j] >= lcs[i][j+1] {
			ops = append(ops, diffOp{kind: opRemove, text: baseLines[i], baseIndex: i})
			i++
			continue
		}
		ops = append(ops, diffOp{kind: opAdd, text: sideLines[j], baseIndex: -1})
		j++
	}
	for ; i < len(baseLines); i++ {
		ops = append(ops, diffOp{kind: opRemove, text: baseLines[i], baseIndex: i})
	}
	for ; j < len(sideLines); j++ {
		ops = append(ops, diffOp{kind: opAdd, text: sideLines[j], baseIndex: -1})
	}
	return ops
}

func markConflicted(current []lineEntry, incoming []lineEntry) {
	incomingByBase := map[int]int{}
	for i, entry := range incoming {
		if entry.baseIndex >= 0 && entry.category != categoryRemoved {
			incomingByBase[entry.baseIndex] = i
		}
	}
	for i, entry := range current {
		if entry.baseIndex < 0 || entry.category == categoryRemoved {
			continue
		}
		j, ok := incomingByBase[entry.baseIndex]
		if !ok || incoming[j].text == entry.text {
			continue
		}
		current[i].category = categoryConflicted
		incoming[j].category = categoryConflicted
	}
}

func resolutionIncludes(r markers.Resolution, side paneSide) bool {
	return r == markers.ResolutionBoth || r == side.resolution()
}

func connectorForSide(side paneSide) string {
	if side == paneIncoming {
		return "<"
	}
	return ">"
}

func connectorForResult(resolved bool, selected bool) string {
	switch {
	case resolved:
		return "v"
	case selected:
		return "|"
	default:
		return " "
	}
}

func sideLabel(h markers.Hunk, side paneSide) string {
	if side == paneIncoming {
		return formatLabel(h.IncomingLabel)
	}
	return formatLabel(h.CurrentLabel)
}

// formatLabel shortens long marker labels such as "a1b2c3d4e5f6 (subject)"
// to fit a pane title.
func formatLabel(label string) string {
	label = strings.TrimSpace(label)
	const limit = 32
	if len(label) > limit {
		return label[:limit-3] + "..."
	}
	return label
}

// renderDiff colors a parsed file diff for the status view.
func renderDiff(d *gitutil.FileDiff) string {
	if d == nil {
		return dimStyle.Render("select a file to see its diff")
	}
	if d.Binary {
		return dimStyle.Render("binary file differs")
	}
	if d.Empty() {
		return dimStyle.Render("no changes")
	}

	var b strings.Builder
	for i, line := range d.Lines {
		switch line.Kind {
		case gitutil.LineAdded:
			b.WriteString(diffAddedStyle.Render("+" + line.Text))
		case gitutil.LineDeleted:
			b.WriteString(diffDeletedStyle.Render("-" + line.Text))
		case gitutil.LineHunk:
			b.WriteString(diffHunkStyle.Render(line.Text))
		case gitutil.LineNote:
			b.WriteString(dimStyle.Render(line.Text))
		default:
			b.WriteString(" " + line.Text)
		}
		if i < len(d.Lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func ensureVisible(viewportModel *viewport.Model, start int, total int) {
	if viewportModel.Height <= 0 {
		return
	}
	if total <= 0 {
		viewportModel.YOffset = 0
		return
	}

	maxOffset := max(total-viewportModel.Height, 0)
	margin := 2
	viewportModel.YOffset = min(max(start-margin, 0), maxOffset)
}
