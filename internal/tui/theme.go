package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-viper/mapstructure/v2"

	"github.com/chojs23/enkai/internal/config"
)

const defaultThemeName = "default"

// Theme is the full color set. Palettes in the config file override any
// subset of it by key.
type Theme struct {
	Name string `mapstructure:"-"`

	TitleFg            string `mapstructure:"title_fg"`
	PaneBorder         string `mapstructure:"pane_border"`
	SelectedPaneBorder string `mapstructure:"selected_pane_border"`
	HeaderBg           string `mapstructure:"header_bg"`
	HeaderFg           string `mapstructure:"header_fg"`
	FooterBg           string `mapstructure:"footer_bg"`
	FooterFg           string `mapstructure:"footer_fg"`
	LineNumberFg       string `mapstructure:"line_number"`
	ResultFg           string `mapstructure:"result_fg"`
	CurrentBg          string `mapstructure:"current_bg"`
	CurrentFg          string `mapstructure:"current_fg"`
	IncomingBg         string `mapstructure:"incoming_bg"`
	IncomingFg         string `mapstructure:"incoming_fg"`
	ModifiedBg         string `mapstructure:"modified_bg"`
	ModifiedFg         string `mapstructure:"modified_fg"`
	AddedBg            string `mapstructure:"added_bg"`
	AddedFg            string `mapstructure:"added_fg"`
	RemovedBg          string `mapstructure:"removed_bg"`
	RemovedFg          string `mapstructure:"removed_fg"`
	ConflictedBg       string `mapstructure:"conflicted_bg"`
	ConflictedFg       string `mapstructure:"conflicted_fg"`
	MarkerFg           string `mapstructure:"marker_fg"`
	SelectedMarkerFg   string `mapstructure:"selected_marker_fg"`
	SelectedMarkerBg   string `mapstructure:"selected_marker_bg"`
	ResolvedFg         string `mapstructure:"resolved_fg"`
	UnresolvedFg       string `mapstructure:"unresolved_fg"`
	ResolvedBorder     string `mapstructure:"resolved_border"`
	UnresolvedBorder   string `mapstructure:"unresolved_border"`
	DiffAddedFg        string `mapstructure:"diff_added_fg"`
	DiffDeletedFg      string `mapstructure:"diff_deleted_fg"`
	DiffHunkFg         string `mapstructure:"diff_hunk_fg"`
	SectionFg          string `mapstructure:"section_fg"`
	ToastBg            string `mapstructure:"toast_bg"`
	ToastFg            string `mapstructure:"toast_fg"`
	ErrorBg            string `mapstructure:"error_bg"`
	ErrorFg            string `mapstructure:"error_fg"`
	DimFg              string `mapstructure:"dim_fg"`
}

var (
	titleStyle             lipgloss.Style
	paneStyle              lipgloss.Style
	selectedPaneStyle      lipgloss.Style
	headerStyle            lipgloss.Style
	footerStyle            lipgloss.Style
	lineNumberStyle        lipgloss.Style
	resultLineStyle        lipgloss.Style
	currentHighlightStyle  lipgloss.Style
	incomingHighlightStyle lipgloss.Style
	modifiedLineStyle      lipgloss.Style
	addedLineStyle         lipgloss.Style
	removedLineStyle       lipgloss.Style
	conflictedLineStyle    lipgloss.Style
	markerStyle            lipgloss.Style
	selectedMarkerStyle    lipgloss.Style
	resolvedStyle          lipgloss.Style
	unresolvedStyle        lipgloss.Style
	resolvedPaneStyle      lipgloss.Style
	unresolvedPaneStyle    lipgloss.Style
	diffAddedStyle         lipgloss.Style
	diffDeletedStyle       lipgloss.Style
	diffHunkStyle          lipgloss.Style
	sectionStyle           lipgloss.Style
	cursorStyle            lipgloss.Style
	toastStyle             lipgloss.Style
	errorToastStyle        lipgloss.Style
	toastLineStyle         lipgloss.Style
	dimStyle               lipgloss.Style
)

func init() {
	applyTheme(defaultTheme())
}

// loadTheme resolves the palette named by cfg.Default on top of the built-in
// colors. Naming a palette that does not exist is an error, except for the
// built-in "default".
func loadTheme(cfg config.ThemeConfig) (Theme, error) {
	fallback := defaultTheme()

	name := strings.TrimSpace(cfg.Default)
	if name == "" {
		name = defaultThemeName
	}

	palette, ok := cfg.Themes[name]
	if !ok {
		if name == defaultThemeName {
			return fallback, nil
		}
		return Theme{}, fmt.Errorf("theme %q not found", name)
	}

	var override Theme
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &override,
		ErrorUnused: true,
	})
	if err != nil {
		return Theme{}, err
	}
	if err := dec.Decode(map[string]string(palette)); err != nil {
		return Theme{}, fmt.Errorf("theme %q: %w", name, err)
	}
	override.Name = name
	return mergeTheme(fallback, override), nil
}

func defaultTheme() Theme {
	return Theme{
		Name:               defaultThemeName,
		TitleFg:            "170",
		PaneBorder:         "63",
		SelectedPaneBorder: "33",
		HeaderBg:           "62",
		HeaderFg:           "230",
		FooterBg:           "236",
		FooterFg:           "243",
		LineNumberFg:       "241",
		ResultFg:           "231",
		CurrentBg:          "24",
		CurrentFg:          "230",
		IncomingBg:         "52",
		IncomingFg:         "230",
		ModifiedBg:         "24",
		ModifiedFg:         "231",
		AddedBg:            "28",
		AddedFg:            "231",
		RemovedBg:          "237",
		RemovedFg:          "250",
		ConflictedBg:       "131",
		ConflictedFg:       "231",
		MarkerFg:           "196",
		SelectedMarkerFg:   "226",
		SelectedMarkerBg:   "88",
		ResolvedFg:         "42",
		UnresolvedFg:       "196",
		ResolvedBorder:     "42",
		UnresolvedBorder:   "196",
		DiffAddedFg:        "42",
		DiffDeletedFg:      "203",
		DiffHunkFg:         "39",
		SectionFg:          "214",
		ToastBg:            "22",
		ToastFg:            "230",
		ErrorBg:            "88",
		ErrorFg:            "230",
		DimFg:              "244",
	}
}

func mergeTheme(base Theme, override Theme) Theme {
	return Theme{
		Name:               override.Name,
		TitleFg:            pickColor(base.TitleFg, override.TitleFg),
		PaneBorder:         pickColor(base.PaneBorder, override.PaneBorder),
		SelectedPaneBorder: pickColor(base.SelectedPaneBorder, override.SelectedPaneBorder),
		HeaderBg:           pickColor(base.HeaderBg, override.HeaderBg),
		HeaderFg:           pickColor(base.HeaderFg, override.HeaderFg),
		FooterBg:           pickColor(base.FooterBg, override.FooterBg),
		FooterFg:           pickColor(base.FooterFg, override.FooterFg),
		LineNumberFg:       pickColor(base.LineNumberFg, override.LineNumberFg),
		ResultFg:           pickColor(base.ResultFg, override.ResultFg),
		CurrentBg:          pickColor(base.CurrentBg, override.CurrentBg),
		CurrentFg:          pickColor(base.CurrentFg, override.CurrentFg),
		IncomingBg:         pickColor(base.IncomingBg, override.IncomingBg),
		IncomingFg:         pickColor(base.IncomingFg, override.IncomingFg),
		ModifiedBg:         pickColor(base.ModifiedBg, override.ModifiedBg),
		ModifiedFg:         pickColor(base.ModifiedFg, override.ModifiedFg),
		AddedBg:            pickColor(base.AddedBg, override.AddedBg),
		AddedFg:            pickColor(base.AddedFg, override.AddedFg),
		RemovedBg:          pickColor(base.RemovedBg, override.RemovedBg),
		RemovedFg:          pickColor(base.RemovedFg, override.RemovedFg),
		ConflictedBg:       pickColor(base.ConflictedBg, override.ConflictedBg),
		ConflictedFg:       pickColor(base.ConflictedFg, override.ConflictedFg),
		MarkerFg:           pickColor(base.MarkerFg, override.MarkerFg),
		SelectedMarkerFg:   pickColor(base.SelectedMarkerFg, override.SelectedMarkerFg),
		SelectedMarkerBg:   pickColor(base.SelectedMarkerBg, override.SelectedMarkerBg),
		ResolvedFg:         pickColor(base.ResolvedFg, override.ResolvedFg),
		UnresolvedFg:       pickColor(base.UnresolvedFg, override.UnresolvedFg),
		ResolvedBorder:     pickColor(base.ResolvedBorder, override.ResolvedBorder),
		UnresolvedBorder:   pickColor(base.UnresolvedBorder, override.UnresolvedBorder),
		DiffAddedFg:        pickColor(base.DiffAddedFg, override.DiffAddedFg),
		DiffDeletedFg:      pickColor(base.DiffDeletedFg, override.DiffDeletedFg),
		DiffHunkFg:         pickColor(base.DiffHunkFg, override.DiffHunkFg),
		SectionFg:          pickColor(base.SectionFg, override.SectionFg),
		ToastBg:            pickColor(base.ToastBg, override.ToastBg),
		ToastFg:            pickColor(base.ToastFg, override.ToastFg),
		ErrorBg:            pickColor(base.ErrorBg, override.ErrorBg),
		ErrorFg:            pickColor(base.ErrorFg, override.ErrorFg),
		DimFg:              pickColor(base.DimFg, override.DimFg),
	}
}

func pickColor(base string, override string) string {
	if override != "" {
		return override
	}
	return base
}

func bordered(color string) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(color)).
		Padding(0, 1)
}

func applyTheme(theme Theme) {
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(theme.TitleFg)).
		Padding(0, 1)

	paneStyle = bordered(theme.PaneBorder)
	selectedPaneStyle = bordered(theme.SelectedPaneBorder)
	resolvedPaneStyle = bordered(theme.ResolvedBorder)
	unresolvedPaneStyle = bordered(theme.UnresolvedBorder)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Background(lipgloss.Color(theme.HeaderBg)).
		Foreground(lipgloss.Color(theme.HeaderFg)).
		Padding(0, 2)

	footerStyle = lipgloss.NewStyle().
		Background(lipgloss.Color(theme.FooterBg)).
		Foreground(lipgloss.Color(theme.FooterFg)).
		Padding(0, 2)

	lineNumberStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.LineNumberFg))

	resultLineStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.ResultFg))

	currentHighlightStyle = lipgloss.NewStyle().
		Background(lipgloss.Color(theme.CurrentBg)).
		Foreground(lipgloss.Color(theme.CurrentFg))

	incomingHighlightStyle = lipgloss.NewStyle().
		Background(lipgloss.Color(theme.IncomingBg)).
		Foreground(lipgloss.Color(theme.IncomingFg))

	modifiedLineStyle = lipgloss.NewStyle().
		Background(lipgloss.Color(theme.ModifiedBg)).
		Foreground(lipgloss.Color(theme.ModifiedFg))

	addedLineStyle = lipgloss.NewStyle().
		Background(lipgloss.Color(theme.AddedBg)).
		Foreground(lipgloss.Color(theme.AddedFg))

	removedLineStyle = lipgloss.NewStyle().
		Background(lipgloss.Color(theme.RemovedBg)).
		Foreground(lipgloss.Color(theme.RemovedFg))

	conflictedLineStyle = lipgloss.NewStyle().
		Background(lipgloss.Color(theme.ConflictedBg)).
		Foreground(lipgloss.Color(theme.ConflictedFg))

	markerStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.MarkerFg)).
		Bold(true)

	selectedMarkerStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.SelectedMarkerFg)).
		Background(lipgloss.Color(theme.SelectedMarkerBg)).
		Bold(true)

	resolvedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.ResolvedFg)).
		Bold(true)

	unresolvedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.UnresolvedFg)).
		Bold(true)

	diffAddedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.DiffAddedFg))
	diffDeletedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.DiffDeletedFg))
	diffHunkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.DiffHunkFg))

	sectionStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(theme.SectionFg))

	cursorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(theme.TitleFg))

	toastStyle = lipgloss.NewStyle().
		Background(lipgloss.Color(theme.ToastBg)).
		Foreground(lipgloss.Color(theme.ToastFg)).
		Padding(0, 1)

	errorToastStyle = lipgloss.NewStyle().
		Background(lipgloss.Color(theme.ErrorBg)).
		Foreground(lipgloss.Color(theme.ErrorFg)).
		Padding(0, 1)

	toastLineStyle = lipgloss.NewStyle().
		Align(lipgloss.Right).
		Padding(0, 2)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.DimFg))
}
