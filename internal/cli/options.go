package cli

import (
	"github.com/chojs23/enkai/internal/config"
	"github.com/chojs23/enkai/internal/markers"
)

// Options is the fully-parsed configuration for a single invocation.
type Options struct {
	// Files are the explicit paths given on the command line. Empty means
	// every conflicted path in the repository.
	Files []string

	// Check reports whether Files still contain conflict blocks.
	Check bool
	// ApplyAll, when set, resolves every hunk of Files non-interactively.
	ApplyAll markers.Resolution

	ConfigPath string
	Config     *config.Config
}

// Interactive reports whether the invocation starts the TUI.
func (o Options) Interactive() bool {
	return !o.Check && o.ApplyAll == markers.ResolutionUnset
}
