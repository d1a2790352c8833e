package markers

// Resolution is the chosen disposition of a single hunk.
type Resolution string

const (
	ResolutionUnset    Resolution = ""
	ResolutionCurrent  Resolution = "current"
	ResolutionIncoming Resolution = "incoming"
	ResolutionBoth     Resolution = "both"
)

// Valid reports whether r is one of the three selectable resolutions.
func (r Resolution) Valid() bool {
	switch r {
	case ResolutionCurrent, ResolutionIncoming, ResolutionBoth:
		return true
	default:
		return false
	}
}

func (r Resolution) String() string {
	switch r {
	case ResolutionCurrent:
		return "Current (HEAD)"
	case ResolutionIncoming:
		return "Incoming"
	case ResolutionBoth:
		return "Both"
	default:
		return "Unresolved"
	}
}

// ParseResolution maps user input (current|incoming|both, plus the ours/theirs
// aliases git users type out of habit) to a Resolution.
func ParseResolution(s string) (Resolution, bool) {
	switch s {
	case "current", "ours", "head":
		return ResolutionCurrent, true
	case "incoming", "theirs":
		return ResolutionIncoming, true
	case "both":
		return ResolutionBoth, true
	default:
		return ResolutionUnset, false
	}
}

// Hunk is one delimited conflict region.
//
// StartLine and EndLine are 0-based indices of the opening and closing marker
// lines in the original file, inclusive. Lines never carry their "\n".
type Hunk struct {
	Current  []string
	Base     []string // nil unless the file uses diff3 style markers
	Incoming []string

	CurrentLabel  string
	IncomingLabel string

	StartLine     int
	SeparatorLine int
	EndLine       int
}

// LineCount is the number of original lines the hunk replaces.
func (h Hunk) LineCount() int {
	return h.EndLine - h.StartLine + 1
}
