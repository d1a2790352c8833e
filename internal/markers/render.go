package markers

// Combine returns the lines a hunk resolves to.
//
// Both keeps the current side followed by the incoming side; an empty side
// contributes nothing, so no blank line is introduced. Unset and unknown
// resolutions yield nil.
func Combine(resolution Resolution, current, incoming []string) []string {
	switch resolution {
	case ResolutionCurrent:
		return cloneLines(current)
	case ResolutionIncoming:
		return cloneLines(incoming)
	case ResolutionBoth:
		out := make([]string, 0, len(current)+len(incoming))
		out = append(out, current...)
		return append(out, incoming...)
	default:
		return nil
	}
}

// CombineText is Combine over "\n"-joined text without a trailing terminator.
func CombineText(resolution Resolution, current, incoming string) string {
	cur, _ := SplitLines(current)
	inc, _ := SplitLines(incoming)
	return JoinLines(Combine(resolution, cur, inc), false)
}
