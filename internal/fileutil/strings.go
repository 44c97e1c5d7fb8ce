package fileutil

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// TruncateWithEllipsis is Truncate with a trailing "..." marking the cut.
func TruncateWithEllipsis(s string, n int) string {
	if out := Truncate(s, n); len(out) < len(s) {
		return out + "..."
	}
	return s
}
