package languages

import "bytes"

// braceWindow is how many leading lines may precede the opening brace for a
// block to be treated as brace-delimited.
const braceWindow = 3

// BlockExtent returns the length of the declaration that starts at src[0].
//
// Brace-delimited blocks end just past the brace that closes the first one.
// Otherwise the block is indentation-delimited and ends after the last
// non-blank line indented deeper than the first line.
func BlockExtent(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	if open := bytes.IndexByte(src, '{'); open >= 0 && bytes.Count(src[:open], []byte{'\n'}) < braceWindow {
		return braceExtent(src)
	}
	return indentExtent(src)
}

func braceExtent(src []byte) int {
	depth := 0
	var quote byte
	for i, c := range src {
		escaped := i > 0 && src[i-1] == '\\'
		if quote != 0 {
			if c == quote && !escaped {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			if !escaped {
				quote = c
			}
		case '{':
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(src)
}

func indentExtent(src []byte) int {
	firstEnd := lineEnd(src, 0)
	base := indentWidth(src[:firstEnd])
	end := firstEnd

	for pos := firstEnd; pos < len(src); {
		next := lineEnd(src, pos)
		line := src[pos:next]
		if len(bytes.TrimSpace(line)) > 0 {
			if indentWidth(line) <= base {
				break
			}
			end = next
		}
		pos = next
	}
	return end
}

// lineEnd returns the offset just past the newline ending the line at pos.
func lineEnd(src []byte, pos int) int {
	if idx := bytes.IndexByte(src[pos:], '\n'); idx >= 0 {
		return pos + idx + 1
	}
	return len(src)
}

func indentWidth(line []byte) int {
	width := 0
	for _, c := range line {
		if c != ' ' && c != '\t' {
			break
		}
		width++
	}
	return width
}
