package extractor

// sanitize returns a copy of lines with comment and string-literal content
// blanked out, preserving line lengths so character offsets stay valid.
// Block comments and template literals carry state across lines; ordinary
// string literals do not survive a line break.
func sanitize(lines []string) []string {
	out := make([]string, len(lines))
	inBlock := false
	inTemplate := false

	for i, line := range lines {
		src := []byte(line)
		res := make([]byte, len(src))
		var quote byte

		for j := 0; j < len(src); j++ {
			c := src[j]
			switch {
			case inBlock:
				res[j] = ' '
				if c == '*' && j+1 < len(src) && src[j+1] == '/' {
					res[j+1] = ' '
					j++
					inBlock = false
				}
			case inTemplate:
				res[j] = ' '
				if c == '\\' && j+1 < len(src) {
					res[j+1] = ' '
					j++
				} else if c == '`' {
					inTemplate = false
				}
			case quote != 0:
				res[j] = ' '
				if c == '\\' && j+1 < len(src) {
					res[j+1] = ' '
					j++
				} else if c == quote {
					quote = 0
				}
			case c == '/' && j+1 < len(src) && src[j+1] == '/':
				for k := j; k < len(src); k++ {
					res[k] = ' '
				}
				j = len(src)
			case c == '/' && j+1 < len(src) && src[j+1] == '*':
				res[j] = ' '
				res[j+1] = ' '
				j++
				inBlock = true
			case c == '\'' || c == '"':
				res[j] = ' '
				quote = c
			case c == '`':
				res[j] = ' '
				inTemplate = true
			default:
				res[j] = c
			}
		}

		// A single or double quote left open does not leak into the next
		// line; template/block state does.
		out[i] = string(res)
	}

	return out
}

// braceDepths returns, for each line, the brace nesting depth in effect at
// the start of that line, computed over sanitized text.
func braceDepths(sanitized []string) []int {
	depths := make([]int, len(sanitized))
	depth := 0
	for i, line := range sanitized {
		depths[i] = depth
		for j := 0; j < len(line); j++ {
			switch line[j] {
			case '{':
				depth++
			case '}':
				if depth > 0 {
					depth--
				}
			}
		}
	}
	return depths
}

// findBlockEnd returns the 0-based index of the line on which the brace
// block opened at or after (startLine, startCol) closes. A statement
// terminator seen before any opening brace ends the construct on that line;
// an unterminated block closes at the last line.
func findBlockEnd(sanitized []string, startLine, startCol int) int {
	depth := 0
	opened := false
	for i := startLine; i < len(sanitized); i++ {
		line := sanitized[i]
		j := 0
		if i == startLine {
			j = startCol
		}
		for ; j < len(line); j++ {
			switch line[j] {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
				if opened && depth == 0 {
					return i
				}
			case ';':
				if !opened {
					return i
				}
			}
		}
	}
	if opened {
		return len(sanitized) - 1
	}
	return startLine
}

// splitTopLevel splits s on sep occurrences that sit outside parentheses,
// brackets and braces.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}
