package omgo

import "strings"

// matchSet carves one top-level brace-delimited region out of a reply.
//
// It returns the span of the outermost balanced {...} region as current,
// with any brace groups nested deeper than the second level removed and
// handed back concatenated in next. The caller parses next as an independent
// value in a subsequent pass; this is how the legacy wire format's habit of
// concatenating top-level values without a delimiter is unwound.
//
// Parenthesized regions are opaque: their content, including any braces used
// as default-value initializers, is skipped. The one exception is a brace
// group that is the right-hand side of a name={...} assignment inside
// parentheses, which is stepped over as a unit so it survives into the
// element phase.
func matchSet(s string) (current, next string, err error) {
	first := strings.IndexByte(s, '{')
	if first < 0 {
		return "", "", &BracketError{Msg: "reply has no braces to match", Input: s}
	}

	end, maxDepth, lastClose := scanSpan(s, first)
	if end < 0 {
		return "", "", &BracketError{Msg: "missing closing brace in reply", Input: s}
	}

	if maxDepth < 2 {
		// no nesting: the span runs to the last balanced close so that
		// directly concatenated flat sets ({1,2}{3,4}) stay together
		return s[first : lastClose+1], "", nil
	}

	var deferred []span
	depth := 0
	for i := first; i <= end; i++ {
		switch s[i] {
		case '{':
			depth++
			if depth == 3 {
				// group opens beyond the second level: defer it
				close := matchingBrace(s, i)
				deferred = append(deferred, span{i, close})
				depth--
				i = close
			}
		case '}':
			depth--
		case '(':
			i = skipParens(s, i, end)
		}
	}

	if len(deferred) == 0 {
		return s[first : end+1], "", nil
	}

	var cur, carry strings.Builder
	prev := first
	for _, d := range deferred {
		cur.WriteString(s[prev:d.start])
		carry.WriteString(s[d.start : d.end+1])
		prev = d.end + 1
	}
	cur.WriteString(s[prev : end+1])

	current = cleanDanglingCommas(cur.String())
	if !hasAlnum(current) {
		current = ""
	}
	return current, carry.String(), nil
}

type span struct{ start, end int }

// scanSpan finds the matching close of the brace that opens at first, the
// maximum brace depth inside it, and the last balanced close in the whole
// input. Braces inside parenthesized regions do not count. end is -1 when
// the region never closes.
func scanSpan(s string, first int) (end, maxDepth, lastClose int) {
	end = -1
	lastClose = -1
	depth := 0
	for i := first; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case '}':
			depth--
			if depth == 0 {
				lastClose = i
				if end < 0 {
					end = i
				}
			}
		case '(':
			i = skipParens(s, i, len(s)-1)
		}
	}
	return end, maxDepth, lastClose
}

// matchingBrace returns the index of the '}' matching the '{' at open,
// skipping parenthesized regions. Callers only pass open positions inside an
// already balanced span.
func matchingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		case '(':
			i = skipParens(s, i, len(s)-1)
		}
	}
	return len(s) - 1
}

// skipParens consumes a parenthesized region starting at open and returns
// the index of its closing ')'. A name={...} assignment's brace group inside
// the region is stepped over explicitly so its braces never leak into the
// surrounding depth counters.
func skipParens(s string, open, limit int) int {
	depth := 0
	for i := open; i <= limit; i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		case '=':
			if i+1 <= limit && s[i+1] == '{' {
				j := i + 1
				braces := 0
				for ; j <= limit; j++ {
					if s[j] == '{' {
						braces++
					} else if s[j] == '}' {
						braces--
						if braces == 0 {
							break
						}
					}
				}
				i = j
			}
		}
	}
	return limit
}

// cleanDanglingCommas removes commas left hanging before a closing brace
// after deferred groups were cut out.
func cleanDanglingCommas(s string) string {
	for {
		t := strings.ReplaceAll(s, ",}", "}")
		t = strings.ReplaceAll(t, ", }", "}")
		t = strings.ReplaceAll(t, "{,", "{")
		if t == s {
			return strings.TrimSpace(t)
		}
		s = t
	}
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}
