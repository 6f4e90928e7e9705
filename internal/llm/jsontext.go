package llm

import (
	"fmt"
	"strings"
)

// NormalizeResponse trims a model response and removes surrounding
// markdown code fences (``` or ```json), nested ones included. Applying it
// twice is a no-op.
func NormalizeResponse(raw string) string {
	s := strings.TrimSpace(raw)
	for {
		next := stripFence(s)
		if next == s {
			return s
		}
		s = next
	}
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = s[4:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ExtractJSON pulls the first balanced JSON object or array out of free
// text and cleans the usual model slips inside it: comments, trailing
// commas and numbers written as ".5".
func ExtractJSON(text string) (string, error) {
	block := firstBalancedBlock(text)
	if block == "" {
		return "", fmt.Errorf("%w: %q", ErrNoJSON, truncate(text, 120))
	}
	return repairJSON(block), nil
}

// jsonScanner tracks whether the cursor is inside a string literal.
type jsonScanner struct {
	inString bool
	escaped  bool
}

// step consumes c and reports whether it is structural (outside strings).
func (sc *jsonScanner) step(c byte) bool {
	switch {
	case sc.escaped:
		sc.escaped = false
		return false
	case sc.inString && c == '\\':
		sc.escaped = true
		return false
	case c == '"':
		sc.inString = !sc.inString
		return false
	}
	return !sc.inString
}

func firstBalancedBlock(s string) string {
	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return ""
	}

	var stack []byte
	sc := jsonScanner{}
	for i := start; i < len(s); i++ {
		c := s[i]
		if !sc.step(c) {
			continue
		}
		switch c {
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return ""
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func repairJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	sc := jsonScanner{}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !sc.step(c) {
			b.WriteByte(c)
			continue
		}

		switch {
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
			continue
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end == -1 {
				i = len(s)
			} else {
				i += end + 3
			}
			continue
		case c == ',' && closesAfterSpace(s, i+1):
			continue
		case c == '.' && i+1 < len(s) && isDigit(s[i+1]) && startsNumber(lastNonSpace(b.String())):
			b.WriteByte('0')
		}
		b.WriteByte(c)
	}
	return b.String()
}

func closesAfterSpace(s string, from int) bool {
	for j := from; j < len(s); j++ {
		switch s[j] {
		case ' ', '\t', '\n', '\r':
			continue
		case '}', ']':
			return true
		default:
			return false
		}
	}
	return false
}

func lastNonSpace(s string) byte {
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return s[i]
		}
	}
	return 0
}

func startsNumber(prev byte) bool {
	switch prev {
	case 0, ':', ',', '[', '{', '-':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
