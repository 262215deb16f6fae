// Package html reduces server error pages to one line of diagnostic text.
//
// ERDDAP reports request errors as a plain-text body of the form
//
//	Error {
//	    code=404;
//	    message="Not Found: Your query produced no matching results.";
//	}
//
// while proxies and servlet containers in front of it answer with HTML. Both
// shapes end up in logs and in the results ledger, so they are flattened here.
// This is a tag stripper, not an HTML parser.
package html

import (
	"strings"
	"unicode/utf8"
)

// ErrorMessage returns the human-readable part of an error body, cut to at
// most max runes (max <= 0 means no limit). The ERDDAP message="..." field,
// with its \" escapes resolved, is preferred; otherwise tags are stripped
// and whitespace collapsed.
func ErrorMessage(body string, max int) string {
	msg, ok := QuotedField(body, "message")
	if !ok {
		msg = Flatten(body)
	}
	return Truncate(strings.TrimSpace(msg), max)
}

// Flatten strips tags and collapses whitespace. The bodies of <script> and
// <style> elements are dropped along with their tags.
func Flatten(s string) string {
	return CollapseWhitespace(StripTags(dropElements(s, "script", "style")))
}

// StripTags removes every <...> sequence from s. An unterminated '<' drops
// the rest of the string.
func StripTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>' && inTag:
			inTag = false
			b.WriteByte(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CollapseWhitespace replaces runs of space, tab, CR and LF with a single
// space and trims both ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	}), " ")
}

// QuotedField returns the value of the first name="..." in s. Inside the
// quotes a backslash escapes the next character, so \" does not end the
// value. It reports false when the field is missing, unterminated or empty.
func QuotedField(s, name string) (string, bool) {
	i := strings.Index(s, name+`="`)
	if i < 0 {
		return "", false
	}
	rest := s[i+len(name)+2:]

	var b strings.Builder
	for j := 0; j < len(rest); j++ {
		switch c := rest[j]; c {
		case '\\':
			if j+1 < len(rest) {
				j++
				b.WriteByte(rest[j])
			}
		case '"':
			if b.Len() == 0 {
				return "", false
			}
			return b.String(), true
		default:
			b.WriteByte(c)
		}
	}
	return "", false
}

// Truncate cuts s to max runes, marking the cut with "...".
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "..."
}

// dropElements removes <name ...>...</name> blocks, case-insensitively.
func dropElements(s string, names ...string) string {
	for _, name := range names {
		open, closing := "<"+name, "</"+name+">"
		for {
			lower := strings.ToLower(s)
			i := strings.Index(lower, open)
			if i < 0 {
				break
			}
			j := strings.Index(lower[i:], closing)
			if j < 0 {
				s = s[:i]
				break
			}
			s = s[:i] + s[i+j+len(closing):]
		}
	}
	return s
}
