// Package textutil holds the slug, title and path normalisation rules shared by
// page requests, output paths and scan.
package textutil

import (
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

var (
	lower = cases.Lower(language.Und)
	upper = cases.Upper(language.Und)
)

// Slugify lowercases s and collapses every run of non-alphanumeric characters
// into a single dash.
func Slugify(s string) string {
	return nonWord.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
}

// TitleCase lowercases s and capitalises the first letter of every space
// separated word, e.g. "hello WORLD" becomes "Hello World" and "about-us"
// becomes "About-us".
func TitleCase(s string) string {
	words := strings.Split(lower.String(s), " ")
	for i, w := range words {
		if r, size := utf8.DecodeRuneInString(w); size > 0 {
			words[i] = upper.String(string(r)) + w[size:]
		}
	}
	return strings.Join(words, " ")
}

// TrimPath removes a single leading and trailing slash.
func TrimPath(p string) string {
	p = strings.TrimPrefix(p, "/")
	return strings.TrimSuffix(p, "/")
}

// SanitizePath slugifies every segment of a slash separated path.
func SanitizePath(p string) string {
	p = TrimPath(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return ""
	}
	segments := strings.Split(p, "/")
	cleaned := segments[:0]
	for _, segment := range segments {
		if s := strings.Trim(Slugify(segment), "-"); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return strings.Join(cleaned, "/")
}

// TrimLines trims surrounding whitespace from every line, keeping line breaks.
func TrimLines(text string) string {
	lines := strings.Split(text, "\n")
	var b strings.Builder
	b.Grow(len(text))
	for _, line := range lines {
		b.WriteString(strings.TrimSpace(line))
		b.WriteByte('\n')
	}
	return b.String()
}

// StripExt removes ext from the end of name when present.
func StripExt(name, ext string) string {
	if ext != "" && strings.HasSuffix(name, ext) {
		return strings.TrimSuffix(name, ext)
	}
	return name
}

// BaseName returns the last slash separated element of view without ext.
func BaseName(view, ext string) string {
	return StripExt(path.Base(strings.ReplaceAll(view, "\\", "/")), ext)
}

// IsInlineTemplate reports whether a view holds template text rather than a path.
func IsInlineTemplate(view string) bool {
	return strings.Contains(view, "{{") || strings.Contains(view, "{%") || strings.ContainsAny(view, "\n<")
}
