package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Markup stripping targets ASCII markdown syntax only; content characters,
// including Vietnamese diacritics, pass through untouched.
var (
	reCodeFence = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\n?(.*?)```")
	reInline    = regexp.MustCompile("`([^`\n]*)`")
	reImage     = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	reLink      = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	reBold      = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	reBoldU     = regexp.MustCompile(`__([^_\n]+)__`)
	reItalic    = regexp.MustCompile(`\*([^*\n]+)\*`)
	reHeading   = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	reBullet    = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	reNumbered  = regexp.MustCompile(`(?m)^[ \t]*\d+[.)][ \t]+`)
	reNewlines  = regexp.MustCompile(`\n{3,}`)
)

func sanitizeOnce(s string) string {
	s = reCodeFence.ReplaceAllString(s, "$1")
	s = reInline.ReplaceAllString(s, "$1")
	s = reImage.ReplaceAllString(s, "$1")
	s = reLink.ReplaceAllString(s, "$1")
	s = reBold.ReplaceAllString(s, "$1")
	s = reBoldU.ReplaceAllString(s, "$1")
	s = reItalic.ReplaceAllString(s, "$1")
	s = reHeading.ReplaceAllString(s, "")
	s = reBullet.ReplaceAllString(s, "")
	s = reNumbered.ReplaceAllString(s, "")
	s = reNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Sanitize strips residual markdown artifacts from generated text and
// normalizes whitespace. Runs to a fixpoint, so it is idempotent: every
// pass of sanitizeOnce strictly shortens the string until nothing matches.
func Sanitize(s string) string {
	for {
		next := sanitizeOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

// heading texts meaning "sources", matched after accent stripping
var referenceHeadings = []string{
	"nguon tham khao",
	"tai lieu tham khao",
	"nguon",
	"sources",
	"references",
	"citations",
}

// FoldAccents removes diacritical marks so Vietnamese headings can be
// matched regardless of accenting.
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return strings.NewReplacer("đ", "d", "Đ", "D").Replace(out)
}

// StripReferenceSection drops a trailing "sources" section the model added
// on its own; the reference formatter is the sole authority for citations.
func StripReferenceSection(s string) string {
	lines := strings.Split(s, "\n")
	cut := -1
	for i := len(lines) - 1; i >= 0; i-- {
		if isReferenceHeading(lines[i]) {
			cut = i
			break
		}
	}
	if cut < 0 {
		return s
	}
	return strings.TrimSpace(strings.Join(lines[:cut], "\n"))
}

func isReferenceHeading(line string) bool {
	stripped := strings.TrimSpace(line)
	stripped = strings.TrimLeft(stripped, "#* \t")
	stripped = strings.TrimRight(stripped, ":* \t")
	if stripped == "" || len(stripped) > 40 {
		return false
	}
	folded := strings.ToLower(FoldAccents(stripped))
	for _, h := range referenceHeadings {
		if folded == h {
			return true
		}
	}
	return false
}
