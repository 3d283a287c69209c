package utils

import (
	"html"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reScriptBlock = regexp.MustCompile(`(?i)<script[^>]*>[\s\S]*?</script>`)
	reStyleBlock  = regexp.MustCompile(`(?i)<style[^>]*>[\s\S]*?</style>`)
	reUnsafeName  = regexp.MustCompile(`[^a-z0-9._-]+`)

	stripPolicy = bluemonday.StripTagsPolicy()
)

// SanitizeText turns untrusted form input into plain text: script and style
// blocks are dropped, remaining tags stripped and entities decoded. Line breaks are
// kept so project details stay readable.
func SanitizeText(s string) string {
	s = html.UnescapeString(s)
	s = reScriptBlock.ReplaceAllString(s, "")
	s = reStyleBlock.ReplaceAllString(s, "")
	s = html.UnescapeString(stripPolicy.Sanitize(s))

	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := lines[:0]
	for _, line := range lines {
		out = append(out, strings.Join(strings.Fields(line), " "))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// SanitizeLine is SanitizeText collapsed onto a single line.
func SanitizeLine(s string) string {
	return strings.Join(strings.Fields(SanitizeText(s)), " ")
}

// FoldAccents removes combining marks (é -> e, ñ -> n).
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// SearchKey is the normalised form used for case- and accent-insensitive matching.
func SearchKey(s string) string {
	return strings.ToLower(FoldAccents(strings.TrimSpace(s)))
}

// ContainsFold reports whether needle occurs in haystack ignoring case and accents.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(SearchKey(haystack), SearchKey(needle))
}

// RedactEmail keeps the first character of the local part: jane@x.com -> j***@x.com
func RedactEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	_, size := utf8.DecodeRuneInString(email)
	return email[:size] + "***" + email[at:]
}

// NormalizeEmail lowercases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SafeFileName reduces an uploaded file name to [a-z0-9._-], keeping the extension.
func SafeFileName(name string) string {
	name = strings.ToLower(FoldAccents(filepath.Base(name)))
	name = reUnsafeName.ReplaceAllString(name, "-")
	name = strings.ReplaceAll(name, "-.", ".")
	name = strings.Trim(name, "-.")
	if name == "" {
		return "image"
	}
	if len(name) > 80 {
		ext := filepath.Ext(name)
		if len(ext) > 10 {
			ext = ""
		}
		name = name[:80-len(ext)] + ext
	}
	return name
}
