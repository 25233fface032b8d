// Package export packages finished stills for hand-off: ZIP project packs,
// CSV sheets, QR codes and uploads to S3-compatible storage.
package export

import (
	"regexp"
	"strings"
)

var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d",
	'е': "e", 'ё': "yo", 'ж': "zh", 'з': "z", 'и': "i",
	'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t",
	'у': "u", 'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch",
	'ш': "sh", 'щ': "sch", 'ъ': "", 'ы': "y", 'ь': "",
	'э': "e", 'ю': "yu", 'я': "ya",
}

var (
	unsafeChars = regexp.MustCompile(`[^a-z0-9-]`)
	dashes      = regexp.MustCompile(`-+`)
)

// Slug transliterates Cyrillic, replaces everything outside [a-z0-9-] with a
// dash and cuts the result to limit bytes (0 means no limit).
func Slug(text string, limit int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if t, ok := translit[r]; ok {
			b.WriteString(t)
			continue
		}
		b.WriteRune(r)
	}
	s := unsafeChars.ReplaceAllString(b.String(), "-")
	s = strings.Trim(dashes.ReplaceAllString(s, "-"), "-")
	if limit > 0 && len(s) > limit {
		s = strings.TrimRight(s[:limit], "-")
	}
	return s
}
