package introspection

import (
	"unicode"
	"unicode/utf8"
)

// Decapitalize converts a member-name suffix into a feature name by lower
// casing its first letter. Names that start with two upper-case letters are
// taken to be acronyms and returned unchanged ("URL" stays "URL", "FooBar"
// becomes "fooBar").
func Decapitalize(name string) string {
	if name == "" {
		return name
	}
	first, size := utf8.DecodeRuneInString(name)
	if size < len(name) {
		second, _ := utf8.DecodeRuneInString(name[size:])
		if unicode.IsUpper(first) && unicode.IsUpper(second) {
			return name
		}
	}
	lower := unicode.ToLower(first)
	if lower == first {
		return name
	}
	return string(lower) + name[size:]
}
