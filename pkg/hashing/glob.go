package hashing

import (
	"fmt"
	"regexp"
	"strings"
)

// compileGlob converts a glob pattern into an anchored regular expression
// evaluated against slash-separated paths relative to a component root.
//
// Supported patterns:
//   - *  matches any characters except / (e.g., *.pyc matches foo.pyc but not a/foo.pyc)
//   - ** matches any characters including /
//   - ?  matches any single character except /
//   - [abc] matches any character in the set
//
// The "**/" form is optional-prefix: "**/dist/**/*" matches both "dist/x"
// and "a/dist/x".
func compileGlob(pattern string) (*regexp.Regexp, error) {
	expr := escapeRegexMeta(pattern)
	expr = escapeUnclosedBrackets(expr)

	// Placeholders keep already-converted globstars from being rewritten
	// by the single-star conversion.
	expr = strings.ReplaceAll(expr, "**/", "\x00GS\x00")
	expr = strings.ReplaceAll(expr, "**", "\x00GA\x00")
	expr = strings.ReplaceAll(expr, "*", "[^/]*")
	expr = strings.ReplaceAll(expr, "?", "[^/]")
	expr = strings.ReplaceAll(expr, "\x00GS\x00", "(.*/)?")
	expr = strings.ReplaceAll(expr, "\x00GA\x00", ".*")

	re, err := regexp.Compile("^" + expr + "$")
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	return re, nil
}

// escapeRegexMeta escapes regexp metacharacters while preserving the glob
// characters * ? [ ]. Backslash is left alone since it cannot appear in a
// slash-normalized relative path.
func escapeRegexMeta(s string) string {
	meta := []string{".", "^", "$", "+", "{", "}", "(", ")", "|"}

	for _, ch := range meta {
		s = strings.ReplaceAll(s, ch, "\\"+ch)
	}

	return s
}

var unclosedBracketRe = regexp.MustCompile(`\[([^\]]*?)$`)

// escapeUnclosedBrackets escapes a bracket expression with no closing
// bracket so it matches literally instead of failing to compile.
func escapeUnclosedBrackets(s string) string {
	return unclosedBracketRe.ReplaceAllString(s, `\[$1`)
}
