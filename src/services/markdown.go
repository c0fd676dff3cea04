package services

import (
	"regexp"
	"strings"
)

var markdownRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile("(?s)```[a-zA-Z0-9]*\\n?(.*?)```"), "$1"},
	{regexp.MustCompile("`([^`]*)`"), "$1"},
	{regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`), ""},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`), "$1"},
	{regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s*`), ""},
	{regexp.MustCompile(`(?m)^\s*>\s?`), ""},
	{regexp.MustCompile(`(?m)^\s*[-*+]\s+`), ""},
	{regexp.MustCompile(`(?m)^\s*(?:-{3,}|\*{3,}|_{3,})\s*$`), ""},
	{regexp.MustCompile(`(\*\*|__)(.*?)(\*\*|__)`), "$2"},
	{regexp.MustCompile(`~~(.*?)~~`), "$1"},
	{regexp.MustCompile(`(^|[^*\w])\*([^*\n]+)\*`), "$1$2"},
	{regexp.MustCompile(`(^|[^_\w])_([^_\n]+)_`), "$1$2"},
	{regexp.MustCompile(`<[^>]+>`), ""},
	{regexp.MustCompile(`\n{3,}`), "\n\n"},
}

// StripMarkdown turns a markdown answer into plain text. Link text is kept and
// images are dropped.
func StripMarkdown(s string) string {
	for _, r := range markdownRules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return strings.TrimSpace(s)
}
