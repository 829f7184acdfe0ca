package runner

import (
	"regexp"
	"strings"
)

// lineBreaks matches a CRLF pair before a lone CR or LF so each counts once.
var lineBreaks = regexp.MustCompile(`\r\n|\r|\n`)

// shellEscaper escapes the characters that stay special inside double quotes.
var shellEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`$`, `\$`,
	"`", "\\`",
)

// SanitizeArgs returns a copy of args with every line break replaced by one space.
func SanitizeArgs(args []string) []string {
	sanitized := make([]string, len(args))
	for i, arg := range args {
		sanitized[i] = lineBreaks.ReplaceAllString(arg, " ")
	}

	return sanitized
}

// QuoteArg wraps arg in double quotes so a POSIX shell reads it as one word.
func QuoteArg(arg string) string {
	return `"` + shellEscaper.Replace(arg) + `"`
}

// CommandLine renders argv as a copy-pasteable shell command.
func CommandLine(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = QuoteArg(arg)
	}

	return strings.Join(quoted, " ")
}
