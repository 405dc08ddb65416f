package common

import (
	"regexp"
	"strings"
)

// ansiRegex matches ANSI escape sequences (colors, cursor movement, etc.)
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// PagerRegex matches the Huawei pager line, e.g. "---- More ( Press 'Q' to break ) ----".
var PagerRegex = regexp.MustCompile(`-+\s*More\s*\(\s*Press 'Q' to break\s*\)\s*-+`)

// ParamPromptRegex matches the optional-parameter prompt the console shows
// when a command accepts further keywords, e.g. "{ <cr>|ontid<U><0,255> }:".
var ParamPromptRegex = regexp.MustCompile(`\{\s*<cr>[^}]*\}\s*:\s*$`)

// StripANSI removes ANSI escape codes from a string.
// Useful for parsing CLI output that may contain terminal formatting.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// CleanConsole normalizes raw console text: ANSI sequences and carriage
// returns are dropped and pager / parameter prompt residue is removed.
func CleanConsole(s string) string {
	s = StripANSI(s)
	s = strings.ReplaceAll(s, "\r", "")
	s = PagerRegex.ReplaceAllString(s, "")

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if ParamPromptRegex.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
