package comment

import (
	"regexp"
	"strings"
)

var (
	rollBaseKeyword = regexp.MustCompile(`(?i)(?:рол{1,10}[\s-]?база|rol{1,10}[\s-]?base)\s*$`)
	colorToken      = regexp.MustCompile(`^#?([0-9a-f]{6})`)
)

// ParseRollBase finds a roll base declaration: the keyword line, then the
// country name, then its color on the next non-blank lines.
func ParseRollBase(text string) (DeclareRollBase, bool) {
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if !rollBaseKeyword.MatchString(line) {
			continue
		}

		nameAt := nextNonBlank(lines, i+1)
		if nameAt < 0 {
			continue
		}
		colorAt := nextNonBlank(lines, nameAt+1)
		if colorAt < 0 {
			continue
		}

		color := Latinize(strings.ToLower(strings.TrimSpace(lines[colorAt])))
		m := colorToken.FindStringSubmatch(color)
		if m == nil {
			continue
		}

		return DeclareRollBase{
			Name:  strings.TrimSpace(lines[nameAt]),
			Color: "#" + m[1],
		}, true
	}

	return DeclareRollBase{}, false
}

func nextNonBlank(lines []string, from int) int {
	for i := from; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return i
		}
	}
	return -1
}
