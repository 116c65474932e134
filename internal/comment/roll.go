package comment

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	replyRef    = regexp.MustCompile(`^\s*>>(\d+)(.*)$`)
	rollKeyword = regexp.MustCompile(`(?i)(?:rol|рол)[a-zа-я]*`)
	tileRun     = regexp.MustCompile(`(?i)\d+[a-zа-я]*(?: ?\d+[a-zа-я]*)*`)
	tileGroup   = regexp.MustCompile(`\d+[a-z]+`)
	tilePrefix  = regexp.MustCompile(`^(\d+)([a-z]{2,})$`)
)

var fillerWords = map[string]bool{
	"на":      true,
	"против":  true,
	"атака":   true,
	"атаку":   true,
	"vs":      true,
	"against": true,
	"attack":  true,
}

var expandPrefixes = []string{"нейтрал", "расшир", "экспанс", "neutral", "expand"}

// ParseRoll finds the first ">>N" reference whose roll segment carries the
// roll keyword and classifies the text after the keyword. It returns nil if
// the text holds no roll.
func ParseRoll(text string) Command {
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		m := replyRef.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		segment := m[2]
		if strings.TrimSpace(segment) == "" {
			// the link is usually rendered on a line of its own
			next := nextNonBlank(lines, i+1)
			if next < 0 {
				continue
			}
			segment = lines[next]
		}

		loc := rollKeyword.FindStringIndex(segment)
		if loc == nil {
			continue
		}
		ref, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		return classify(ref, segment[loc[1]:])
	}

	return nil
}

func classify(ref int, arg string) Command {
	for _, run := range tileRun.FindAllString(arg, -1) {
		if strings.IndexFunc(run, unicode.IsLetter) >= 0 {
			return ClaimTiles{RollBase: ref, Tiles: SplitTiles(run)}
		}
	}

	var words []string
	for _, w := range strings.Fields(arg) {
		w = strings.Trim(w, ",.!?:;\"'«»()")
		if w == "" || isNumber(w) {
			continue
		}
		if len(words) == 0 && fillerWords[strings.ToLower(w)] {
			continue
		}
		words = append(words, w)
	}

	if len(words) == 0 {
		return ExpandNeutral{RollBase: ref}
	}
	first := strings.ToLower(words[0])
	for _, p := range expandPrefixes {
		if strings.HasPrefix(first, p) {
			return ExpandNeutral{RollBase: ref}
		}
	}

	return AttackPlayer{RollBase: ref, Target: strings.Join(words, " ")}
}

// SplitTiles turns a tile run into tile ids. Glued groups are split
// ("1a2b" is 1a, 2b), a number with several letters is expanded
// ("3cd" is 3c, 3d) and repeats are dropped.
func SplitTiles(run string) []string {
	var tiles []string
	seen := make(map[string]bool)

	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			tiles = append(tiles, id)
		}
	}

	for _, tok := range strings.Fields(Latinize(strings.ToLower(run))) {
		parts := []string{tok}
		if groups := tileGroup.FindAllString(tok, -1); len(groups) > 1 {
			parts = groups
		}

		for _, p := range parts {
			m := tilePrefix.FindStringSubmatch(p)
			if m == nil {
				add(p)
				continue
			}
			for _, letter := range m[2] {
				add(m[1] + string(letter))
			}
		}
	}

	return tiles
}

func isNumber(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
