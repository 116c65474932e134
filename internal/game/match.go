package game

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// MinSimilarity is the lowest name similarity accepted as a match.
const MinSimilarity = 0.6

// Similarity returns 1 - distance/longest length of the two names,
// compared case-insensitively.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// MatchOpponent finds the other player whose name is closest to query.
// The earliest player wins a tie.
func (g *GameState) MatchOpponent(self *Player, query string) *Player {
	var best *Player
	bestScore := MinSimilarity

	for _, p := range g.Players {
		if p == self {
			continue
		}
		if s := Similarity(p.Name, query); s > bestScore || (best == nil && s == bestScore) {
			best, bestScore = p, s
		}
	}

	return best
}
