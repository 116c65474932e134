package game

import (
	"slices"
	"unicode"
	"unicode/utf8"
)

// MaxNameLength is the longest country name accepted, in runes.
const MaxNameLength = 50

// Player is a country taking part in the game.
type Player struct {
	Name  string   `json:"name"`
	Color string   `json:"color"` // "#rrggbb"
	Tiles []string `json:"tiles"` // In acquisition order
}

// NewPlayer creates a player without territory.
func NewPlayer(name, color string) *Player {
	return &Player{
		Name:  name,
		Color: color,
		Tiles: make([]string, 0),
	}
}

// HasTiles returns true if the player owns any territory.
func (p *Player) HasTiles() bool {
	return len(p.Tiles) > 0
}

// Owns reports whether the player holds the tile.
func (p *Player) Owns(tile string) bool {
	return slices.Contains(p.Tiles, tile)
}

func (p *Player) addTile(tile string) {
	p.Tiles = append(p.Tiles, tile)
}

func (p *Player) removeTile(tile string) bool {
	i := slices.Index(p.Tiles, tile)
	if i < 0 {
		return false
	}
	p.Tiles = slices.Delete(p.Tiles, i, i+1)
	return true
}

func (p *Player) clone() *Player {
	return &Player{
		Name:  p.Name,
		Color: p.Color,
		Tiles: slices.Clone(p.Tiles),
	}
}

// ValidateName checks the length and script of a country name.
func ValidateName(name string) error {
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}

	letters := 0
	for _, r := range name {
		switch {
		case r == ' ':
		case unicode.Is(unicode.Cyrillic, r) && unicode.IsLetter(r):
			letters++
		default:
			return ErrNameNotCyrillic
		}
	}
	if letters == 0 {
		return ErrNameNotCyrillic
	}

	return nil
}
