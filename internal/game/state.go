// Package game contains the territory rules of the thread game.
package game

import (
	"maps"
	"slices"
)

// GameState represents the complete state of a running game.
type GameState struct {
	Board         string            `json:"board"`
	Thread        int               `json:"thread"`
	Cursor        int               `json:"cursor"` // Position of the last processed post
	Players       []*Player         `json:"players"`
	RollBases     map[int]string    `json:"rollBases"` // Post number -> player name
	Report        string            `json:"report"`
	SessionTokens map[string]string `json:"sessionTokens"`

	// BannerPosted is set once the bump limit banner is in the thread.
	BannerPosted bool `json:"bannerPosted,omitempty"`
}

// NewGame creates an empty game for a board. The thread is set later.
func NewGame(board string) *GameState {
	return &GameState{
		Board:         board,
		Players:       make([]*Player, 0),
		RollBases:     make(map[int]string),
		SessionTokens: make(map[string]string),
	}
}

// Clone returns a deep copy of the state.
func (g *GameState) Clone() *GameState {
	c := &GameState{
		Board:         g.Board,
		Thread:        g.Thread,
		Cursor:        g.Cursor,
		Players:       make([]*Player, len(g.Players)),
		RollBases:     maps.Clone(g.RollBases),
		Report:        g.Report,
		SessionTokens: maps.Clone(g.SessionTokens),
		BannerPosted:  g.BannerPosted,
	}
	for i, p := range g.Players {
		c.Players[i] = p.clone()
	}
	if c.RollBases == nil {
		c.RollBases = make(map[int]string)
	}
	if c.SessionTokens == nil {
		c.SessionTokens = make(map[string]string)
	}
	return c
}

// AddPlayer appends a player. Creation order is kept.
func (g *GameState) AddPlayer(player *Player) {
	g.Players = append(g.Players, player)
}

// GetPlayer returns the player with the exact name, or nil.
func (g *GameState) GetPlayer(name string) *Player {
	for _, p := range g.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// GetPlayerByColor returns the player using a color, or nil.
func (g *GameState) GetPlayerByColor(color string) *Player {
	for _, p := range g.Players {
		if p.Color == color {
			return p
		}
	}
	return nil
}

// AddRollBase binds a post number to a player.
func (g *GameState) AddRollBase(num int, player *Player) {
	if g.RollBases == nil {
		g.RollBases = make(map[int]string)
	}
	g.RollBases[num] = player.Name
}

// RollBaseOwner returns the player a post number is bound to, or nil.
func (g *GameState) RollBaseOwner(num int) *Player {
	name, ok := g.RollBases[num]
	if !ok {
		return nil
	}
	return g.GetPlayer(name)
}

// ClearRollBases forgets every roll base. Post numbers do not carry over
// to a new thread.
func (g *GameState) ClearRollBases() {
	g.RollBases = make(map[int]string)
}

// DropEmptyPlayers removes players that own no territory.
func (g *GameState) DropEmptyPlayers() {
	g.Players = slices.DeleteFunc(g.Players, func(p *Player) bool {
		return !p.HasTiles()
	})
}

// ActivePlayers returns the players that own territory, in order.
func ActivePlayers(players []*Player) []*Player {
	active := make([]*Player, 0, len(players))
	for _, p := range players {
		if p.HasTiles() {
			active = append(active, p)
		}
	}
	return active
}
