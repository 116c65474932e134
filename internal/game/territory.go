package game

// Owner returns the player holding a tile, or nil if it is neutral.
func (g *GameState) Owner(tile string) *Player {
	for _, p := range g.Players {
		if p.Owns(tile) {
			return p
		}
	}
	return nil
}

// IsFree returns true if no player holds the tile.
func (g *GameState) IsFree(tile string) bool {
	return g.Owner(tile) == nil
}

// Capture gives a tile to a player, taking it from its current owner.
// It returns the previous owner, or nil for a neutral tile.
func (g *GameState) Capture(player *Player, tile string) *Player {
	victim := g.Owner(tile)
	if victim == player {
		return nil
	}
	if victim != nil {
		victim.removeTile(tile)
	}
	player.addTile(tile)
	return victim
}

// GetPlayerTerritories returns all tiles owned by a player.
func (g *GameState) GetPlayerTerritories(name string) []string {
	p := g.GetPlayer(name)
	if p == nil {
		return nil
	}
	territories := make([]string, len(p.Tiles))
	copy(territories, p.Tiles)
	return territories
}
