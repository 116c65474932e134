package game

import "slices"

// ClaimTiles grants the listed tiles in order while the roll lasts.
// A country without territory takes its first tile anywhere; after that
// every tile must border one it already holds.
func (e *Engine) ClaimTiles(g *GameState, ref int, tiles []string, roll int) ([]Event, int) {
	player := g.RollBaseOwner(ref)
	if player == nil {
		return []Event{{Kind: EventUnknownRollBase, Ref: ref}}, roll
	}

	var events []Event
	pending := make([]string, 0, len(tiles))
	for _, id := range tiles {
		switch {
		case !e.catalog.Exists(id):
			events = append(events, Event{Kind: EventInvalidTile, Tile: id, Player: player.Name})
		case player.Owns(id):
			events = append(events, Event{Kind: EventAlreadyOwned, Tile: id, Player: player.Name})
		default:
			pending = append(pending, id)
		}
	}

	for roll > 0 && len(pending) > 0 {
		next := 0
		if player.HasTiles() {
			next = slices.IndexFunc(pending, func(id string) bool {
				return e.borders(player, id)
			})
		}

		if next < 0 {
			for _, id := range pending {
				events = append(events, Event{Kind: EventNoRoute, Tile: id, Player: player.Name})
			}
			break
		}

		events = append(events, grant(g, player, pending[next]))
		pending = slices.Delete(pending, next, next+1)
		roll--
	}

	return events, roll
}

// borders reports whether the tile has a route to any tile the player holds.
func (e *Engine) borders(player *Player, tile string) bool {
	for _, own := range player.Tiles {
		if e.catalog.IsAdjacent(tile, own) {
			return true
		}
	}
	return false
}
