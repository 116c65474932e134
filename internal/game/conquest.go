package game

// nearest returns the closest tile accepted by want that borders the
// player. Candidates keep the order in which the scan first reaches them,
// and a tie goes to the earliest one.
func (e *Engine) nearest(player *Player, want func(tile string) bool) (string, bool) {
	type candidate struct {
		tile string
		dist float64
	}
	var found []candidate
	index := make(map[string]int)

	for _, own := range player.Tiles {
		for _, r := range e.catalog.Routes(own) {
			if player.Owns(r) || !want(r) {
				continue
			}
			d := e.catalog.Distance(own, r)
			if i, ok := index[r]; ok {
				found[i].dist = min(found[i].dist, d)
				continue
			}
			index[r] = len(found)
			found = append(found, candidate{tile: r, dist: d})
		}
	}

	best := -1
	for i, c := range found {
		if best < 0 || c.dist < found[best].dist {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return found[best].tile, true
}

// ExpandNeutral grows the country into the nearest neutral tiles.
func (e *Engine) ExpandNeutral(g *GameState, ref int, roll int) ([]Event, int) {
	player := g.RollBaseOwner(ref)
	if player == nil {
		return []Event{{Kind: EventUnknownRollBase, Ref: ref}}, roll
	}
	if !player.HasTiles() {
		return []Event{{Kind: EventExpandWithoutTiles, Player: player.Name}}, roll
	}

	var events []Event
	for roll > 0 {
		tile, ok := e.nearest(player, g.IsFree)
		if !ok {
			events = append(events, Event{Kind: EventNoFreeTiles, Player: player.Name})
			break
		}
		events = append(events, grant(g, player, tile))
		roll--
	}

	return events, roll
}

// AttackPlayer takes the nearest tiles of the country whose name best
// matches target.
func (e *Engine) AttackPlayer(g *GameState, ref int, target string, roll int) ([]Event, int) {
	player := g.RollBaseOwner(ref)
	if player == nil {
		return []Event{{Kind: EventUnknownRollBase, Ref: ref}}, roll
	}
	if !player.HasTiles() {
		return []Event{{Kind: EventAttackWithoutTiles, Player: player.Name}}, roll
	}

	opponent := g.MatchOpponent(player, target)
	if opponent == nil {
		return []Event{{Kind: EventNoOpponentMatch, Player: player.Name}}, roll
	}
	if !opponent.HasTiles() {
		return []Event{{Kind: EventOpponentHasNoTiles, Player: player.Name, Victim: opponent.Name}}, roll
	}

	var events []Event
	for roll > 0 {
		tile, ok := e.nearest(player, opponent.Owns)
		if !ok {
			events = append(events, Event{Kind: EventNoRouteToOpponent, Player: player.Name, Victim: opponent.Name})
			break
		}
		events = append(events, grant(g, player, tile))
		roll--
	}

	return events, roll
}
