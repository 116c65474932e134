package game

import (
	"context"
	"errors"
	"fmt"

	"zet/internal/comment"
	"zet/pkg/maps"
)

// Verdict is a moderation decision about a new country name.
type Verdict struct {
	Allowed     bool
	Blacklisted bool
	Reason      string
}

// Moderator decides whether a country name may be created.
type Moderator interface {
	Moderate(ctx context.Context, name string) (Verdict, error)
}

// Outcome is the result of resolving one command.
type Outcome struct {
	Events   []Event
	Leftover int
}

// Engine resolves commands against a game state.
type Engine struct {
	catalog   *maps.Catalog
	moderator Moderator
}

// NewEngine creates an engine for a tile catalog.
func NewEngine(catalog *maps.Catalog, moderator Moderator) *Engine {
	return &Engine{
		catalog:   catalog,
		moderator: moderator,
	}
}

// Resolve applies a command posted as reply num with the given roll.
// Rejections are returned as events; an error means moderation failed.
func (e *Engine) Resolve(ctx context.Context, g *GameState, num int, cmd comment.Command, roll int) (Outcome, error) {
	var out Outcome

	switch c := cmd.(type) {
	case comment.DeclareRollBase:
		events, err := e.DeclareRollBase(ctx, g, num, c.Name, c.Color)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Events: events}, nil
	case comment.ClaimTiles:
		out.Events, out.Leftover = e.ClaimTiles(g, c.RollBase, c.Tiles, roll)
	case comment.ExpandNeutral:
		out.Events, out.Leftover = e.ExpandNeutral(g, c.RollBase, roll)
	case comment.AttackPlayer:
		out.Events, out.Leftover = e.AttackPlayer(g, c.RollBase, c.Target, roll)
	default:
		return Outcome{}, fmt.Errorf("unknown command %T", cmd)
	}

	if out.Leftover > 0 {
		out.Events = append(out.Events, Event{Kind: EventSurplus, Count: out.Leftover})
	}
	return out, nil
}

// DeclareRollBase binds reply num to a country, creating the country when
// both its name and color are new.
func (e *Engine) DeclareRollBase(ctx context.Context, g *GameState, num int, name, color string) ([]Event, error) {
	if err := ValidateName(name); err != nil {
		if errors.Is(err, ErrNameTooLong) {
			return []Event{{Kind: EventNameTooLong, Player: name}}, nil
		}
		return []Event{{Kind: EventNameNotCyrillic, Player: name}}, nil
	}

	verdict, err := e.moderate(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("moderate %q: %w", name, err)
	}
	if verdict.Blacklisted {
		return []Event{{Kind: EventNameBlacklisted, Player: name}}, nil
	}
	if !verdict.Allowed {
		return []Event{{Kind: EventCreationDenied, Player: name, Reason: verdict.Reason}}, nil
	}

	existing := g.GetPlayer(name)
	if existing != nil && existing.Color == color {
		g.AddRollBase(num, existing)
		return []Event{{Kind: EventRollBaseAdded, Player: name}}, nil
	}
	if existing != nil {
		return []Event{{Kind: EventNameTaken, Player: name}}, nil
	}
	if g.GetPlayerByColor(color) != nil {
		return []Event{{Kind: EventColorTaken, Player: name}}, nil
	}

	player := NewPlayer(name, color)
	g.AddPlayer(player)
	g.AddRollBase(num, player)
	return []Event{{Kind: EventPlayerCreated, Player: name}}, nil
}

func (e *Engine) moderate(ctx context.Context, name string) (Verdict, error) {
	if e.moderator == nil {
		return Verdict{Allowed: true}, nil
	}
	return e.moderator.Moderate(ctx, name)
}

// grant hands a tile to the player and describes the change.
func grant(g *GameState, player *Player, tile string) Event {
	kind := EventCaptured
	if !player.HasTiles() {
		kind = EventCreated
	}

	ev := Event{Kind: kind, Tile: tile, Player: player.Name}
	if victim := g.Capture(player, tile); victim != nil {
		ev.Victim = victim.Name
	}
	return ev
}
