// Package bot runs the game: it walks new thread replies through the
// parser and the engine and keeps the thread alive.
package bot

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"zet/internal/comment"
	"zet/internal/forum"
	"zet/internal/game"
	"zet/internal/report"
)

// BumpLimit is the last thread position that is still played.
const BumpLimit = 500

// Processor applies thread replies to a game state.
type Processor struct {
	engine *game.Engine
}

// NewProcessor creates a processor around an engine.
func NewProcessor(engine *game.Engine) *Processor {
	return &Processor{engine: engine}
}

// Advance processes the posts after the cursor in position order and moves
// the cursor past each of them. Posts beyond the bump limit are ignored.
func (p *Processor) Advance(ctx context.Context, g *game.GameState, posts []forum.Post) error {
	sorted := slices.Clone(posts)
	slices.SortStableFunc(sorted, func(a, b forum.Post) int {
		return cmp.Compare(a.Position, b.Position)
	})

	paste := report.Paste(g.Report)
	defer func() { g.Report = string(paste) }()

	for _, post := range sorted {
		if post.Position <= g.Cursor {
			continue
		}
		if post.Position > BumpLimit {
			break
		}

		if err := p.processPost(ctx, g, &paste, post); err != nil {
			return fmt.Errorf("post %d: %w", post.Num, err)
		}
		g.Cursor = post.Position
	}

	return nil
}

func (p *Processor) processPost(ctx context.Context, g *game.GameState, paste *report.Paste, post forum.Post) error {
	cmd := comment.Parse(comment.Clean(post.Comment))
	if cmd == nil {
		return nil
	}

	if rb, ok := cmd.(comment.DeclareRollBase); ok {
		out, err := p.engine.Resolve(ctx, g, post.Num, rb, 0)
		if err != nil {
			return err
		}
		paste.AddEvents(post.Num, out.Events)
		return nil
	}

	roll := comment.RollValue(post.Num)
	if roll <= 0 {
		return nil
	}

	paste.AddLine()
	out, err := p.engine.Resolve(ctx, g, post.Num, cmd, roll)
	if err != nil {
		return err
	}
	paste.AddEvents(post.Num, out.Events)
	paste.AddLine()

	return nil
}
