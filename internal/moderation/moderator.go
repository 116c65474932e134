package moderation

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"zet/internal/console"
	"zet/internal/game"
)

// ListModerator decides from the lists alone. Unknown names get the
// default verdict.
type ListModerator struct {
	lists        *Lists
	defaultAllow bool
}

// NewListModerator creates an automatic moderator.
func NewListModerator(lists *Lists, defaultAllow bool) *ListModerator {
	return &ListModerator{lists: lists, defaultAllow: defaultAllow}
}

// Moderate implements game.Moderator.
func (m *ListModerator) Moderate(ctx context.Context, name string) (game.Verdict, error) {
	if v, ok := listed(m.lists, name); ok {
		return v, nil
	}
	return game.Verdict{Allowed: m.defaultAllow}, nil
}

func listed(lists *Lists, name string) (game.Verdict, bool) {
	if lists.Black.Match(name) {
		return game.Verdict{Blacklisted: true}, true
	}
	if lists.White.Match(name) {
		return game.Verdict{Allowed: true}, true
	}
	return game.Verdict{}, false
}

const consoleHelp = `add                  разрешить и добавить в белый список
ban [-r причина...]  запретить и добавить в черный список
name                 повторить название
help                 эта справка`

// ConsoleModerator asks the operator about names missing from the lists.
type ConsoleModerator struct {
	lists   *Lists
	console *console.Console
}

// NewConsoleModerator creates an interactive moderator.
func NewConsoleModerator(lists *Lists, c *console.Console) *ConsoleModerator {
	return &ConsoleModerator{lists: lists, console: c}
}

// Moderate implements game.Moderator.
func (m *ConsoleModerator) Moderate(ctx context.Context, name string) (game.Verdict, error) {
	if v, ok := listed(m.lists, name); ok {
		return v, nil
	}

	m.console.Printf("Новая страна: %q\n", name)
	for {
		if err := ctx.Err(); err != nil {
			return game.Verdict{}, err
		}

		line, err := m.console.Ask("Модерация (add | ban [-r причина] | name | help): ")
		if err != nil {
			return game.Verdict{}, err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "add":
			if err := m.lists.Allow(name); err != nil {
				return game.Verdict{}, fmt.Errorf("white list: %w", err)
			}
			return game.Verdict{Allowed: true}, nil
		case "ban":
			fs := flag.NewFlagSet("ban", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			withReason := fs.Bool("r", false, "ban reason follows")
			if err := fs.Parse(fields[1:]); err != nil {
				m.console.Println(consoleHelp)
				continue
			}
			if err := m.lists.Ban(name); err != nil {
				return game.Verdict{}, fmt.Errorf("black list: %w", err)
			}
			v := game.Verdict{}
			if *withReason {
				v.Reason = strings.Join(fs.Args(), " ")
			}
			return v, nil
		case "name":
			m.console.Println(name)
		default:
			m.console.Println(consoleHelp)
		}
	}
}
