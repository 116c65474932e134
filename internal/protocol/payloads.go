package protocol

import "zet/internal/game"

// WelcomePayload is sent to every new observer.
type WelcomePayload struct {
	ServerVersion string `json:"serverVersion"`
	Save          string `json:"save"`
}

// PlayerInfo is the public view of a player.
type PlayerInfo struct {
	Name  string   `json:"name"`
	Color string   `json:"color"`
	Tiles []string `json:"tiles"`
}

// StatePayload is a snapshot of the game after an iteration.
type StatePayload struct {
	Save          string       `json:"save"`
	Board         string       `json:"board"`
	Thread        int          `json:"thread"`
	ThreadURL     string       `json:"threadUrl,omitempty"`
	Cursor        int          `json:"cursor"`
	Players       []PlayerInfo `json:"players"`
	PendingReport string       `json:"pendingReport,omitempty"`
}

// ReportPayload is a report that was posted to the thread.
type ReportPayload struct {
	Save   string `json:"save"`
	Board  string `json:"board"`
	Thread int    `json:"thread"`
	Body   string `json:"body"`
}

// NewStatePayload copies the public parts of a game state.
func NewStatePayload(save string, g *game.GameState, threadURL string) StatePayload {
	p := StatePayload{
		Save:          save,
		Board:         g.Board,
		Thread:        g.Thread,
		ThreadURL:     threadURL,
		Cursor:        g.Cursor,
		Players:       make([]PlayerInfo, 0, len(g.Players)),
		PendingReport: g.Report,
	}
	for _, pl := range g.Players {
		tiles := make([]string, len(pl.Tiles))
		copy(tiles, pl.Tiles)
		p.Players = append(p.Players, PlayerInfo{Name: pl.Name, Color: pl.Color, Tiles: tiles})
	}
	return p
}
