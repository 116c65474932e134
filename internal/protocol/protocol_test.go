package protocol

import (
	"testing"

	"zet/internal/game"
)

func TestStateMessage(t *testing.T) {
	g := game.NewGame("b")
	g.Thread = 10
	p := game.NewPlayer("Орда", "#ff0000")
	p.Tiles = []string{"1a"}
	g.AddPlayer(p)

	msg, err := NewMessage(TypeState, NewStatePayload("main", g, "https://2ch.hk/b/res/10.html"))
	if err != nil {
		t.Fatal(err)
	}
	if msg.ID == "" || msg.Timestamp == 0 {
		t.Errorf("Envelope not filled: %+v", msg)
	}

	// the payload is a copy; later moves must not show up in it
	p.Tiles = append(p.Tiles, "1b")

	var got StatePayload
	if err := msg.ParsePayload(&got); err != nil {
		t.Fatal(err)
	}
	if got.Thread != 10 || len(got.Players) != 1 || len(got.Players[0].Tiles) != 1 {
		t.Errorf("Unexpected payload: %+v", got)
	}
}
