package moderation

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"zet/internal/console"
	"zet/internal/game"
)

func testLists(t *testing.T, white, black string) *Lists {
	t.Helper()
	dir := t.TempDir()
	wp := filepath.Join(dir, "white_list.txt")
	bp := filepath.Join(dir, "black_list.txt")
	if white != "" {
		os.WriteFile(wp, []byte(white), 0644)
	}
	if black != "" {
		os.WriteFile(bp, []byte(black), 0644)
	}
	lists, err := LoadLists(wp, bp)
	if err != nil {
		t.Fatalf("LoadLists: %v", err)
	}
	return lists
}

func TestLoadListCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "res", "white_list.txt")
	if _, err := LoadList(path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected list file to be created: %v", err)
	}
}

func TestListModerator(t *testing.T) {
	lists := testLists(t, "^Орда$\n", "хуй\n")
	ctx := context.Background()

	tests := []struct {
		name         string
		defaultAllow bool
		want         game.Verdict
	}{
		{"орда", false, game.Verdict{Allowed: true}},
		{"Великий ХУЙ", true, game.Verdict{Blacklisted: true}},
		{"Империя", true, game.Verdict{Allowed: true}},
		{"Империя", false, game.Verdict{}},
	}

	for _, tt := range tests {
		got, err := NewListModerator(lists, tt.defaultAllow).Moderate(ctx, tt.name)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("Moderate(%q) = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestListAddPersists(t *testing.T) {
	lists := testLists(t, "", "")
	if err := lists.Allow("Орда (с)"); err != nil {
		t.Fatal(err)
	}
	if err := lists.Ban("Орда (с)"); err != nil {
		t.Fatal(err)
	}

	reloaded, err := LoadList(lists.White.path)
	if err != nil {
		t.Fatal(err)
	}
	if !reloaded.Match("орда (с)") || reloaded.Match("Орда (с)ы") {
		t.Error("Expected an exact, case-insensitive pattern")
	}
	if lists.Black.Match("Орда (с)") {
		t.Error("A white-listed name should not be black-listed")
	}
}

func TestConsoleModerator(t *testing.T) {
	lists := testLists(t, "", "")
	ctx := context.Background()

	var out bytes.Buffer
	in := strings.NewReader("\nwhat\nname\nban -r плохое название\nadd\n")
	m := NewConsoleModerator(lists, console.New(in, &out))

	v, err := m.Moderate(ctx, "Мордор")
	if err != nil {
		t.Fatal(err)
	}
	if v.Allowed || v.Reason != "плохое название" {
		t.Errorf("Expected denial with reason, got %+v", v)
	}
	if !strings.Contains(out.String(), "повторить название") {
		t.Error("Expected help to be printed for an unknown command")
	}

	// black-listed now, no question asked
	v, err = m.Moderate(ctx, "Мордор")
	if err != nil || !v.Blacklisted {
		t.Errorf("Expected black-listed verdict, got %+v %v", v, err)
	}

	v, err = m.Moderate(ctx, "Гондор")
	if err != nil || !v.Allowed {
		t.Errorf("Expected add to allow, got %+v %v", v, err)
	}

	if _, err := m.Moderate(ctx, "Рохан"); !errors.Is(err, console.ErrClosed) {
		t.Errorf("Expected ErrClosed at end of input, got %v", err)
	}
}
