package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"zet/internal/game"
	"zet/pkg/maps"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	c, err := maps.LoadDefault()
	if err != nil {
		t.Fatal(err)
	}
	r, err := New(c, "", "")
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff8000")
	if err != nil {
		t.Fatal(err)
	}
	if c != (color.RGBA{255, 128, 0, 255}) {
		t.Errorf("Unexpected color %v", c)
	}
	for _, bad := range []string{"ff8000", "#ff80", "#gg0000"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestMapImageFillsOwnedCells(t *testing.T) {
	r := testRenderer(t)
	p := game.NewPlayer("Орда", "#ff0000")
	p.Tiles = []string{"1a"}

	img, err := r.MapImage([]*game.Player{p})
	if err != nil {
		t.Fatal(err)
	}

	red := color.RGBA{255, 0, 0, 255}
	if got := img.RGBAAt(20, 20); got != red {
		t.Errorf("Expected 1a center to be red, got %v", got)
	}
	if got := img.RGBAAt(20+cellRadius-1, 20+cellRadius-1); got != red {
		t.Errorf("Expected the whole cell to be red, got %v", got)
	}
	if got := img.RGBAAt(60, 20); got != cellColor {
		t.Errorf("Expected 1b to stay grey, got %v", got)
	}
	if got := r.base.RGBAAt(20, 20); got != cellColor {
		t.Error("Base map must not be modified")
	}
}

func TestPlayersImage(t *testing.T) {
	r := testRenderer(t)
	a := game.NewPlayer("Орда", "#ff0000")
	a.Tiles = []string{"1a"}
	b := game.NewPlayer("Рим", "#00ff00")

	img, err := r.PlayersImage([]*game.Player{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds().Size(); got != (image.Point{listWidth, rowHeight}) {
		t.Errorf("Expected one row, got %v", got)
	}
	if got := img.RGBAAt(25, 25); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("Expected red swatch, got %v", got)
	}
	if got := img.RGBAAt(6, 6); got != borderDark {
		t.Errorf("Expected swatch border, got %v", got)
	}

	empty, _ := r.PlayersImage(nil)
	if empty.Bounds().Dy() != minHeight {
		t.Errorf("Expected minimum height, got %d", empty.Bounds().Dy())
	}
}

func TestEncodePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	data, err := EncodePNG(img)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("Encoded image does not decode: %v", err)
	}
}

func TestFloodFillStopsAtBorders(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 5, 1))
	for x := 0; x < 5; x++ {
		img.SetRGBA(x, 0, color.RGBA{255, 255, 255, 255})
	}
	img.SetRGBA(2, 0, color.RGBA{0, 0, 0, 255})

	FloodFill(img, 0, 0, color.RGBA{0, 0, 255, 255})
	if img.RGBAAt(1, 0).B != 255 || img.RGBAAt(3, 0).R != 255 {
		t.Error("Fill should stop at a different color")
	}
}
