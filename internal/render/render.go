// Package render draws the map and player list images attached to reports.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"zet/internal/game"
	"zet/pkg/maps"
)

const (
	listWidth  = 960
	rowHeight  = 50
	minHeight  = 10
	fontSize   = 40
	cellRadius = 18 // Half side of a generated map cell
	cellMargin = 20
)

var (
	background = color.RGBA{255, 255, 255, 255}
	cellColor  = color.RGBA{200, 200, 200, 255}
	borderDark = color.RGBA{0, 0, 0, 255}
)

// Renderer draws images for one tile catalog.
type Renderer struct {
	catalog *maps.Catalog
	base    *image.RGBA
	face    font.Face
}

// New creates a renderer. An empty mapPath generates a plain grid map from
// the catalog; an empty fontPath uses the built-in bitmap font.
func New(catalog *maps.Catalog, mapPath, fontPath string) (*Renderer, error) {
	r := &Renderer{catalog: catalog, face: basicfont.Face7x13}

	if mapPath != "" {
		base, err := loadPNG(mapPath)
		if err != nil {
			return nil, err
		}
		r.base = base
	} else {
		r.base = gridMap(catalog)
	}

	if fontPath != "" {
		face, err := loadFace(fontPath)
		if err != nil {
			return nil, err
		}
		r.face = face
	}

	return r, nil
}

func loadPNG(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open map image: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode map image: %w", err)
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

func loadFace(path string) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// gridMap draws one grey square per tile, centered on its coordinate.
func gridMap(catalog *maps.Catalog) *image.RGBA {
	maxX, maxY := catalog.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, int(maxX)+cellMargin, int(maxY)+cellMargin))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	for _, id := range catalog.IDs() {
		t, _ := catalog.Get(id)
		x, y := int(t.X), int(t.Y)
		cell := image.Rect(x-cellRadius, y-cellRadius, x+cellRadius, y+cellRadius)
		draw.Draw(img, cell, image.NewUniform(cellColor), image.Point{}, draw.Src)
	}
	return img
}

// MapImage paints every owned tile in its owner's color.
func (r *Renderer) MapImage(players []*game.Player) (*image.RGBA, error) {
	img := image.NewRGBA(r.base.Bounds())
	copy(img.Pix, r.base.Pix)

	for _, p := range players {
		c, err := ParseColor(p.Color)
		if err != nil {
			return nil, fmt.Errorf("player %s: %w", p.Name, err)
		}
		for _, id := range p.Tiles {
			t, ok := r.catalog.Get(id)
			if !ok {
				continue
			}
			FloodFill(img, int(t.X), int(t.Y), c)
		}
	}
	return img, nil
}

// PlayersImage lists the players that own territory, one row each.
func (r *Renderer) PlayersImage(players []*game.Player) (*image.RGBA, error) {
	active := game.ActivePlayers(players)

	h := max(rowHeight*len(active), minHeight)
	img := image.NewRGBA(image.Rect(0, 0, listWidth, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	m := r.face.Metrics()
	baseline := (rowHeight + m.Ascent.Ceil() - m.Descent.Ceil()) / 2

	for i, p := range active {
		c, err := ParseColor(p.Color)
		if err != nil {
			return nil, fmt.Errorf("player %s: %w", p.Name, err)
		}
		top := i * rowHeight

		draw.Draw(img, image.Rect(5, top+5, 45, top+45), image.NewUniform(borderDark), image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(10, top+10, 40, top+40), image.NewUniform(c), image.Point{}, draw.Src)

		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(borderDark),
			Face: r.face,
			Dot:  fixed.P(55, top+baseline),
		}
		d.DrawString(p.Name)
	}
	return img, nil
}

// EncodePNG returns the image as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseColor reads a "#rrggbb" color.
func ParseColor(s string) (color.RGBA, error) {
	var c color.RGBA
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("invalid color %q", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("invalid color %q: %w", s, err)
	}
	c.A = 255
	return c, nil
}

// FloodFill recolors the 4-connected area of exactly the color at (x, y).
func FloodFill(img *image.RGBA, x, y int, fill color.RGBA) {
	b := img.Bounds()
	if !(image.Point{x, y}.In(b)) {
		return
	}
	target := img.RGBAAt(x, y)
	if target == fill {
		return
	}

	stack := []image.Point{{x, y}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !p.In(b) || img.RGBAAt(p.X, p.Y) != target {
			continue
		}
		img.SetRGBA(p.X, p.Y, fill)
		stack = append(stack,
			image.Point{p.X + 1, p.Y},
			image.Point{p.X - 1, p.Y},
			image.Point{p.X, p.Y + 1},
			image.Point{p.X, p.Y - 1},
		)
	}
}
