// Package maps handles tile catalog loading and graph queries.
package maps

import (
	"math"
	"sort"
)

// RawTile is the format stored in JSON files.
type RawTile struct {
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Routes []string `json:"routes"`
}

// Tile is a single map tile.
type Tile struct {
	ID     string
	X      float64
	Y      float64
	Routes []string // Adjacent tile IDs, in file order
}

// Catalog is the processed, read-only tile graph.
type Catalog struct {
	tiles map[string]*Tile
	ids   []string
}

// Get returns a tile by ID.
func (c *Catalog) Get(id string) (*Tile, bool) {
	t, ok := c.tiles[id]
	return t, ok
}

// Exists reports whether the tile is part of the map.
func (c *Catalog) Exists(id string) bool {
	_, ok := c.tiles[id]
	return ok
}

// Routes returns the tiles adjacent to id.
func (c *Catalog) Routes(id string) []string {
	t, ok := c.tiles[id]
	if !ok {
		return nil
	}
	return t.Routes
}

// IsAdjacent reports whether b is directly reachable from a.
func (c *Catalog) IsAdjacent(a, b string) bool {
	for _, r := range c.Routes(a) {
		if r == b {
			return true
		}
	}
	return false
}

// Distance returns the straight-line distance between two tile centers.
// Unknown tiles are infinitely far away.
func (c *Catalog) Distance(a, b string) float64 {
	ta, ok := c.tiles[a]
	if !ok {
		return math.Inf(1)
	}
	tb, ok := c.tiles[b]
	if !ok {
		return math.Inf(1)
	}
	return math.Hypot(ta.X-tb.X, ta.Y-tb.Y)
}

// IDs returns all tile IDs in sorted order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Len returns the number of tiles.
func (c *Catalog) Len() int {
	return len(c.tiles)
}

// Bounds returns the largest tile coordinates.
func (c *Catalog) Bounds() (maxX, maxY float64) {
	for _, t := range c.tiles {
		maxX = math.Max(maxX, t.X)
		maxY = math.Max(maxY, t.Y)
	}
	return maxX, maxY
}

// Process builds a catalog from raw tiles.
func Process(raw map[string]RawTile) *Catalog {
	c := &Catalog{
		tiles: make(map[string]*Tile, len(raw)),
		ids:   make([]string, 0, len(raw)),
	}
	for id, r := range raw {
		routes := make([]string, len(r.Routes))
		copy(routes, r.Routes)
		c.tiles[id] = &Tile{ID: id, X: r.X, Y: r.Y, Routes: routes}
		c.ids = append(c.ids, id)
	}
	sort.Strings(c.ids)
	return c
}
