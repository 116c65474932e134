// Package comment extracts game commands from reply text.
package comment

// Command is one parsed player instruction. A reply yields at most one.
type Command interface {
	command()
}

// DeclareRollBase registers the reply as a roll base for a country.
type DeclareRollBase struct {
	Name  string
	Color string // "#rrggbb"
}

// ClaimTiles asks for the listed tiles, in order.
type ClaimTiles struct {
	RollBase int
	Tiles    []string
}

// ExpandNeutral grows into the nearest unowned tiles.
type ExpandNeutral struct {
	RollBase int
}

// AttackPlayer takes the nearest tiles of the named country.
type AttackPlayer struct {
	RollBase int
	Target   string
}

func (DeclareRollBase) command() {}
func (ClaimTiles) command()      {}
func (ExpandNeutral) command()   {}
func (AttackPlayer) command()    {}

// Parse returns the command contained in cleaned reply text, or nil.
// A roll base declaration takes precedence over any roll.
func Parse(text string) Command {
	if rb, ok := ParseRollBase(text); ok {
		return rb
	}
	return ParseRoll(text)
}
