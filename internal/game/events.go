package game

// EventKind identifies one line of the game report.
type EventKind int

const (
	EventPlayerCreated EventKind = iota
	EventRollBaseAdded
	EventNameTooLong
	EventNameNotCyrillic
	EventNameBlacklisted
	EventCreationDenied
	EventNameTaken
	EventColorTaken
	EventUnknownRollBase
	EventInvalidTile
	EventAlreadyOwned
	EventCreated
	EventCaptured
	EventNoRoute
	EventExpandWithoutTiles
	EventNoFreeTiles
	EventAttackWithoutTiles
	EventNoOpponentMatch
	EventOpponentHasNoTiles
	EventNoRouteToOpponent
	EventSurplus
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventPlayerCreated:
		return "PlayerCreated"
	case EventRollBaseAdded:
		return "RollBaseAdded"
	case EventNameTooLong:
		return "NameTooLong"
	case EventNameNotCyrillic:
		return "NameNotCyrillic"
	case EventNameBlacklisted:
		return "NameBlacklisted"
	case EventCreationDenied:
		return "CreationDenied"
	case EventNameTaken:
		return "NameTaken"
	case EventColorTaken:
		return "ColorTaken"
	case EventUnknownRollBase:
		return "UnknownRollBase"
	case EventInvalidTile:
		return "InvalidTile"
	case EventAlreadyOwned:
		return "AlreadyOwned"
	case EventCreated:
		return "Created"
	case EventCaptured:
		return "Captured"
	case EventNoRoute:
		return "NoRoute"
	case EventExpandWithoutTiles:
		return "ExpandWithoutTiles"
	case EventNoFreeTiles:
		return "NoFreeTiles"
	case EventAttackWithoutTiles:
		return "AttackWithoutTiles"
	case EventNoOpponentMatch:
		return "NoOpponentMatch"
	case EventOpponentHasNoTiles:
		return "OpponentHasNoTiles"
	case EventNoRouteToOpponent:
		return "NoRouteToOpponent"
	case EventSurplus:
		return "Surplus"
	default:
		return "Unknown"
	}
}

// Event is the outcome of one step of a command.
type Event struct {
	Kind   EventKind `json:"kind"`
	Tile   string    `json:"tile,omitempty"`
	Player string    `json:"player,omitempty"`
	Victim string    `json:"victim,omitempty"` // Previous owner of Tile
	Reason string    `json:"reason,omitempty"`
	Ref    int       `json:"ref,omitempty"`   // Referenced post number
	Count  int       `json:"count,omitempty"` // Unspent roll
}
