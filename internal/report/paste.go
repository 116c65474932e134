// Package report builds the text the bot posts back to the thread.
package report

import (
	"fmt"
	"strings"

	"zet/internal/game"
)

// BlacklistReason is the denial reason shown for black-listed names.
const BlacklistReason = "имя в черном списке"

const bumpLine = "СССССТТТТТОООООПППППРРРРРОООООЛЛЛЛЛЛЛЛЛЛ\n"

// Paste is the pending report text.
type Paste string

// String returns the text to post, without trailing newlines.
func (p Paste) String() string {
	return strings.TrimRight(string(p), "\n")
}

// Empty returns true if there is nothing to post.
func (p Paste) Empty() bool {
	return p.String() == ""
}

// AddReply appends a ">>num message" line.
func (p *Paste) AddReply(num int, message string) {
	*p += Paste(fmt.Sprintf(">>%d %s\n", num, message))
}

// AddLine appends a blank separator unless the paste is empty or already
// ends with one.
func (p *Paste) AddLine() {
	if *p == "" || strings.HasSuffix(string(*p), "\n\n") {
		return
	}
	*p += "\n"
}

// AddBumpLimit appends the banner announcing the end of the thread.
func (p *Paste) AddBumpLimit() {
	*p += Paste("**" + strings.Repeat(bumpLine, 5) + "**")
}

// AddEvents appends one line per event, addressed to reply num.
func (p *Paste) AddEvents(num int, events []game.Event) {
	for _, e := range events {
		if msg := Message(e); msg != "" {
			p.AddReply(num, msg)
		}
	}
}

// Message renders a single event.
func Message(e game.Event) string {
	tile := strings.ToUpper(e.Tile)

	switch e.Kind {
	case game.EventPlayerCreated:
		return "%%страна добавлена%%"
	case game.EventRollBaseAdded:
		return "%%роллбаза добавлена%%"
	case game.EventNameTooLong:
		return fmt.Sprintf("%%%%макс. длина названия - %d символов%%%%", game.MaxNameLength)
	case game.EventNameNotCyrillic:
		return "%%имя может содержать только кириллицу и пробелы%%"
	case game.EventNameBlacklisted:
		return denied(BlacklistReason)
	case game.EventCreationDenied:
		return denied(e.Reason)
	case game.EventNameTaken:
		return "%%имя занято%%"
	case game.EventColorTaken:
		return "%%цвет занят%%"
	case game.EventUnknownRollBase:
		return fmt.Sprintf("%%%%пост >>%d не является роллбазой%%%%", e.Ref)
	case game.EventInvalidTile:
		return fmt.Sprintf("%%%%территория %s не существует%%%%", tile)
	case game.EventAlreadyOwned:
		return fmt.Sprintf("%%%%%s уже под вашим контролем%%%%", tile)
	case game.EventCreated:
		if e.Victim != "" {
			return fmt.Sprintf(`**"%s" создаётся на %s, захватывая клетку "%s"**`, e.Player, tile, e.Victim)
		}
		return fmt.Sprintf(`**"%s" создаётся на %s**`, e.Player, tile)
	case game.EventCaptured:
		if e.Victim != "" {
			return fmt.Sprintf(`**"%s" захватывает %s у "%s"**`, e.Player, tile, e.Victim)
		}
		return fmt.Sprintf(`"%s" захватывает нейтральную %s`, e.Player, tile)
	case game.EventNoRoute:
		return fmt.Sprintf("%%%%нет доступных путей к %s%%%%", tile)
	case game.EventExpandWithoutTiles:
		return "%%нельзя роллить на расширение, если у страны нет территорий%%"
	case game.EventNoFreeTiles:
		return "%%нет доступных для расширения нейтральных территорий%%"
	case game.EventAttackWithoutTiles:
		return "%%нельзя роллить на атаку, если у страны нет территорий%%"
	case game.EventOpponentHasNoTiles:
		return fmt.Sprintf("%%%%%s не имеет территорий%%%%", e.Victim)
	case game.EventNoRouteToOpponent:
		return fmt.Sprintf(`%%%%нет доступных путей к "%s"%%%%`, e.Victim)
	case game.EventNoOpponentMatch:
		return "%%не найдено близких совпадений с указанным именем%%"
	case game.EventSurplus:
		end := "ов"
		if e.Count == 1 {
			end = "а"
		}
		return fmt.Sprintf("%%%%излишек из %d захват%s не был распределён и сгорает%%%%", e.Count, end)
	default:
		return ""
	}
}

func denied(reason string) string {
	if reason == "" {
		return "%%создание запрещено%%"
	}
	return fmt.Sprintf("%%%%создание запрещено, причина: %s%%%%", reason)
}
