package comment

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Clean turns a reply's HTML into plain text: <br> becomes a newline,
// other markup is dropped and entities are decoded.
func Clean(raw string) string {
	z := html.NewTokenizer(strings.NewReader(raw))
	var b strings.Builder

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way we keep what we have
			s := strings.ReplaceAll(b.String(), "\u00a0", " ")
			return norm.NFC.String(s)
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if string(name) == "br" {
				b.WriteByte('\n')
			}
		}
	}
}

var homoglyphs = strings.NewReplacer(
	"а", "a",
	"б", "b",
	"в", "b",
	"с", "c",
	"ц", "c",
	"д", "d",
	"е", "e",
	"ф", "f",
)

// Latinize replaces lower-case Cyrillic letters that players type instead
// of the Latin tile and color letters.
func Latinize(s string) string {
	return homoglyphs.Replace(s)
}
