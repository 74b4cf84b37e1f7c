package markdown

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

// wrap breaks text at word boundaries so no line exceeds width terminal
// cells. Words wider than the full width are kept whole rather than split.
func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var cur strings.Builder
	curWidth := 0
	for _, word := range words {
		w := visibleWidth(word)
		if curWidth > 0 && curWidth+1+w > width {
			lines = append(lines, cur.String())
			cur.Reset()
			curWidth = 0
		}
		if curWidth > 0 {
			cur.WriteByte(' ')
			curWidth++
		}
		cur.WriteString(word)
		curWidth += w
	}
	return append(lines, cur.String())
}

// visibleWidth measures the terminal cell width of s, ignoring ANSI style
// sequences and counting grapheme clusters rather than runes so emoji and
// combining characters measure correctly.
func visibleWidth(s string) int {
	s = ansiPattern.ReplaceAllString(s, "")
	total := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		total += runewidth.StringWidth(g.Str())
	}
	return total
}
