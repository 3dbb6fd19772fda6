package render

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/cashbook/pkg/columns"
)

// Pair is one line of a detail view.
type Pair struct {
	Key   string
	Value string
}

// DetailPairs lists every column of cols with its formatted value for row,
// regardless of width. Detail views show what the table had to hide.
func DetailPairs(row any, cols []columns.Descriptor) []Pair {
	pairs := make([]Pair, 0, len(cols))
	for _, c := range cols {
		pairs = append(pairs, Pair{Key: c.Header(), Value: c.Cell(row)})
	}
	return pairs
}

// Detail renders pairs as a two-column FIELD/VALUE table sized to its content.
// width limits the table width in cells; 0 means no limit.
func Detail(pairs []Pair, noColor bool, width int) string {
	keyWidth := lipgloss.Width("FIELD")
	valueWidth := lipgloss.Width("VALUE")
	for _, p := range pairs {
		keyWidth = max(keyWidth, lipgloss.Width(p.Key))
		valueWidth = max(valueWidth, lipgloss.Width(singleLine(p.Value)))
	}

	if width > 0 && keyWidth+sepWidth+valueWidth > width {
		available := max(width-sepWidth, 10)
		keyWidth = min(keyWidth, max(available*30/100, 5))
		valueWidth = max(available-keyWidth, 5)
	}

	sep := strings.Repeat(" ", sepWidth)
	var b strings.Builder

	hk := pad("FIELD", keyWidth, columns.AlignLeft)
	hv := pad("VALUE", valueWidth, columns.AlignLeft)
	if !noColor {
		hk = headerStyle.Render(hk)
		hv = headerStyle.Render(hv)
	}
	b.WriteString(strings.TrimRight(hk+sep+hv, " ") + "\n")

	line := strings.Repeat("─", keyWidth+sepWidth+valueWidth)
	if !noColor {
		line = separatorStyle.Render(line)
	}
	b.WriteString(line + "\n")

	for _, p := range pairs {
		k := pad(p.Key, keyWidth, columns.AlignLeft)
		v := pad(singleLine(p.Value), valueWidth, columns.AlignLeft)
		if !noColor {
			k = keyStyle.Render(k)
			v = valueStyle.Render(v)
		}
		b.WriteString(strings.TrimRight(k+sep+v, " ") + "\n")
	}
	return b.String()
}
