// Package render paints record tables for the terminal and the browser.
// Every renderer picks its columns through the layout package, so the same
// column set degrades the same way everywhere.
package render

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

var (
	defaultHeaderFG  = lipgloss.Color("12")
	defaultHeaderBG  = lipgloss.Color("236")
	defaultKeyColor  = lipgloss.Color("14")
	defaultValue     = lipgloss.Color("248")
	defaultSeparator = lipgloss.Color("240")
	defaultIncome    = lipgloss.Color("34")
	defaultExpense   = lipgloss.Color("160")

	headerStyle    lipgloss.Style
	keyStyle       lipgloss.Style
	valueStyle     lipgloss.Style
	separatorStyle lipgloss.Style
	footerStyle    lipgloss.Style
	incomeStyle    lipgloss.Style
	expenseStyle   lipgloss.Style
)

// Theme controls the colors of rendered tables. Nil fields fall back to the
// defaults (ANSI 256 codes).
type Theme struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	KeyColor       color.Color
	ValueColor     color.Color
	SeparatorColor color.Color
	IncomeColor    color.Color
	ExpenseColor   color.Color
}

func orColor(c, def color.Color) color.Color {
	if c == nil {
		return def
	}
	return c
}

func applyTheme(th Theme) {
	headerStyle = lipgloss.NewStyle().Bold(true).
		Foreground(orColor(th.HeaderFG, defaultHeaderFG)).
		Background(orColor(th.HeaderBG, defaultHeaderBG))
	keyStyle = lipgloss.NewStyle().Foreground(orColor(th.KeyColor, defaultKeyColor))
	valueStyle = lipgloss.NewStyle().Foreground(orColor(th.ValueColor, defaultValue))
	separatorStyle = lipgloss.NewStyle().Foreground(orColor(th.SeparatorColor, defaultSeparator))
	footerStyle = lipgloss.NewStyle().Faint(true)
	incomeStyle = lipgloss.NewStyle().Foreground(orColor(th.IncomeColor, defaultIncome))
	expenseStyle = lipgloss.NewStyle().Foreground(orColor(th.ExpenseColor, defaultExpense))
}

// SetTheme overrides the package styles.
func SetTheme(th Theme) {
	applyTheme(th)
}

//nolint:gochecknoinits // initialize default theme for package consumers
func init() {
	applyTheme(Theme{})
}

// Signed paints an amount string green or red by the sign of n.
func Signed(s string, n int64, noColor bool) string {
	if noColor || n == 0 {
		return s
	}
	if n > 0 {
		return incomeStyle.Render(s)
	}
	return expenseStyle.Render(s)
}
