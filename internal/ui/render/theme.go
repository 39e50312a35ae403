package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/muesli/termenv"
)

// Theme holds the styles of everything the pager draws besides file
// content, which carries its own styles.
type Theme struct {
	Text         tcell.Style
	Filler       tcell.Style
	Gutter       tcell.Style
	Ruler        tcell.Style
	RulerTitle   tcell.Style
	RulerFlag    tcell.Style
	Prompt       tcell.Style
	Message      tcell.Style
	ErrorBanner  tcell.Style
	Match        tcell.Style
	CurrentMatch tcell.Style
	BarFill      tcell.Style
	BarEmpty     tcell.Style
	HelpTitle    tcell.Style
}

// DefaultTheme returns the styles for a terminal color profile. Without
// color support every style falls back to attributes.
func DefaultTheme(profile termenv.Profile) Theme {
	base := tcell.StyleDefault
	switch profile {
	case termenv.Ascii:
		return Theme{
			Text:         base,
			Filler:       base,
			Gutter:       base,
			Ruler:        base.Reverse(true),
			RulerTitle:   base.Reverse(true).Bold(true),
			RulerFlag:    base.Reverse(true),
			Prompt:       base,
			Message:      base.Bold(true),
			ErrorBanner:  base.Reverse(true),
			Match:        base.Underline(true),
			CurrentMatch: base.Reverse(true),
			BarFill:      base.Reverse(true),
			BarEmpty:     base,
			HelpTitle:    base.Reverse(true).Bold(true),
		}
	case termenv.ANSI:
		return Theme{
			Text:         base,
			Filler:       base.Foreground(tcell.ColorNavy),
			Gutter:       base.Foreground(tcell.ColorOlive),
			Ruler:        base.Background(tcell.ColorSilver).Foreground(tcell.ColorBlack),
			RulerTitle:   base.Background(tcell.ColorSilver).Foreground(tcell.ColorBlack).Bold(true),
			RulerFlag:    base.Background(tcell.ColorSilver).Foreground(tcell.ColorNavy),
			Prompt:       base,
			Message:      base.Foreground(tcell.ColorYellow).Bold(true),
			ErrorBanner:  base.Background(tcell.ColorMaroon).Foreground(tcell.ColorWhite),
			Match:        base.Background(tcell.ColorOlive).Foreground(tcell.ColorBlack),
			CurrentMatch: base.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack).Bold(true),
			BarFill:      base.Background(tcell.ColorGreen),
			BarEmpty:     base.Background(tcell.ColorGray),
			HelpTitle:    base.Background(tcell.ColorSilver).Foreground(tcell.ColorBlack).Bold(true),
		}
	default:
		return Theme{
			Text:         base,
			Filler:       base.Foreground(tcell.Color33),
			Gutter:       base.Foreground(tcell.Color244),
			Ruler:        base.Background(tcell.Color236).Foreground(tcell.Color252),
			RulerTitle:   base.Background(tcell.Color236).Foreground(tcell.ColorWhite).Bold(true),
			RulerFlag:    base.Background(tcell.Color236).Foreground(tcell.Color44),
			Prompt:       base,
			Message:      base.Foreground(tcell.Color214).Bold(true),
			ErrorBanner:  base.Background(tcell.Color124).Foreground(tcell.ColorWhite),
			Match:        base.Background(tcell.Color58).Foreground(tcell.Color230),
			CurrentMatch: base.Background(tcell.Color220).Foreground(tcell.ColorBlack).Bold(true),
			BarFill:      base.Background(tcell.Color33),
			BarEmpty:     base.Background(tcell.Color238),
			HelpTitle:    base.Background(tcell.Color236).Foreground(tcell.ColorWhite).Bold(true),
		}
	}
}
