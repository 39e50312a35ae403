package overstrike

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// applySGR updates style with the parameters of one SGR sequence.
func applySGR(style tcell.Style, params string) tcell.Style {
	if params == "" {
		return tcell.StyleDefault
	}
	fields := strings.FieldsFunc(params, func(r rune) bool { return r == ';' || r == ':' })
	codes := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			n = 0
		}
		codes = append(codes, n)
	}
	if len(codes) == 0 {
		return tcell.StyleDefault
	}

	for i := 0; i < len(codes); i++ {
		code := codes[i]
		switch {
		case code == 0:
			style = tcell.StyleDefault
		case code == 1:
			style = style.Bold(true)
		case code == 2:
			style = style.Dim(true)
		case code == 3:
			style = style.Italic(true)
		case code == 4:
			style = style.Underline(true)
		case code == 5:
			style = style.Blink(true)
		case code == 7:
			style = style.Reverse(true)
		case code == 9:
			style = style.StrikeThrough(true)
		case code == 22:
			style = style.Bold(false).Dim(false)
		case code == 23:
			style = style.Italic(false)
		case code == 24:
			style = style.Underline(false)
		case code == 25:
			style = style.Blink(false)
		case code == 27:
			style = style.Reverse(false)
		case code == 29:
			style = style.StrikeThrough(false)
		case code >= 30 && code <= 37:
			style = style.Foreground(tcell.PaletteColor(code - 30))
		case code == 38:
			color, used := extendedColor(codes[i+1:])
			i += used
			if color != tcell.ColorNone {
				style = style.Foreground(color)
			}
		case code == 39:
			style = style.Foreground(tcell.ColorDefault)
		case code >= 40 && code <= 47:
			style = style.Background(tcell.PaletteColor(code - 40))
		case code == 48:
			color, used := extendedColor(codes[i+1:])
			i += used
			if color != tcell.ColorNone {
				style = style.Background(color)
			}
		case code == 49:
			style = style.Background(tcell.ColorDefault)
		case code >= 90 && code <= 97:
			style = style.Foreground(tcell.PaletteColor(code - 90 + 8))
		case code >= 100 && code <= 107:
			style = style.Background(tcell.PaletteColor(code - 100 + 8))
		}
	}
	return style
}

// extendedColor parses the arguments following 38 or 48 and reports how
// many codes it consumed.
func extendedColor(args []int) (tcell.Color, int) {
	if len(args) == 0 {
		return tcell.ColorNone, 0
	}
	switch args[0] {
	case 5:
		if len(args) < 2 {
			return tcell.ColorNone, len(args)
		}
		return tcell.PaletteColor(clampByte(args[1])), 2
	case 2:
		if len(args) < 4 {
			return tcell.ColorNone, len(args)
		}
		return tcell.NewRGBColor(int32(clampByte(args[1])), int32(clampByte(args[2])), int32(clampByte(args[3]))), 4
	default:
		return tcell.ColorNone, 1
	}
}

func clampByte(n int) int {
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return n
}
