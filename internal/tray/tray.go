// Package tray renders the 32x32 two-line tray icon described in §4.G:
// a top line (temperature or CPU percent) and a bottom line (CPU/mem
// percent or fan RPM, per configured mode), drawn with a fixed 5x7
// bitmap font that degrades from scale 2 to scale 1 to fit.
package tray

import "strings"

// Size is the tray icon's fixed canvas dimension.
const Size = 32

// glyphWidth and glyphHeight are the bitmap font's cell dimensions.
const (
	glyphWidth  = 5
	glyphHeight = 7
)

// Canvas is a Size x Size alpha+RGB buffer; Pix holds 4 bytes per pixel
// (R, G, B, A) in row-major order, matching the common tray-icon pixel
// buffer shape used by desktop tray APIs.
type Canvas struct {
	Pix [Size * Size * 4]byte
}

// glyphs is the 5x7 bitmap font for digits, '%', 'C', 'M', and '-'. Each
// row is a 5-bit mask, MSB-first, read top to bottom.
var glyphs = map[rune][7]byte{
	'0': {0b01110, 0b10001, 0b10011, 0b10101, 0b11001, 0b10001, 0b01110},
	'1': {0b00100, 0b01100, 0b00100, 0b00100, 0b00100, 0b00100, 0b01110},
	'2': {0b01110, 0b10001, 0b00001, 0b00110, 0b01000, 0b10000, 0b11111},
	'3': {0b11111, 0b00010, 0b00100, 0b00010, 0b00001, 0b10001, 0b01110},
	'4': {0b00010, 0b00110, 0b01010, 0b10010, 0b11111, 0b00010, 0b00010},
	'5': {0b11111, 0b10000, 0b11110, 0b00001, 0b00001, 0b10001, 0b01110},
	'6': {0b00110, 0b01000, 0b10000, 0b11110, 0b10001, 0b10001, 0b01110},
	'7': {0b11111, 0b00001, 0b00010, 0b00100, 0b01000, 0b01000, 0b01000},
	'8': {0b01110, 0b10001, 0b10001, 0b01110, 0b10001, 0b10001, 0b01110},
	'9': {0b01110, 0b10001, 0b10001, 0b01111, 0b00001, 0b00010, 0b01100},
	'%': {0b11001, 0b11010, 0b00100, 0b01000, 0b10000, 0b01011, 0b10011},
	'C': {0b01110, 0b10001, 0b10000, 0b10000, 0b10000, 0b10001, 0b01110},
	'M': {0b10001, 0b11011, 0b10101, 0b10101, 0b10001, 0b10001, 0b10001},
	'-': {0b00000, 0b00000, 0b00000, 0b11111, 0b00000, 0b00000, 0b00000},
}

// Layout holds the text for the two lines; Top is rendered first and
// positioned above Bottom.
type Layout struct {
	Top    string
	Bottom string
}

// Render produces the 32x32 canvas for a Layout, choosing the largest
// scale (2, then 1) that fits each line independently, per §4.G. The
// bottom line's vertical position depends on the top line's chosen
// scale: `3 + 7*top_scale + 2`.
func Render(l Layout) Canvas {
	var c Canvas
	topScale, topText := fitLine(l.Top)
	drawLine(&c, topText, topScale, 3)

	bottomY := 3 + glyphHeight*topScale + 2
	bottomScale, bottomText := fitLine(l.Bottom)
	drawLine(&c, bottomText, bottomScale, bottomY)
	return c
}

// fitLine attempts scale 2 first; if the text overflows the 32px width,
// it drops the trailing character (documented as the unit suffix, e.g.
// '%' or 'C') and retries; if still overflowing, degrades to scale 1.
func fitLine(s string) (scale int, fitted string) {
	return fitLineAtScale(s, 2)
}

func fitLineAtScale(s string, preferred int) (int, string) {
	candidate := s
	if preferred == 2 {
		if lineWidth(candidate, 2) <= Size {
			return 2, candidate
		}
		trimmed := trimTrailingUnit(candidate)
		if lineWidth(trimmed, 2) <= Size {
			return 2, trimmed
		}
		candidate = trimmed
	}
	if lineWidth(candidate, 1) <= Size {
		return 1, candidate
	}
	return 1, trimToFit(candidate, 1)
}

// trimTrailingUnit drops one trailing non-digit character (the unit
// suffix), the documented overflow-recovery rule (§4.G).
func trimTrailingUnit(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	last := r[len(r)-1]
	if last < '0' || last > '9' {
		return string(r[:len(r)-1])
	}
	return s
}

func trimToFit(s string, scale int) string {
	for lineWidth(s, scale) > Size && len(s) > 0 {
		s = s[:len(s)-1]
	}
	return s
}

// lineWidth computes a rendered line's pixel width at the given scale:
// each glyph is glyphWidth wide, separated by a gap (0px at scale 2,
// 1px at scale 1, per §4.G).
func lineWidth(s string, scale int) int {
	if s == "" {
		return 0
	}
	gap := 1
	if scale == 2 {
		gap = 0
	}
	n := len([]rune(s))
	return n*glyphWidth*scale + (n-1)*gap
}

func drawLine(c *Canvas, s string, scale int, y int) {
	gap := 1
	if scale == 2 {
		gap = 0
	}
	width := lineWidth(s, scale)
	x := (Size - width) / 2
	if x < 0 {
		x = 0
	}
	for _, r := range strings.ToUpper(s) {
		bitmap, ok := glyphs[r]
		if !ok {
			x += glyphWidth*scale + gap
			continue
		}
		drawGlyph(c, bitmap, x, y, scale)
		x += glyphWidth*scale + gap
	}
}

// drawGlyph renders one character's bitmap at (x0, y0) scaled, each lit
// pixel rendered twice per §4.G: a shadow one pixel down-right in
// semi-transparent black, then the true pixel in opaque white.
func drawGlyph(c *Canvas, bitmap [7]byte, x0, y0, scale int) {
	for row := 0; row < glyphHeight; row++ {
		bits := bitmap[row]
		for col := 0; col < glyphWidth; col++ {
			if bits&(1<<(glyphWidth-1-col)) == 0 {
				continue
			}
			for sy := 0; sy < scale; sy++ {
				for sx := 0; sx < scale; sx++ {
					px := x0 + col*scale + sx
					py := y0 + row*scale + sy
					setPixel(c, px+1, py+1, 0, 0, 0, 128)
					setPixel(c, px, py, 255, 255, 255, 255)
				}
			}
		}
	}
}

func setPixel(c *Canvas, x, y int, r, g, b, a byte) {
	if x < 0 || x >= Size || y < 0 || y >= Size {
		return
	}
	i := (y*Size + x) * 4
	c.Pix[i] = r
	c.Pix[i+1] = g
	c.Pix[i+2] = b
	c.Pix[i+3] = a
}

// BottomText resolves the bottom line per the configured mode, falling
// back to CPU% if the fan mode is selected but no fan RPM is available
// (§8 scenario S6: a fan value of 0 is absence, not a real reading).
func BottomText(mode string, cpuPct float64, memPct float64, fanRPM *float64) string {
	switch mode {
	case "mem":
		return formatPercent(memPct)
	case "fan":
		if fanRPM != nil && *fanRPM > 0 {
			return formatInt(int(*fanRPM))
		}
		return formatPercent(cpuPct)
	default:
		return formatPercent(cpuPct)
	}
}

// TopText resolves the top line: an integer temperature with 'C' suffix
// when available, else CPU percent with '%' suffix (§4.G).
func TopText(tempC *float64, cpuPct float64) string {
	if tempC != nil {
		return formatInt(int(*tempC)) + "C"
	}
	return formatPercent(cpuPct)
}

func formatPercent(v float64) string {
	return formatInt(int(v)) + "%"
}

func formatInt(v int) string {
	if v < 0 {
		v = 0
	}
	digits := []rune{}
	if v == 0 {
		return "0"
	}
	for v > 0 {
		digits = append([]rune{rune('0' + v%10)}, digits...)
		v /= 10
	}
	return string(digits)
}
