// Package termini renders the cell grid of a terminal-state engine onto a
// pixel surface and turns keyboard and pointer input into the byte stream a
// terminal program expects.
//
// This package contains:
//   - Color types and depth-dependent palettes
//   - The cell renderer, including synthesized box-drawing glyphs
//   - Damage tracking and coalesced repaint
//   - The text cursor state machine
//   - Input translation for xterm, vt220 and xterm-r5 key tables
//   - PTY interfaces and the Session event loop
//
// Toolkit packages (termini/gtk, termini/qt, termini/headless) provide the
// surfaces and event sources a Session drives. The engine adapter lives in
// termini/vt.
package termini

// ColorType indicates how a color was specified
type ColorType uint8

const (
	ColorTypeDefault   ColorType = iota // Use terminal default fg/bg (SGR 39/49)
	ColorTypeStandard                   // Standard 16 ANSI colors (0-15)
	ColorTypePalette                    // 256-color palette (0-255)
	ColorTypeTrueColor                  // 24-bit RGB
)

// Color is a cell color as the engine reports it. It is resolved to device
// RGB by a Palette at render time.
type Color struct {
	Type    ColorType // How the color was specified
	Index   uint8     // For Standard (0-15) or Palette (0-255)
	R, G, B uint8     // For TrueColor
}

// DefaultColor is the terminal default foreground or background, depending
// on where it is used.
var DefaultColor = Color{Type: ColorTypeDefault}

// StandardColor creates a standard 16-color ANSI color (index 0-15)
func StandardColor(index int) Color {
	if index < 0 || index > 15 {
		return DefaultColor
	}
	return Color{Type: ColorTypeStandard, Index: uint8(index)}
}

// PaletteColor creates a 256-color palette color (index 0-255)
func PaletteColor(index int) Color {
	if index < 0 || index > 255 {
		return DefaultColor
	}
	return Color{Type: ColorTypePalette, Index: uint8(index)}
}

// TrueColor creates a 24-bit true color
func TrueColor(r, g, b uint8) Color {
	return Color{Type: ColorTypeTrueColor, R: r, G: g, B: b}
}

// IsDefault returns true if this is the default fg/bg color
func (c Color) IsDefault() bool {
	return c.Type == ColorTypeDefault
}

// ToANSIIndex returns the color index for standard/palette colors, or -1 otherwise
func (c Color) ToANSIIndex() int {
	switch c.Type {
	case ColorTypeStandard, ColorTypePalette:
		return int(c.Index)
	default:
		return -1
	}
}

// RGB is a resolved device color.
type RGB struct {
	R, G, B uint8
}

// ToHex returns the color as a hex string (#RRGGBB)
func (c RGB) ToHex() string {
	return "#" + hexByte(c.R) + hexByte(c.G) + hexByte(c.B)
}

func hexByte(b uint8) string {
	const hex = "0123456789ABCDEF"
	return string([]byte{hex[b>>4], hex[b&0x0F]})
}

// ANSIColorsRGB holds the 16 standard colors used at RGB depths.
var ANSIColorsRGB = [16]RGB{
	{0x00, 0x00, 0x00}, // 0: Black
	{0xCD, 0x00, 0x00}, // 1: Red
	{0x00, 0xCD, 0x00}, // 2: Green
	{0xCD, 0xCD, 0x00}, // 3: Yellow
	{0x00, 0x00, 0xEE}, // 4: Blue
	{0xCD, 0x00, 0xCD}, // 5: Magenta
	{0x00, 0xCD, 0xCD}, // 6: Cyan
	{0xE5, 0xE5, 0xE5}, // 7: White
	{0x7F, 0x7F, 0x7F}, // 8: Bright Black
	{0xFF, 0x00, 0x00}, // 9: Bright Red
	{0x00, 0xFF, 0x00}, // 10: Bright Green
	{0xFF, 0xFF, 0x00}, // 11: Bright Yellow
	{0x5C, 0x5C, 0xFF}, // 12: Bright Blue
	{0xFF, 0x00, 0xFF}, // 13: Bright Magenta
	{0x00, 0xFF, 0xFF}, // 14: Bright Cyan
	{0xFF, 0xFF, 0xFF}, // 15: Bright White
}

// cubeLevels are the six intensities of the 6x6x6 color cube.
var cubeLevels = [6]uint8{0x00, 0x5F, 0x87, 0xAF, 0xD7, 0xFF}

// Get256ColorRGB returns the RGB value for a 256-color palette index
func Get256ColorRGB(idx int) RGB {
	if idx < 0 || idx > 255 {
		return ANSIColorsRGB[7]
	}
	if idx < 16 {
		return ANSIColorsRGB[idx]
	}
	if idx < 232 {
		// 6x6x6 color cube
		idx -= 16
		return RGB{cubeLevels[idx/36], cubeLevels[(idx/6)%6], cubeLevels[idx%6]}
	}
	// Grayscale ramp (24 shades)
	gray := uint8(8 + (idx-232)*10)
	return RGB{gray, gray, gray}
}
