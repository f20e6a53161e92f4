package termini

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Depth is the display depth in bits per pixel.
type Depth int

const (
	Depth1  Depth = 1
	Depth2  Depth = 2
	Depth4  Depth = 4
	Depth8  Depth = 8
	Depth24 Depth = 24
)

// Grayscale reports whether colors at this depth are reduced to a gray ramp.
func (d Depth) Grayscale() bool {
	return d <= Depth4
}

// ParseDepth parses a depth setting. Values between the named depths round
// down to the nearest supported one; "rgb" and "truecolor" mean 24.
func ParseDepth(s string) (Depth, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "rgb", "truecolor", "true":
		return Depth24, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid depth %q", s)
	}
	switch {
	case n >= 24:
		return Depth24, nil
	case n >= 8:
		return Depth8, nil
	case n >= 4:
		return Depth4, nil
	case n >= 2:
		return Depth2, nil
	default:
		return Depth1, nil
	}
}

// Defaults names the two palette indices used for default foreground and
// default background cells.
type Defaults struct {
	Fg, Bg uint8
}

// DefaultIndices returns the distinguished indices for the given video mode:
// light-on-dark in reverse (fg 7 on bg 0), dark-on-light otherwise
// (fg 0 on bg 15).
func DefaultIndices(reverse bool) Defaults {
	if reverse {
		return Defaults{Fg: 7, Bg: 0}
	}
	return Defaults{Fg: 0, Bg: 15}
}

var (
	black     = RGB{0x00, 0x00, 0x00}
	white     = RGB{0xFF, 0xFF, 0xFF}
	darkGray  = RGB{0x40, 0x40, 0x40}
	lightGray = RGB{0x80, 0x80, 0x80}
)

// Palette maps the 256 color indices to device colors for one depth. It is
// built once and never mutated.
type Palette struct {
	depth    Depth
	defaults Defaults
	reverse  bool
	colors   [256]RGB
	levels   []RGB // gray ramp for reduced depths, nil at RGB depths
}

// BuildPalette builds the color table for a depth. The result depends only on
// the arguments.
func BuildPalette(depth Depth, defaults Defaults, reverse bool) *Palette {
	p := &Palette{depth: depth, defaults: defaults, reverse: reverse}
	switch {
	case depth <= Depth1:
		p.build1(reverse)
	case depth == Depth2:
		p.build2(reverse)
	case depth <= Depth4:
		p.build4()
	default:
		for i := range p.colors {
			p.colors[i] = Get256ColorRGB(i)
		}
	}
	return p
}

// build1 maps every index to ink except the default background, which is
// paper. Reverse video swaps ink and paper.
func (p *Palette) build1(reverse bool) {
	ink, paper := black, white
	if reverse {
		ink, paper = paper, ink
	}
	p.levels = []RGB{ink, paper}
	for i := range p.colors {
		if uint8(i) == p.defaults.Bg {
			p.colors[i] = paper
		} else {
			p.colors[i] = ink
		}
	}
}

func (p *Palette) build2(reverse bool) {
	p.levels = []RGB{black, darkGray, lightGray, white}
	for i := range p.colors {
		var c RGB
		switch {
		case i < 8:
			c = lightGray
		case i < 16:
			c = darkGray
		default:
			c = p.levels[nearestLevel(Get256ColorRGB(i), p.levels)]
		}
		p.colors[i] = c
	}
	p.colors[p.defaults.Fg] = black
	p.colors[p.defaults.Bg] = white
	if reverse {
		for i := range p.colors {
			p.colors[i] = invert2(p.colors[i])
		}
	}
}

func invert2(c RGB) RGB {
	switch c {
	case black:
		return white
	case white:
		return black
	case darkGray:
		return lightGray
	default:
		return darkGray
	}
}

func (p *Palette) build4() {
	p.levels = make([]RGB, 16)
	for i := range p.levels {
		v := uint8(i * 17)
		p.levels[i] = RGB{v, v, v}
	}
	for i := range p.colors {
		p.colors[i] = p.levels[nearestLevel(Get256ColorRGB(i), p.levels)]
	}
}

// nearestLevel returns the index of the level closest to c in CIE Lab space.
func nearestLevel(c RGB, levels []RGB) int {
	target := toColorful(c)
	best, bestDist := 0, math.MaxFloat64
	for i, l := range levels {
		if d := target.DistanceLab(toColorful(l)); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func toColorful(c RGB) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Depth returns the depth the palette was built for.
func (p *Palette) Depth() Depth {
	return p.depth
}

// Defaults returns the distinguished default indices.
func (p *Palette) Defaults() Defaults {
	return p.defaults
}

// At returns the device color of a palette index.
func (p *Palette) At(idx int) RGB {
	if idx < 0 || idx > 255 {
		return p.Foreground()
	}
	return p.colors[idx]
}

// Foreground returns the default foreground color.
func (p *Palette) Foreground() RGB {
	return p.colors[p.defaults.Fg]
}

// Background returns the default background color.
func (p *Palette) Background() RGB {
	return p.colors[p.defaults.Bg]
}

// Resolve returns the device color of a cell color used as foreground (fg)
// or background.
func (p *Palette) Resolve(c Color, fg bool) RGB {
	switch c.Type {
	case ColorTypeStandard, ColorTypePalette:
		return p.colors[c.Index]
	case ColorTypeTrueColor:
		rgb := RGB{c.R, c.G, c.B}
		if p.levels == nil {
			return rgb
		}
		if p.depth <= Depth1 {
			// Only ink and paper exist; keep text legible.
			if fg {
				return p.levels[0]
			}
			return p.levels[1]
		}
		rgb = p.levels[nearestLevel(rgb, p.levels)]
		if p.reverse && p.depth == Depth2 {
			rgb = invert2(rgb)
		}
		return rgb
	default:
		if fg {
			return p.Foreground()
		}
		return p.Background()
	}
}
