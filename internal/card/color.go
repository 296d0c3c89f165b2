package card

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a 24-bit RGB value, 0xRRGGBB.
type Color uint32

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

type gradientStop struct {
	pos   float64
	color colorful.Color
}

// occupancyGradient runs red → yellow → green → blue.
var occupancyGradient = []gradientStop{
	{pos: 0, color: colorful.Color{R: 1, G: 0, B: 0}},
	{pos: 0.3, color: colorful.Color{R: 1, G: 1, B: 0}},
	{pos: 0.6, color: colorful.Color{R: 0, G: 1, B: 0}},
	{pos: 1, color: colorful.Color{R: 0, G: 0, B: 1}},
}

// Occupancy returns players/capacity. A capacity that is absent or not
// positive yields 0, which renders as the red stop.
func Occupancy(players, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return float64(players) / float64(capacity)
}

// Interpolate maps a ratio in [0,1] onto the occupancy gradient using linear
// RGB interpolation between the two bounding stops. Out-of-range ratios are
// clamped, so -Inf is 0 and +Inf is 1; NaN is treated as 0.
func Interpolate(ratio float64) Color {
	if math.IsNaN(ratio) || ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	c := occupancyGradient[len(occupancyGradient)-1].color
	for i := 0; i < len(occupancyGradient)-1; i++ {
		from, to := occupancyGradient[i], occupancyGradient[i+1]
		if ratio > to.pos {
			continue
		}
		t := (ratio - from.pos) / (to.pos - from.pos)
		c = from.color.BlendRgb(to.color, t)
		break
	}

	r, g, b := c.Clamped().RGB255()
	return Color(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}
