package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Palette is cycled for series, slices and points.
var Palette = []string{
	"#3B82F6", "#10B981", "#F59E0B", "#EF4444",
	"#8B5CF6", "#EC4899", "#06B6D4", "#F97316",
}

const (
	colorBlue   = "#3B82F6"
	colorOrange = "#F97316"
	colorFast   = "#10B981"
	colorMedium = "#F59E0B"
	colorSlow   = "#EF4444"
	colorEmpty  = "#E5E7EB"
)

// ColorAt cycles the palette.
func ColorAt(i int) string {
	return Palette[i%len(Palette)]
}

// mapStops is the choropleth ramp from zero to the largest value.
var mapStops = []string{"#EFF6FF", "#93C5FD", "#3B82F6", "#1E40AF"}

// mapColor interpolates value over mapStops spread evenly up to ceiling.
func mapColor(value, ceiling float64) string {
	if value <= 0 || ceiling <= 0 {
		return colorEmpty
	}
	pos := math.Min(value/ceiling, 1) * float64(len(mapStops)-1)
	i := int(math.Floor(pos))
	if i >= len(mapStops)-1 {
		return mapStops[len(mapStops)-1]
	}
	return mixHex(mapStops[i], mapStops[i+1], pos-float64(i))
}

func mixHex(a, b string, t float64) string {
	ar, ag, ab := parseHex(a)
	br, bg, bb := parseHex(b)
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return fmt.Sprintf("#%02X%02X%02X", mix(ar, br), mix(ag, bg), mix(ab, bb))
}

func parseHex(hex string) (r, g, b uint8) {
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

func rgba(r, g, b int, alpha float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(alpha, 'f', -1, 64))
}
