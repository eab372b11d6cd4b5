// Package colormap resolves colormap names to functions from [0, 1] to
// colours. Viridis is the default; the Moreland maps come from gonum/plot.
package colormap

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"

	"github.com/banshee-data/trajectory.report/internal/density"
)

// Default is the colormap used when none is configured.
const Default = "viridis"

// ViridisStops are ten evenly spaced viridis control points.
var ViridisStops = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

var registry = map[string]func() density.Colormap{
	"viridis":           func() density.Colormap { return Stops(ViridisStops) },
	"coolwarm":          func() density.Colormap { return fromPalette(moreland.SmoothBlueRed()) },
	"blackbody":         func() density.Colormap { return fromPalette(moreland.BlackBody()) },
	"extendedblackbody": func() density.Colormap { return fromPalette(moreland.ExtendedBlackBody()) },
	"kindlmann":         func() density.Colormap { return fromPalette(moreland.Kindlmann()) },
	"extendedkindlmann": func() density.Colormap { return fromPalette(moreland.ExtendedKindlmann()) },
}

// Names lists the registered colormaps in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Known reports whether name is registered.
func Known(name string) bool {
	_, ok := registry[strings.ToLower(name)]
	return ok
}

// Lookup returns the named colormap. The empty name selects Default.
func Lookup(name string) (density.Colormap, error) {
	if name == "" {
		name = Default
	}
	f, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown colormap %q (valid: %s)", name, strings.Join(Names(), ", "))
	}
	return f(), nil
}

// Stops builds a colormap by linear interpolation between evenly spaced hex
// colours. Invalid hex strings decode as black.
func Stops(hex []string) density.Colormap {
	cs := make([]color.RGBA, len(hex))
	for i, h := range hex {
		cs[i] = ParseHex(h)
	}
	return func(v float64) color.RGBA {
		if len(cs) == 0 {
			return color.RGBA{A: 0xff}
		}
		v = clamp(v)
		pos := v * float64(len(cs)-1)
		i := int(math.Floor(pos))
		if i >= len(cs)-1 {
			return cs[len(cs)-1]
		}
		f := pos - float64(i)
		a, b := cs[i], cs[i+1]
		return color.RGBA{
			R: lerp(a.R, b.R, f),
			G: lerp(a.G, b.G, f),
			B: lerp(a.B, b.B, f),
			A: 0xff,
		}
	}
}

// ParseHex decodes #rrggbb.
func ParseHex(s string) color.RGBA {
	c := color.RGBA{A: 0xff}
	if len(s) != 7 || s[0] != '#' {
		return c
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return color.RGBA{A: 0xff}
	}
	return c
}

// WithAlpha returns c with its alpha channel set to a in [0, 1]. The colour
// channels are left unpremultiplied for use as plot style colours.
func WithAlpha(c color.RGBA, a float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(clamp(a) * 0xff))}
}

func fromPalette(cm palette.ColorMap) density.Colormap {
	cm.SetMax(1)
	cm.SetMin(0)
	return func(v float64) color.RGBA {
		c, err := cm.At(clamp(v))
		if err != nil {
			return color.RGBA{A: 0xff}
		}
		return color.RGBAModel.Convert(c).(color.RGBA)
	}
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}
