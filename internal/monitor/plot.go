package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sightline-data/linedup/lines"
)

// SaveReductionPlots writes two PNG files into outputDir: original.png with
// every input segment colored by its group, and reduced.png with the kept
// representatives. Returns the number of files written.
func SaveReductionPlots(outputDir string, original, reduced []lines.Segment, groups [][]int) (int, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output dir: %w", err)
	}

	byIdx := groupIndex(groups)
	colors := groupColors(len(groups))

	pOriginal := plot.New()
	pOriginal.Title.Text = fmt.Sprintf("Original segments (%d, %d groups)", len(original), len(groups))
	pOriginal.X.Label.Text = "X"
	pOriginal.Y.Label.Text = "Y"

	for i, s := range original {
		line, err := segmentLine(s)
		if err != nil {
			return 0, err
		}
		if c, ok := colorFor(colors, byIdx[i]); ok {
			line.Color = c
		}
		line.Width = vg.Points(1)
		pOriginal.Add(line)
	}

	pReduced := plot.New()
	pReduced.Title.Text = fmt.Sprintf("Reduced segments (%d)", len(reduced))
	pReduced.X.Label.Text = "X"
	pReduced.Y.Label.Text = "Y"

	for i, s := range reduced {
		line, err := segmentLine(s)
		if err != nil {
			return 0, err
		}
		if c, ok := colorFor(colors, i); ok {
			line.Color = c
		}
		line.Width = vg.Points(2)
		pReduced.Add(line)
	}

	written := 0
	originalFile := filepath.Join(outputDir, "original.png")
	if err := pOriginal.Save(8*vg.Inch, 8*vg.Inch, originalFile); err != nil {
		return written, fmt.Errorf("save original plot: %w", err)
	}
	written++

	reducedFile := filepath.Join(outputDir, "reduced.png")
	if err := pReduced.Save(8*vg.Inch, 8*vg.Inch, reducedFile); err != nil {
		return written, fmt.Errorf("save reduced plot: %w", err)
	}
	written++

	return written, nil
}

func segmentLine(s lines.Segment) (*plotter.Line, error) {
	line, err := plotter.NewLine(plotter.XYs{
		{X: s.X1, Y: s.Y1},
		{X: s.X2, Y: s.Y2},
	})
	if err != nil {
		return nil, fmt.Errorf("segment line: %w", err)
	}
	return line, nil
}

func colorFor(colors []color.Color, idx int) (color.Color, bool) {
	if len(colors) == 0 {
		return nil, false
	}
	return colors[idx%len(colors)], true
}

// groupColors creates a palette of distinct colors, one per group.
func groupColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var fr, fg, fb float64

	if s == 0 {
		fr, fg, fb = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		fr = hueToRGB(p, q, h+1.0/3.0)
		fg = hueToRGB(p, q, h)
		fb = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(fr * 255), uint8(fg * 255), uint8(fb * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}
