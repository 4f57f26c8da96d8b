// Package monitor renders debugging visualizations of reduction results:
// an HTML scatter chart for quick in-browser inspection and PNG plots for
// offline comparison.
package monitor

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/sightline-data/linedup/lines"
)

// groupIndex maps each segment index to the position of its group in the
// groups partition.
func groupIndex(groups [][]int) map[int]int {
	byIdx := make(map[int]int)
	for g, group := range groups {
		for _, idx := range group {
			byIdx[idx] = g
		}
	}
	return byIdx
}

// RenderReductionChart writes an HTML scatter chart of the original segments
// (endpoints and midpoint per segment, colored by group) with the kept
// representatives overlaid. Intended as a debugging page, not a UI.
func RenderReductionChart(w io.Writer, title string, original, reduced []lines.Segment, groups [][]int) error {
	byIdx := groupIndex(groups)

	data := make([]opts.ScatterData, 0, len(original)*3)
	maxAbs := 0.0
	for i, s := range original {
		group := float64(byIdx[i])
		mid := s.Midpoint()
		for _, p := range []lines.Point{{X: s.X1, Y: s.Y1}, {X: s.X2, Y: s.Y2}, mid} {
			if math.Abs(p.X) > maxAbs {
				maxAbs = math.Abs(p.X)
			}
			if math.Abs(p.Y) > maxAbs {
				maxAbs = math.Abs(p.Y)
			}
			data = append(data, opts.ScatterData{Value: []interface{}{p.X, p.Y, group}})
		}
	}

	kept := make([]opts.ScatterData, 0, len(reduced)*2)
	for _, s := range reduced {
		kept = append(kept,
			opts.ScatterData{Value: []interface{}{s.X1, s.Y1, float64(len(groups))}},
			opts.ScatterData{Value: []interface{}{s.X2, s.Y2, float64(len(groups))}},
		)
	}

	// Small padding so points at the edges stay visible.
	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	maxGroup := float64(len(groups))
	if maxGroup == 0 {
		maxGroup = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("segments=%d groups=%d kept=%d", len(original), len(groups), len(reduced)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxGroup),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#3e4989", "#26828e", "#35b779", "#b5de2b", "#fde725"}},
		}),
	)

	scatter.AddSeries("original", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))
	scatter.AddSeries("kept", kept, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))

	return scatter.Render(w)
}
