package outwriter

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/huangsam/snowdash/core/algo"
	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/schema"
)

var sparkGlyphs = []rune("▁▂▃▄▅▆▇█")

const (
	barGlyph      = '█'
	baselineGlyph = '┊'
	chartDate     = "Jan 02"
)

// Sparkline renders values as unicode block glyphs scaled between their min and max.
// A flat series renders at mid height.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var b strings.Builder
	top := len(sparkGlyphs) - 1
	for _, v := range values {
		idx := top / 2
		if hi > lo {
			idx = int(math.Round((v - lo) / (hi - lo) * float64(top)))
		}
		b.WriteRune(sparkGlyphs[idx])
	}
	return b.String()
}

// barCells returns the bar for v scaled to width, with the baseline column marked.
// baselineCol < 0 means no baseline.
func barCells(v, scale float64, width, baselineCol int) string {
	n := 0
	if scale > 0 && v > 0 {
		n = int(math.Round(v / scale * float64(width)))
	}
	n = min(n, width)

	cells := make([]rune, width)
	for i := range cells {
		switch {
		case i == baselineCol:
			cells[i] = baselineGlyph
		case i < n:
			cells[i] = barGlyph
		default:
			cells[i] = ' '
		}
	}
	return strings.TrimRight(string(cells), " ")
}

// writeBarChart draws the annotated daily series as horizontal bars.
// Anomalous days are colored by severity and the baseline is a dotted column.
func writeBarChart(w io.Writer, series []schema.AnnotatedSeriesPoint, baseline *float64, cfg *contract.Config) error {
	if len(series) == 0 {
		return nil
	}
	width := GetChartWidth(cfg)

	scale := 0.0
	for _, p := range series {
		scale = math.Max(scale, p.Value)
	}
	baselineCol := -1
	if baseline != nil {
		scale = math.Max(scale, *baseline)
		if scale > 0 && *baseline >= 0 {
			baselineCol = min(int(math.Round(*baseline/scale*float64(width))), width-1)
		}
	}

	for _, p := range series {
		bar := barCells(p.Value, scale, width, baselineCol)
		label := ""
		if p.IsAnomaly {
			label = " " + string(p.Severity)
		}
		color := schema.Gray
		if p.IsAnomaly {
			color = algo.SeverityColor(p.Severity)
		}
		if _, err := fmt.Fprintf(w, "%s │%s %s%s\n",
			p.Date.Format(chartDate),
			contract.GetColorLabel(color, bar, cfg.UseColors),
			formatDecimal(p.Value),
			contract.GetColorLabel(color, label, cfg.UseColors),
		); err != nil {
			return err
		}
	}
	if baseline != nil {
		if _, err := fmt.Fprintf(w, "%s baseline %s credits/day\n", string(baselineGlyph), formatDecimal(*baseline)); err != nil {
			return err
		}
	}
	return nil
}
