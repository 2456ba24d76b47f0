// Package algo has the pure shaping and formatting transforms behind the dashboard.
package algo

import (
	"fmt"
	"math"
	"strconv"

	"github.com/huangsam/snowdash/schema"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer renders numbers with English thousands separators.
var printer = message.NewPrinter(language.English)

// metricFormatters maps known trend metric names to their display format.
var metricFormatters = map[string]func(float64) string{
	schema.TotalCreditsMetric: func(v float64) string {
		return printer.Sprintf("%.1f", v)
	},
	schema.QueryCountMetric: func(v float64) string {
		return printer.Sprintf("%.0f", truncate(v))
	},
	schema.AvgDurationMetric: func(v float64) string {
		return fmt.Sprintf("%.2fs", v)
	},
	schema.ErrorRateMetric: func(v float64) string {
		return fmt.Sprintf("%.2f%%", v)
	},
	schema.ActiveWarehousesMetric: func(v float64) string {
		return strconv.FormatFloat(truncate(v), 'f', 0, 64)
	},
	schema.ActiveUsersMetric: func(v float64) string {
		return strconv.FormatFloat(truncate(v), 'f', 0, 64)
	},
}

// lowerIsBetter lists the metrics where an increase is a regression.
var lowerIsBetter = map[string]struct{}{
	schema.TotalCreditsMetric: {},
	schema.AvgDurationMetric:  {},
	schema.ErrorRateMetric:    {},
}

// FormatMetric renders a metric value for display based on the metric name.
// Integer formats truncate toward zero. Unknown names and non-finite values
// use the shortest natural decimal form.
func FormatMetric(name string, value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return naturalForm(value)
	}
	if f, ok := metricFormatters[name]; ok {
		return f(value)
	}
	return naturalForm(value)
}

// DirectionOfImprovement reports whether an increase of the metric is good or bad.
func DirectionOfImprovement(name string) schema.Direction {
	if _, ok := lowerIsBetter[name]; ok {
		return schema.LowerIsBetter
	}
	return schema.HigherIsBetter
}

// FormatDelta renders a week-over-week change as a signed percentage.
func FormatDelta(changePct float64) string {
	return fmt.Sprintf("%+.1f%%", changePct)
}

// DeltaColor colors a change green when it moves in the improving direction
// and red when it moves against it. No change is gray.
func DeltaColor(name string, changePct float64) schema.Color {
	if changePct == 0 || math.IsNaN(changePct) {
		return schema.Gray
	}
	rising := changePct > 0
	if rising == (DirectionOfImprovement(name) == schema.HigherIsBetter) {
		return schema.Green
	}
	return schema.Red
}

// truncate drops the fraction toward zero without an integer conversion,
// so values beyond the int64 range keep their sign. Negative zero becomes zero.
func truncate(v float64) float64 {
	t := math.Trunc(v)
	if t == 0 {
		return 0
	}
	return t
}

func naturalForm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
