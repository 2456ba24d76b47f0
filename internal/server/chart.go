package server

import (
	"fmt"
	"html/template"
	"time"

	"github.com/huangsam/snowdash/core/algo"
	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/schema"
)

// Cost chart geometry in SVG user units.
const (
	chartWidth   = 720.0
	chartHeight  = 220.0
	chartTop     = 12.0
	chartBottom  = 24.0
	barFill      = 0.8
	sparkWidth   = 120.0
	sparkHeight  = 28.0
	sparkBarFill = 0.7
)

type chartBar struct {
	X, Y, Width, Height float64
	Fill                string
	Title               string
}

type chartRule struct {
	Y      float64
	Stroke string
	Label  string
}

type chartLabel struct {
	X    float64
	Text string
}

type chartView struct {
	Width, Height float64
	Bars          []chartBar
	Baseline      *chartRule
	Labels        []chartLabel
}

type pageView struct {
	Dashboard      schema.Dashboard
	Chart          chartView
	RefreshSeconds int
}

var templateFuncs = template.FuncMap{
	"colorHex": func(c schema.Color) string { return algo.ColorHex(c) },
	"day":      func(t time.Time) string { return t.Format("Jan 02") },
	"stamp":    func(t time.Time) string { return t.Format("2006-01-02 15:04 MST") },
	"spark":    sparkBars,
}

func newPageView(dashboard schema.Dashboard, cfg *contract.Config) pageView {
	return pageView{
		Dashboard:      dashboard,
		Chart:          buildChart(dashboard.Anomalies),
		RefreshSeconds: int(cfg.CacheTTL.Seconds()),
	}
}

// buildChart lays out one bar per day colored by severity, plus a dashed baseline rule.
func buildChart(section schema.AnomalySection) chartView {
	view := chartView{Width: chartWidth, Height: chartHeight}
	if len(section.Series) == 0 {
		return view
	}

	peak := 0.0
	for _, p := range section.Series {
		peak = max(peak, p.Value)
	}
	if section.Baseline != nil {
		peak = max(peak, *section.Baseline)
	}
	if peak <= 0 {
		peak = 1
	}

	plotHeight := chartHeight - chartTop - chartBottom
	slot := chartWidth / float64(len(section.Series))
	yFor := func(v float64) float64 {
		return chartTop + plotHeight - max(v, 0)/peak*plotHeight
	}

	for i, p := range section.Series {
		y := yFor(p.Value)
		title := fmt.Sprintf("%s: %.1f credits", p.Date.Format("Jan 02"), p.Value)
		if p.IsAnomaly {
			title += " (" + string(p.Severity) + ")"
		}
		view.Bars = append(view.Bars, chartBar{
			X:      float64(i)*slot + slot*(1-barFill)/2,
			Y:      y,
			Width:  slot * barFill,
			Height: chartTop + plotHeight - y,
			Fill:   algo.SeverityHex(p.Severity),
			Title:  title,
		})
	}

	if section.Baseline != nil {
		view.Baseline = &chartRule{
			Y:      yFor(*section.Baseline),
			Stroke: algo.BaselineHex,
			Label:  fmt.Sprintf("baseline %.1f credits/day", *section.Baseline),
		}
	}

	first, last := section.Series[0], section.Series[len(section.Series)-1]
	view.Labels = []chartLabel{{X: 0, Text: first.Date.Format("Jan 02")}}
	if len(section.Series) > 1 {
		view.Labels = append(view.Labels, chartLabel{X: chartWidth, Text: last.Date.Format("Jan 02")})
	}
	return view
}

// sparkBars lays out a KPI sparkline inside a small fixed box.
func sparkBars(values []float64) []chartBar {
	if len(values) == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	slot := sparkWidth / float64(len(values))
	bars := make([]chartBar, len(values))
	for i, v := range values {
		h := sparkHeight / 2
		if hi > lo {
			h = 2 + (v-lo)/(hi-lo)*(sparkHeight-2)
		}
		bars[i] = chartBar{
			X:      float64(i)*slot + slot*(1-sparkBarFill)/2,
			Y:      sparkHeight - h,
			Width:  slot * sparkBarFill,
			Height: h,
			Fill:   algo.BaselineHex,
		}
	}
	return bars
}
