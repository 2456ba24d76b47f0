package algo

import "github.com/huangsam/snowdash/schema"

// BaselineHex is the HTML color of the baseline rule on the cost chart.
const BaselineHex = "#00d4aa"

var severityColors = map[schema.Severity]schema.Color{
	schema.CriticalSeverity: schema.Red,
	schema.HighSeverity:     schema.Orange,
	schema.MediumSeverity:   schema.Yellow,
	schema.LowSeverity:      schema.Blue,
}

var gradeColors = map[schema.Grade]schema.Color{
	schema.GradeA: schema.Green,
	schema.GradeB: schema.Blue,
	schema.GradeC: schema.Yellow,
	schema.GradeD: schema.Orange,
	schema.GradeF: schema.Red,
}

var colorHex = map[schema.Color]string{
	schema.Red:    "#ff4b4b",
	schema.Orange: "#ff8c00",
	schema.Yellow: "#ffd700",
	schema.Blue:   "#1f77b4",
	schema.Green:  BaselineHex,
	schema.Gray:   "#4a5568",
}

// SeverityColor maps an anomaly severity to its color token. Unknown severities are gray.
func SeverityColor(severity schema.Severity) schema.Color {
	if c, ok := severityColors[severity]; ok {
		return c
	}
	return schema.Gray
}

// GradeColor maps an efficiency grade to its color token. Unknown grades are gray.
func GradeColor(grade schema.Grade) schema.Color {
	if c, ok := gradeColors[grade]; ok {
		return c
	}
	return schema.Gray
}

// ColorHex returns the HTML color for a token.
func ColorHex(c schema.Color) string {
	if hex, ok := colorHex[c]; ok {
		return hex
	}
	return colorHex[schema.Gray]
}

// SeverityHex returns the HTML color for a severity, NORMAL included.
func SeverityHex(severity schema.Severity) string {
	return ColorHex(SeverityColor(severity))
}
