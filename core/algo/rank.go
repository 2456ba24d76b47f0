package algo

import (
	"slices"

	"github.com/huangsam/snowdash/schema"
)

var severityRanks = map[schema.Severity]int{
	schema.CriticalSeverity: 0,
	schema.HighSeverity:     1,
	schema.MediumSeverity:   2,
	schema.LowSeverity:      3,
}

// SeverityRank orders severities from most to least severe. Unknown severities rank last.
func SeverityRank(severity schema.Severity) int {
	if r, ok := severityRanks[severity]; ok {
		return r
	}
	return len(severityRanks)
}

// RankAnomalies returns a copy of the records sorted by severity, most severe
// first, then by date with the most recent first. Ties keep their input order.
func RankAnomalies(records []schema.AnomalyRecord) []schema.AnomalyRecord {
	ranked := slices.Clone(records)
	slices.SortStableFunc(ranked, func(a, b schema.AnomalyRecord) int {
		if ra, rb := SeverityRank(a.Severity), SeverityRank(b.Severity); ra != rb {
			return ra - rb
		}
		return b.Date.Compare(a.Date)
	})
	return ranked
}
