package algo

import (
	"testing"

	"github.com/huangsam/snowdash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankAnomalies(t *testing.T) {
	t.Run("severity then recency", func(t *testing.T) {
		records := []schema.AnomalyRecord{
			{Date: day("2024-01-05"), Severity: schema.LowSeverity},
			{Date: day("2024-01-03"), Severity: schema.CriticalSeverity},
			{Date: day("2024-01-04"), Severity: schema.HighSeverity},
			{Date: day("2024-01-06"), Severity: schema.CriticalSeverity},
		}

		got := RankAnomalies(records)
		require.Len(t, got, 4)
		assert.Equal(t, day("2024-01-06"), got[0].Date)
		assert.Equal(t, day("2024-01-03"), got[1].Date)
		assert.Equal(t, schema.HighSeverity, got[2].Severity)
		assert.Equal(t, schema.LowSeverity, got[3].Severity)
	})

	t.Run("input is not mutated", func(t *testing.T) {
		records := []schema.AnomalyRecord{
			{Date: day("2024-01-01"), Severity: schema.LowSeverity},
			{Date: day("2024-01-02"), Severity: schema.CriticalSeverity},
		}
		_ = RankAnomalies(records)
		assert.Equal(t, schema.LowSeverity, records[0].Severity)
		assert.Equal(t, schema.CriticalSeverity, records[1].Severity)
	})

	t.Run("ties keep input order", func(t *testing.T) {
		records := []schema.AnomalyRecord{
			{Date: day("2024-01-02"), Severity: schema.HighSeverity, TopContributorName: "first"},
			{Date: day("2024-01-02"), Severity: schema.HighSeverity, TopContributorName: "second"},
		}
		got := RankAnomalies(records)
		assert.Equal(t, "first", got[0].TopContributorName)
		assert.Equal(t, "second", got[1].TopContributorName)
	})

	t.Run("unknown severity ranks last", func(t *testing.T) {
		records := []schema.AnomalyRecord{
			{Date: day("2024-01-09"), Severity: "WEIRD"},
			{Date: day("2024-01-01"), Severity: schema.LowSeverity},
		}
		got := RankAnomalies(records)
		assert.Equal(t, schema.LowSeverity, got[0].Severity)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, RankAnomalies(nil))
	})
}

func TestSeverityRank(t *testing.T) {
	assert.Less(t, SeverityRank(schema.CriticalSeverity), SeverityRank(schema.HighSeverity))
	assert.Less(t, SeverityRank(schema.HighSeverity), SeverityRank(schema.MediumSeverity))
	assert.Less(t, SeverityRank(schema.MediumSeverity), SeverityRank(schema.LowSeverity))
	assert.Less(t, SeverityRank(schema.LowSeverity), SeverityRank(schema.NormalSeverity))
}
