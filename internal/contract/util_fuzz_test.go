package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncateName fuzzes TruncateName with random names and widths.
func FuzzTruncateName(f *testing.F) {
	seeds := []struct {
		name  string
		width int
	}{
		{"COMPUTE_WH", 20},
		{"", 5},
		{"ÅÄÖ_WAREHOUSE", 2},
		{"x", -1},
	}
	for _, seed := range seeds {
		f.Add(seed.name, seed.width)
	}

	f.Fuzz(func(t *testing.T, name string, width int) {
		got := TruncateName(name, width)
		if width > 0 && utf8.RuneCountInString(got) > width {
			t.Errorf("TruncateName(%q, %d) = %q exceeds width", name, width, got)
		}
	})
}

// FuzzValidateParams checks that accepted parameters always sit inside their bounds.
func FuzzValidateParams(f *testing.F) {
	f.Add(7, 30, 2.0)
	f.Add(0, 0, 0.0)
	f.Add(30, 90, 3.55)
	f.Fuzz(func(t *testing.T, eff, anom int, threshold float64) {
		params, err := ValidateParams(eff, anom, threshold)
		if err != nil {
			return
		}
		if params.AnomalyThreshold < MinAnomalyThreshold || params.AnomalyThreshold > MaxAnomalyThreshold {
			t.Errorf("threshold %v accepted outside bounds", params.AnomalyThreshold)
		}
		if params.EfficiencyLookbackDays < MinEfficiencyLookbackDays || params.AnomalyLookbackDays > MaxAnomalyLookbackDays {
			t.Errorf("lookback accepted outside bounds: %+v", params)
		}
	})
}
