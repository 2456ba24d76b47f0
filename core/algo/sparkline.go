package algo

// MinSparklinePoints is the fewest points a sparkline is drawn with.
const MinSparklinePoints = 3

// LastN returns a copy of the last n elements of series in order.
// Shorter series are returned whole. n <= 0 yields an empty slice.
func LastN[T any](series []T, n int) []T {
	if n <= 0 || len(series) == 0 {
		return []T{}
	}
	start := max(len(series)-n, 0)
	out := make([]T, len(series)-start)
	copy(out, series[start:])
	return out
}

// EligibleForSparkline reports whether a series has enough points to draw.
func EligibleForSparkline[T any](series []T) bool {
	return len(series) >= MinSparklinePoints
}
