// Package chunk computes the contiguous index ranges used to bound the
// memory of scalar-field evaluation over large point sets.
package chunk

// Range is a half-open [Start, End) interval of evaluation-point indices.
type Range struct {
	Start, End int
}

// Ranges splits [0, n) into contiguous ranges whose length times systemSize
// stays at or under maxElements. Every range holds at least one point, so a
// very large system still makes progress one point at a time.
func Ranges(n, systemSize, maxElements int) []Range {
	if n <= 0 {
		return nil
	}
	step := 1
	if systemSize > 0 {
		step = maxElements / systemSize
	}
	if step < 1 {
		step = 1
	}

	ranges := make([]Range, 0, (n+step-1)/step)
	for start := 0; start < n; start += step {
		end := start + step
		if end > n {
			end = n
		}
		ranges = append(ranges, Range{Start: start, End: end})
	}
	return ranges
}
