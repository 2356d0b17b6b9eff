package fuzzy

import "math"

// match finds the best approximate occurrence of pattern in text.
//
// It runs an edit-distance scan where a match may start at any text
// position (Sellers). A candidate ending at each position scores
// errors/len(pattern) plus its distance from the expected location
// scaled by e.distance. Candidates above the threshold are rejected.
func (e *Engine) match(pattern, text []rune) (float64, bool) {
	m := len(pattern)
	if m == 0 || len(text) == 0 {
		return 0, false
	}

	maxErrors := int(math.Floor(e.threshold * float64(m)))

	prev := make([]int, m+1)
	prevStart := make([]int, m+1)
	cur := make([]int, m+1)
	curStart := make([]int, m+1)
	for i := range prev {
		prev[i] = i
	}

	best := math.Inf(1)
	for j := 1; j <= len(text); j++ {
		// No match ending at j or later can start before j-m-maxErrors.
		if earliest := j - m - maxErrors; !e.ignoreLocation && earliest > e.location && e.proximity(earliest) > e.threshold {
			break
		}

		cur[0], curStart[0] = 0, j
		for i := 1; i <= m; i++ {
			cost := 1
			if pattern[i-1] == text[j-1] {
				cost = 0
			}

			cur[i], curStart[i] = prev[i-1]+cost, prevStart[i-1]
			if d := cur[i-1] + 1; d < cur[i] {
				cur[i], curStart[i] = d, curStart[i-1]
			}
			if d := prev[i] + 1; d < cur[i] {
				cur[i], curStart[i] = d, prevStart[i]
			}
		}

		if errs := cur[m]; errs <= maxErrors {
			score := float64(errs) / float64(m)
			if !e.ignoreLocation {
				score += e.proximity(curStart[m])
			}
			if score < best {
				best = score
			}
			if best == 0 {
				break
			}
		}

		prev, cur = cur, prev
		prevStart, curStart = curStart, prevStart
	}

	if best > e.threshold {
		return 0, false
	}
	return best, true
}

// proximity is the location penalty for a match starting at start.
func (e *Engine) proximity(start int) float64 {
	off := start - e.location
	if off < 0 {
		off = -off
	}
	if e.distance <= 0 {
		if off == 0 {
			return 0
		}
		return 1
	}
	return float64(off) / float64(e.distance)
}
