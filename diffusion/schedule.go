// Package diffusion implements the per-step math of the generation loop:
// schedule construction, Adaptive Projected Guidance, and the ODE stepper
// (spec.md §4.1, §4.2, §4.6, §4.7). Schedule construction in this file is
// built on plain float32 slices and the standard library — the one place
// in this module that is justifiably bare-stdlib (see DESIGN.md); APG and
// the stepper work on ml.Array and use gonum and the dit package.
package diffusion

const maxScheduleLength = 20

// admissibleTimesteps is the fixed table of 20 canonical values spanning
// 0.125…1.0 that explicit custom schedules are snapped to, making them
// robust to floating-point drift from round-tripping through a caller's
// own storage format.
var admissibleTimesteps = buildAdmissibleTable()

func buildAdmissibleTable() []float32 {
	const n = 20
	const lo, hi = 0.125, 1.0
	table := make([]float32, n)
	for i := 0; i < n; i++ {
		table[i] = float32(lo + (hi-lo)*float64(i)/float64(n-1))
	}
	return table
}

func snapToAdmissible(t float32) float32 {
	best := admissibleTimesteps[0]
	bestDist := abs32(t - best)
	for _, v := range admissibleTimesteps[1:] {
		if d := abs32(t - v); d < bestDist {
			best, bestDist = v, d
		}
	}
	return best
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// remapShift applies the flow-matching shift remap t' = shift·t /
// (1 + (shift-1)·t), which concentrates steps near the data end when
// shift > 1.
func remapShift(t, shift float32) float32 {
	return shift * t / (1 + (shift-1)*t)
}

func linearSchedule(n int, shift float32) []float32 {
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		t := float32(1) - float32(i)/float32(n)
		if shift != 1 {
			t = remapShift(t, shift)
		}
		out[i] = t
	}
	return out
}

var precomputedTables = map[int][]float32{
	1: linearSchedule(8, 1),
	2: linearSchedule(8, 2),
	3: linearSchedule(8, 3),
}

func nearestShiftBucket(shift float32) int {
	buckets := []int{1, 2, 3}
	best := buckets[0]
	bestDist := abs32(shift - float32(best))
	for _, b := range buckets[1:] {
		if d := abs32(shift - float32(b)); d < bestDist {
			best, bestDist = b, d
		}
	}
	return best
}

// Schedule builds the descending sequence of diffusion timesteps per
// spec.md §4.1. timesteps, when non-empty, takes precedence over
// inferenceSteps.
func Schedule(shift float32, inferenceSteps int, timesteps []float32) []float32 {
	if len(timesteps) > 0 {
		trimmed := dropTrailingZeros(timesteps)
		if len(trimmed) > maxScheduleLength {
			trimmed = trimmed[:maxScheduleLength]
		}
		out := make([]float32, len(trimmed))
		for i, t := range trimmed {
			out[i] = snapToAdmissible(t)
		}
		return out
	}

	if inferenceSteps > 0 {
		n := inferenceSteps
		if n > maxScheduleLength {
			n = maxScheduleLength
		}
		return linearSchedule(n, shift)
	}

	bucket := nearestShiftBucket(shift)
	table := precomputedTables[bucket]
	out := make([]float32, len(table))
	copy(out, table)
	return out
}

func dropTrailingZeros(ts []float32) []float32 {
	end := len(ts)
	for end > 0 && ts[end-1] == 0 {
		end--
	}
	return ts[:end]
}

// IsMonotoneDecreasing is a test helper asserting the universal schedule
// invariant (spec.md §8 property 2).
func IsMonotoneDecreasing(ts []float32) bool {
	for i := 1; i < len(ts); i++ {
		if !(ts[i-1] > ts[i] && ts[i] > 0) {
			return false
		}
	}
	return len(ts) == 0 || ts[len(ts)-1] > 0
}
