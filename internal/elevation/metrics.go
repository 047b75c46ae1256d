package elevation

// CountLand returns the number of cells above sea level (value > 0).
func CountLand(g *Grid) int {
	n := 0
	g.each(func(v float64) {
		if v > 0 {
			n++
		}
	})
	return n
}

// CountSubmerged returns the number of cells at the submerged sentinel 0.
func CountSubmerged(g *Grid) int {
	n := 0
	g.each(func(v float64) {
		if v == 0 {
			n++
		}
	})
	return n
}

// CountDangerZone returns the number of land cells at or below
// thresholdMeters, i.e. 0 < v <= thresholdMeters.
func CountDangerZone(g *Grid, thresholdMeters float64) int {
	n := 0
	g.each(func(v float64) {
		if v > 0 && v <= thresholdMeters {
			n++
		}
	})
	return n
}
