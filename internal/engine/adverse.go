package engine

import "math"

// Penalty is the expected adverse-selection cost per filled unit,
// alpha*vol*mid: the wider the move we are quoting into, the more an
// informed counterparty costs us. Non-positive or non-finite inputs cost
// nothing.
func Penalty(mid, vol, alpha float64) float64 {
	if alpha <= 0 {
		return 0
	}
	if vol <= 0 || math.IsNaN(vol) || math.IsInf(vol, 0) {
		return 0
	}
	if mid <= 0 || math.IsNaN(mid) || math.IsInf(mid, 0) {
		return 0
	}
	return alpha * vol * mid
}
