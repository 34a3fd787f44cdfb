package aggregate

import "math"

// roundHalfUp rounds to the nearest integer with ties toward +Inf,
// so a mean of -150.5 becomes -150 and 150.5 becomes 151
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// ConsensusPrice is the mean American price rounded to an integer, nil when no prices
func ConsensusPrice(prices []int) *int {
	if len(prices) == 0 {
		return nil
	}
	xs := make([]float64, len(prices))
	for i, p := range prices {
		xs[i] = float64(p)
	}
	v := int(roundHalfUp(mean(xs)))
	return &v
}

// ConsensusPoint is the mean spread/total rounded to the nearest half point, nil when no points
func ConsensusPoint(points []float64) *float64 {
	if len(points) == 0 {
		return nil
	}
	v := roundHalfUp(mean(points)*2) / 2
	return &v
}

// BestPrice is the highest price on offer, the most favorable for a bettor
// taking that side; nil when nobody offered it
func BestPrice(prices []int) *int {
	if len(prices) == 0 {
		return nil
	}
	best := prices[0]
	for _, p := range prices[1:] {
		if p > best {
			best = p
		}
	}
	return &best
}

// LargestMagnitude picks the value with the largest absolute size. Earlier values
// win ties. This is the "best" spread/total rule; it does not track recency or
// closing-line value.
func LargestMagnitude(points []float64) *float64 {
	if len(points) == 0 {
		return nil
	}
	best := points[0]
	for _, p := range points[1:] {
		if math.Abs(p) > math.Abs(best) {
			best = p
		}
	}
	return &best
}
