package ranking

import (
	"math"

	"github.com/dharmasatrya/tboflights/internal/models"
)

// Weights tunes the best-value score. Price and duration are min-max scaled to
// 0..100 across the result set before weighting.
type Weights struct {
	Price      float64
	Duration   float64
	Stops      float64
	PerStop    float64
	Refundable float64
}

var DefaultWeights = Weights{
	Price:      0.5,
	Duration:   0.3,
	Stops:      0.2,
	PerStop:    15,
	Refundable: 5,
}

type bounds struct {
	minPrice, maxPrice       float64
	minDuration, maxDuration float64
}

// Scores returns one best-value score per itinerary, index-aligned with the input.
// Lower is better. The itineraries themselves are left untouched.
func Scores(items []models.Itinerary) []float64 {
	scores := make([]float64, len(items))
	if len(items) == 0 {
		return scores
	}

	b := boundsOf(items)
	for i, it := range items {
		scores[i] = score(it, b, DefaultWeights)
	}
	return scores
}

// BestValue scores a single itinerary against the price and duration range of
// the set it was drawn from.
func BestValue(it models.Itinerary, minPrice, maxPrice, minDuration, maxDuration float64) float64 {
	return score(it, bounds{minPrice, maxPrice, minDuration, maxDuration}, DefaultWeights)
}

func score(it models.Itinerary, b bounds, w Weights) float64 {
	price := scale(it.Total, b.minPrice, b.maxPrice)
	duration := scale(float64(it.DurationTotalMins), b.minDuration, b.maxDuration)
	stops := float64(it.Stops) * w.PerStop

	s := price*w.Price + duration*w.Duration + stops*w.Stops
	if it.IsRefundable {
		s -= w.Refundable
	}
	return math.Round(s*100) / 100
}

// scale maps v into 0..100 over [lo, hi]; an empty range scores 0.
func scale(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return (v - lo) / (hi - lo) * 100
}

func boundsOf(items []models.Itinerary) bounds {
	first := items[0]
	b := bounds{
		minPrice:    first.Total,
		maxPrice:    first.Total,
		minDuration: float64(first.DurationTotalMins),
		maxDuration: float64(first.DurationTotalMins),
	}
	for _, it := range items[1:] {
		d := float64(it.DurationTotalMins)
		b.minPrice = math.Min(b.minPrice, it.Total)
		b.maxPrice = math.Max(b.maxPrice, it.Total)
		b.minDuration = math.Min(b.minDuration, d)
		b.maxDuration = math.Max(b.maxDuration, d)
	}
	return b
}
