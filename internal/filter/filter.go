// Package filter is the synchronous, client-side view over normalized results.
// Nothing here performs I/O or modifies its input.
package filter

import (
	"sort"
	"strings"

	"github.com/dharmasatrya/tboflights/internal/models"
	"github.com/dharmasatrya/tboflights/internal/ranking"
	"github.com/dharmasatrya/tboflights/internal/timeparse"
)

const (
	SortPrice     = "price"
	SortDuration  = "duration"
	SortDeparture = "departure"
	SortArrival   = "arrival"
	SortStops     = "stops"
	SortBestValue = "best_value"
)

// View filters then sorts. An empty sortBy keeps provider order.
func View(items []models.Itinerary, criteria *models.SearchFilters, sortBy, sortOrder string) []models.Itinerary {
	return Sort(Apply(items, criteria), sortBy, sortOrder)
}

// Apply keeps the items matching every criterion, in input order. The result is
// always a fresh slice; applying the same criteria again returns the same list.
func Apply(items []models.Itinerary, criteria *models.SearchFilters) []models.Itinerary {
	result := make([]models.Itinerary, 0, len(items))
	for _, it := range items {
		if criteria == nil || Matches(it, criteria) {
			result = append(result, it)
		}
	}
	return result
}

func Matches(it models.Itinerary, criteria *models.SearchFilters) bool {
	if criteria.NonStopOnly && it.Stops != 0 {
		return false
	}
	if criteria.RefundOnly && !it.IsRefundable {
		return false
	}
	if criteria.LCCOnly && !it.IsLCC {
		return false
	}

	if criteria.PriceMin != nil && it.Total < *criteria.PriceMin {
		return false
	}
	if criteria.PriceMax != nil && it.Total > *criteria.PriceMax {
		return false
	}

	// Multi-carrier itineraries are classified by the first leg's carrier.
	if len(criteria.Airlines) > 0 {
		code := it.FirstAirlineCode()
		found := false
		for _, airline := range criteria.Airlines {
			if strings.EqualFold(code, strings.TrimSpace(airline)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// Sort returns a stably sorted copy; ties keep their relative input order.
func Sort(items []models.Itinerary, sortBy, sortOrder string) []models.Itinerary {
	sorted := make([]models.Itinerary, len(items))
	copy(sorted, items)

	key := strings.ToLower(strings.TrimSpace(sortBy))
	if key == "" || len(sorted) < 2 {
		return sorted
	}

	desc := strings.EqualFold(sortOrder, "desc")

	var values []float64
	switch key {
	case SortPrice:
		values = extract(sorted, func(it models.Itinerary) float64 { return it.Total })
	case SortDuration:
		values = extract(sorted, func(it models.Itinerary) float64 { return float64(it.DurationTotalMins) })
	case SortDeparture:
		values = extract(sorted, func(it models.Itinerary) float64 { return unixSeconds(it.DepartTime) })
	case SortArrival:
		values = extract(sorted, func(it models.Itinerary) float64 { return unixSeconds(it.ArriveTime) })
	case SortStops:
		values = extract(sorted, func(it models.Itinerary) float64 { return float64(it.Stops) })
	case SortBestValue:
		values = ranking.Scores(sorted)
	default:
		// Default to price ascending
		values = extract(sorted, func(it models.Itinerary) float64 { return it.Total })
		desc = false
	}

	idx := make([]int, len(sorted))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		if desc {
			return values[idx[i]] > values[idx[j]]
		}
		return values[idx[i]] < values[idx[j]]
	})

	out := make([]models.Itinerary, len(sorted))
	for i, k := range idx {
		out[i] = sorted[k]
	}
	return out
}

func extract(items []models.Itinerary, fn func(models.Itinerary) float64) []float64 {
	values := make([]float64, len(items))
	for i, it := range items {
		values[i] = fn(it)
	}
	return values
}

func unixSeconds(iso string) float64 {
	t, err := timeparse.Parse(iso)
	if err != nil {
		return 0
	}
	return float64(t.Unix())
}
