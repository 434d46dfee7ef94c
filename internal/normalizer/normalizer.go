// Package normalizer turns a raw provider search response into a flat list of
// self-contained itineraries. It is a pure function of its input: no I/O, no logging.
package normalizer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dharmasatrya/tboflights/internal/models"
	"github.com/dharmasatrya/tboflights/internal/tbo"
	"github.com/dharmasatrya/tboflights/internal/timeparse"
	"github.com/dharmasatrya/tboflights/pkg/currency"
)

type SearchFailedError struct {
	Message string
}

func (e *SearchFailedError) Error() string {
	return e.Message
}

type Meta struct {
	TraceID     string `json:"traceId"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

type Result struct {
	Items []models.Itinerary `json:"items"`
	Meta  Meta               `json:"meta"`
}

type Normalizer struct {
	now func() time.Time
}

// New returns a Normalizer; now is the clock behind the bad-timestamp fallback
// and defaults to time.Now.
func New(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

var std = New(nil)

func Normalize(env *tbo.SearchEnvelope) (*Result, error) {
	return std.Normalize(env)
}

func (n *Normalizer) Normalize(env *tbo.SearchEnvelope) (*Result, error) {
	if env == nil || !env.Success {
		return nil, &SearchFailedError{Message: "Search failed"}
	}

	resp := env.Response
	if resp.ResponseStatus != tbo.ResponseStatusSuccess {
		msg := resp.Error.ErrorMessage
		if msg == "" {
			msg = "No valid results"
		}
		return nil, &SearchFailedError{Message: msg}
	}

	raws := FlattenResults(resp.Results)
	items := make([]models.Itinerary, 0, len(raws))
	for _, raw := range raws {
		it, ok := n.itinerary(raw)
		if !ok {
			continue
		}
		items = append(items, it)
	}

	return &Result{
		Items: items,
		Meta: Meta{
			TraceID:     string(resp.TraceId),
			Origin:      string(resp.Origin),
			Destination: string(resp.Destination),
		},
	}, nil
}

// FlattenResults flattens Results to depth two: Itinerary[], Itinerary[][] and
// Itinerary[][][] all come out as one ordered Itinerary list. Itineraries are
// objects, so segment arrays inside them are never reached.
func FlattenResults(results json.RawMessage) []json.RawMessage {
	return flattenOnce(flattenOnce(tbo.Elements(results)))
}

// FlattenSegments returns the ordered segment list whether the provider sent one
// list per leg ([[s1],[s2]]) or a flat list ([s1,s2]).
func FlattenSegments(segments json.RawMessage) []json.RawMessage {
	elems := tbo.Elements(segments)
	if len(elems) == 0 || !tbo.IsArray(elems[0]) {
		return elems
	}
	return flattenOnce(elems)
}

func flattenOnce(elems []json.RawMessage) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(elems))
	for _, el := range elems {
		if tbo.IsArray(el) {
			out = append(out, tbo.Elements(el)...)
			continue
		}
		out = append(out, el)
	}
	return out
}

func (n *Normalizer) itinerary(raw json.RawMessage) (models.Itinerary, bool) {
	var r tbo.RawItinerary
	if err := json.Unmarshal(raw, &r); err != nil {
		return models.Itinerary{}, false
	}

	var rawSegments []tbo.RawSegment
	for _, s := range FlattenSegments(r.Segments) {
		var seg tbo.RawSegment
		if err := json.Unmarshal(s, &seg); err != nil {
			continue
		}
		rawSegments = append(rawSegments, seg)
	}
	if len(rawSegments) == 0 {
		return models.Itinerary{}, false
	}

	segments := make([]models.SegmentDetail, len(rawSegments))
	for i, s := range rawSegments {
		segments[i] = segmentDetail(s)
	}
	first, last := rawSegments[0], rawSegments[len(rawSegments)-1]

	baseFare := float64(r.Fare.BaseFare)
	tax := float64(r.Fare.Tax)
	yq := float64(r.Fare.YQTax)
	otherTaxes := float64(r.Fare.OtherTaxes)
	total := baseFare + tax + yq + otherTaxes
	curr := string(r.Fare.Currency)

	depart, departOK := timeparse.ParseOrNow(string(first.Origin.DepTime), n.now)
	arrive, arriveOK := timeparse.ParseOrNow(string(last.Destination.ArrTime), n.now)

	duration := 0
	if departOK && arriveOK {
		duration = int(arrive.Sub(depart).Minutes())
	}
	if duration <= 0 {
		duration = providerDuration(r, rawSegments)
	}

	baggage := nonEmpty(string(first.Baggage), models.BaggageNotSpecified)
	cabinBaggage := nonEmpty(string(first.CabinBaggage), models.BaggageNotSpecified)
	seats := 0
	if first.NoOfSeatAvailable != nil {
		seats = int(*first.NoOfSeatAvailable)
	}

	stops := len(segments) - 1
	if stops < 0 {
		stops = 0
	}

	return models.Itinerary{
		ResultIndex:         strings.TrimSpace(string(r.ResultIndex)),
		Currency:            curr,
		BaseFare:            baseFare,
		Tax:                 tax,
		YQ:                  yq,
		OtherTaxes:          otherTaxes,
		Total:               total,
		TotalFormatted:      currency.Format(total, curr),
		IsRefundable:        bool(r.IsRefundable),
		IsLCC:               bool(r.IsLCC),
		FreeMeal:            bool(r.IsFreeMealAvailable),
		BookableWithoutSeat: bool(r.IsBookableIfSeatNotAvailable),
		AirlineCode:         segments[0].AirlineCode,
		AirlineName:         segments[0].AirlineName,
		Segments:            segments,
		Stops:               stops,
		DepartTime:          timeparse.FormatISO(depart),
		ArriveTime:          timeparse.FormatISO(arrive),
		DurationTotalMins:   duration,
		Baggage:             baggage,
		CabinBaggage:        cabinBaggage,
		SeatAvailable:       seats,
		FareRules:           fareRules(r.MiniFareRules),
		SSROptions:          ssrOptions(bool(r.IsFreeMealAvailable), baggage, seats),
	}, true
}

func segmentDetail(s tbo.RawSegment) models.SegmentDetail {
	d := models.SegmentDetail{
		AirlineCode:     string(s.Airline.AirlineCode),
		AirlineName:     string(s.Airline.AirlineName),
		FlightNumber:    string(s.Airline.FlightNumber),
		Origin:          string(s.Origin.Airport.AirportCode),
		OriginCity:      string(s.Origin.Airport.CityName),
		Destination:     string(s.Destination.Airport.AirportCode),
		DestinationCity: string(s.Destination.Airport.CityName),
		DepTime:         string(s.Origin.DepTime),
		ArrTime:         string(s.Destination.ArrTime),
		Baggage:         string(s.Baggage),
		CabinBaggage:    string(s.CabinBaggage),
		Cabin:           CabinName(int(s.CabinClass)),
	}
	if s.Duration != nil {
		mins := int(*s.Duration)
		d.DurationMins = &mins
	}
	if s.NoOfSeatAvailable != nil {
		seats := int(*s.NoOfSeatAvailable)
		d.SeatAvailable = &seats
	}
	return d
}

// CabinName maps the provider's numeric cabin code; anything unknown is Economy.
func CabinName(code int) string {
	switch code {
	case 2:
		return models.CabinPremiumEconomy
	case 3:
		return models.CabinBusiness
	case 4:
		return models.CabinFirst
	default:
		return models.CabinEconomy
	}
}

// providerDuration is used when departure/arrival are not both valid or do not
// yield a positive span:
// an itinerary-level Duration if sent, else the sum of segment durations, else 0.
func providerDuration(r tbo.RawItinerary, segments []tbo.RawSegment) int {
	if r.Duration > 0 {
		return int(r.Duration)
	}
	total := 0
	for _, s := range segments {
		if s.Duration != nil && *s.Duration > 0 {
			total += int(*s.Duration)
		}
	}
	return total
}

func fareRules(raw json.RawMessage) []models.FareRule {
	rules := make([]models.FareRule, 0)
	for _, el := range flattenOnce(tbo.Elements(raw)) {
		var r tbo.RawFareRule
		if err := json.Unmarshal(el, &r); err != nil {
			continue
		}
		if r.Type == "" {
			continue
		}
		rules = append(rules, models.FareRule{
			Type:    string(r.Type),
			Details: string(r.Details),
			Days:    ruleDays(r),
		})
	}
	return rules
}

// ruleDays renders the From/To window of a rule when its unit is days, e.g. "0-3".
func ruleDays(r tbo.RawFareRule) string {
	if !strings.HasPrefix(strings.ToLower(string(r.Unit)), "day") {
		return ""
	}
	switch {
	case r.From != "" && r.To != "":
		return fmt.Sprintf("%s-%s", r.From, r.To)
	case r.From != "":
		return string(r.From)
	default:
		return string(r.To)
	}
}

func ssrOptions(freeMeal bool, baggage string, seats int) []models.SSROption {
	options := make([]models.SSROption, 0, 3)
	if freeMeal {
		options = append(options, models.SSROption{
			Type:        models.SSRMeal,
			Description: "Complimentary meal",
			Included:    true,
		})
	}
	if baggage != "" && baggage != models.BaggageNotSpecified {
		options = append(options, models.SSROption{
			Type:        models.SSRBaggage,
			Description: "Check-in baggage " + baggage,
			Included:    true,
		})
	}
	if seats > 0 {
		options = append(options, models.SSROption{
			Type:        models.SSRSeat,
			Description: fmt.Sprintf("Seat selection (%d seats left)", seats),
			Included:    false,
		})
	}
	return options
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
