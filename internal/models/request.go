package models

import (
	"strings"
	"unicode/utf8"
)

const (
	TripOneWay    = "O"
	TripRoundTrip = "R"
)

const (
	MaxAdults     = 9
	MaxChildren   = 8
	MaxPassengers = 9
)

type SearchFilters struct {
	NonStopOnly bool     `json:"nonStopOnly,omitempty"`
	RefundOnly  bool     `json:"refundOnly,omitempty"`
	LCCOnly     bool     `json:"lccOnly,omitempty"`
	PriceMin    *float64 `json:"priceMin,omitempty"`
	PriceMax    *float64 `json:"priceMax,omitempty"`
	Airlines    []string `json:"airlines,omitempty"`
}

type SearchRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	DepartDate  string `json:"departDate"`
	ReturnDate  string `json:"returnDate,omitempty"`
	Adults      int    `json:"adults"`
	Children    int    `json:"children"`
	Infants     int    `json:"infants"`
	CabinClass  string `json:"cabinClass"`
	TripType    string `json:"tripType"`
}

// Normalize trims and upper-cases codes and fills defaults that never fail validation.
func (r *SearchRequest) Normalize() {
	r.Origin = strings.ToUpper(strings.TrimSpace(r.Origin))
	r.Destination = strings.ToUpper(strings.TrimSpace(r.Destination))
	r.DepartDate = strings.TrimSpace(r.DepartDate)
	r.ReturnDate = strings.TrimSpace(r.ReturnDate)
	r.CabinClass = strings.ToUpper(strings.TrimSpace(r.CabinClass))
	r.TripType = strings.ToUpper(strings.TrimSpace(r.TripType))
	if r.TripType == "" {
		r.TripType = TripOneWay
	}
}

func (r SearchRequest) IsRoundTrip() bool {
	return r.TripType == TripRoundTrip
}

// Validate collects every violated constraint instead of stopping at the first.
func (r SearchRequest) Validate() error {
	var errs ValidationErrors

	if utf8.RuneCountInString(r.Origin) != 3 {
		errs = append(errs, "Origin must be a 3-letter airport code")
	}
	if utf8.RuneCountInString(r.Destination) != 3 {
		errs = append(errs, "Destination must be a 3-letter airport code")
	}
	if r.DepartDate == "" {
		errs = append(errs, "Departure date is required")
	}
	if r.TripType != TripOneWay && r.TripType != TripRoundTrip {
		errs = append(errs, "Trip type must be O (one way) or R (round trip)")
	}
	if r.IsRoundTrip() && r.ReturnDate == "" {
		errs = append(errs, "Return date is required for round trip")
	}
	if r.Adults < 1 || r.Adults > MaxAdults {
		errs = append(errs, "Adults must be between 1 and 9")
	}
	if r.Children < 0 || r.Children > MaxChildren {
		errs = append(errs, "Children must be between 0 and 8")
	}
	if r.Infants < 0 {
		errs = append(errs, "Infants cannot be negative")
	}
	if r.Infants > r.Adults {
		errs = append(errs, "Infants cannot exceed number of adults")
	}
	if r.Adults+r.Children+r.Infants > MaxPassengers {
		errs = append(errs, "Total passengers cannot exceed 9")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ValidationErrors []string

func (e ValidationErrors) Error() string {
	return strings.Join(e, "; ")
}
