package models

const (
	CabinEconomy        = "Economy"
	CabinPremiumEconomy = "Premium Economy"
	CabinBusiness       = "Business"
	CabinFirst          = "First"
)

const (
	SSRMeal    = "MEAL"
	SSRBaggage = "BAGGAGE"
	SSRSeat    = "SEAT"
)

// BaggageNotSpecified is used when the provider sent no allowance for the first segment.
const BaggageNotSpecified = "Not specified"

type SegmentDetail struct {
	AirlineCode     string `json:"airlineCode"`
	AirlineName     string `json:"airlineName,omitempty"`
	FlightNumber    string `json:"flightNumber,omitempty"`
	Origin          string `json:"origin"`
	OriginCity      string `json:"originCity,omitempty"`
	Destination     string `json:"destination"`
	DestinationCity string `json:"destinationCity,omitempty"`
	DepTime         string `json:"depTime"`
	ArrTime         string `json:"arrTime"`
	DurationMins    *int   `json:"durationMins,omitempty"`
	Baggage         string `json:"baggage,omitempty"`
	CabinBaggage    string `json:"cabinBaggage,omitempty"`
	SeatAvailable   *int   `json:"seatAvailable,omitempty"`
	Cabin           string `json:"cabin"`
}

type FareRule struct {
	Type    string `json:"type"`
	Details string `json:"details"`
	Days    string `json:"days,omitempty"`
}

type SSROption struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Included    bool   `json:"included"`
}

// Itinerary is one priced, bookable option produced by the normalizer.
// Values are never mutated after creation; filters and sorts hand out copies.
type Itinerary struct {
	ResultIndex         string          `json:"resultIndex"`
	Currency            string          `json:"currency"`
	BaseFare            float64         `json:"baseFare"`
	Tax                 float64         `json:"tax"`
	YQ                  float64         `json:"yq"`
	OtherTaxes          float64         `json:"otherTaxes"`
	Total               float64         `json:"total"`
	TotalFormatted      string          `json:"totalFormatted"`
	IsRefundable        bool            `json:"isRefundable"`
	IsLCC               bool            `json:"isLcc"`
	FreeMeal            bool            `json:"freeMeal"`
	BookableWithoutSeat bool            `json:"bookableWithoutSeat"`
	AirlineCode         string          `json:"airlineCode"`
	AirlineName         string          `json:"airlineName,omitempty"`
	Segments            []SegmentDetail `json:"segments"`
	Stops               int             `json:"stops"`
	DepartTime          string          `json:"departTime"`
	ArriveTime          string          `json:"arriveTime"`
	DurationTotalMins   int             `json:"durationTotalMins"`
	Baggage             string          `json:"baggage"`
	CabinBaggage        string          `json:"cabinBaggage"`
	SeatAvailable       int             `json:"seatAvailable"`
	FareRules           []FareRule      `json:"fareRules"`
	SSROptions          []SSROption     `json:"ssrOptions"`
}

// FirstAirlineCode classifies a possibly multi-carrier itinerary by its first leg.
func (it Itinerary) FirstAirlineCode() string {
	if len(it.Segments) == 0 {
		return ""
	}
	return it.Segments[0].AirlineCode
}
