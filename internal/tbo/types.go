package tbo

import "encoding/json"

const (
	JourneyOneWay    = "1"
	JourneyRoundTrip = "2"
)

const ResponseStatusSuccess = 1

type AuthRequest struct {
	ClientId  string `json:"ClientId"`
	UserName  string `json:"UserName"`
	Password  string `json:"Password"`
	EndUserIp string `json:"EndUserIp"`
}

type AuthResponse struct {
	Status  Int           `json:"Status"`
	TokenId string        `json:"TokenId"`
	Error   ResponseError `json:"Error"`
}

type SearchSegment struct {
	Origin                 string `json:"Origin"`
	Destination            string `json:"Destination"`
	FlightCabinClass       string `json:"FlightCabinClass"`
	PreferredDepartureTime string `json:"PreferredDepartureTime"`
	PreferredArrivalTime   string `json:"PreferredArrivalTime"`
}

// SearchRequest is the outbound search payload. A nil Sources marshals as null,
// a non-nil pointer to an empty slice as [].
type SearchRequest struct {
	EndUserIp   string          `json:"EndUserIp"`
	TokenId     string          `json:"TokenId"`
	AdultCount  int             `json:"AdultCount"`
	ChildCount  int             `json:"ChildCount"`
	InfantCount int             `json:"InfantCount"`
	JourneyType string          `json:"JourneyType"`
	Segments    []SearchSegment `json:"Segments"`
	Sources     *[]string       `json:"Sources"`
}

func EmptySources() *[]string {
	s := []string{}
	return &s
}

type ResponseError struct {
	ErrorCode    Int    `json:"ErrorCode"`
	ErrorMessage string `json:"ErrorMessage"`
}

// SearchEnvelope is what Search hands back: Success reports a completed transport
// round trip, Response is the provider body as decoded.
type SearchEnvelope struct {
	Success  bool           `json:"success"`
	Response SearchResponse `json:"Response"`
}

type SearchResponse struct {
	ResponseStatus Int           `json:"ResponseStatus"`
	Error          ResponseError `json:"Error"`
	TraceId        String        `json:"TraceId"`
	Origin         String        `json:"Origin"`
	Destination    String        `json:"Destination"`
	// Results is Itinerary[] or Itinerary[][] depending on journey type.
	Results json.RawMessage `json:"Results"`
}

type RawItinerary struct {
	ResultIndex                  String          `json:"ResultIndex"`
	Fare                         RawFare         `json:"Fare"`
	Segments                     json.RawMessage `json:"Segments"`
	IsLCC                        Bool            `json:"IsLCC"`
	IsRefundable                 Bool            `json:"IsRefundable"`
	MiniFareRules                json.RawMessage `json:"MiniFareRules"`
	IsFreeMealAvailable          Bool            `json:"IsFreeMealAvailable"`
	IsBookableIfSeatNotAvailable Bool            `json:"IsBookableIfSeatNotAvailable"`
	// Duration is occasionally sent at itinerary level in minutes.
	Duration Int `json:"Duration"`
}

type RawFare struct {
	Currency      String `json:"Currency"`
	BaseFare      Number `json:"BaseFare"`
	Tax           Number `json:"Tax"`
	YQTax         Number `json:"YQTax"`
	OtherTaxes    Number `json:"OtherTaxes"`
	OfferedFare   Number `json:"OfferedFare"`
	PublishedFare Number `json:"PublishedFare"`
}

type RawSegment struct {
	Origin            RawEndpoint `json:"Origin"`
	Destination       RawEndpoint `json:"Destination"`
	Airline           RawAirline  `json:"Airline"`
	Duration          *Int        `json:"Duration"`
	Baggage           String      `json:"Baggage"`
	CabinBaggage      String      `json:"CabinBaggage"`
	NoOfSeatAvailable *Int        `json:"NoOfSeatAvailable"`
	CabinClass        Int         `json:"CabinClass"`
}

type RawEndpoint struct {
	Airport RawAirport `json:"Airport"`
	DepTime String     `json:"DepTime"`
	ArrTime String     `json:"ArrTime"`
}

type RawAirport struct {
	AirportCode String `json:"AirportCode"`
	AirportName String `json:"AirportName"`
	Terminal    String `json:"Terminal"`
	CityCode    String `json:"CityCode"`
	CityName    String `json:"CityName"`
	CountryCode String `json:"CountryCode"`
}

type RawAirline struct {
	AirlineCode  String `json:"AirlineCode"`
	AirlineName  String `json:"AirlineName"`
	FlightNumber String `json:"FlightNumber"`
	FareClass    String `json:"FareClass"`
}

type RawFareRule struct {
	JourneyPoints String `json:"JourneyPoints"`
	Type          String `json:"Type"`
	From          String `json:"From"`
	To            String `json:"To"`
	Unit          String `json:"Unit"`
	Details       String `json:"Details"`
}
