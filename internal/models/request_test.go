package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() SearchRequest {
	return SearchRequest{
		Origin:      "DEL",
		Destination: "DXB",
		DepartDate:  "2025-11-20",
		Adults:      1,
		CabinClass:  "E",
		TripType:    TripOneWay,
	}
}

func TestSearchRequest_Normalize(t *testing.T) {
	req := SearchRequest{Origin: " del ", Destination: "dxb", CabinClass: "pe"}
	req.Normalize()

	assert.Equal(t, "DEL", req.Origin)
	assert.Equal(t, "DXB", req.Destination)
	assert.Equal(t, "PE", req.CabinClass)
	assert.Equal(t, TripOneWay, req.TripType)
	assert.False(t, req.IsRoundTrip())
}

func TestSearchRequest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *SearchRequest)
		want   []string
	}{
		{
			name:   "valid one way",
			modify: func(r *SearchRequest) {},
		},
		{
			name: "valid round trip",
			modify: func(r *SearchRequest) {
				r.TripType = TripRoundTrip
				r.ReturnDate = "2025-11-27"
			},
		},
		{
			name: "round trip without return date",
			modify: func(r *SearchRequest) {
				r.TripType = TripRoundTrip
			},
			want: []string{"Return date is required for round trip"},
		},
		{
			name: "bad airport codes",
			modify: func(r *SearchRequest) {
				r.Origin = "DELHI"
				r.Destination = ""
			},
			want: []string{
				"Origin must be a 3-letter airport code",
				"Destination must be a 3-letter airport code",
			},
		},
		{
			name: "too many passengers and infants",
			modify: func(r *SearchRequest) {
				r.Adults = 2
				r.Children = 6
				r.Infants = 3
			},
			want: []string{
				"Infants cannot exceed number of adults",
				"Total passengers cannot exceed 9",
			},
		},
		{
			name: "zero adults",
			modify: func(r *SearchRequest) {
				r.Adults = 0
			},
			want: []string{"Adults must be between 1 and 9"},
		},
		{
			name: "negative infants",
			modify: func(r *SearchRequest) {
				r.Infants = -1
			},
			want: []string{"Infants cannot be negative"},
		},
		{
			name: "unknown trip type",
			modify: func(r *SearchRequest) {
				r.TripType = "M"
			},
			want: []string{"Trip type must be O (one way) or R (round trip)"},
		},
		{
			name: "missing depart date",
			modify: func(r *SearchRequest) {
				r.DepartDate = ""
			},
			want: []string{"Departure date is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.modify(&req)

			err := req.Validate()
			if len(tt.want) == 0 {
				assert.NoError(t, err)
				return
			}

			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, ValidationErrors(tt.want), verrs)
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	err := ValidationErrors{"first", "second"}
	assert.Equal(t, "first; second", err.Error())
}
