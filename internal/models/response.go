package models

type ProviderError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SearchResponse struct {
	Success        bool           `json:"success"`
	SearchID       string         `json:"searchId"`
	TraceID        string         `json:"traceId,omitempty"`
	Results        []Itinerary    `json:"results"`
	TotalResults   int            `json:"totalResults"`
	ProviderError  *ProviderError `json:"providerError,omitempty"`
	SearchCriteria SearchCriteria `json:"searchCriteria"`
	CacheHit       bool           `json:"cacheHit"`
	SearchTimeMs   int64          `json:"searchTimeMs"`
}

type SearchCriteria struct {
	SearchRequest
	Filters   *SearchFilters `json:"filters,omitempty"`
	SortBy    string         `json:"sortBy,omitempty"`
	SortOrder string         `json:"sortOrder,omitempty"`
}

type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	Code    int      `json:"code"`
}
