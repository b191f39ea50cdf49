package pricing

// RawOffer is the backend-specific shape of one flight result. Only the
// fields the fulfillment path extracts are modelled.
type RawOffer struct {
	Price     float64 `json:"price"`
	Departure struct {
		Time string `json:"time"`
	} `json:"departure"`
	Arrival struct {
		Time string `json:"time"`
	} `json:"arrival"`
	Stops         int     `json:"stops"`
	Carrier       string  `json:"carrier"`
	DurationHours float64 `json:"durationHours"`
}

type searchResult struct {
	Flights []RawOffer `json:"flights"`
}

type searchResponse struct {
	Result searchResult `json:"result"`
}
