// Package protocol defines the wire types exchanged between the validator
// and miners for batched flight search.
package protocol

import "fmt"

type CabinClass string

const (
	CabinEconomy        CabinClass = "Economy"
	CabinPremiumEconomy CabinClass = "Premium_Economy"
	CabinBusiness       CabinClass = "Business"
	CabinFirst          CabinClass = "First"
)

// Defaults applied to sub-queries when the validator is configured to not
// propagate the corresponding intent fields.
const (
	DefaultCabin    = CabinEconomy
	DefaultAdults   = 1
	DefaultCurrency = "USD"
)

// SearchIntent is the caller-facing request before batch expansion. It is
// immutable once issued; the validator only reads from it.
type SearchIntent struct {
	Date       string     `json:"date,omitempty"`
	CabinClass CabinClass `json:"cabinClass,omitempty"`
	Adults     int        `json:"adults,omitempty"`
	Children   int        `json:"children,omitempty"`
	Infants    int        `json:"infants,omitempty"`
	Currency   string     `json:"currency,omitempty"`
	Limit      int        `json:"limit,omitempty"`
}

// FlightQuery is one concrete route/date/market instance derived from an
// intent. Market and route are chosen per query; the remaining fields are
// copied or defaulted from the intent.
type FlightQuery struct {
	Date          string     `json:"date"`
	Origin        string     `json:"origin"`
	OriginID      string     `json:"originId"`
	Destination   string     `json:"destination"`
	DestinationID string     `json:"destinationId"`
	Market        string     `json:"market"`
	CabinClass    CabinClass `json:"cabinClass"`
	Adults        int        `json:"adults"`
	Children      int        `json:"children"`
	Infants       int        `json:"infants"`
	Currency      string     `json:"currency"`
}

// FlightBatchRequest is the ordered batch of queries sent to a miner.
// Order is significant: responses are positionally correlated with queries.
type FlightBatchRequest struct {
	RequestID string        `json:"requestId"`
	Queries   []FlightQuery `json:"queries"`
}

// FlightOffer is a single candidate flight result produced by a miner.
// MinerHotkey is stamped by the validator when responses are collected; the
// miner leaves it empty.
type FlightOffer struct {
	Market        string     `json:"market"`
	Price         float64    `json:"price"`
	Currency      string     `json:"currency"`
	CabinClass    CabinClass `json:"cabinClass,omitempty"`
	DepartureTime string     `json:"departureTime"`
	ArrivalTime   string     `json:"arrivalTime"`
	DepartureCity string     `json:"departureCity"`
	ArrivalCity   string     `json:"arrivalCity"`
	Stops         int        `json:"stops"`
	Carrier       string     `json:"carrier"`
	DurationHours float64    `json:"durationHours"`
	MinerHotkey   string     `json:"minerHotkey,omitempty"`
}

// Validate reports whether the offer satisfies the basic validity
// constraints required before ranking.
func (o FlightOffer) Validate() error {
	if o.Price <= 0 {
		return fmt.Errorf("price must be positive, got %f", o.Price)
	}
	if o.DurationHours <= 0 {
		return fmt.Errorf("duration must be positive, got %f", o.DurationHours)
	}
	if o.Stops < 0 {
		return fmt.Errorf("stops must be non-negative, got %d", o.Stops)
	}
	return nil
}

// FlightBatchResponse carries one offer list per query position in the
// originating batch, produced by exactly one miner.
type FlightBatchResponse struct {
	RequestID string          `json:"requestId"`
	Responses [][]FlightOffer `json:"responses"`
}
