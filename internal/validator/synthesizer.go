package validator

import (
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skylane-labs/skylane/internal/protocol"
	"github.com/skylane-labs/skylane/internal/refdata"
)

const defaultDateWindowDays = 60

// SynthesisConfig bounds batch construction and enumerates which intent
// fields propagate into sub-queries; everything not propagated takes the
// protocol defaults.
type SynthesisConfig struct {
	MaxBatchSize        int
	DateWindowDays      int
	PropagateCabin      bool
	PropagatePassengers bool
	PropagateCurrency   bool
}

// Synthesizer expands one search intent into a batch of diversified
// sub-queries drawn from the reference data.
type Synthesizer struct {
	cfg  SynthesisConfig
	data *refdata.Store
}

func NewSynthesizer(cfg SynthesisConfig, data *refdata.Store) *Synthesizer {
	return &Synthesizer{cfg: cfg, data: data}
}

// Synthesize builds a batch of min(|markets|, MaxBatchSize) queries. Each
// query gets a random market, two distinct random airports, and a random
// future date. Returns an empty batch when the reference sets cannot
// support synthesis; never an error.
func (s *Synthesizer) Synthesize(intent protocol.SearchIntent) []protocol.FlightQuery {
	size := min(len(s.data.Markets), s.cfg.MaxBatchSize)
	if size <= 0 || len(s.data.Airports) < 2 {
		log.Warn().Int("markets", len(s.data.Markets)).Int("airports", len(s.data.Airports)).
			Msg("reference data cannot support batch synthesis")
		return nil
	}

	queries := make([]protocol.FlightQuery, 0, size)
	for range size {
		origin, destination := s.pickRoute()

		q := protocol.FlightQuery{
			Date:          s.randomDate(),
			Origin:        origin.Code,
			OriginID:      origin.ID,
			Destination:   destination.Code,
			DestinationID: destination.ID,
			Market:        s.data.Markets[rand.IntN(len(s.data.Markets))],
			CabinClass:    protocol.DefaultCabin,
			Adults:        protocol.DefaultAdults,
			Currency:      protocol.DefaultCurrency,
		}

		if s.cfg.PropagateCabin && intent.CabinClass != "" {
			q.CabinClass = intent.CabinClass
		}
		if s.cfg.PropagatePassengers && intent.Adults >= 1 {
			q.Adults = intent.Adults
			q.Children = intent.Children
			q.Infants = intent.Infants
		}
		if s.cfg.PropagateCurrency && intent.Currency != "" {
			q.Currency = intent.Currency
		}

		queries = append(queries, q)
	}
	return queries
}

// pickRoute draws two distinct airports without replacement.
func (s *Synthesizer) pickRoute() (refdata.Airport, refdata.Airport) {
	n := len(s.data.Airports)
	i := rand.IntN(n)
	j := rand.IntN(n - 1)
	if j >= i {
		j++
	}
	return s.data.Airports[i], s.data.Airports[j]
}

func (s *Synthesizer) randomDate() string {
	window := s.cfg.DateWindowDays
	if window <= 0 {
		window = defaultDateWindowDays
	}
	return time.Now().AddDate(0, 0, 1+rand.IntN(window)).Format("2006-01-02")
}
