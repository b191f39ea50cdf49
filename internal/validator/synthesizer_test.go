package validator

import (
	"testing"
	"time"

	"github.com/skylane-labs/skylane/internal/protocol"
	"github.com/skylane-labs/skylane/internal/refdata"
)

func testStore() *refdata.Store {
	return &refdata.Store{
		Markets: []string{"US", "UK", "SG", "JP"},
		Airports: []refdata.Airport{
			{Code: "JFK", ID: "95565058"},
			{Code: "LHR", ID: "95565050"},
			{Code: "SIN", ID: "95673624"},
			{Code: "NRT", ID: "95673827"},
		},
	}
}

func TestSynthesize_BatchSize(t *testing.T) {
	t.Run("capped by max batch size", func(t *testing.T) {
		s := NewSynthesizer(SynthesisConfig{MaxBatchSize: 2, DateWindowDays: 30}, testStore())
		queries := s.Synthesize(protocol.SearchIntent{})
		if len(queries) != 2 {
			t.Fatalf("expected 2 queries, got %d", len(queries))
		}
	})

	t.Run("capped by market count", func(t *testing.T) {
		s := NewSynthesizer(SynthesisConfig{MaxBatchSize: 10, DateWindowDays: 30}, testStore())
		queries := s.Synthesize(protocol.SearchIntent{})
		if len(queries) != 4 {
			t.Fatalf("expected 4 queries, got %d", len(queries))
		}
	})
}

func TestSynthesize_EmptyReferenceData(t *testing.T) {
	t.Run("no markets", func(t *testing.T) {
		store := testStore()
		store.Markets = nil
		s := NewSynthesizer(SynthesisConfig{MaxBatchSize: 5}, store)
		if queries := s.Synthesize(protocol.SearchIntent{}); len(queries) != 0 {
			t.Fatalf("expected empty batch, got %d queries", len(queries))
		}
	})

	t.Run("one airport", func(t *testing.T) {
		store := testStore()
		store.Airports = store.Airports[:1]
		s := NewSynthesizer(SynthesisConfig{MaxBatchSize: 5}, store)
		if queries := s.Synthesize(protocol.SearchIntent{}); len(queries) != 0 {
			t.Fatalf("expected empty batch, got %d queries", len(queries))
		}
	})
}

func TestSynthesize_QueryShape(t *testing.T) {
	s := NewSynthesizer(SynthesisConfig{MaxBatchSize: 50, DateWindowDays: 30}, testStore())

	// random draws, so check the invariants over many batches
	for range 20 {
		for _, q := range s.Synthesize(protocol.SearchIntent{}) {
			if q.Origin == q.Destination {
				t.Fatalf("origin and destination must differ, both %q", q.Origin)
			}
			if q.OriginID == "" || q.DestinationID == "" {
				t.Fatalf("airport ids must be set: %+v", q)
			}

			date, err := time.Parse("2006-01-02", q.Date)
			if err != nil {
				t.Fatalf("bad date %q: %v", q.Date, err)
			}
			days := time.Until(date).Hours() / 24
			if days < 0 || days > 31 {
				t.Fatalf("date %q outside the configured window", q.Date)
			}

			if q.CabinClass != protocol.DefaultCabin {
				t.Fatalf("expected default cabin, got %q", q.CabinClass)
			}
			if q.Adults != protocol.DefaultAdults {
				t.Fatalf("expected default adults, got %d", q.Adults)
			}
			if q.Currency != protocol.DefaultCurrency {
				t.Fatalf("expected default currency, got %q", q.Currency)
			}
		}
	}
}

func TestSynthesize_IntentPropagation(t *testing.T) {
	intent := protocol.SearchIntent{
		CabinClass: protocol.CabinBusiness,
		Adults:     2,
		Children:   1,
		Currency:   "EUR",
	}

	t.Run("disabled by default", func(t *testing.T) {
		s := NewSynthesizer(SynthesisConfig{MaxBatchSize: 4, DateWindowDays: 30}, testStore())
		for _, q := range s.Synthesize(intent) {
			if q.CabinClass != protocol.DefaultCabin || q.Adults != protocol.DefaultAdults || q.Currency != protocol.DefaultCurrency {
				t.Fatalf("intent fields leaked into query: %+v", q)
			}
		}
	})

	t.Run("enabled", func(t *testing.T) {
		s := NewSynthesizer(SynthesisConfig{
			MaxBatchSize:        4,
			DateWindowDays:      30,
			PropagateCabin:      true,
			PropagatePassengers: true,
			PropagateCurrency:   true,
		}, testStore())
		for _, q := range s.Synthesize(intent) {
			if q.CabinClass != protocol.CabinBusiness {
				t.Fatalf("expected business cabin, got %q", q.CabinClass)
			}
			if q.Adults != 2 || q.Children != 1 {
				t.Fatalf("passenger counts not propagated: %+v", q)
			}
			if q.Currency != "EUR" {
				t.Fatalf("expected EUR, got %q", q.Currency)
			}
		}
	})
}
