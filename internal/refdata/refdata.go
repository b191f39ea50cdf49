// Package refdata loads the market and airport reference sets used for
// query synthesis. Both sets come from CSV files shipped alongside the node.
package refdata

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

const entityTypeAirport = "AIRPORT"

// Airport is one routable airport record: a display code plus the opaque
// identifier the pricing backend expects.
type Airport struct {
	Code string
	ID   string
}

// Store holds the loaded reference sets. Consumed read-only after Load.
type Store struct {
	Markets  []string
	Airports []Airport
}

// Load reads both CSV files. A missing or malformed file yields an empty set
// for that file, not an error: query synthesis degrades to an empty batch.
func Load(marketsPath, airportsPath string) *Store {
	s := &Store{}

	markets, err := loadMarkets(marketsPath)
	if err != nil {
		log.Error().Err(err).Str("file", marketsPath).Msg("failed to load markets")
	} else {
		s.Markets = markets
	}

	airports, err := loadAirports(airportsPath)
	if err != nil {
		log.Error().Err(err).Str("file", airportsPath).Msg("failed to load airports")
	} else {
		s.Airports = airports
	}

	log.Info().Int("markets", len(s.Markets)).Int("airports", len(s.Airports)).Msg("reference data loaded")
	return s
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	return records, nil
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func loadMarkets(path string) ([]string, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	col := columnIndex(records[0], "MarketCode")
	if col < 0 {
		return nil, fmt.Errorf("%s: missing MarketCode column", path)
	}

	var markets []string
	for _, row := range records[1:] {
		if col >= len(row) {
			continue
		}
		code := strings.TrimSpace(row[col])
		if code == "" {
			continue
		}
		markets = append(markets, code)
	}
	return markets, nil
}

func loadAirports(path string) ([]Airport, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	header := records[0]
	codeCol := columnIndex(header, "skyId")
	idCol := columnIndex(header, "entityId")
	typeCol := columnIndex(header, "entityType")
	if codeCol < 0 || idCol < 0 || typeCol < 0 {
		return nil, fmt.Errorf("%s: missing skyId/entityId/entityType columns", path)
	}

	var airports []Airport
	for _, row := range records[1:] {
		if codeCol >= len(row) || idCol >= len(row) || typeCol >= len(row) {
			continue
		}
		// entity list mixes airports with cities and countries
		if !strings.EqualFold(strings.TrimSpace(row[typeCol]), entityTypeAirport) {
			continue
		}
		code := strings.TrimSpace(row[codeCol])
		id := strings.TrimSpace(row[idCol])
		if code == "" || id == "" {
			continue
		}
		airports = append(airports, Airport{Code: code, ID: id})
	}
	return airports, nil
}
