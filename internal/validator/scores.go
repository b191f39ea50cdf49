package validator

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
)

// ScoresData is the persisted per-hotkey score state, the only state that
// survives across request cycles. Step counts completed reward cycles.
type ScoresData struct {
	Step   int                `json:"step"`
	Scores map[string]float64 `json:"scores"`
}

// LoadScores reads the scores file, initializing it when missing.
func LoadScores(path string) (ScoresData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("file", path).Msg("scores file not found, initializing with default scores")
			initial := ScoresData{Scores: make(map[string]float64)}
			if err := SaveScores(path, initial); err != nil {
				return ScoresData{}, err
			}
			return initial, nil
		}
		return ScoresData{}, fmt.Errorf("read scores file: %w", err)
	}

	var out ScoresData
	if err := sonic.Unmarshal(data, &out); err != nil {
		return ScoresData{}, fmt.Errorf("unmarshal scores file: %w", err)
	}
	if out.Scores == nil {
		out.Scores = make(map[string]float64)
	}
	return out, nil
}

func SaveScores(path string, data ScoresData) error {
	b, err := sonic.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write scores file: %w", err)
	}
	return nil
}
