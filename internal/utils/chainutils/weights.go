// Package chainutils contains helpers for preparing on-chain payloads.
package chainutils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const U16Max = 65535

// ClampNegativeWeights floors every weight at zero. Scores can drift
// negative over decay rounds; the chain only accepts non-negative weights.
func ClampNegativeWeights(weights []float64) []float64 {
	out := make([]float64, len(weights))
	for i, w := range weights {
		if w > 0 {
			out[i] = w
		}
	}
	return out
}

// NormalizeWeights scales weights so they sum to one. An all-zero input is
// returned unchanged.
func NormalizeWeights(weights []float64) []float64 {
	out := make([]float64, len(weights))
	copy(out, weights)
	sum := floats.Sum(out)
	if sum <= 0 {
		return out
	}
	floats.Scale(1/sum, out)
	return out
}

// ConvertWeightsAndUidsForEmit maps float weights onto the u16 range the
// chain expects, dropping entries that round to zero.
func ConvertWeightsAndUidsForEmit(uids []int64, weights []float64) ([]int, []int, error) {
	if len(uids) != len(weights) {
		return nil, nil, fmt.Errorf("uids and weights must have the same length, got %d and %d", len(uids), len(weights))
	}
	if len(uids) == 0 {
		return []int{}, []int{}, nil
	}

	maxWeight := 0.0
	for i, w := range weights {
		if w < 0 {
			return nil, nil, fmt.Errorf("weights cannot be negative: %v", weights)
		}
		if uids[i] < 0 {
			return nil, nil, fmt.Errorf("uids cannot be negative: %v", uids)
		}
		if w > maxWeight {
			maxWeight = w
		}
	}

	if maxWeight == 0 {
		return []int{}, []int{}, nil
	}

	weightUids := make([]int, 0, len(uids))
	weightVals := make([]int, 0, len(weights))

	for i, w := range weights {
		uint16Val := int(math.Round((w / maxWeight) * float64(U16Max)))

		if uint16Val > 0 {
			weightUids = append(weightUids, int(uids[i]))
			weightVals = append(weightVals, uint16Val)
		}
	}

	return weightUids, weightVals, nil
}
