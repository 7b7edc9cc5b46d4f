package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessmentResult_FlattensScores(t *testing.T) {
	result := AssessmentResult{
		UPC: "123",
		Scores: map[string]int{
			"materialScore":  70,
			"carbonScore":    30,
			"endOfLifeScore": 90,
		},
		Source:    "openai-gpt-4o-mini",
		FetchedAt: "2024-03-01T05:30:00Z",
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"upc": "123",
		"materialScore": 70,
		"carbonScore": 30,
		"endOfLifeScore": 90,
		"source": "openai-gpt-4o-mini",
		"fetchedAt": "2024-03-01T05:30:00Z",
		"recommendations": []
	}`, string(data))
}

func TestAssessmentResult_PointerMarshalsTheSame(t *testing.T) {
	result := &AssessmentResult{
		Scores:          map[string]int{"environmentalScore": 56},
		Recommendations: []Recommendation{{ProductName: "Bamboo Brush", ProductScore: 90, RecoReason: "biodegradable"}},
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"environmentalScore": 56,
		"recommendations": [{"product_name": "Bamboo Brush", "product_score": 90, "reco_reason": "biodegradable"}]
	}`, string(data))
}

func TestNewErrorResult(t *testing.T) {
	data, err := json.Marshal(NewErrorResult(errors.New("upstream timeout")))
	require.NoError(t, err)

	assert.JSONEq(t, `{"error": "upstream timeout", "recommendations": []}`, string(data))
}

func TestAssessRequest_DecodesWeights(t *testing.T) {
	var req AssessRequest
	require.NoError(t, json.Unmarshal([]byte(`{"upc":"123","weights":{"social":{"labour":25.5}}}`), &req))

	assert.Equal(t, "123", req.UPC)
	assert.Equal(t, 25.5, req.Weights["social"]["labour"])
}
