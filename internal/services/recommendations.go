package services

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/eco-assessor/internal/models"
)

const RecommendationMarker = "ALT:"

var recommendationPattern = regexp.MustCompile(regexp.QuoteMeta(RecommendationMarker) + `\s*\[`)

// ExtractRecommendations parses the JSON array that follows the ALT: marker.
// Only the first JSON value is read, so trailing text is ignored. A missing
// marker or malformed JSON yields an empty list.
func ExtractRecommendations(reply string) []models.Recommendation {
	recommendations := []models.Recommendation{}

	loc := recommendationPattern.FindStringIndex(reply)
	if loc == nil {
		return recommendations
	}

	var entries []json.RawMessage
	if err := json.NewDecoder(strings.NewReader(reply[loc[1]-1:])).Decode(&entries); err != nil {
		zap.L().Warn("recommendation block is not valid JSON", zap.Error(err))
		return recommendations
	}

	for _, entry := range entries {
		var fields map[string]any
		if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
			continue
		}

		reco := models.Recommendation{}
		if name, ok := fields["product_name"].(string); ok {
			reco.ProductName = name
		}
		if reason, ok := fields["reco_reason"].(string); ok {
			reco.RecoReason = reason
		}
		if score, ok := recommendationScore(fields["product_score"]); ok {
			reco.ProductScore = NormalizeRecommendationScore(score)
		}
		recommendations = append(recommendations, reco)
	}

	return recommendations
}

// recommendationScore accepts JSON numbers and numeric strings such as
// "8" or "8/10".
func recommendationScore(v any) (float64, bool) {
	switch score := v.(type) {
	case float64:
		return score, true
	case string:
		score = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(score), "/10"))
		value, err := strconv.ParseFloat(score, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return 0, false
		}
		return value, true
	default:
		return 0, false
	}
}

// NormalizeRecommendationScore moves scores given out of 10 onto the 0-100
// scale. Values above 10 are taken to be on that scale already.
func NormalizeRecommendationScore(score float64) float64 {
	if score <= 10 {
		return score * 10
	}
	return score
}
