package services

import (
	"math"

	"alfredoptarigan/eco-assessor/internal/models"
)

// DefaultWeights returns the rubric's default weight table.
func (r *Rubric) DefaultWeights() models.WeightSet {
	weights := make(models.WeightSet, len(r.Categories))
	for _, c := range r.Categories {
		w := make(map[string]float64, len(c.Metrics))
		for _, m := range c.Metrics {
			w[m.Key] = m.Weight
		}
		weights[c.Key] = w
	}
	return weights
}

// weightFor picks the caller's weight for a sub-metric when present and the
// rubric default otherwise.
func weightFor(overrides models.WeightSet, category string, m Metric) float64 {
	if sub, ok := overrides[category]; ok {
		if w, ok := sub[m.Key]; ok {
			return w
		}
	}
	return m.Weight
}

// Aggregate computes each category composite as
// sum(metric * weight/100) * 10, rounded half away from zero. Weights are
// not required to sum to 100.
func (r *Rubric) Aggregate(scores MetricScores, overrides models.WeightSet) map[string]int {
	composites := make(map[string]int, len(r.Categories))
	for _, c := range r.Categories {
		var sum float64
		for _, m := range c.Metrics {
			value, ok := scores[c.Key][m.Key]
			if !ok {
				value = m.Default
			}
			sum += float64(value) * (weightFor(overrides, c.Key, m) / 100)
		}
		composites[c.Field] = int(math.Round(sum * 10))
	}
	return composites
}
