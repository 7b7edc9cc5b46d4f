package services

import (
	"strconv"
	"strings"
)

// MetricScores holds extracted values as category -> metric key -> value.
type MetricScores map[string]map[string]int

var refusalPhrases = []string{
	"do not have access",
	"cannot access",
}

// IsRefusal reports whether the model declined to assess because it could
// not reach the product content.
func IsRefusal(reply string) bool {
	lower := strings.ToLower(reply)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// ExtractMetric returns the value following the metric label, or the
// metric default when the label is missing or unreadable. Fractional
// numbers are truncated toward zero.
func ExtractMetric(reply string, m Metric) int {
	match := m.pattern.FindStringSubmatch(reply)
	if len(match) < 2 {
		return m.Default
	}

	if m.Kind == MetricYesNo {
		if strings.EqualFold(match[1], "yes") {
			return 10
		}
		return 1
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return m.Default
	}
	return int(value)
}

// ExtractMetrics runs every metric of the rubric against the reply.
func (r *Rubric) ExtractMetrics(reply string) MetricScores {
	scores := make(MetricScores, len(r.Categories))
	for _, c := range r.Categories {
		values := make(map[string]int, len(c.Metrics))
		for _, m := range c.Metrics {
			values[m.Key] = ExtractMetric(reply, m)
		}
		scores[c.Key] = values
	}
	return scores
}
