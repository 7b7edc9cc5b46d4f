package models

import (
	"encoding/json"
	"strconv"
)

// WeightSet maps a category (environmental, social, governance) to
// sub-metric percentage weights.
type WeightSet map[string]map[string]float64

type AssessRequest struct {
	UPC     string    `json:"upc"`
	Weights WeightSet `json:"weights,omitempty"`
}

type Recommendation struct {
	ProductName  string  `json:"product_name"`
	ProductScore float64 `json:"product_score"`
	RecoReason   string  `json:"reco_reason"`
}

// AssessmentResult is the response body of POST /api/assess. Scores holds
// the composite per output field (environmentalScore, carbonScore, ...) and
// is flattened into the top-level object when marshalled.
type AssessmentResult struct {
	UPC             string           `json:"upc,omitempty"`
	Scores          map[string]int   `json:"-"`
	Source          string           `json:"source,omitempty"`
	FetchedAt       string           `json:"fetchedAt,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
	Error           string           `json:"error,omitempty"`
}

// NewErrorResult builds the minimal payload returned when the pipeline
// cannot produce an assessment.
func NewErrorResult(err error) *AssessmentResult {
	return &AssessmentResult{
		Error:           err.Error(),
		Recommendations: []Recommendation{},
	}
}

func (r AssessmentResult) MarshalJSON() ([]byte, error) {
	type plain AssessmentResult
	if r.Recommendations == nil {
		r.Recommendations = []Recommendation{}
	}

	base, err := json.Marshal(plain(r))
	if err != nil {
		return nil, err
	}
	if len(r.Scores) == 0 {
		return base, nil
	}

	fields := make(map[string]json.RawMessage, len(r.Scores)+6)
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	for field, score := range r.Scores {
		fields[field] = json.RawMessage(strconv.Itoa(score))
	}

	return json.Marshal(fields)
}

type AssessmentRecordResponse struct {
	ID              string           `json:"id"`
	UPC             string           `json:"upc"`
	Rubric          string           `json:"rubric"`
	Scores          map[string]int   `json:"scores"`
	Recommendations []Recommendation `json:"recommendations"`
	Source          string           `json:"source,omitempty"`
	Error           string           `json:"error,omitempty"`
	CreatedAt       string           `json:"created_at"`
}
