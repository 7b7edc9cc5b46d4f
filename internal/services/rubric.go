package services

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

const (
	RubricESG       = "esg"
	RubricLifecycle = "lifecycle"
)

type MetricKind int

const (
	MetricNumeric MetricKind = iota
	MetricYesNo
)

// Metric is one labelled line the model is asked to emit. The label is used
// verbatim by both the prompt and the extraction pattern.
type Metric struct {
	Key     string
	Label   string
	Kind    MetricKind
	Default int
	Weight  float64

	pattern *regexp.Regexp
}

type Category struct {
	Key     string
	Field   string
	Metrics []Metric
}

// Rubric is the single table shared by prompt assembly, metric extraction
// and weighted aggregation.
type Rubric struct {
	Name       string
	Intro      string
	Categories []Category
}

func numeric(key, label string, weight float64) Metric {
	return Metric{
		Key:     key,
		Label:   label,
		Kind:    MetricNumeric,
		Default: 0,
		Weight:  weight,
		pattern: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `[^\n]*?:\s*(\d+(?:\.\d+)?)(?:\s*/\s*10)?`),
	}
}

func yesNo(key, label string, weight float64) Metric {
	return Metric{
		Key:     key,
		Label:   label,
		Kind:    MetricYesNo,
		Default: 1,
		Weight:  weight,
		pattern: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `[^\n]*?:\s*(yes|no)\b`),
	}
}

// ESGRubric returns the environmental / social / governance rubric with the
// default weight table.
func ESGRubric() *Rubric {
	return &Rubric{
		Name:  RubricESG,
		Intro: "You are an environmental, social and governance (ESG) impact assessor.",
		Categories: []Category{
			{
				Key:   "environmental",
				Field: "environmentalScore",
				Metrics: []Metric{
					numeric("ghg", "Greenhouse Gas Emissions", 35),
					numeric("material", "Material Sustainability", 15),
					numeric("water", "Water Usage", 10),
					numeric("packaging", "Packaging Waste", 20),
					numeric("eol", "End of Life Recyclability", 20),
				},
			},
			{
				Key:   "social",
				Field: "socialScore",
				Metrics: []Metric{
					yesNo("labour", "Fair Labour", 10),
					numeric("safety", "Worker Safety", 10),
					numeric("trade", "Fair Trade Practices", 20),
					numeric("sourcing", "Ethical Sourcing", 20),
					numeric("community", "Community Impact", 20),
					numeric("health", "Consumer Health Impact", 20),
				},
			},
			{
				Key:   "governance",
				Field: "governanceScore",
				Metrics: []Metric{
					numeric("affordability", "Affordability", 20),
					numeric("circular", "Circular Economy Practices", 25),
					numeric("local", "Local Economic Support", 30),
					numeric("resilience", "Supply Chain Resilience", 15),
					numeric("innovation", "Sustainable Innovation", 10),
				},
			},
		},
	}
}

// LifecycleRubric is the three-line material / transport / disposal
// assessment. Each category holds a single metric weighted 100, so the
// composite is the metric scaled to 100.
func LifecycleRubric() *Rubric {
	return &Rubric{
		Name:  RubricLifecycle,
		Intro: "You are an environmental impact assessor.",
		Categories: []Category{
			{
				Key:     "carbon",
				Field:   "carbonScore",
				Metrics: []Metric{numeric("transport", "Transport of materials", 100)},
			},
			{
				Key:     "material",
				Field:   "materialScore",
				Metrics: []Metric{numeric("material", "Material of products", 100)},
			},
			{
				Key:     "endOfLife",
				Field:   "endOfLifeScore",
				Metrics: []Metric{numeric("disposal", "Disposal methods of products", 100)},
			},
		},
	}
}

func RubricByName(name string) (*Rubric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", RubricESG:
		return ESGRubric(), nil
	case RubricLifecycle:
		return LifecycleRubric(), nil
	default:
		return nil, eris.Errorf("unknown rubric %q", name)
	}
}

// Fields lists the output score fields in category order.
func (r *Rubric) Fields() []string {
	fields := make([]string, 0, len(r.Categories))
	for _, c := range r.Categories {
		fields = append(fields, c.Field)
	}
	return fields
}

// ZeroScores returns every output field set to zero.
func (r *Rubric) ZeroScores() map[string]int {
	scores := make(map[string]int, len(r.Categories))
	for _, c := range r.Categories {
		scores[c.Field] = 0
	}
	return scores
}
