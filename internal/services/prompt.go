package services

import (
	"fmt"
	"strings"
)

type PromptBuilder struct {
	rubric          *Rubric
	chunker         TextChunker
	maxDocumentSize int
}

func NewPromptBuilder(rubric *Rubric, chunker TextChunker, maxDocumentSize int) *PromptBuilder {
	return &PromptBuilder{
		rubric:          rubric,
		chunker:         chunker,
		maxDocumentSize: maxDocumentSize,
	}
}

// BuildSystemInstruction lists every rubric label in the format the parser
// expects, followed by the ALT: recommendation line.
func (pb *PromptBuilder) BuildSystemInstruction() string {
	var sb strings.Builder

	sb.WriteString(pb.rubric.Intro)
	sb.WriteString(" Analyze the product described by the provided web content.\n")
	sb.WriteString("First, return your evaluation using this exact format, one metric per line:\n")

	n := 1
	for _, c := range pb.rubric.Categories {
		for _, m := range c.Metrics {
			switch m.Kind {
			case MetricYesNo:
				fmt.Fprintf(&sb, "%d. %s (yes/no): {yes / no}\n", n, m.Label)
			default:
				fmt.Fprintf(&sb, "%d. %s: {score / 10}\n", n, m.Label)
			}
			n++
		}
	}

	sb.WriteString("\nAfter the scores, on a single new line, list up to 3 more sustainable alternative products. ")
	fmt.Fprintf(&sb, "THE LINE MUST BEGIN WITH %s followed by a JSON array, for example:\n", RecommendationMarker)
	fmt.Fprintf(&sb, `%s [{"product_name": "Reusable silicone food bags", "product_score": 8, "reco_reason": "replaces single-use plastic"}]`, RecommendationMarker)

	return sb.String()
}

// BuildAssessmentQuery assembles the user message from the product
// documents and the alternatives documents.
func (pb *PromptBuilder) BuildAssessmentQuery(upc string, docs, alternatives []Document) string {
	var sb strings.Builder

	if len(docs) == 0 {
		sb.WriteString("No web content could be retrieved for this product.\n")
	} else {
		fmt.Fprintf(&sb, "The url to the product is %s\n", docs[0].URL)
		sb.WriteString("The contents of the site are as listed:\n")
		pb.writeDocuments(&sb, docs)
	}

	if len(alternatives) > 0 {
		sb.WriteString("\nPages describing possible alternatives:\n")
		pb.writeDocuments(&sb, alternatives)
	}

	fmt.Fprintf(&sb, "\nAssess the product Amazon UPC %s.", upc)
	return sb.String()
}

func (pb *PromptBuilder) writeDocuments(sb *strings.Builder, docs []Document) {
	for i, doc := range docs {
		fmt.Fprintf(sb, "--- Document %d: %s (%s) ---\n", i+1, doc.Title, doc.URL)
		text := strings.TrimSpace(pb.chunker.Budget(doc.Text, pb.maxDocumentSize))
		if text == "" {
			text = "(no readable content)"
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
}
