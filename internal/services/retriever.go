package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Document is one scraped search hit.
type Document struct {
	URL   string
	Title string
	Text  string
}

type DocumentRetriever interface {
	Retrieve(ctx context.Context, query string) []Document
}

type documentRetriever struct {
	search  SearchService
	scraper ScraperService
	topN    int
}

func NewDocumentRetriever(search SearchService, scraper ScraperService, topN int) DocumentRetriever {
	if topN <= 0 {
		topN = 1
	}
	return &documentRetriever{
		search:  search,
		scraper: scraper,
		topN:    topN,
	}
}

func ProductQuery(upc string) string {
	return fmt.Sprintf("Amazon UPC %s", upc)
}

func AlternativesQuery(title string) string {
	return fmt.Sprintf("environmentally friendly alternatives to the %s", title)
}

// Retrieve searches and then scrapes each hit in order. Search and scrape
// failures are logged and degrade to fewer (or no) documents.
func (r *documentRetriever) Retrieve(ctx context.Context, query string) []Document {
	results, err := r.search.Search(ctx, query, r.topN)
	if err != nil {
		zap.L().Warn("search failed, continuing without documents",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil
	}

	if len(results) == 0 {
		zap.L().Info("search returned no results", zap.String("query", query))
		return nil
	}

	docs := make([]Document, 0, len(results))
	for _, result := range results {
		text, err := r.scraper.Scrape(ctx, result.URL)
		if err != nil {
			zap.L().Warn("scrape failed",
				zap.String("url", result.URL),
				zap.Error(err),
			)
			text = ""
		}

		docs = append(docs, Document{
			URL:   result.URL,
			Title: result.Title,
			Text:  text,
		})
	}

	return docs
}
