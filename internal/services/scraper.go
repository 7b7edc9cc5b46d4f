package services

import (
	"context"
	"html"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

type ScraperService interface {
	Scrape(ctx context.Context, pageURL string) (string, error)
}

type scraperService struct {
	client    *http.Client
	limiter   *rate.Limiter
	maxBytes  int64
	pdfParser PDFParserService
}

// NewScraperService fetches pages one at a time, paced to ratePerSec
// requests per second. A non-positive rate disables pacing.
func NewScraperService(timeout time.Duration, maxBytes int64, ratePerSec float64, pdfParser PDFParserService) ScraperService {
	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}

	return &scraperService{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		limiter:   rate.NewLimiter(limit, 1),
		maxBytes:  maxBytes,
		pdfParser: pdfParser,
	}
}

// Scrape implements ScraperService.
func (s *scraperService) Scrape(ctx context.Context, pageURL string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "scrape: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "scrape: create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "scrape: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return "", eris.Errorf("scrape: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes))
	if err != nil {
		return "", eris.Wrap(err, "scrape: read body")
	}

	if isPDF(resp.Header.Get("Content-Type"), pageURL) {
		content, err := s.pdfParser.ExtractText(body)
		if err != nil {
			return "", eris.Wrap(err, "scrape: pdf")
		}
		return content.Text, nil
	}

	return VisibleText(string(body)), nil
}

func isPDF(contentType, pageURL string) bool {
	if strings.HasPrefix(strings.ToLower(contentType), "application/pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(pageURL), ".pdf")
}

var (
	hiddenBlockRe = regexp.MustCompile(`(?is)<(script|style|noscript)\b[^>]*>.*?</(script|style|noscript)>`)
	commentRe     = regexp.MustCompile(`(?s)<!--.*?-->`)
	tagRe         = regexp.MustCompile(`<[^>]+>`)
)

// VisibleText drops script, style and noscript blocks, strips the remaining
// markup and returns one text fragment per line.
func VisibleText(markup string) string {
	markup = hiddenBlockRe.ReplaceAllString(markup, "\n")
	markup = commentRe.ReplaceAllString(markup, "\n")
	markup = tagRe.ReplaceAllString(markup, "\n")
	return CleanText(html.UnescapeString(markup))
}
