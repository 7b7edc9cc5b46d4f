package services

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"alfredoptarigan/eco-assessor/internal/models"
)

const refusalMessage = "AI model cannot access external websites to assess the product."

type AssessorService interface {
	Assess(ctx context.Context, req models.AssessRequest) (*Assessment, error)
	ParseReply(upc, reply string, weights models.WeightSet) *models.AssessmentResult
	Rubric() *Rubric
}

// Assessment pairs the response body with the model text it was parsed from.
type Assessment struct {
	Result   *models.AssessmentResult
	RawReply string
}

type AssessorOptions struct {
	MaxAttempts        int
	RetryDelay         time.Duration
	SearchAlternatives bool
}

type assessorService struct {
	retriever     DocumentRetriever
	llm           LLMService
	promptBuilder *PromptBuilder
	rubric        *Rubric
	opts          AssessorOptions
	now           func() time.Time
}

func NewAssessorService(
	retriever DocumentRetriever,
	llm LLMService,
	promptBuilder *PromptBuilder,
	rubric *Rubric,
	opts AssessorOptions,
) AssessorService {
	return &assessorService{
		retriever:     retriever,
		llm:           llm,
		promptBuilder: promptBuilder,
		rubric:        rubric,
		opts:          opts,
		now:           time.Now,
	}
}

func (a *assessorService) Rubric() *Rubric {
	return a.rubric
}

// Assess runs search, scrape, prompt, model call and parsing strictly in
// that order. Only a failed model call is returned as an error.
func (a *assessorService) Assess(ctx context.Context, req models.AssessRequest) (*Assessment, error) {
	if a.llm == nil {
		return nil, eris.New("no language model configured")
	}

	logger := zap.L().With(zap.String("upc", req.UPC))

	docs := a.retriever.Retrieve(ctx, ProductQuery(req.UPC))
	logger.Info("product documents retrieved", zap.Int("count", len(docs)))

	var alternatives []Document
	if a.opts.SearchAlternatives && len(docs) > 0 && docs[0].Title != "" {
		alternatives = a.retriever.Retrieve(ctx, AlternativesQuery(docs[0].Title))
		logger.Info("alternative documents retrieved", zap.Int("count", len(alternatives)))
	}

	system := a.promptBuilder.BuildSystemInstruction()
	user := a.promptBuilder.BuildAssessmentQuery(req.UPC, docs, alternatives)
	logger.Debug("prompt assembled", zap.Int("system_chars", len(system)), zap.Int("user_chars", len(user)))

	reply, err := CompleteWithRetry(ctx, a.llm, system, user, a.opts.MaxAttempts, a.opts.RetryDelay)
	if err != nil {
		logger.Error("model call failed", zap.Error(err))
		return nil, eris.Wrap(err, "assessment request failed")
	}
	logger.Info("model reply received", zap.Int("chars", len(reply)))

	return &Assessment{
		Result:   a.ParseReply(req.UPC, reply, req.Weights),
		RawReply: reply,
	}, nil
}

// ParseReply turns the raw model text into the response body. It never
// fails: refusals, missing labels and a broken ALT: block all degrade to
// defaults.
func (a *assessorService) ParseReply(upc, reply string, weights models.WeightSet) *models.AssessmentResult {
	result := &models.AssessmentResult{
		UPC:             upc,
		Source:          a.source(),
		FetchedAt:       a.now().UTC().Format(time.RFC3339),
		Recommendations: []models.Recommendation{},
	}

	if IsRefusal(reply) {
		zap.L().Warn("model refused to assess", zap.String("upc", upc))
		result.Scores = a.rubric.ZeroScores()
		result.Error = refusalMessage
		return result
	}

	metrics := a.rubric.ExtractMetrics(reply)
	result.Scores = a.rubric.Aggregate(metrics, weights)
	result.Recommendations = ExtractRecommendations(reply)

	return result
}

func (a *assessorService) source() string {
	if a.llm == nil {
		return "unconfigured"
	}
	return a.llm.Source()
}
