package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/eco-assessor/internal/models"
)

type fakeRetriever struct {
	queries []string
	results map[string][]Document
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string) []Document {
	f.queries = append(f.queries, query)
	return f.results[query]
}

type fakeLLM struct {
	replies []string
	errs    []error
	calls   int
	system  string
	user    string
}

func (f *fakeLLM) Complete(_ context.Context, system, user string) (string, error) {
	i := f.calls
	f.calls++
	f.system = system
	f.user = user

	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "", nil
}

func (f *fakeLLM) Source() string {
	return "fake-model"
}

func newTestAssessor(retriever DocumentRetriever, llm LLMService, rubric *Rubric, opts AssessorOptions) *assessorService {
	svc := NewAssessorService(retriever, llm, NewPromptBuilder(rubric, NewTextChunker(), 0), rubric, opts).(*assessorService)
	svc.now = func() time.Time {
		return time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("WIB", 7*3600))
	}
	return svc
}

func TestAssess_RunsPipelineInOrder(t *testing.T) {
	retriever := &fakeRetriever{results: make(map[string][]Document)}
	retriever.results["Amazon UPC B0CW25XR5S"] = []Document{
		{URL: "https://shop.example/p", Title: "Plastic Toothbrush", Text: "nylon bristles"},
	}
	retriever.results["environmentally friendly alternatives to the Plastic Toothbrush"] = []Document{
		{URL: "https://blog.example/alt", Title: "Alternatives", Text: "bamboo handles"},
	}
	llm := &fakeLLM{replies: []string{fullESGReply}}

	svc := newTestAssessor(retriever, llm, ESGRubric(), AssessorOptions{SearchAlternatives: true})

	got, err := svc.Assess(context.Background(), models.AssessRequest{UPC: "B0CW25XR5S"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Amazon UPC B0CW25XR5S",
		"environmentally friendly alternatives to the Plastic Toothbrush",
	}, retriever.queries)
	assert.Equal(t, 1, llm.calls)
	assert.Contains(t, llm.system, "Greenhouse Gas Emissions")
	assert.Contains(t, llm.user, "nylon bristles")
	assert.Contains(t, llm.user, "bamboo handles")

	assert.Equal(t, fullESGReply, got.RawReply)
	assert.Equal(t, map[string]int{
		"environmentalScore": 56,
		"socialScore":        82,
		"governanceScore":    45,
	}, got.Result.Scores)
	assert.Equal(t, "B0CW25XR5S", got.Result.UPC)
	assert.Equal(t, "fake-model", got.Result.Source)
	assert.Equal(t, "2024-03-01T05:30:00Z", got.Result.FetchedAt)
	require.Len(t, got.Result.Recommendations, 1)
	assert.Equal(t, 90.0, got.Result.Recommendations[0].ProductScore)
	assert.Empty(t, got.Result.Error)
}

func TestAssess_SkipsAlternativesWithoutTitle(t *testing.T) {
	retriever := &fakeRetriever{results: map[string][]Document{
		"Amazon UPC 123": {{URL: "https://shop.example/p", Text: "body"}},
	}}
	llm := &fakeLLM{replies: []string{"Greenhouse Gas Emissions: 5/10"}}

	svc := newTestAssessor(retriever, llm, ESGRubric(), AssessorOptions{SearchAlternatives: true})

	_, err := svc.Assess(context.Background(), models.AssessRequest{UPC: "123"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Amazon UPC 123"}, retriever.queries)
}

func TestAssess_AlternativesDisabled(t *testing.T) {
	retriever := &fakeRetriever{results: map[string][]Document{
		"Amazon UPC 123": {{URL: "https://shop.example/p", Title: "Kettle", Text: "steel"}},
	}}
	llm := &fakeLLM{replies: []string{"Greenhouse Gas Emissions: 5/10"}}

	svc := newTestAssessor(retriever, llm, ESGRubric(), AssessorOptions{})

	_, err := svc.Assess(context.Background(), models.AssessRequest{UPC: "123"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Amazon UPC 123"}, retriever.queries)
}

func TestAssess_NoDocumentsStillCallsModel(t *testing.T) {
	retriever := &fakeRetriever{}
	llm := &fakeLLM{replies: []string{"Greenhouse Gas Emissions: 4/10"}}

	svc := newTestAssessor(retriever, llm, ESGRubric(), AssessorOptions{SearchAlternatives: true})

	got, err := svc.Assess(context.Background(), models.AssessRequest{UPC: "000"})
	require.NoError(t, err)
	assert.Equal(t, 1, llm.calls)
	assert.Contains(t, llm.user, "No web content could be retrieved")
	// 4 * 0.35 * 10
	assert.Equal(t, 14, got.Result.Scores["environmentalScore"])
}

func TestAssess_AppliesWeightOverrides(t *testing.T) {
	llm := &fakeLLM{replies: []string{fullESGReply}}
	svc := newTestAssessor(&fakeRetriever{}, llm, ESGRubric(), AssessorOptions{})

	got, err := svc.Assess(context.Background(), models.AssessRequest{
		UPC:     "123",
		Weights: models.WeightSet{"environmental": {"ghg": 0, "material": 0, "water": 0, "packaging": 0, "eol": 100}},
	})
	require.NoError(t, err)
	assert.Equal(t, 30, got.Result.Scores["environmentalScore"])
}

func TestAssess_ModelFailure(t *testing.T) {
	llm := &fakeLLM{errs: []error{errors.New("invalid api key")}}
	svc := newTestAssessor(&fakeRetriever{}, llm, ESGRubric(), AssessorOptions{MaxAttempts: 3})

	got, err := svc.Assess(context.Background(), models.AssessRequest{UPC: "123"})

	require.Error(t, err)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "invalid api key")
	assert.Equal(t, 1, llm.calls)
}

func TestAssess_RetriesTransientFailure(t *testing.T) {
	llm := &fakeLLM{
		errs:    []error{NewTransientError(errors.New("status 503"), 503)},
		replies: []string{"", "Greenhouse Gas Emissions: 10/10"},
	}
	svc := newTestAssessor(&fakeRetriever{}, llm, ESGRubric(), AssessorOptions{MaxAttempts: 2})

	got, err := svc.Assess(context.Background(), models.AssessRequest{UPC: "123"})

	require.NoError(t, err)
	assert.Equal(t, 2, llm.calls)
	assert.Equal(t, 35, got.Result.Scores["environmentalScore"])
}

func TestAssess_SingleAttemptByDefault(t *testing.T) {
	llm := &fakeLLM{errs: []error{NewTransientError(errors.New("status 429"), 429)}}
	svc := newTestAssessor(&fakeRetriever{}, llm, ESGRubric(), AssessorOptions{})

	_, err := svc.Assess(context.Background(), models.AssessRequest{UPC: "123"})

	require.Error(t, err)
	assert.Equal(t, 1, llm.calls)
}

func TestAssess_WithoutModel(t *testing.T) {
	svc := newTestAssessor(&fakeRetriever{}, nil, ESGRubric(), AssessorOptions{})

	_, err := svc.Assess(context.Background(), models.AssessRequest{UPC: "123"})
	assert.Error(t, err)
}

func TestParseReply_Refusal(t *testing.T) {
	svc := newTestAssessor(nil, &fakeLLM{}, ESGRubric(), AssessorOptions{})

	reply := "I'm sorry, but I do not have access to external websites.\nALT: [{\"product_name\":\"x\",\"product_score\":5}]"
	got := svc.ParseReply("123", reply, nil)

	assert.Equal(t, "AI model cannot access external websites to assess the product.", got.Error)
	assert.Equal(t, map[string]int{
		"environmentalScore": 0,
		"socialScore":        0,
		"governanceScore":    0,
	}, got.Scores)
	assert.NotNil(t, got.Recommendations)
	assert.Empty(t, got.Recommendations)
}

func TestParseReply_LifecycleRubric(t *testing.T) {
	svc := newTestAssessor(nil, &fakeLLM{}, LifecycleRubric(), AssessorOptions{})

	reply := "1. Material of products: 7/10\n2. Transport of materials: 3/10\n3. Disposal methods of products: 9/10\nALT: []"
	got := svc.ParseReply("042100005264", reply, nil)

	assert.Equal(t, map[string]int{
		"materialScore":  70,
		"carbonScore":    30,
		"endOfLifeScore": 90,
	}, got.Scores)
	assert.Empty(t, got.Recommendations)
	assert.Empty(t, got.Error)
}

func TestParseReply_UnconfiguredSource(t *testing.T) {
	svc := newTestAssessor(nil, nil, ESGRubric(), AssessorOptions{})

	got := svc.ParseReply("123", "", nil)
	assert.Equal(t, "unconfigured", got.Source)
}

func TestCompleteWithRetry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := &fakeLLM{errs: []error{NewTransientError(errors.New("status 502"), 502)}}

	_, err := CompleteWithRetry(ctx, llm, "s", "u", 5, time.Hour)

	require.Error(t, err)
	assert.Equal(t, 1, llm.calls)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(NewTransientError(errors.New("boom"), 500)))
	assert.False(t, IsTransient(errors.New("boom")))
	assert.False(t, IsTransient(nil))
	assert.True(t, isTransientStatus(429))
	assert.True(t, isTransientStatus(502))
	assert.False(t, isTransientStatus(400))
}
