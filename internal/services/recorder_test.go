package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/eco-assessor/internal/models"
	"alfredoptarigan/eco-assessor/internal/repositories"
)

type memoryAssessmentRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*models.AssessmentRecord
}

func newMemoryAssessmentRepo() *memoryAssessmentRepo {
	return &memoryAssessmentRepo{records: make(map[uuid.UUID]*models.AssessmentRecord)}
}

func (m *memoryAssessmentRepo) Create(record *models.AssessmentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record
	return nil
}

func (m *memoryAssessmentRepo) FindByID(id uuid.UUID) (*models.AssessmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return nil, repositories.ErrAssessmentNotFound
	}
	return record, nil
}

func (m *memoryAssessmentRepo) FindByUPC(upc string, limit int) ([]models.AssessmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AssessmentRecord
	for _, r := range m.records {
		if r.UPC == upc {
			out = append(out, *r)
		}
	}
	return out, nil
}

func testAssessment() *Assessment {
	return &Assessment{
		Result: &models.AssessmentResult{
			UPC:             "123",
			Scores:          map[string]int{"environmentalScore": 56},
			Source:          "fake-model",
			Recommendations: []models.Recommendation{{ProductName: "Bamboo Brush", ProductScore: 90}},
		},
		RawReply: "Greenhouse Gas Emissions: 8/10",
	}
}

func TestRecorder_PersistsQueuedRecordsOnStop(t *testing.T) {
	repo := newMemoryAssessmentRepo()
	rec := NewRecorder(repo, 2, 10)
	rec.Start(context.Background())

	ids := []uuid.UUID{
		rec.Record("123", RubricESG, testAssessment()),
		rec.Record("456", RubricLifecycle, testAssessment()),
	}
	rec.Stop()

	for _, id := range ids {
		stored, err := repo.FindByID(id)
		require.NoError(t, err)
		assert.Equal(t, id, stored.ID)
	}
}

func TestRecorder_DropsAfterStop(t *testing.T) {
	repo := newMemoryAssessmentRepo()
	rec := NewRecorder(repo, 1, 1)
	rec.Start(context.Background())
	rec.Stop()
	rec.Stop()

	id := rec.Record("123", RubricESG, testAssessment())

	assert.NotEqual(t, uuid.Nil, id)
}

func TestNewAssessmentRecord(t *testing.T) {
	record := NewAssessmentRecord("123", RubricESG, testAssessment())

	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.Equal(t, "123", record.UPC)
	assert.Equal(t, RubricESG, record.Rubric)
	assert.Equal(t, "fake-model", record.Source)
	assert.Equal(t, "Greenhouse Gas Emissions: 8/10", record.RawReply)
	assert.JSONEq(t, `{"environmentalScore":56}`, record.Scores)

	var recos []models.Recommendation
	require.NoError(t, json.Unmarshal([]byte(record.Recommendations), &recos))
	assert.Equal(t, "Bamboo Brush", recos[0].ProductName)
}

func TestNewAssessmentRecord_FailedAssessment(t *testing.T) {
	record := NewAssessmentRecord("123", RubricESG, &Assessment{
		Result: models.NewErrorResult(assert.AnError),
	})

	assert.Equal(t, assert.AnError.Error(), record.ErrorMessage)
	assert.Equal(t, "[]", record.Recommendations)
}
