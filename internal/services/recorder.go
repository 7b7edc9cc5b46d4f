package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/eco-assessor/internal/models"
	"alfredoptarigan/eco-assessor/internal/repositories"
)

// Recorder writes assessment history off the request path.
type Recorder interface {
	Start(ctx context.Context)
	Stop()
	Record(upc, rubric string, assessment *Assessment) uuid.UUID
}

type recorder struct {
	repo        repositories.AssessmentRepository
	queue       chan *models.AssessmentRecord
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
}

func NewRecorder(repo repositories.AssessmentRepository, concurrency, queueSize int) Recorder {
	if concurrency <= 0 {
		concurrency = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	return &recorder{
		repo:        repo,
		queue:       make(chan *models.AssessmentRecord, queueSize),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
	}
}

// Start implements Recorder.
func (r *recorder) Start(ctx context.Context) {
	for i := 0; i < r.concurrency; i++ {
		r.wg.Add(1)
		go r.drain(ctx, i+1)
	}
	zap.L().Info("assessment recorder started", zap.Int("workers", r.concurrency))
}

// Stop implements Recorder. Records still queued are written before it
// returns.
func (r *recorder) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopChan)
		r.wg.Wait()
		zap.L().Info("assessment recorder stopped")
	})
}

// Record implements Recorder. It never blocks: when the queue is full the
// record is dropped and logged.
func (r *recorder) Record(upc, rubric string, assessment *Assessment) uuid.UUID {
	record := NewAssessmentRecord(upc, rubric, assessment)

	select {
	case <-r.stopChan:
		zap.L().Warn("recorder stopped, dropping assessment", zap.String("id", record.ID.String()))
	case r.queue <- record:
	default:
		zap.L().Warn("recorder queue full, dropping assessment", zap.String("id", record.ID.String()))
	}

	return record.ID
}

func (r *recorder) drain(ctx context.Context, workerID int) {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.queue:
			r.write(workerID, record)
		case <-r.stopChan:
			for {
				select {
				case record := <-r.queue:
					r.write(workerID, record)
				default:
					return
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

func (r *recorder) write(workerID int, record *models.AssessmentRecord) {
	if err := r.repo.Create(record); err != nil {
		zap.L().Error("failed to store assessment",
			zap.Int("worker", workerID),
			zap.String("id", record.ID.String()),
			zap.Error(err),
		)
	}
}

// NewAssessmentRecord flattens an assessment (or a failed one, when
// assessment.Result carries only an error) into a history row.
func NewAssessmentRecord(upc, rubric string, assessment *Assessment) *models.AssessmentRecord {
	record := &models.AssessmentRecord{
		ID:     uuid.New(),
		UPC:    upc,
		Rubric: rubric,
	}
	if assessment == nil || assessment.Result == nil {
		return record
	}

	result := assessment.Result
	scores, _ := json.Marshal(result.Scores)
	recommendations, _ := json.Marshal(result.Recommendations)

	record.Scores = string(scores)
	record.Recommendations = string(recommendations)
	record.Source = result.Source
	record.RawReply = assessment.RawReply
	record.ErrorMessage = result.Error
	return record
}
