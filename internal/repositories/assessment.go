package repositories

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"gorm.io/gorm"

	"alfredoptarigan/eco-assessor/internal/models"
)

var ErrAssessmentNotFound = errors.New("assessment not found")

type AssessmentRepository interface {
	Create(record *models.AssessmentRecord) error
	FindByID(id uuid.UUID) (*models.AssessmentRecord, error)
	FindByUPC(upc string, limit int) ([]models.AssessmentRecord, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(record *models.AssessmentRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return eris.Wrap(err, "failed to create assessment")
	}
	return nil
}

func (r *assessmentRepository) FindByID(id uuid.UUID) (*models.AssessmentRecord, error) {
	var record models.AssessmentRecord
	if err := r.db.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssessmentNotFound
		}
		return nil, eris.Wrap(err, "failed to find assessment")
	}
	return &record, nil
}

func (r *assessmentRepository) FindByUPC(upc string, limit int) ([]models.AssessmentRecord, error) {
	var records []models.AssessmentRecord
	err := r.db.
		Where("upc = ?", upc).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error

	if err != nil {
		return nil, eris.Wrap(err, "failed to find assessments")
	}

	return records, nil
}
