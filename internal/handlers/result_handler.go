package handlers

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/eco-assessor/internal/models"
	"alfredoptarigan/eco-assessor/internal/repositories"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type ResultHandler struct {
	repo repositories.AssessmentRepository
}

// NewResultHandler serves stored assessments. repo may be nil when history
// is disabled.
func NewResultHandler(repo repositories.AssessmentRepository) *ResultHandler {
	return &ResultHandler{
		repo: repo,
	}
}

// HandleGetResult handles GET /api/assessments/:id
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	if h.repo == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "assessment history is disabled",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid assessment ID format",
		})
	}

	record, err := h.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrAssessmentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Assessment not found",
			})
		}
		return err
	}

	return c.JSON(toRecordResponse(record))
}

// HandleListResults handles GET /api/assessments?upc=&limit=
func (h *ResultHandler) HandleListResults(c *fiber.Ctx) error {
	if h.repo == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "assessment history is disabled",
		})
	}

	upc := strings.TrimSpace(c.Query("upc"))
	if upc == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "upc is missing",
		})
	}

	limit := c.QueryInt("limit", defaultListLimit)
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}

	records, err := h.repo.FindByUPC(upc, limit)
	if err != nil {
		return err
	}

	assessments := make([]models.AssessmentRecordResponse, 0, len(records))
	for i := range records {
		assessments = append(assessments, toRecordResponse(&records[i]))
	}

	return c.JSON(fiber.Map{
		"upc":         upc,
		"assessments": assessments,
	})
}

func toRecordResponse(record *models.AssessmentRecord) models.AssessmentRecordResponse {
	response := models.AssessmentRecordResponse{
		ID:              record.ID.String(),
		UPC:             record.UPC,
		Rubric:          record.Rubric,
		Scores:          map[string]int{},
		Recommendations: []models.Recommendation{},
		Source:          record.Source,
		Error:           record.ErrorMessage,
		CreatedAt:       record.CreatedAt.UTC().Format(time.RFC3339),
	}

	if record.Scores != "" {
		if err := json.Unmarshal([]byte(record.Scores), &response.Scores); err != nil {
			zap.L().Warn("stored scores are not valid JSON", zap.String("id", response.ID), zap.Error(err))
		}
	}
	if record.Recommendations != "" {
		if err := json.Unmarshal([]byte(record.Recommendations), &response.Recommendations); err != nil {
			zap.L().Warn("stored recommendations are not valid JSON", zap.String("id", response.ID), zap.Error(err))
		}
	}
	if response.Scores == nil {
		response.Scores = map[string]int{}
	}
	if response.Recommendations == nil {
		response.Recommendations = []models.Recommendation{}
	}

	return response
}
