package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/eco-assessor/internal/models"
	"alfredoptarigan/eco-assessor/internal/services"
)

const AssessmentIDHeader = "X-Assessment-ID"

type AssessHandler struct {
	assessor  services.AssessorService
	recorder  services.Recorder
	hasAPIKey bool
}

// NewAssessHandler wires the assessment pipeline. recorder may be nil when
// history is disabled.
func NewAssessHandler(
	assessor services.AssessorService,
	recorder services.Recorder,
	hasAPIKey bool,
) *AssessHandler {
	return &AssessHandler{
		assessor:  assessor,
		recorder:  recorder,
		hasAPIKey: hasAPIKey,
	}
}

// HandleAssess handles POST /api/assess
func (h *AssessHandler) HandleAssess(c *fiber.Ctx) error {
	var req models.AssessRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "upc is missing",
		})
	}

	req.UPC = strings.TrimSpace(req.UPC)
	if req.UPC == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "upc is missing",
		})
	}

	if !h.hasAPIKey {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "API_KEY is not set on the server",
		})
	}

	assessment, err := h.assessor.Assess(c.UserContext(), req)
	if err != nil {
		zap.L().Error("assessment failed", zap.String("upc", req.UPC), zap.Error(err))
		assessment = &services.Assessment{Result: models.NewErrorResult(err)}
	}

	if h.recorder != nil {
		id := h.recorder.Record(req.UPC, h.assessor.Rubric().Name, assessment)
		c.Set(AssessmentIDHeader, id.String())
	}

	return c.JSON(assessment.Result)
}

// HandlePreflight answers a bare OPTIONS /api/assess. CORS pre-flight
// requests carrying Origin are answered by the cors middleware first.
func (h *AssessHandler) HandlePreflight(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
