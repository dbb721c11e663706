package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"face-insight-api/domain/services"
	"face-insight-api/pkg/utils"
)

// ResultHandler serves the latest detection result and the CSV export.
type ResultHandler struct {
	resultService   services.ResultService
	legacyEmptyJSON bool
}

// NewResultHandler creates a result handler. With legacyEmptyJSON an empty
// export answers 200 {} instead of 204.
func NewResultHandler(resultService services.ResultService, legacyEmptyJSON bool) *ResultHandler {
	return &ResultHandler{
		resultService:   resultService,
		legacyEmptyJSON: legacyEmptyJSON,
	}
}

// GetLatestResult handles GET /result/latest.
func (h *ResultHandler) GetLatestResult(c *fiber.Ctx) error {
	result, err := h.resultService.GetLatestResult(c.UserContext())
	if err != nil {
		return resultErrorResponse(c, err)
	}

	return c.JSON(result)
}

// ExportCSV handles GET /result/csv.
func (h *ResultHandler) ExportCSV(c *fiber.Ctx) error {
	filter, err := services.ParseExportFilter(func(key string) string {
		return c.Query(key)
	})
	if err != nil {
		return resultErrorResponse(c, err)
	}

	export, err := h.resultService.ExportCSV(c.UserContext(), filter)
	if err != nil {
		return resultErrorResponse(c, err)
	}

	if export.Empty {
		if h.legacyEmptyJSON {
			return c.JSON(fiber.Map{})
		}
		return c.SendStatus(fiber.StatusNoContent)
	}

	c.Attachment(export.Filename)
	c.Set(fiber.HeaderContentType, "text/csv")
	return c.Send(export.Content)
}

func resultErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return utils.CodedErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameter", err)
	case errors.Is(err, services.ErrResultNotFound):
		return utils.CodedErrorResponse(c, fiber.StatusNotFound, "RESULT_NOT_FOUND", "No detection result available", err)
	case errors.Is(err, services.ErrPartialData):
		return utils.CodedErrorResponse(c, fiber.StatusInternalServerError, "PARTIAL_DATA", "Detection result is incomplete", err)
	case errors.Is(err, services.ErrStorage):
		return utils.CodedErrorResponse(c, fiber.StatusBadGateway, "STORAGE_ERROR", "Failed to load result image", err)
	case errors.Is(err, services.ErrTimeout):
		return utils.CodedErrorResponse(c, fiber.StatusGatewayTimeout, "TIMEOUT", "Upstream operation timed out", err)
	case errors.Is(err, services.ErrConnection):
		return utils.CodedErrorResponse(c, fiber.StatusServiceUnavailable, "CONNECTION_ERROR", "Database unavailable", err)
	default:
		return err
	}
}
