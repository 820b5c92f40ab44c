package handler

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/middleware"
	"github.com/mansoorceksport/fitcoach/internal/service"
)

// BodyStatsHandler handles measurements, progress photos and the dashboard
type BodyStatsHandler struct {
	bodyStatsService *service.BodyStatsService
	maxUploadBytes   int64
}

func NewBodyStatsHandler(bodyStatsService *service.BodyStatsService, maxUploadSizeMB int64) *BodyStatsHandler {
	return &BodyStatsHandler{
		bodyStatsService: bodyStatsService,
		maxUploadBytes:   maxUploadSizeMB * 1024 * 1024,
	}
}

type measurementRequest struct {
	domain.BodyMeasurement
	MeasuredAt string `json:"measured_at"`
}

// AddMeasurement handles POST /api/v1/body-stats/measurements
func (h *BodyStatsHandler) AddMeasurement(c *fiber.Ctx) error {
	var req measurementRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	m := req.BodyMeasurement
	if req.MeasuredAt != "" {
		at, err := parseInstant(req.MeasuredAt)
		if err != nil {
			return badRequest(c, "measured_at must be YYYY-MM-DD or RFC3339")
		}
		m.MeasuredAt = at
	}

	created, err := h.bodyStatsService.AddMeasurement(c.UserContext(), middleware.GetUserID(c), &m)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *BodyStatsHandler) ListMeasurements(c *fiber.Ctx) error {
	list, err := h.bodyStatsService.ListMeasurements(c.UserContext(), middleware.GetUserID(c), queryInt(c, "limit", 30))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// UploadPhoto handles POST /api/v1/body-stats/photos (multipart "photo" + "angle")
func (h *BodyStatsHandler) UploadPhoto(c *fiber.Ctx) error {
	file, err := c.FormFile("photo")
	if err != nil {
		return badRequest(c, "photo file is required")
	}
	if file.Size > h.maxUploadBytes {
		return badRequest(c, fmt.Sprintf("photo exceeds %d MB", h.maxUploadBytes/(1024*1024)))
	}

	fh, err := file.Open()
	if err != nil {
		return badRequest(c, "failed to open uploaded file")
	}
	defer fh.Close()

	data, err := io.ReadAll(io.LimitReader(fh, h.maxUploadBytes+1))
	if err != nil {
		return writeError(c, fmt.Errorf("failed to read uploaded file: %w", err))
	}

	// Trust the bytes over the client's header
	contentType := service.DetectImageType(data)
	if contentType == "" {
		contentType = file.Header.Get(fiber.HeaderContentType)
	}

	photo, err := h.bodyStatsService.UploadPhoto(c.UserContext(), middleware.GetUserID(c), data, contentType, c.FormValue("angle"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(photo)
}

func (h *BodyStatsHandler) ListPhotos(c *fiber.Ctx) error {
	photos, err := h.bodyStatsService.ListPhotos(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(photos)
}

func (h *BodyStatsHandler) Dashboard(c *fiber.Ctx) error {
	dashboard, err := h.bodyStatsService.Dashboard(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dashboard)
}
