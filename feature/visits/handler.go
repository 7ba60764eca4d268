package visits

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"visit-tracker/core/logger"
	"visit-tracker/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for intersections and visits.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the visits routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/intersections", h.HandleIngest)

	group := app.Group("/visits")
	group.Get("/:userId", h.HandleGetVisits)
	group.Delete("/:userId", h.HandleResetVisits)
	group.Post("/:userId/rebuild", h.HandleRebuildVisits)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidSnapshot):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrArchiveDisabled):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// decodeBody parses a single intersection, or splits an array into its
// item payloads so each one is decoded and reported on its own.
func decodeBody(body []byte) (*reconcile.Snapshot, []json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil, fmt.Errorf("%w: empty body", ErrInvalidSnapshot)
	}
	if trimmed[0] != '[' {
		snap, err := DecodeSnapshot(trimmed)
		return snap, nil, err
	}

	var payloads []json.RawMessage
	if err := json.Unmarshal(trimmed, &payloads); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return nil, payloads, nil
}

// HandleIngest reconciles one or more intersection snapshots.
// @Summary Ingest Intersections
// @Description Applies an intersection snapshot, or an array of them in order, to the user's visits. Invalid array items are reported per item and skipped.
// @Tags visits
// @Accept json
// @Produce json
// @Param snapshot body IntersectionRequest true "Intersection snapshot (or an array of them)"
// @Success 200 {object} Result "Reconciliation Result"
// @Failure 400 {object} map[string]string "Invalid Snapshot"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /intersections [post]
func (h *Handler) HandleIngest(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	snap, payloads, err := decodeBody(c.Body())
	if err != nil {
		l.Warn("Rejected intersection payload", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	if payloads == nil {
		res, err := h.service.Ingest(c.UserContext(), snap)
		if err != nil {
			l.Error("Ingestion failed", zap.Error(err))
			return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(res)
	}

	items, err := h.service.IngestPayloads(c.UserContext(), payloads)
	if err != nil {
		l.Error("Batch ingestion failed", zap.Int("processed", len(items)), zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error":     err.Error(),
			"processed": items,
		})
	}
	return c.JSON(fiber.Map{"items": items})
}

// HandleGetVisits lists a user's visits.
// @Summary List Visits
// @Description Returns every visit of the user in index order.
// @Tags visits
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} VisitsResponse "Visits"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /visits/{userId} [get]
func (h *Handler) HandleGetVisits(c *fiber.Ctx) error {
	userID := c.Params("userId")
	l := logger.WithUser(logger.WithRayID(h.service.logger, c), userID)

	visits, err := h.service.Visits(c.UserContext(), userID)
	if err != nil {
		l.Error("Failed to list visits", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(VisitsResponse{UserID: userID, Visits: NewVisitViews(visits)})
}

// HandleResetVisits deletes a user's visits.
// @Summary Reset Visits
// @Description Deletes every visit of the user. With purge=true the archived snapshots are removed too.
// @Tags visits
// @Produce json
// @Param userId path string true "User ID"
// @Param purge query boolean false "Also purge archived snapshots"
// @Success 200 {object} map[string]interface{} "Reset Report"
// @Failure 409 {object} map[string]string "Archive Disabled"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /visits/{userId} [delete]
func (h *Handler) HandleResetVisits(c *fiber.Ctx) error {
	userID := c.Params("userId")
	purge := c.Query("purge") == "true"
	l := logger.WithUser(logger.WithRayID(h.service.logger, c), userID)

	removed, err := h.service.Reset(c.UserContext(), userID, purge)
	if err != nil {
		l.Error("Failed to reset visits", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"userId":  userID,
		"removed": removed,
		"purged":  purge,
	})
}

// HandleRebuildVisits replays a user's archived snapshots.
// @Summary Rebuild Visits
// @Description Recomputes the user's visits from archived snapshots in timestamp order.
// @Tags visits
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} RebuildResult "Rebuild Report"
// @Failure 409 {object} map[string]string "Archive Disabled"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /visits/{userId}/rebuild [post]
func (h *Handler) HandleRebuildVisits(c *fiber.Ctx) error {
	userID := c.Params("userId")
	l := logger.WithUser(logger.WithRayID(h.service.logger, c), userID)
	l.Info("Rebuilding visits")

	res, err := h.service.Rebuild(c.UserContext(), userID)
	if err != nil {
		l.Error("Rebuild failed", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}
