package integrity

import (
	"visit-tracker/core/logger"
	"visit-tracker/feature/integrity/checks"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// Report is the combined result of every integrity check. A check that could
// not run is left out and its error recorded under its name.
type Report struct {
	Server *checks.ServerReport `json:"server,omitempty"`
	Visits *checks.VisitsReport `json:"visits,omitempty"`
	Errors map[string]string    `json:"errors,omitempty"`
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/visits", h.HandleVisitsCheck)
	group.Get("/server", h.HandleServerCheck)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Performs all available integrity checks (Visits, Server).
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} Report "Combined Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	var report Report
	fail := func(name string, err error) {
		l.Error("Integrity check failed", zap.String("check", name), zap.Error(err))
		if report.Errors == nil {
			report.Errors = make(map[string]string)
		}
		report.Errors[name] = err.Error()
	}

	var err error
	if report.Server, err = h.service.CheckServer(); err != nil {
		fail("server", err)
	}
	if report.Visits, err = h.service.CheckVisits(c.UserContext(), ""); err != nil {
		fail("visits", err)
	}

	return c.JSON(report)
}

// HandleVisitsCheck validates stored visit invariants.
// @Summary Check Visits
// @Description Validates start <= finish, boundary consistency and non-overlap of every stored visit.
// @Tags integrity
// @Accept json
// @Produce json
// @Param userId query string false "Only check this user"
// @Success 200 {object} checks.VisitsReport "Visits Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/visits [get]
func (h *Handler) HandleVisitsCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckVisits(c.UserContext(), c.Query("userId"))
	if err != nil {
		l.Error("Visits check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !report.Matched {
		l.Warn("Visit invariant violations detected",
			zap.Int("violations", len(report.Violations)),
			zap.Int("errors", len(report.Errors)))
	}

	return c.JSON(report)
}

// HandleServerCheck checks server schema integrity.
// @Summary Check Server Schema
// @Description Checks if the database schema matches the visit models.
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} checks.ServerReport "Server Check Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/server [get]
func (h *Handler) HandleServerCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Starting server schema check")

	report, err := h.service.CheckServer()
	if err != nil {
		l.Error("Server schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}
