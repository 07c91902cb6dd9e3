package integrity

import (
	"giftlist-tools/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/environments", h.HandleEnvironmentCheck)
	group.Get("/tables", h.HandleTableCheck)
	group.Get("/reports", h.HandleReportsCheck)
}

// HandleIntegrityCheck runs every check. Any failing check answers 503.
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	report := h.service.Check(c.UserContext())
	if !report.Healthy {
		l.Warn("Integrity check failed", zap.Strings("failing", report.Failing()))
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return c.JSON(report)
}

// HandleEnvironmentCheck checks the products table of every environment.
func (h *Handler) HandleEnvironmentCheck(c *fiber.Ctx) error {
	return statusResponse(c, h.service.CheckEnvironments(c.UserContext()))
}

// HandleTableCheck checks the caller's notfound and lists tables.
func (h *Handler) HandleTableCheck(c *fiber.Ctx) error {
	return statusResponse(c, h.service.CheckTables(c.UserContext()))
}

// HandleReportsCheck verifies the report bucket.
func (h *Handler) HandleReportsCheck(c *fiber.Ctx) error {
	st := h.service.CheckReports(c.UserContext())
	if st.Status == StatusError {
		return c.Status(fiber.StatusServiceUnavailable).JSON(st)
	}
	return c.JSON(st)
}

func statusResponse(c *fiber.Ctx, statuses map[string]Status) error {
	for _, st := range statuses {
		if st.Status != StatusOK {
			return c.Status(fiber.StatusServiceUnavailable).JSON(statuses)
		}
	}
	return c.JSON(statuses)
}
