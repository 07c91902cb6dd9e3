package notfound

import (
	"giftlist-tools/core/logger"
	"giftlist-tools/core/response"
	"giftlist-tools/feature/product/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrPromotionIncomplete is reported when any step of a promotion left items behind.
const ErrPromotionIncomplete = "There was an error when promoting one or more items."

// Handler handles HTTP requests for unreviewed products.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the notfound routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/notfound")
	group.Get("/", h.HandleList)
	group.Get("/count", h.HandleCount)
	group.Get("/:id", h.HandleGet)
	group.Post("/:id/promote", h.HandlePromote)
}

// HandleList returns every unreviewed product.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	items, err := h.service.List(response.RequestContext(c))
	if err != nil {
		l.Error("Notfound list failed", zap.Error(err))
		return response.Fail(c, err)
	}

	return c.JSON(fiber.Map{"items": items})
}

// HandleCount returns the number of unreviewed products.
func (h *Handler) HandleCount(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	count, err := h.service.Count(response.RequestContext(c))
	if err != nil {
		l.Error("Notfound count failed", zap.Error(err))
		return response.Fail(c, err)
	}

	return c.JSON(fiber.Map{"count": count})
}

// HandleGet returns an unreviewed product with its creator and list.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id := c.Params("id")
	l := logger.WithRayID(h.service.logger, c)

	detail, err := h.service.Get(response.RequestContext(c), id)
	if err != nil {
		l.Error("Notfound lookup failed", zap.String("notfound_id", id), zap.Error(err))
		return response.Fail(c, err)
	}

	return c.JSON(detail)
}

// HandlePromote promotes an unreviewed product with the details in the body.
func (h *Handler) HandlePromote(c *fiber.Ctx) error {
	id := c.Params("id")
	l := logger.WithRayID(h.service.logger, c)

	var overrides models.ProductDetails
	if err := c.BodyParser(&overrides); err != nil {
		return response.BadRequest(c, "request body did not exist")
	}

	result, err := h.service.Promote(response.RequestContext(c), id, overrides)
	if err != nil {
		l.Error("Promotion failed", zap.String("notfound_id", id), zap.Error(err))
		return response.Fail(c, err)
	}

	if result.HasFailures() {
		l.Warn("Promotion left items behind", zap.String("notfound_id", id), zap.String("product_id", result.ProductID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": ErrPromotionIncomplete,
			"data":  result,
		})
	}

	return c.JSON(result)
}
