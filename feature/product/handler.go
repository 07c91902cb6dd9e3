package product

import (
	"giftlist-tools/core/logger"
	"giftlist-tools/core/response"
	"giftlist-tools/feature/product/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrEnvironmentsFailed is the error reported when any environment of a create or
// repair failed.
const ErrEnvironmentsFailed = "There was an error when updating one or more environments."

// Handler handles HTTP requests for products.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the product routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/products")
	group.Post("/", h.HandleCreate)
	group.Get("/:id", h.HandleGet)
	group.Put("/:id", h.HandleUpdate)
	group.Get("/:id/check", h.HandleCheck)
	group.Post("/:id/repair", h.HandleRepair)
}

// HandleGet returns a product from the caller's environment.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id := c.Params("id")
	l := logger.WithRayID(h.service.logger, c)

	product, err := h.service.Get(response.RequestContext(c), id)
	if err != nil {
		l.Error("Product lookup failed", zap.String("product_id", id), zap.Error(err))
		return response.Fail(c, err)
	}

	return c.JSON(product)
}

// HandleCreate creates a product in the flagged environments.
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req models.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "request body did not exist")
	}

	res, err := h.service.Create(response.RequestContext(c), req)
	if err != nil {
		l.Error("Product create failed", zap.Error(err))
		return response.Fail(c, err)
	}

	return syncResponse(c, l, res)
}

// HandleUpdate updates a product in the caller's environment.
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	id := c.Params("id")
	l := logger.WithRayID(h.service.logger, c)

	var details models.ProductDetails
	if err := c.BodyParser(&details); err != nil {
		return response.BadRequest(c, "request body did not exist")
	}

	if err := h.service.Update(response.RequestContext(c), id, details); err != nil {
		l.Error("Product update failed", zap.String("product_id", id), zap.Error(err))
		return response.Fail(c, err)
	}

	return c.JSON(fiber.Map{"updated": true})
}

// HandleCheck compares the primary copy of a product with the update environments.
func (h *Handler) HandleCheck(c *fiber.Ctx) error {
	id := c.Params("id")
	l := logger.WithRayID(h.service.logger, c)

	res, err := h.service.Check(response.RequestContext(c), id)
	if err != nil {
		l.Error("Product check failed", zap.String("product_id", id), zap.Error(err))
		return response.Fail(c, err)
	}

	return c.JSON(res)
}

// HandleRepair copies the primary copy of a product into the flagged environments.
// Without a body the configured update environments are repaired.
func (h *Handler) HandleRepair(c *fiber.Ctx) error {
	id := c.Params("id")
	l := logger.WithRayID(h.service.logger, c)

	targets := h.service.Environments().Update
	if len(c.Body()) > 0 {
		var sel models.EnvironmentSelection
		if err := c.BodyParser(&sel); err != nil {
			return response.BadRequest(c, "request body could not be parsed")
		}
		t, err := sel.Targets()
		if err != nil {
			return response.BadRequest(c, err.Error())
		}
		targets = t
	}

	res, err := h.service.Repair(response.RequestContext(c), id, targets)
	if err != nil {
		l.Error("Product repair failed", zap.String("product_id", id), zap.Error(err))
		return response.Fail(c, err)
	}

	return syncResponse(c, l, res)
}

func syncResponse(c *fiber.Ctx, l *zap.Logger, res *SyncResult) error {
	if res.Failed {
		l.Warn("One or more environments failed", zap.String("product_id", res.ProductID), zap.Any("environments", res.Environments))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":        ErrEnvironmentsFailed,
			"productId":    res.ProductID,
			"environments": res.Environments,
		})
	}
	return c.JSON(res)
}
