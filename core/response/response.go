// Package response holds the JSON replies and request context shared by the
// feature handlers.
package response

import (
	"context"
	"errors"

	"giftlist-tools/core/audit"
	"giftlist-tools/core/logger"

	"github.com/gofiber/fiber/v2"
)

// ClientError is implemented by errors caused by a bad request.
type ClientError interface {
	error
	ClientError()
}

// RequestContext returns the request's context carrying its ray id.
func RequestContext(c *fiber.Ctx) context.Context {
	rid, _ := c.Locals(logger.RayIDKey).(string)
	return audit.WithRayID(c.UserContext(), rid)
}

// Fail replies with err: 400 when it wraps a ClientError, 500 otherwise.
func Fail(c *fiber.Ctx, err error) error {
	var ce ClientError
	if errors.As(err, &ce) {
		return BadRequest(c, err.Error())
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func BadRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}
