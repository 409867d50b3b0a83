package review

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/:id/reviews", authMiddleware, func(c *fiber.Ctx) error {
		var req Review
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		req.LocationID = c.Params("id")
		if uid, ok := c.Locals("user_id").(string); ok {
			req.UserID = uid
		}
		created, err := svc.Create(c.Context(), req)
		if err != nil {
			return reviewError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Get("/:id/reviews", func(c *fiber.Ctx) error {
		reviews, err := svc.List(c.Context(), c.Params("id"))
		if err != nil {
			return reviewError(err)
		}
		photos := 0
		for _, rv := range reviews {
			photos += len(rv.Photos)
		}
		return c.JSON(fiber.Map{"reviews": reviews, "photos": photos})
	})
}

func reviewError(err error) error {
	switch {
	case errors.Is(err, ErrInvalid):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
