package trip

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Itinerary
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Destination == "" {
			return fiber.NewError(fiber.StatusBadRequest, "destination required")
		}
		if uid, ok := c.Locals("user_id").(string); ok && req.CreatedBy == "" {
			req.CreatedBy = uid
		}
		it, err := svc.SaveItinerary(c.Context(), req)
		if errors.Is(err, ErrUnavailable) {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(it)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		it, err := svc.GetItinerary(c.Context(), c.Params("id"))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "itinerary not found")
		}
		if errors.Is(err, ErrUnavailable) {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		stops := svc.Stops(it)
		return c.JSON(fiber.Map{
			"itinerary":  it,
			"stops":      stops,
			"mapped":     Mapped(stops),
			"directions": DirectionsURL(it.Destination, stops),
		})
	})
}
