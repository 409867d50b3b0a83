package catalog

import (
	"errors"
	"math"

	"backend-ecomap/internal/category"
	"backend-ecomap/internal/shared/geo"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultNearbyRadiusKm = 5.0
	MaxNearbyRadiusKm     = 100.0
)

func RegisterRoutes(r fiber.Router, client Client, finder Finder) {
	r.Get("/", func(c *fiber.Ctx) error {
		q := Query{Text: c.Query("search")}
		if raw := c.Query("type"); raw != "" && raw != "all" {
			cat, ok := category.Parse(raw)
			if !ok {
				return fiber.NewError(fiber.StatusBadRequest, "unknown location type")
			}
			q.Category = cat
		}
		resp, err := client.Fetch(c.Context(), q)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(Response{Success: false})
		}
		if resp.Data == nil {
			resp.Data = []Location{}
		}
		return c.JSON(resp)
	})

	if nf, ok := finder.(NearbyFinder); ok {
		r.Get("/nearby", func(c *fiber.Ctx) error {
			p := geo.Point{Lat: c.QueryFloat("lat", math.NaN()), Lng: c.QueryFloat("lng", math.NaN())}
			if !p.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "lat and lng required")
			}
			radius := c.QueryFloat("radius_km", DefaultNearbyRadiusKm)
			if radius <= 0 || radius > MaxNearbyRadiusKm {
				return fiber.NewError(fiber.StatusBadRequest, "radius_km out of range")
			}
			locations, err := nf.Nearby(c.Context(), p, radius)
			if errors.Is(err, ErrUnavailable) {
				return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
			}
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
			return c.JSON(Response{Success: true, Data: locations})
		})
	}

	r.Get("/:id", func(c *fiber.Ctx) error {
		loc, err := finder.Get(c.Context(), c.Params("id"))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "location not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(loc)
	})
}
