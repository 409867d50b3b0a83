package mapsession

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"backend-ecomap/internal/stream"
)

const frameTimeout = 5 * time.Second

func RegisterRoutes(r fiber.Router, m *Manager, hub *stream.Hub, authMiddleware fiber.Handler) {
	if authMiddleware == nil {
		authMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	r.Post("/sessions", authMiddleware, func(c *fiber.Ctx) error {
		s := m.Create()
		snap, err := s.Snapshot(c.Context())
		if err != nil {
			return sessionError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(snap)
	})

	r.Get("/sessions/:id", func(c *fiber.Ctx) error {
		s, err := m.Get(c.Params("id"))
		if err != nil {
			return sessionError(err)
		}
		snap, err := s.Snapshot(c.Context())
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(snap)
	})

	r.Post("/sessions/:id/events", func(c *fiber.Ctx) error {
		ev, err := DecodeEvent(c.Body())
		if err != nil {
			return sessionError(err)
		}
		snap, err := m.Dispatch(c.Context(), c.Params("id"), ev)
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(snap)
	})

	r.Delete("/sessions/:id", func(c *fiber.Ctx) error {
		if err := m.Close(c.Params("id")); err != nil {
			return sessionError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	if hub != nil {
		stream.RegisterRoutes(r, hub, m.Exists, m.HandleFrame)
	}
}

// HandleFrame applies an event received over the websocket. Snapshots go
// out through the hub, so only failures get a direct reply.
func (m *Manager) HandleFrame(sessionID string, msg []byte) []byte {
	ev, err := DecodeEvent(msg)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
		_, err = m.Dispatch(ctx, sessionID, ev)
		cancel()
	}
	if err == nil {
		return nil
	}
	log.Printf("mapsession: frame for %s rejected: %v", sessionID, err)
	reply, _ := json.Marshal(Message{Type: MessageError, Error: err.Error()})
	return reply
}

func sessionError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownEvent), errors.Is(err, ErrBadEvent):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrUnknownLocation):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrSessionClosed):
		return fiber.NewError(fiber.StatusGone, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
