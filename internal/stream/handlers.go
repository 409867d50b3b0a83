package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// InboundHandler receives frames sent by a subscriber. A non-nil reply is
// written back to that subscriber only.
type InboundHandler func(sessionID string, msg []byte) []byte

// Guard decides whether a session may be followed before the upgrade.
type Guard func(sessionID string) bool

func RegisterRoutes(r fiber.Router, hub *Hub, guard Guard, inbound InboundHandler) {
	upgrade := func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if guard != nil && !guard(c.Params("sessionID")) {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		return c.Next()
	}

	r.Get("/ws/:sessionID", upgrade, websocket.New(func(c *websocket.Conn) {
		sessionID := c.Params("sessionID")
		client := hub.Register(sessionID)
		defer hub.Unregister(client)

		replies := make(chan []byte, 8)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				var msg []byte
				var ok bool
				select {
				case msg, ok = <-client.Send:
				case msg, ok = <-replies:
				}
				if !ok {
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}
			if inbound == nil {
				continue
			}
			if reply := inbound(sessionID, msg); reply != nil {
				select {
				case replies <- reply:
				default:
				}
			}
		}
		close(replies)
		hub.Unregister(client)
		<-done
	}))
}
