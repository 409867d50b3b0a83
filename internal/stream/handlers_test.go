package stream

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
)

func serve(t *testing.T, hub *Hub, guard Guard, inbound InboundHandler) string {
	t.Helper()
	app := fiber.New()
	RegisterRoutes(app.Group("/map"), hub, guard, inbound)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = app.Shutdown()
		_ = ln.Close()
	})
	return "ws://" + ln.Addr().String() + "/map/ws/"
}

func waitSubscribers(t *testing.T, hub *Hub, sessionID string, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.Subscribers(sessionID) != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers on %s", n, sessionID)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStreamHandlersUpgradeRequired(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/map"), NewHub(nil), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/map/ws/session-1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Fatalf("expected 426, got %d", resp.StatusCode)
	}
}

func TestStreamHandlersGuardRejects(t *testing.T) {
	base := serve(t, NewHub(nil), func(string) bool { return false }, nil)
	_, resp, err := websocket.DefaultDialer.Dial(base+"missing", nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 response, got %+v", resp)
	}
}

func TestStreamHandlersWebsocketBroadcast(t *testing.T) {
	hub := NewHub(nil)
	base := serve(t, hub, nil, nil)

	conn, _, err := websocket.DefaultDialer.Dial(base+"session-1", nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()
	waitSubscribers(t, hub, "session-1", 1)

	hub.Broadcast("session-1", []byte("hello"))
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(msg) != "hello" {
		t.Fatalf("unexpected message %q", msg)
	}

	conn.Close()
	waitSubscribers(t, hub, "session-1", 0)
}

func TestStreamHandlersInboundReply(t *testing.T) {
	hub := NewHub(nil)
	got := make(chan string, 1)
	base := serve(t, hub, nil, func(sessionID string, msg []byte) []byte {
		got <- sessionID + ":" + string(msg)
		return []byte("ack")
	})

	conn, _, err := websocket.DefaultDialer.Dial(base+"session-2", nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"recenter"}`)); err != nil {
		t.Fatalf("write error: %v", err)
	}
	select {
	case msg := <-got:
		if msg != `session-2:{"type":"recenter"}` {
			t.Fatalf("unexpected inbound %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for inbound frame")
	}

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, reply, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(reply) != "ack" {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestStreamHandlersWebsocketCloseMessage(t *testing.T) {
	hub := NewHub(nil)
	base := serve(t, hub, nil, nil)

	conn, _, err := websocket.DefaultDialer.Dial(base+"session-3", nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	waitSubscribers(t, hub, "session-3", 1)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	conn.Close()

	waitSubscribers(t, hub, "session-3", 0)
	hub.Broadcast("session-3", []byte("ping"))
}
