package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func hubHandler(hub *Hub) http.Handler {
	return http.HandlerFunc(hub.ServeWS)
}

func TestHubRoomFanOut(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	ws := httptest.NewServer(hubHandler(hub))
	defer ws.Close()

	url := "ws" + strings.TrimPrefix(ws.URL, "http")

	joined, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial hub: %v", err)
	}
	defer joined.Close()

	outsider, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial hub: %v", err)
	}
	defer outsider.Close()

	if err := joined.WriteJSON(map[string]interface{}{"event": "joinRoom", "room": "42"}); err != nil {
		t.Fatalf("failed to join room: %v", err)
	}
	// Give the hub goroutine a moment to process the join.
	time.Sleep(50 * time.Millisecond)

	hub.PublishToRoom("42", "newMessage", map[string]string{"text": "hello"})

	joined.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := joined.ReadMessage()
	if err != nil {
		t.Fatalf("joined client did not receive the event: %v", err)
	}

	var event ServerEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if event.Event != "newMessage" || event.Room != "42" {
		t.Errorf("unexpected event %s in room %s", event.Event, event.Room)
	}

	// The outsider never joined the room, so nothing should arrive.
	outsider.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := outsider.ReadMessage(); err == nil {
		t.Error("outsider received an event for a room it never joined")
	}
}

func TestUserRoomNaming(t *testing.T) {
	if got := UserRoom(7); got != "user_7" {
		t.Errorf("UserRoom(7) = %q, want user_7", got)
	}
	if got := RequestRoom(42); got != "42" {
		t.Errorf("RequestRoom(42) = %q, want 42", got)
	}
}
