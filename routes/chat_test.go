package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agrimarket-server/models"
	"agrimarket-server/realtime"
	"agrimarket-server/storage"

	"github.com/kataras/iris/v12"
)

func buildChatApp(t *testing.T, publisher realtime.Publisher) *iris.Application {
	t.Helper()
	app := newTestApp()
	verifier := accessTokenMiddleware()
	handlers := NewChatHandlers(publisher)

	chat := app.Party("/api/chat", verifier)
	{
		chat.Post("/message", handlers.SendMessage)
		chat.Get("/{rentalRequestID:uint}", handlers.GetHistory)
		chat.Get("/unread/count", handlers.GetUnreadCount)
	}

	if err := app.Build(); err != nil {
		t.Fatalf("failed to build app: %v", err)
	}
	return app
}

func sendChatMessage(t *testing.T, app *iris.Application, senderID uint, requestID uint, message string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"rentalRequestId":` + uintString(requestID) + `,"message":"` + message + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, senderID, models.RoleFarmer))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func TestSendMessagePublishesToBothRooms(t *testing.T) {
	setupTestDB(t)
	publisher := &recordingPublisher{}
	app := buildChatApp(t, publisher)

	owner := createTestUser(t, "Owner", "owner@example.com", models.RoleFarmer)
	renter := createTestUser(t, "Renter", "renter@example.com", models.RoleFarmer)
	equipment := createTestEquipment(t, owner.ID, 500, 100)
	request := createTestRentalRequest(t, equipment, renter.ID, models.RequestPending)

	resp := sendChatMessage(t, app, renter.ID, request.ID, "Is 450 per day okay?")
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var message models.ChatMessage
	if err := storage.DB.First(&message).Error; err != nil {
		t.Fatalf("message not persisted: %v", err)
	}
	if message.ReceiverID != owner.ID {
		t.Errorf("expected receiver to be the owner %d, got %d", owner.ID, message.ReceiverID)
	}

	if len(publisher.events) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(publisher.events))
	}
	if publisher.events[0].Room != realtime.RequestRoom(request.ID) || publisher.events[0].Event != "newMessage" {
		t.Errorf("expected newMessage in request room, got %s in %s", publisher.events[0].Event, publisher.events[0].Room)
	}
	if publisher.events[1].Room != realtime.UserRoom(owner.ID) || publisher.events[1].Event != "incomingMessage" {
		t.Errorf("expected incomingMessage in receiver user room, got %s in %s", publisher.events[1].Event, publisher.events[1].Room)
	}
}

func TestSendMessageClosedAfterResolution(t *testing.T) {
	setupTestDB(t)
	publisher := &recordingPublisher{}
	app := buildChatApp(t, publisher)

	owner := createTestUser(t, "Owner", "owner@example.com", models.RoleFarmer)
	renter := createTestUser(t, "Renter", "renter@example.com", models.RoleFarmer)
	equipment := createTestEquipment(t, owner.ID, 500, 100)
	request := createTestRentalRequest(t, equipment, renter.ID, models.RequestAccepted)

	resp := sendChatMessage(t, app, renter.ID, request.ID, "hello?")
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for resolved request, got %d", resp.Code)
	}
	if len(publisher.events) != 0 {
		t.Errorf("expected no events for rejected send, got %d", len(publisher.events))
	}

	// History is behind the same PENDING boundary.
	histReq := httptest.NewRequest(http.MethodGet, "/api/chat/"+uintString(request.ID), nil)
	histReq.Header.Set("Authorization", "Bearer "+signTestToken(t, renter.ID, models.RoleFarmer))
	histResp := httptest.NewRecorder()
	app.ServeHTTP(histResp, histReq)
	if histResp.Code != http.StatusForbidden {
		t.Errorf("expected 403 fetching history of a resolved request, got %d", histResp.Code)
	}
}

func TestSendMessagePartiesOnly(t *testing.T) {
	setupTestDB(t)
	app := buildChatApp(t, &recordingPublisher{})

	owner := createTestUser(t, "Owner", "owner@example.com", models.RoleFarmer)
	renter := createTestUser(t, "Renter", "renter@example.com", models.RoleFarmer)
	stranger := createTestUser(t, "Stranger", "stranger@example.com", models.RoleFarmer)
	equipment := createTestEquipment(t, owner.ID, 500, 100)
	request := createTestRentalRequest(t, equipment, renter.ID, models.RequestPending)

	resp := sendChatMessage(t, app, stranger.ID, request.ID, "let me in")
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for outsider, got %d", resp.Code)
	}
}

func TestGetHistoryMarksRead(t *testing.T) {
	setupTestDB(t)
	app := buildChatApp(t, &recordingPublisher{})

	owner := createTestUser(t, "Owner", "owner@example.com", models.RoleFarmer)
	renter := createTestUser(t, "Renter", "renter@example.com", models.RoleFarmer)
	equipment := createTestEquipment(t, owner.ID, 500, 100)
	request := createTestRentalRequest(t, equipment, renter.ID, models.RequestPending)

	sendChatMessage(t, app, renter.ID, request.ID, "first")
	sendChatMessage(t, app, renter.ID, request.ID, "second")

	req := httptest.NewRequest(http.MethodGet, "/api/chat/"+uintString(request.ID), nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, owner.ID, models.RoleFarmer))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var unread int64
	storage.DB.Model(&models.ChatMessage{}).
		Where("receiver_id = ? AND read = ?", owner.ID, false).
		Count(&unread)
	if unread != 0 {
		t.Errorf("expected all messages read after history fetch, %d still unread", unread)
	}
}

func TestUnreadCountPartitionsByRole(t *testing.T) {
	setupTestDB(t)
	app := buildChatApp(t, &recordingPublisher{})

	// The user owns one negotiation and rents in another.
	user := createTestUser(t, "Both Sides", "both@example.com", models.RoleFarmer)
	other := createTestUser(t, "Other", "other@example.com", models.RoleFarmer)

	ownedEquipment := createTestEquipment(t, user.ID, 500, 100)
	ownedRequest := createTestRentalRequest(t, ownedEquipment, other.ID, models.RequestPending)

	otherEquipment := createTestEquipment(t, other.ID, 700, 50)
	rentedRequest := createTestRentalRequest(t, otherEquipment, user.ID, models.RequestPending)

	sendChatMessage(t, app, other.ID, ownedRequest.ID, "owner side one")
	sendChatMessage(t, app, other.ID, rentedRequest.ID, "renter side one")
	sendChatMessage(t, app, other.ID, rentedRequest.ID, "renter side two")

	req := httptest.NewRequest(http.MethodGet, "/api/chat/unread/count", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, user.ID, models.RoleFarmer))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload struct {
		UnreadCount struct {
			Total  int `json:"total"`
			Owner  int `json:"owner"`
			Renter int `json:"renter"`
		} `json:"unreadCount"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if payload.UnreadCount.Total != 3 {
		t.Errorf("expected total 3, got %d", payload.UnreadCount.Total)
	}
	if payload.UnreadCount.Owner != 1 {
		t.Errorf("expected owner 1, got %d", payload.UnreadCount.Owner)
	}
	if payload.UnreadCount.Renter != 2 {
		t.Errorf("expected renter 2, got %d", payload.UnreadCount.Renter)
	}
}
