package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agrimarket-server/models"
	"agrimarket-server/storage"

	"github.com/kataras/iris/v12"
)

func buildRentalApp(t *testing.T) *iris.Application {
	t.Helper()
	app := newTestApp()
	verifier := accessTokenMiddleware()

	rental := app.Party("/api/rental-request", verifier)
	{
		rental.Post("/", CreateRentalRequest)
		rental.Patch("/{id:uint}/accept", AcceptRentalRequest)
		rental.Patch("/{id:uint}/reject", RejectRentalRequest)
		rental.Patch("/{id:uint}/cancel", CancelRentalRequest)
	}

	if err := app.Build(); err != nil {
		t.Fatalf("failed to build app: %v", err)
	}
	return app
}

func TestCreateRentalRequestRejectsSelfRental(t *testing.T) {
	setupTestDB(t)
	app := buildRentalApp(t)

	owner := createTestUser(t, "Owner", "owner@example.com", models.RoleFarmer)
	equipment := createTestEquipment(t, owner.ID, 500, 100)

	body := `{"equipmentId":` + uintString(equipment.ID) + `,"startDate":"2026-01-01","endDate":"2026-01-03","proposedPricePerDay":450}`
	req := httptest.NewRequest(http.MethodPost, "/api/rental-request", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, owner.ID, models.RoleFarmer))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for self rental, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCreateRentalRequestCopiesShippingCharge(t *testing.T) {
	setupTestDB(t)
	app := buildRentalApp(t)

	owner := createTestUser(t, "Owner", "owner@example.com", models.RoleFarmer)
	renter := createTestUser(t, "Renter", "renter@example.com", models.RoleFarmer)
	equipment := createTestEquipment(t, owner.ID, 500, 100)

	body := `{"equipmentId":` + uintString(equipment.ID) + `,"startDate":"2026-01-01","endDate":"2026-01-03","proposedPricePerDay":450}`
	req := httptest.NewRequest(http.MethodPost, "/api/rental-request", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, renter.ID, models.RoleFarmer))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var request models.RentalRequest
	if err := storage.DB.First(&request).Error; err != nil {
		t.Fatalf("rental request not persisted: %v", err)
	}
	if request.ShippingCharge != 100 {
		t.Errorf("expected shipping charge 100 copied from equipment, got %v", request.ShippingCharge)
	}
	if request.Status != models.RequestPending {
		t.Errorf("expected new request to be PENDING, got %s", request.Status)
	}
}

func TestResolveRentalRequestOnlyOnce(t *testing.T) {
	setupTestDB(t)
	app := buildRentalApp(t)

	owner := createTestUser(t, "Owner", "owner@example.com", models.RoleFarmer)
	renter := createTestUser(t, "Renter", "renter@example.com", models.RoleFarmer)
	equipment := createTestEquipment(t, owner.ID, 500, 100)
	request := createTestRentalRequest(t, equipment, renter.ID, models.RequestPending)

	accept := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/api/rental-request/"+uintString(request.ID)+"/accept", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, owner.ID, models.RoleFarmer))
		resp := httptest.NewRecorder()
		app.ServeHTTP(resp, req)
		return resp
	}

	if resp := accept(); resp.Code != http.StatusOK {
		t.Fatalf("expected first accept to succeed, got %d: %s", resp.Code, resp.Body.String())
	}

	var updated models.RentalRequest
	storage.DB.First(&updated, request.ID)
	if updated.Status != models.RequestAccepted {
		t.Fatalf("expected status ACCEPTED, got %s", updated.Status)
	}

	// A second resolution must lose the compare-and-swap.
	if resp := accept(); resp.Code != http.StatusConflict {
		t.Errorf("expected 409 on second accept, got %d", resp.Code)
	}
}

func TestAcceptRejectedWhenEquipmentLocked(t *testing.T) {
	setupTestDB(t)
	app := buildRentalApp(t)

	owner := createTestUser(t, "Owner", "owner@example.com", models.RoleFarmer)
	renterA := createTestUser(t, "Renter A", "a@example.com", models.RoleFarmer)
	equipment := createTestEquipment(t, owner.ID, 500, 100)
	request := createTestRentalRequest(t, equipment, renterA.ID, models.RequestPending)

	storage.DB.Model(&models.Equipment{}).Where("id = ?", equipment.ID).Update("availability", false)

	req := httptest.NewRequest(http.MethodPatch, "/api/rental-request/"+uintString(request.ID)+"/accept", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, owner.ID, models.RoleFarmer))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 when equipment is locked, got %d", resp.Code)
	}

	var unchanged models.RentalRequest
	storage.DB.First(&unchanged, request.ID)
	if unchanged.Status != models.RequestPending {
		t.Errorf("expected request to stay PENDING, got %s", unchanged.Status)
	}
}

func TestCancelRentalRequestRenterOnly(t *testing.T) {
	setupTestDB(t)
	app := buildRentalApp(t)

	owner := createTestUser(t, "Owner", "owner@example.com", models.RoleFarmer)
	renter := createTestUser(t, "Renter", "renter@example.com", models.RoleFarmer)
	equipment := createTestEquipment(t, owner.ID, 500, 100)
	request := createTestRentalRequest(t, equipment, renter.ID, models.RequestPending)

	// The owner cannot withdraw the renter's request.
	req := httptest.NewRequest(http.MethodPatch, "/api/rental-request/"+uintString(request.ID)+"/cancel", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, owner.ID, models.RoleFarmer))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for owner cancel, got %d", resp.Code)
	}

	req2 := httptest.NewRequest(http.MethodPatch, "/api/rental-request/"+uintString(request.ID)+"/cancel", nil)
	req2.Header.Set("Authorization", "Bearer "+signTestToken(t, renter.ID, models.RoleFarmer))
	resp2 := httptest.NewRecorder()
	app.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusOK {
		t.Fatalf("expected 200 for renter cancel, got %d: %s", resp2.Code, resp2.Body.String())
	}

	var cancelled models.RentalRequest
	storage.DB.First(&cancelled, request.ID)
	if cancelled.Status != models.RequestCancelled {
		t.Errorf("expected status CANCELLED, got %s", cancelled.Status)
	}
}
