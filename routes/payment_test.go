package routes

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"agrimarket-server/models"
	"agrimarket-server/storage"

	"github.com/kataras/iris/v12"
)

func buildPaymentApp(t *testing.T) *iris.Application {
	t.Helper()
	app := newTestApp()
	verifier := accessTokenMiddleware()

	payment := app.Party("/api/payment", verifier)
	{
		payment.Post("/verify", VerifyPayment)
	}

	if err := app.Build(); err != nil {
		t.Fatalf("failed to build app: %v", err)
	}
	return app
}

func seedPendingPayment(t *testing.T, payerID, sellerID uint) (models.Order, models.Payment) {
	t.Helper()
	order := models.Order{
		OrderType:     models.OrderTypeBuy,
		FarmerID:      &payerID,
		SellerID:      sellerID,
		Quantity:      1,
		Amount:        500,
		PaymentMethod: models.PaymentMethodOnline,
		Status:        models.OrderPendingPayment,
	}
	if err := storage.DB.Create(&order).Error; err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	payment := models.Payment{
		OrderID:         order.ID,
		PayerID:         payerID,
		Amount:          order.Amount,
		RazorpayOrderID: "order_test123",
		Status:          models.PaymentCreated,
	}
	if err := storage.DB.Create(&payment).Error; err != nil {
		t.Fatalf("failed to create payment: %v", err)
	}
	return order, payment
}

func verifyPayment(t *testing.T, app *iris.Application, payerID uint, signature string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"razorpayOrderId":"order_test123","razorpayPaymentId":"pay_test456","razorpaySignature":"` + signature + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payment/verify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, payerID, models.RoleFarmer))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func TestVerifyPaymentRejectsBadSignature(t *testing.T) {
	setupTestDB(t)
	os.Setenv("RAZORPAY_KEY_SECRET", "testkeysecret")
	app := buildPaymentApp(t)

	seller := createTestUser(t, "Seller", "seller@example.com", models.RoleSeller)
	farmer := createTestUser(t, "Farmer", "farmer@example.com", models.RoleFarmer)
	order, payment := seedPendingPayment(t, farmer.ID, seller.ID)

	resp := verifyPayment(t, app, farmer.ID, "forged")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for forged signature, got %d: %s", resp.Code, resp.Body.String())
	}

	// A forged signature must not move any state at all.
	var unchangedPayment models.Payment
	storage.DB.First(&unchangedPayment, payment.ID)
	if unchangedPayment.Status != models.PaymentCreated {
		t.Errorf("expected payment to stay CREATED, got %s", unchangedPayment.Status)
	}
	if unchangedPayment.RazorpayPaymentID != "" {
		t.Errorf("expected no payment id recorded, got %q", unchangedPayment.RazorpayPaymentID)
	}

	var unchangedOrder models.Order
	storage.DB.First(&unchangedOrder, order.ID)
	if unchangedOrder.Status != models.OrderPendingPayment {
		t.Errorf("expected order to stay PENDING_PAYMENT, got %s", unchangedOrder.Status)
	}
}

func TestVerifyPaymentConfirmsOrder(t *testing.T) {
	setupTestDB(t)
	os.Setenv("RAZORPAY_KEY_SECRET", "testkeysecret")
	app := buildPaymentApp(t)

	seller := createTestUser(t, "Seller", "seller@example.com", models.RoleSeller)
	farmer := createTestUser(t, "Farmer", "farmer@example.com", models.RoleFarmer)
	order, payment := seedPendingPayment(t, farmer.ID, seller.ID)

	mac := hmac.New(sha256.New, []byte("testkeysecret"))
	mac.Write([]byte("order_test123|pay_test456"))
	signature := hex.EncodeToString(mac.Sum(nil))

	resp := verifyPayment(t, app, farmer.ID, signature)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var paidPayment models.Payment
	storage.DB.First(&paidPayment, payment.ID)
	if paidPayment.Status != models.PaymentPaid {
		t.Errorf("expected payment PAID, got %s", paidPayment.Status)
	}
	if paidPayment.RazorpayPaymentID != "pay_test456" {
		t.Errorf("expected payment id recorded, got %q", paidPayment.RazorpayPaymentID)
	}

	var confirmedOrder models.Order
	storage.DB.First(&confirmedOrder, order.ID)
	if confirmedOrder.Status != models.OrderConfirmed {
		t.Errorf("expected order CONFIRMED, got %s", confirmedOrder.Status)
	}
}

func TestVerifyPaymentPayerOnly(t *testing.T) {
	setupTestDB(t)
	os.Setenv("RAZORPAY_KEY_SECRET", "testkeysecret")
	app := buildPaymentApp(t)

	seller := createTestUser(t, "Seller", "seller@example.com", models.RoleSeller)
	farmer := createTestUser(t, "Farmer", "farmer@example.com", models.RoleFarmer)
	stranger := createTestUser(t, "Stranger", "stranger@example.com", models.RoleFarmer)
	seedPendingPayment(t, farmer.ID, seller.ID)

	resp := verifyPayment(t, app, stranger.ID, "whatever")
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-payer, got %d", resp.Code)
	}
}
