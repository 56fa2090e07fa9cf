package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Razorpay REST client. Configured via RAZORPAY_KEY_ID / RAZORPAY_KEY_SECRET;
// when the keys are absent every call reports the service as unavailable.

const razorpayBaseURL = "https://api.razorpay.com"

var razorpayHTTP = &http.Client{Timeout: 15 * time.Second}

func RazorpayConfigured() bool {
	return os.Getenv("RAZORPAY_KEY_ID") != "" && os.Getenv("RAZORPAY_KEY_SECRET") != ""
}

// RazorpayTestMode reports whether the configured key is a test key, which
// enables the dev onboarding fallback.
func RazorpayTestMode() bool {
	return len(os.Getenv("RAZORPAY_KEY_ID")) >= 8 && os.Getenv("RAZORPAY_KEY_ID")[:8] == "rzp_test"
}

// RazorpayTransfer routes part of a captured payment to a linked account.
type RazorpayTransfer struct {
	Account  string `json:"account"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	OnHold   int    `json:"on_hold"`
}

type RazorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

func razorpayPost(path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", razorpayBaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.SetBasicAuth(os.Getenv("RAZORPAY_KEY_ID"), os.Getenv("RAZORPAY_KEY_SECRET"))
	req.Header.Set("Content-Type", "application/json")

	res, err := razorpayHTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode >= 400 {
		var apiErr struct {
			Error struct {
				Description string `json:"description"`
			} `json:"error"`
		}
		if json.Unmarshal(resBody, &apiErr) == nil && apiErr.Error.Description != "" {
			return fmt.Errorf("razorpay: %s", apiErr.Error.Description)
		}
		return fmt.Errorf("razorpay: unexpected status %d", res.StatusCode)
	}

	return json.Unmarshal(resBody, out)
}

// CreateRazorpayOrder creates a gateway order for the amount in paise,
// optionally attaching split transfer instructions.
func CreateRazorpayOrder(amountPaise int64, receipt string, transfers []RazorpayTransfer) (*RazorpayOrder, error) {
	payload := map[string]interface{}{
		"amount":   amountPaise,
		"currency": "INR",
		"receipt":  receipt,
	}
	if len(transfers) > 0 {
		payload["transfers"] = transfers
	}

	var order RazorpayOrder
	if err := razorpayPost("/v1/orders", payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateLinkedAccount onboards a seller as a Razorpay Route linked account
// and returns the account id.
func CreateLinkedAccount(name, email, phone string) (string, error) {
	payload := map[string]interface{}{
		"email":               email,
		"phone":               phone,
		"legal_business_name": name,
		"contact_name":        name,
		"business_type":       "individual",
		"type":                "standard",
		"profile": map[string]string{
			"category":    "agriculture",
			"subcategory": "farming",
		},
	}

	var account struct {
		ID string `json:"id"`
	}
	if err := razorpayPost("/v2/accounts", payload, &account); err != nil {
		return "", err
	}
	return account.ID, nil
}

// VerifyRazorpaySignature recomputes the HMAC-SHA256 of
// "<orderID>|<paymentID>" under the key secret and compares it to the
// client-supplied signature in constant time.
func VerifyRazorpaySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(os.Getenv("RAZORPAY_KEY_SECRET")))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
