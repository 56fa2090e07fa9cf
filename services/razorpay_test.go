package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"testing"
)

func TestVerifyRazorpaySignature(t *testing.T) {
	os.Setenv("RAZORPAY_KEY_SECRET", "testkeysecret")

	mac := hmac.New(sha256.New, []byte("testkeysecret"))
	mac.Write([]byte("order_abc|pay_xyz"))
	valid := hex.EncodeToString(mac.Sum(nil))

	if !VerifyRazorpaySignature("order_abc", "pay_xyz", valid) {
		t.Error("expected valid signature to verify")
	}
	if VerifyRazorpaySignature("order_abc", "pay_xyz", "deadbeef") {
		t.Error("expected forged signature to fail")
	}
	if VerifyRazorpaySignature("order_other", "pay_xyz", valid) {
		t.Error("expected signature over different order id to fail")
	}
}

func TestRazorpayTestMode(t *testing.T) {
	os.Setenv("RAZORPAY_KEY_ID", "rzp_test_abcdef")
	if !RazorpayTestMode() {
		t.Error("expected rzp_test key to be test mode")
	}

	os.Setenv("RAZORPAY_KEY_ID", "rzp_live_abcdef")
	if RazorpayTestMode() {
		t.Error("expected rzp_live key not to be test mode")
	}
}
