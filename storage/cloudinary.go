package storage

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Cloudinary configuration via environment variables
// CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET, CLOUDINARY_FOLDER (optional)

var cloudinaryHTTP = &http.Client{Timeout: 30 * time.Second}

// UploadImage uploads raw image bytes (from a multipart form file) to
// Cloudinary via its signed upload endpoint and returns the hosted URL.
// An empty return means the upload failed; callers treat that as a skipped
// image rather than a fatal error.
func UploadImage(data []byte, publicID string) string {
	if len(data) == 0 {
		return ""
	}

	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")
	folder := os.Getenv("CLOUDINARY_FOLDER")

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		log.Println("cloudinary: missing CLOUDINARY_* env vars")
		return ""
	}

	endpoint := "https://api.cloudinary.com/v1_1/" + cloudName + "/image/upload"

	finalPublicID := publicID
	if folder != "" {
		finalPublicID = folder + "/" + publicID
	}

	form := url.Values{}
	form.Add("file", "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(data))
	form.Add("api_key", apiKey)
	if finalPublicID != "" {
		form.Add("public_id", finalPublicID)
	}

	// Cloudinary signs public_id + timestamp with SHA1
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	form.Add("timestamp", timestamp)
	signatureString := fmt.Sprintf("public_id=%s&timestamp=%s%s", finalPublicID, timestamp, apiSecret)
	form.Add("signature", fmt.Sprintf("%x", sha1.Sum([]byte(signatureString))))

	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		log.Printf("cloudinary: failed to create upload request: %v", err)
		return ""
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := cloudinaryHTTP.Do(req)
	if err != nil {
		log.Printf("cloudinary: upload request failed: %v", err)
		return ""
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		log.Printf("cloudinary: failed to read response: %v", err)
		return ""
	}

	if res.StatusCode != 200 {
		log.Printf("cloudinary: upload failed with status %d: %s", res.StatusCode, string(body))
		return ""
	}

	var cloudRes struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &cloudRes); err != nil {
		log.Printf("cloudinary: failed to parse response: %v", err)
		return ""
	}
	if cloudRes.Error.Message != "" {
		log.Printf("cloudinary: upload error: %s", cloudRes.Error.Message)
		return ""
	}

	if cloudRes.SecureURL != "" {
		return cloudRes.SecureURL
	}
	return cloudRes.URL
}

// DeleteImage deletes an image from Cloudinary using the public ID embedded
// in its hosted URL.
func DeleteImage(imageURL string) bool {
	if !strings.Contains(imageURL, "res.cloudinary.com") {
		return false
	}

	parts := strings.Split(imageURL, "/")
	if len(parts) < 2 {
		return false
	}
	lastPart := parts[len(parts)-1]
	publicID := strings.Split(lastPart, ".")[0]

	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")
	folder := os.Getenv("CLOUDINARY_FOLDER")

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return false
	}

	finalPublicID := publicID
	if folder != "" {
		finalPublicID = folder + "/" + publicID
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	signatureString := fmt.Sprintf("public_id=%s&timestamp=%s%s", finalPublicID, timestamp, apiSecret)

	form := url.Values{}
	form.Add("public_id", finalPublicID)
	form.Add("api_key", apiKey)
	form.Add("timestamp", timestamp)
	form.Add("signature", fmt.Sprintf("%x", sha1.Sum([]byte(signatureString))))

	endpoint := "https://api.cloudinary.com/v1_1/" + cloudName + "/image/destroy"
	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := cloudinaryHTTP.Do(req)
	if err != nil {
		log.Printf("cloudinary: deletion request failed: %v", err)
		return false
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil || res.StatusCode != 200 {
		return false
	}

	var deleteRes struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(body, &deleteRes); err != nil {
		return false
	}
	return deleteRes.Result == "ok"
}
