package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

const (
	HeaderHmac       = "X-Shopify-Hmac-Sha256"
	HeaderTopic      = "X-Shopify-Topic"
	HeaderShopDomain = "X-Shopify-Shop-Domain"
	HeaderWebhookID  = "X-Shopify-Webhook-Id"
)

// VerifyWebhook checks the base64 HMAC-SHA256 Shopify computes over the raw body.
func VerifyWebhook(body []byte, hmacHeader, secret string) bool {
	if hmacHeader == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	got, err := base64.StdEncoding.DecodeString(hmacHeader)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, got)
}

// SignWebhook returns the header value VerifyWebhook accepts for body.
func SignWebhook(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
