package apiclient

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"

	"github.com/dmitrymomot/bellfeed/pkg/requestid"
)

const (
	HeaderClientID       = "X-MAGICBELL-CLIENT-ID"
	HeaderAPIKey         = "X-MAGICBELL-API-KEY"
	HeaderAPISecret      = "X-MAGICBELL-API-SECRET"
	HeaderUserEmail      = "X-MAGICBELL-USER-EMAIL"
	HeaderUserHMAC       = "X-MAGICBELL-USER-HMAC"
	HeaderUserExternalID = "X-MAGICBELL-USER-EXTERNAL-ID"
	HeaderRequestID      = requestid.Header
)

// UserHMAC signs the user identifier with the API secret:
// base64(HMAC-SHA256(secret, externalID or email)). It returns "" when there
// is nothing to sign or no secret.
func UserHMAC(secret, externalID, email string) string {
	subject := externalID
	if subject == "" {
		subject = email
	}
	if secret == "" || subject == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(subject))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// accountHeaders builds the headers sent with every request.
func accountHeaders(cfg Config) http.Header {
	h := make(http.Header)
	h.Set(HeaderClientID, cfg.ClientID)
	h.Set(HeaderAPIKey, cfg.APIKey)

	setIf := func(key, value string) {
		if value != "" {
			h.Set(key, value)
		}
	}
	setIf(HeaderAPISecret, cfg.APISecret)
	setIf(HeaderUserEmail, cfg.UserEmail)
	setIf(HeaderUserExternalID, cfg.UserExternalID)

	userHMAC := cfg.UserHMAC
	if userHMAC == "" {
		userHMAC = UserHMAC(cfg.APISecret, cfg.UserExternalID, cfg.UserEmail)
	}
	setIf(HeaderUserHMAC, userHMAC)
	return h
}
