package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Manifest is the string Mercado Pago signs: only the parts that were sent
// are included, each as "key:value;". Alphanumeric ids are signed lowercased.
func Manifest(dataID, requestID, ts string) string {
	var b strings.Builder
	if dataID != "" {
		b.WriteString("id:" + strings.ToLower(dataID) + ";")
	}
	if requestID != "" {
		b.WriteString("request-id:" + requestID + ";")
	}
	if ts != "" {
		b.WriteString("ts:" + ts + ";")
	}
	return b.String()
}

// VerifySignature checks an x-signature header ("ts=...,v1=...") against the
// HMAC-SHA256 of the manifest.
func VerifySignature(secret, header, dataID, requestID string) bool {
	if header == "" {
		return false
	}

	var ts, hash string
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "ts":
			ts = value
		case "v1":
			hash = value
		}
	}
	if ts == "" || hash == "" {
		return false
	}

	return hmac.Equal([]byte(hash), []byte(Sign(secret, Manifest(dataID, requestID, ts))))
}

func Sign(secret, manifest string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	return hex.EncodeToString(mac.Sum(nil))
}
