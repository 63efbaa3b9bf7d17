package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyTributeSignature(t *testing.T) {
	body := []byte(`{"name":"new_subscription","payload":{"subscription_id":1}}`)
	secret := "top-secret"

	assert.True(t, VerifyTributeSignature(body, sign(body, secret), secret))
}

func TestVerifyTributeSignatureRejectsMismatch(t *testing.T) {
	body := []byte(`{"name":"new_subscription"}`)

	assert.False(t, VerifyTributeSignature(body, sign(body, "other-secret"), "top-secret"))
}

func TestVerifyTributeSignatureRejectsTamperedBody(t *testing.T) {
	body := []byte(`{"amount":10}`)
	signature := sign(body, "top-secret")
	tampered := []byte(`{"amount":99}`)

	assert.False(t, VerifyTributeSignature(tampered, signature, "top-secret"))
}

func TestVerifyTributeSignatureFailsClosed(t *testing.T) {
	body := []byte(`{}`)

	assert.False(t, VerifyTributeSignature(body, "", "top-secret"), "missing header")
	assert.False(t, VerifyTributeSignature(body, sign(body, "top-secret"), ""), "missing secret")
	assert.False(t, VerifyTributeSignature(body, "not-hex!", "top-secret"), "undecodable header")
}
