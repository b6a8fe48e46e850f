package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomToken creates an unguessable base64url string from n bytes of
// crypto/rand entropy. Used for anti-forgery state tokens, so a weaker
// source such as math/rand must never be substituted here.
func RandomToken(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
