package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// HashPassword derives the stored credential hash from a plaintext password
// keyed on APP_SECRET.
func HashPassword(password string) string {
	h := hmac.New(sha256.New, []byte(os.Getenv("APP_SECRET")))
	h.Write([]byte(password))
	return hex.EncodeToString(h.Sum(nil))
}

func VerifyPassword(password, hash string) bool {
	return hmac.Equal([]byte(HashPassword(password)), []byte(hash))
}
