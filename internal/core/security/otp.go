package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// OTPValidity is how long an issued code stays usable.
const OTPValidity = 5 * time.Minute

// GenerateOTP mints a 4-digit one-time code (1000-9999, uniform) using
// crypto/rand and returns the plaintext alongside its bcrypt hash. Only the
// hash may be stored.
func GenerateOTP() (code string, codeHash string, err error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate otp: %w", err)
	}
	code = fmt.Sprintf("%d", n.Int64()+1000)

	codeHash, err = HashPassword(code)
	if err != nil {
		return "", "", err
	}
	return code, codeHash, nil
}

// CheckOTP reports whether the candidate code matches the stored hash.
func CheckOTP(candidate, storedHash string) bool {
	return CheckPassword(candidate, storedHash)
}
