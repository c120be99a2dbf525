package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
)

// OTPDigits is the length of a generated one-time passcode.
const OTPDigits = 6

// GenerateOTP returns a uniformly random numeric one-time passcode of
// OTPDigits digits, zero-padded.
func GenerateOTP() (string, error) {
	max := big.NewInt(1)
	for range OTPDigits {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}

	return fmt.Sprintf("%0*d", OTPDigits, n), nil
}

// EqualOTP compares a stored code with a candidate in constant time with
// respect to the candidate. It reports false for empty stored codes.
func EqualOTP(stored, candidate string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}
