package util

import (
	crand "crypto/rand"
	"math/big"
	"math/rand/v2"
	"strconv"
	"strings"
)

// GenerateRandomHex generates a random hexadecimal string of the specified
// length. Uses math/rand/v2; these IDs are identifiers, not secrets.
func GenerateRandomHex(length int) string {
	if length <= 0 {
		return ""
	}

	const hexChars = "0123456789abcdef"
	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		builder.WriteByte(hexChars[rand.IntN(16)])
	}

	return builder.String()
}

// GenerateSessionID generates a unique flow session ID.
func GenerateSessionID() string {
	return "session_" + GenerateRandomHex(24)
}

// GenerateOTPCode generates a 6-digit one-time code from crypto/rand.
func GenerateOTPCode() string {
	n, err := crand.Int(crand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		return "000000"
	}
	return strconv.FormatInt(n.Int64()+100000, 10)
}
