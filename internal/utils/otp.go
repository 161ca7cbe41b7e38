package utils

import (
	"crypto/rand"
	"math/big"
)

// NewOtpCode draws a uniform random 5 digit recovery code in the range
// 10000–99999 from crypto/rand.  The small code space matches the
// original recovery flow; brute force is slowed by the rate limiter on
// the auth routes, not by widening the code.
func NewOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		return "", err
	}
	return big.NewInt(10000 + n.Int64()).String(), nil
}
