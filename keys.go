package accounts

import (
	"crypto/rand"
	"math/big"
	"time"
)

const (
	// MinKeyLength and MaxKeyLength clamp requested key lengths.
	MinKeyLength = 8
	MaxKeyLength = 16

	// DefaultKeyLength is the policy length for issued keys.
	DefaultKeyLength = 16

	// DefaultActivationWindow is how long an activation key stays valid.
	DefaultActivationWindow = 72 * time.Hour
	// DefaultResetWindow is how long a password-reset key stays valid.
	DefaultResetWindow = 24 * time.Hour
	// DefaultExchangeWindow bounds the short-lived key issued when a
	// reset link is exchanged for a reset session.
	DefaultExchangeWindow = 15 * time.Minute
)

const keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateKey returns a random alphanumeric key. The requested length is
// clamped to [MinKeyLength, MaxKeyLength]. Randomness comes from
// crypto/rand so issued keys are not guessable within their expiry
// window.
func GenerateKey(length int) (string, error) {
	if length < MinKeyLength {
		length = MinKeyLength
	}
	if length > MaxKeyLength {
		length = MaxKeyLength
	}

	max := big.NewInt(int64(len(keyAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = keyAlphabet[n.Int64()]
	}

	return string(out), nil
}
