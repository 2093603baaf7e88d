package api

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	idLength      = 24
	charset       = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	assetIDPrefix = "asset_"
)

var assetIDPattern = regexp.MustCompile(`^asset_[a-zA-Z0-9]{24}$`)

// NewAssetID generates a new asset ID with the "asset_" prefix followed by
// 24 cryptographically random alphanumeric characters.
func NewAssetID() string {
	return assetIDPrefix + randomAlphanumeric(idLength)
}

// ValidateAssetID checks whether the given string is a valid asset ID
// (matches "asset_" + 24 alphanumeric characters).
func ValidateAssetID(id string) bool {
	return assetIDPattern.MatchString(id)
}

func randomAlphanumeric(n int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}
