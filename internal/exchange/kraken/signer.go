// Package kraken implements a client for the Kraken spot REST API.
package kraken

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"strconv"

	"github.com/pkg/errors"
)

// Signer computes the API-Sign header for Kraken private endpoints.
type Signer struct {
	key []byte
}

// NewSigner decodes the base64 private key. A key that does not decode is
// a configuration problem and is rejected before any network call.
func NewSigner(privateKey string) (*Signer, error) {
	key, err := base64.StdEncoding.DecodeString(privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "kraken private key is not valid base64")
	}
	return &Signer{key: key}, nil
}

// Sign computes the signature token for one private call.
// encodedForm must be the exact urlencoded body that goes on the wire
// (nonce field included); any re-encoding with a different key order
// invalidates the signature. The scheme is Kraken's:
// HMAC-SHA512(path + SHA256(nonce + body)) with the decoded key,
// base64-encoded.
func (s *Signer) Sign(urlpath string, nonce int64, encodedForm string) string {
	digest := sha256.Sum256([]byte(strconv.FormatInt(nonce, 10) + encodedForm))

	mac := hmac.New(sha512.New, s.key)
	mac.Write([]byte(urlpath))
	mac.Write(digest[:])

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
