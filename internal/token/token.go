// package token implements the scannable claim envelope: canonical JSON of
// the minimal claim fields wrapped in unpadded base64url. The codec is a
// purely syntactic check — a token that decodes is shaped correctly, not
// authentic. Authenticity comes from the ledger match.
package token

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/batchguard/batchguard/internal/canonical"
	"github.com/batchguard/batchguard/internal/ledger"
)

// Marker is the fixed protocol tag every valid token must carry. Encoder
// and decoder deployments must agree on it.
const Marker = "batchguard/v1"

// ErrInvalidToken is the base error for every decode failure: bad base64,
// bad JSON, wrong or missing marker, missing claim fields. Callers test
// with errors.Is.
var ErrInvalidToken = errors.New("invalid token")

// Claim is the assertion carried by a scanned token, prior to any ledger
// verification. Constructed per call; never persisted.
type Claim struct {
	Tag      string `json:"tag"`
	ID       string `json:"id"`
	Batch    string `json:"batch"`
	Checksum string `json:"checksum"`
}

// Key returns the claim's identity key, shared with the ledger index and
// the seen-set.
func (c Claim) Key() string {
	return ledger.IdentityKey(c.ID, c.Batch, c.Checksum)
}

// Encode serializes the minimal claim fields of a ledger record into a
// single printable string. Canonical marshalling makes the output stable
// for identical input; no randomness or timestamps are embedded.
func Encode(rec ledger.BatchRecord) (string, error) {
	payload, err := canonical.Marshal(map[string]string{
		"tag":      Marker,
		"id":       rec.ID,
		"batch":    rec.Batch,
		"checksum": rec.Checksum,
	})
	if err != nil {
		return "", fmt.Errorf("encode claim payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(payload), nil
}

// Decode attempts the inverse transform and validates the claim schema
// strictly: exactly the four fields, tag equal to Marker, id/batch/checksum
// all non-empty. Every failure wraps ErrInvalidToken; arbitrary scanned
// input never causes a panic.
func Decode(tok string) (Claim, error) {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		return Claim{}, fmt.Errorf("%w: bad envelope encoding", ErrInvalidToken)
	}

	var c Claim
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Claim{}, fmt.Errorf("%w: payload is not a claim", ErrInvalidToken)
	}
	// reject trailing garbage after the claim object
	if dec.More() {
		return Claim{}, fmt.Errorf("%w: trailing data after claim", ErrInvalidToken)
	}

	if c.Tag != Marker {
		return Claim{}, fmt.Errorf("%w: wrong or missing protocol marker", ErrInvalidToken)
	}
	if c.ID == "" || c.Batch == "" || c.Checksum == "" {
		return Claim{}, fmt.Errorf("%w: missing claim fields", ErrInvalidToken)
	}
	return c, nil
}
