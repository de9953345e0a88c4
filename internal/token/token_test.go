package token_test

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/batchguard/batchguard/internal/ledger"
	"github.com/batchguard/batchguard/internal/token"
)

func sampleRecord(t *testing.T) ledger.BatchRecord {
	t.Helper()
	mfg, err := ledger.ParseDate("2025-01-15")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	exp, err := ledger.ParseDate("2027-08-31")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	return ledger.BatchRecord{
		ID:       "MED-001",
		Batch:    "B456789",
		Checksum: "f9a2",
		Mfg:      mfg,
		Exp:      exp,
		Status:   ledger.StatusActive,
	}
}

func TestRoundTrip(t *testing.T) {
	rec := sampleRecord(t)
	tok, err := token.Encode(rec)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	claim, err := token.Decode(tok)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	want := token.Claim{Tag: token.Marker, ID: "MED-001", Batch: "B456789", Checksum: "f9a2"}
	if claim != want {
		t.Fatalf("claim mismatch:\n got %+v\nwant %+v", claim, want)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	rec := sampleRecord(t)
	first, err := token.Encode(rec)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := token.Encode(rec)
		if err != nil {
			t.Fatalf("Encode error: %v", err)
		}
		if again != first {
			t.Fatalf("non-deterministic token on run %d", i)
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	rec := sampleRecord(t)
	valid, err := token.Encode(rec)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	wrongMarker, _ := marshalClaim(`{"batch":"B456789","checksum":"f9a2","id":"MED-001","tag":"other/v9"}`)
	missingField, _ := marshalClaim(`{"batch":"B456789","id":"MED-001","tag":"` + token.Marker + `"}`)
	emptyField, _ := marshalClaim(`{"batch":"","checksum":"f9a2","id":"MED-001","tag":"` + token.Marker + `"}`)
	extraField, _ := marshalClaim(`{"batch":"B456789","checksum":"f9a2","extra":1,"id":"MED-001","tag":"` + token.Marker + `"}`)
	notObject, _ := marshalClaim(`["not","a","claim"]`)
	trailing, _ := marshalClaim(`{"batch":"B456789","checksum":"f9a2","id":"MED-001","tag":"` + token.Marker + `"}{"x":1}`)

	cases := map[string]string{
		"empty":         "",
		"not base64url": "!!!not-base64!!!",
		"truncated":     valid[:len(valid)/2],
		"not json":      base64.RawURLEncoding.EncodeToString([]byte("hello world")),
		"not object":    notObject,
		"wrong marker":  wrongMarker,
		"missing field": missingField,
		"empty field":   emptyField,
		"extra field":   extraField,
		"trailing data": trailing,
	}
	for name, tok := range cases {
		if _, err := token.Decode(tok); !errors.Is(err, token.ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestDecodeSurvivesArbitraryBytes(t *testing.T) {
	// a fuzz-ish sweep: no input may panic or return a claim
	inputs := []string{
		"\x00\x01\x02", "AAAA", "====", "e30", // e30 = "{}"
		base64.RawURLEncoding.EncodeToString([]byte(`{"tag":123}`)),
		base64.RawURLEncoding.EncodeToString([]byte(`null`)),
	}
	for _, in := range inputs {
		if claim, err := token.Decode(in); err == nil {
			t.Fatalf("input %q: expected failure, got claim %+v", in, claim)
		}
	}
}

func TestClaimKeyMatchesRecordKey(t *testing.T) {
	rec := sampleRecord(t)
	tok, err := token.Encode(rec)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	claim, err := token.Decode(tok)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if claim.Key() != rec.Key() {
		t.Fatalf("identity key mismatch: claim=%s record=%s", claim.Key(), rec.Key())
	}
}

func marshalClaim(rawJSON string) (string, error) {
	return base64.RawURLEncoding.EncodeToString([]byte(rawJSON)), nil
}
