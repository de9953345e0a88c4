// package ledger holds the authoritative batch records and the read-only
// index the verifier matches claims against.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/batchguard/batchguard/internal/canonical"
)

// Status is the lifecycle state of a batch on the ledger.
type Status string

const (
	StatusActive   Status = "active"
	StatusRecalled Status = "recalled"
)

// ErrNotFound is returned when a requested ledger resource cannot be located.
var ErrNotFound = errors.New("not found")

const dateLayout = "2006-01-02"

// Date is a calendar date pinned to UTC midnight. All expiry arithmetic in
// this system is done in UTC; the boundary policy lives in internal/rules.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD string into a UTC Date.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("date must be a %q string", dateLayout)
	}
	p, err := ParseDate(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*d = p
	return nil
}

// BatchRecord is one product batch on the ledger. Records are loaded once at
// startup and never mutated by the engine.
type BatchRecord struct {
	ID           string `json:"id"`
	Batch        string `json:"batch"`
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
	Supplier     string `json:"supplier"`
	Shop         string `json:"shop"`
	Mfg          Date   `json:"mfg"`
	Exp          Date   `json:"exp"`
	Checksum     string `json:"checksum"`
	Status       Status `json:"status"`
}

// IdentityKey joins (id, batch, checksum) into an unambiguous string key.
// Canonical JSON escaping guarantees no delimiter can collide with field
// content, whatever the fields contain.
func IdentityKey(id, batch, checksum string) string {
	b, _ := canonical.Marshal([]string{id, batch, checksum})
	return string(b)
}

// Key returns the record's identity key.
func (r *BatchRecord) Key() string {
	return IdentityKey(r.ID, r.Batch, r.Checksum)
}

func (r *BatchRecord) validate() error {
	if r.ID == "" || r.Batch == "" || r.Checksum == "" {
		return fmt.Errorf("record %q/%q: id, batch and checksum are required", r.ID, r.Batch)
	}
	switch r.Status {
	case StatusActive, StatusRecalled:
	default:
		return fmt.Errorf("record %q/%q: unknown status %q", r.ID, r.Batch, r.Status)
	}
	if r.Exp.IsZero() || r.Mfg.IsZero() {
		return fmt.Errorf("record %q/%q: mfg and exp dates are required", r.ID, r.Batch)
	}
	if r.Exp.Before(r.Mfg.Time) {
		return fmt.Errorf("record %q/%q: exp %s precedes mfg %s", r.ID, r.Batch, r.Exp, r.Mfg)
	}
	return nil
}
