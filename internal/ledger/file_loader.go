package ledger

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile reads a ledger snapshot from a JSON file containing an array of
// batch records. Intended for dev/demo deployments; production loads from
// Postgres (see LoadPG).
func LoadFile(path string) (*Index, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ledger file: %w", err)
	}
	var records []BatchRecord
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("parse ledger file %s: %w", path, err)
	}
	ix, err := NewIndex(records)
	if err != nil {
		return nil, fmt.Errorf("build ledger index from %s: %w", path, err)
	}
	return ix, nil
}
