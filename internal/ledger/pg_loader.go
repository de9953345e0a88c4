package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// LoadPG reads the full batch_records table into an Index. The engine
// treats the result as a read-only snapshot for the process lifetime;
// reloading means restarting.
func LoadPG(ctx context.Context, db *sql.DB) (*Index, error) {
	q := `SELECT id, batch, name, manufacturer, supplier, shop, mfg, exp, checksum, status
	      FROM batch_records ORDER BY id, batch`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query batch_records: %w", err)
	}
	defer rows.Close()

	var records []BatchRecord
	for rows.Next() {
		var (
			rec      BatchRecord
			mfg, exp time.Time
			status   string
		)
		if err := rows.Scan(&rec.ID, &rec.Batch, &rec.Name, &rec.Manufacturer,
			&rec.Supplier, &rec.Shop, &mfg, &exp, &rec.Checksum, &status); err != nil {
			return nil, fmt.Errorf("scan batch_records row: %w", err)
		}
		// DATE columns come back as midnight timestamps; pin them to UTC so
		// expiry arithmetic matches the file loader.
		rec.Mfg = Date{time.Date(mfg.Year(), mfg.Month(), mfg.Day(), 0, 0, 0, 0, time.UTC)}
		rec.Exp = Date{time.Date(exp.Year(), exp.Month(), exp.Day(), 0, 0, 0, 0, time.UTC)}
		rec.Status = Status(status)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch_records: %w", err)
	}

	ix, err := NewIndex(records)
	if err != nil {
		return nil, fmt.Errorf("build ledger index: %w", err)
	}
	return ix, nil
}
