package storage

import (
	"fmt"
	"time"
)

// Greeting is one persisted greeting name.
type Greeting struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// dbTime scans timestamps from either driver: pgx yields time.Time, SQLite may
// yield time.Time or the raw DATETIME text depending on the column type it reports.
type dbTime struct {
	Time time.Time
}

var dbTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
}

// Scan implements sql.Scanner.
func (d *dbTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		d.Time = v
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", value)
	}
}

func (d *dbTime) parse(s string) error {
	for _, layout := range dbTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}
