package domain

import "time"

// Idempotency represents a recorded result of a previously processed request,
// keyed by (path, key). It lets a client retry POST /add safely: the stored
// status and body are replayed instead of inserting the cafe again.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Path      string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_path_key,priority:1"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_path_key,priority:2"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	Body      []byte    `gorm:"type:BLOB NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }

// Expired reports whether the record is no longer valid at now.
func (r Idempotency) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
