package models

// FetchLog records one attempt to call an external endpoint. Append-only:
// the throttle gate only ever asks for the most recent entry matching an
// endpoint and status. Timestamp is unix milliseconds.
type FetchLog struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Endpoint  string `gorm:"type:text;not null;index:idx_fetch_logs_lookup" json:"endpoint"`
	Status    int    `gorm:"not null;index:idx_fetch_logs_lookup" json:"status"`
	Timestamp int64  `gorm:"not null" json:"timestamp"`
}
