package models

import "time"

// Config is a key/value row. The app keeps its whole state document under
// one key; Revision counts successful writes of that key.
type Config struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"type:text"`
	Revision  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
