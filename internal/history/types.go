package history

import "time"

// Record is one executed remote command. Only metadata is stored; command
// output never touches the database.
type Record struct {
	ID         string    `gorm:"type:text;primaryKey"`
	Tool       string    `gorm:"type:text;not null;index"`
	Command    string    `gorm:"type:text;not null"`
	ExitCode   int       `gorm:"not null"`
	DurationMs int64     `gorm:"not null"`
	CreatedAt  time.Time `gorm:"type:timestamp;not null;index"`
}
