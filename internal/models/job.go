package models

import "time"

// JobDescription is a stored job posting available for screening runs.
type JobDescription struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"type:text" json:"title"`
	Company   string    `gorm:"type:text;not null" json:"company"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (JobDescription) TableName() string {
	return "job_descriptions"
}
